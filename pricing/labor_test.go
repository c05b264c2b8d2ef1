package pricing

import "testing"

func TestTravelAndHotel(t *testing.T) {
	project := ProjectSpecification{
		Logistics: Logistics{
			DistanceToSiteMiles: 100,
			NumberOfTrips:       2,
			TravelDays:          3,
			HotelNightlyRate:    150,
		},
	}
	out := CalculateLabor(project, PricingConfiguration{}, DefaultRates(), 0)

	nearlyEqual(t, "miles", out.Travel.Miles, 400)
	nearlyEqual(t, "travel cost", out.Travel.Cost, 252)
	if out.Hotel.Nights != 4 {
		t.Errorf("nights = %d, want 4", out.Hotel.Nights)
	}
	nearlyEqual(t, "hotel cost", out.Hotel.Cost, 600)
	nearlyEqual(t, "per diem", out.PerDiem.Cost, 3*50*2)
}

func TestLaborHours(t *testing.T) {
	prices := PricingConfiguration{
		Services: ServicesPricing{GeneralLaborRate: 25},
	}
	project := ProjectSpecification{
		Logistics: Logistics{
			TravelDays:           3,
			NumberOfTrips:        1,
			AdditionalLaborHours: 6,
		},
	}
	out := CalculateLabor(project, prices, DefaultRates(), 10)

	nearlyEqual(t, "standard hours", out.Hours.Standard, 24)
	nearlyEqual(t, "total hours", out.Hours.TotalHours, 24+6+10)
	nearlyEqual(t, "labor cost", out.Hours.Cost, 40*25)
	nearlyEqual(t, "total", out.Total, out.Travel.Cost+out.Hotel.Cost+out.PerDiem.Cost+out.Hours.Cost)
}

func TestTripAndDayFloors(t *testing.T) {
	// Zero trips and days with real distance still means one trip, one day.
	project := ProjectSpecification{
		Logistics: Logistics{DistanceToSiteMiles: 50},
	}
	out := CalculateLabor(project, PricingConfiguration{}, DefaultRates(), 0)

	nearlyEqual(t, "miles", out.Travel.Miles, 100)
	if out.Hotel.Nights != 0 {
		t.Errorf("nights = %d, want 0", out.Hotel.Nights)
	}
	nearlyEqual(t, "per diem", out.PerDiem.Cost, 100)
	nearlyEqual(t, "standard hours", out.Hours.Standard, 8)
}

func TestNegativeLogisticsFloor(t *testing.T) {
	project := ProjectSpecification{
		Logistics: Logistics{DistanceToSiteMiles: 50, NumberOfTrips: -2, TravelDays: -1},
	}
	out := CalculateLabor(project, PricingConfiguration{}, DefaultRates(), 0)
	nearlyEqual(t, "miles", out.Travel.Miles, 100)
	if out.PerDiem.Days != 1 {
		t.Errorf("per diem days = %d, want 1", out.PerDiem.Days)
	}
}

func TestUnscheduledLogisticsCostNothing(t *testing.T) {
	out := CalculateLabor(ProjectSpecification{}, PricingConfiguration{}, DefaultRates(), 0)
	nearlyEqual(t, "total", out.Total, 0)
	if out.PerDiem.Days != 0 {
		t.Errorf("per diem days = %d, want 0", out.PerDiem.Days)
	}
}

func TestInstallHoursBilledWithoutLogistics(t *testing.T) {
	prices := PricingConfiguration{
		Services: ServicesPricing{GeneralLaborRate: 25},
	}
	out := CalculateLabor(ProjectSpecification{}, prices, DefaultRates(), 12)
	nearlyEqual(t, "total hours", out.Hours.TotalHours, 12)
	nearlyEqual(t, "total", out.Total, 12*25)
}
