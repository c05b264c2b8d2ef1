package pricing

// LaborCost covers crew time, travel and lodging for a project.
type LaborCost struct {
	Travel  TravelCost  `json:"travel"`
	Hotel   HotelCost   `json:"hotel"`
	PerDiem PerDiemCost `json:"per_diem"`
	Hours   HoursCost   `json:"hours"`
	Total   float64     `json:"total"`
}

type TravelCost struct {
	Miles float64 `json:"miles"`
	Cost  float64 `json:"cost"`
}

type HotelCost struct {
	Nights      int     `json:"nights"`
	NightlyRate float64 `json:"nightly_rate"`
	Cost        float64 `json:"cost"`
}

type PerDiemCost struct {
	Days int     `json:"days"`
	Cost float64 `json:"cost"`
}

type HoursCost struct {
	Standard     float64 `json:"standard"`
	Additional   float64 `json:"additional"`
	Installation float64 `json:"installation"`
	TotalHours   float64 `json:"total_hours"`
	HourlyRate   float64 `json:"hourly_rate"`
	Cost         float64 `json:"cost"`
}

func (l Logistics) scheduled() bool {
	return l.TravelDays != 0 || l.NumberOfTrips != 0 ||
		l.DistanceToSiteMiles != 0 || l.AdditionalLaborHours != 0
}

// CalculateLabor prices crew time and logistics. installHours comes from
// the equipment calculator and is scheduled into the crew's billed hours
// at the general labor rate.
//
// Once any logistics field is set, trips and days floor at one: a crew
// that shows up at all shows up for a day. A blank logistics block means
// nothing is scheduled and prices to zero.
func CalculateLabor(project ProjectSpecification, prices PricingConfiguration, rates Rates, installHours float64) LaborCost {
	var out LaborCost
	lg := project.Logistics

	out.Hours.Installation = installHours
	out.Hours.HourlyRate = prices.Services.GeneralLaborRate

	if lg.scheduled() {
		trips := lg.NumberOfTrips
		if trips < 1 {
			trips = 1
		}
		days := lg.TravelDays
		if days < 1 {
			days = 1
		}

		out.Travel.Miles = lg.DistanceToSiteMiles * 2 * float64(trips)
		out.Travel.Cost = out.Travel.Miles * rates.MileageRate

		nightsPerTrip := days - 1
		if nightsPerTrip < 0 {
			nightsPerTrip = 0
		}
		out.Hotel.Nights = nightsPerTrip * trips
		out.Hotel.NightlyRate = lg.HotelNightlyRate
		out.Hotel.Cost = float64(out.Hotel.Nights) * out.Hotel.NightlyRate

		out.PerDiem.Days = days
		out.PerDiem.Cost = float64(days) * rates.PerDiemDaily * float64(rates.CrewSize)

		out.Hours.Standard = float64(days) * rates.WorkdayHours
		out.Hours.Additional = lg.AdditionalLaborHours
	}

	out.Hours.TotalHours = out.Hours.Standard + out.Hours.Additional + out.Hours.Installation
	out.Hours.Cost = out.Hours.TotalHours * out.Hours.HourlyRate

	out.Total = out.Travel.Cost + out.Hotel.Cost + out.PerDiem.Cost + out.Hours.Cost
	return out
}
