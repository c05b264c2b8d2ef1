package pricing

import (
	"reflect"
	"testing"
)

func TestMarginExcludesEquipment(t *testing.T) {
	prices := PricingConfiguration{
		Materials: MaterialsPricing{
			PatchBinderBucket: 50,
			SandBag:           10,
			CementSet:         80,
		},
		Equipment: EquipmentPricing{
			MobileNet: PostSetPricing{UnitPrice: 150},
		},
	}
	project := ProjectSpecification{
		SurfaceSystem: SurfaceSystem{
			PatchWork: PatchWork{Needed: true, EstimatedGallons: 7},
		},
		EquipmentSelections: EquipmentSelections{MobilePickleballNets: 2},
	}

	out := ComputeEstimate(project, prices)

	// Patch work prices to 230 and the nets to 300. The 30% margin
	// applies to materials and labor only, equipment rides on top.
	nearlyEqual(t, "base total", out.BaseTotal, 230)
	nearlyEqual(t, "margin", out.Margin, 69)
	nearlyEqual(t, "grand total", out.GrandTotal, 230+69+300)
}

func TestMarginArithmetic(t *testing.T) {
	rates := DefaultRates()
	cases := []struct {
		name       string
		materials  float64
		labor      float64
		equipment  float64
		margin     float64
		grandTotal float64
	}{
		{"round numbers", 1000, 500, 200, 450, 2150},
		{"no equipment", 1000, 0, 0, 300, 1300},
		{"all zero", 0, 0, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := tc.materials + tc.labor
			margin := base * rates.MarginRate
			nearlyEqual(t, "margin", margin, tc.margin)
			nearlyEqual(t, "grand total", base+margin+tc.equipment, tc.grandTotal)
		})
	}
}

func TestZeroInputFloor(t *testing.T) {
	out := ComputeEstimate(ProjectSpecification{}, PricingConfiguration{})

	nearlyEqual(t, "materials", out.Materials.Total, 0)
	nearlyEqual(t, "equipment", out.Equipment.Totals.GrandTotal, 0)
	nearlyEqual(t, "labor", out.Labor.Total, 0)
	nearlyEqual(t, "grand total", out.GrandTotal, 0)
	nearlyEqual(t, "cost per sq ft", out.CostPerSquareFoot, 0)
}

func TestCostPerSquareFootGuard(t *testing.T) {
	// Zero square footage divides by one, not by zero.
	prices := PricingConfiguration{
		Equipment: EquipmentPricing{MobileNet: PostSetPricing{UnitPrice: 150}},
	}
	project := ProjectSpecification{
		EquipmentSelections: EquipmentSelections{MobilePickleballNets: 1},
	}
	out := ComputeEstimate(project, prices)
	nearlyEqual(t, "cost per sq ft", out.CostPerSquareFoot, out.GrandTotal)
}

func TestCostPerSquareFoot(t *testing.T) {
	prices := PricingConfiguration{
		Materials: MaterialsPricing{AcrylicResurfacer: 4, ColorCoating: 5.5},
	}
	project := ProjectSpecification{
		Dimensions: Dimensions{LengthFeet: 100, WidthFeet: 50},
	}
	out := ComputeEstimate(project, prices)
	nearlyEqual(t, "square footage", out.SquareFootage, 5000)
	nearlyEqual(t, "cost per sq ft", out.CostPerSquareFoot, out.GrandTotal/5000)
}

func TestDeterminism(t *testing.T) {
	prices := PricingConfiguration{
		Materials: MaterialsPricing{
			PatchBinderBucket: 50,
			SandBag:           10,
			CementSet:         80,
			AcrylicResurfacer: 4,
			ColorCoating:      5.5,
		},
		Equipment: EquipmentPricing{
			TennisPosts: PostSetPricing{UnitPrice: 500, InstallHours: 4},
			InstallRate: 50,
			HoleCutting: 25,
		},
		Services: ServicesPricing{GeneralLaborRate: 25, LinePaintingTennis: 300},
	}
	project := ProjectSpecification{
		Dimensions: Dimensions{LengthFeet: 120, WidthFeet: 60},
		SurfaceSystem: SurfaceSystem{
			PatchWork: PatchWork{Needed: true, EstimatedGallons: 4},
		},
		CourtConfiguration: CourtConfiguration{
			Tennis: CourtSelection{Selected: true, Count: 1},
		},
		EquipmentSelections: EquipmentSelections{TennisPostSets: 1},
		Logistics: Logistics{
			DistanceToSiteMiles: 80,
			NumberOfTrips:       1,
			TravelDays:          4,
			HotelNightlyRate:    120,
		},
	}

	first := ComputeEstimate(project, prices)
	for i := 0; i < 5; i++ {
		if next := ComputeEstimate(project, prices); !reflect.DeepEqual(first, next) {
			t.Fatalf("estimate changed between runs: %+v vs %+v", first, next)
		}
	}
}
