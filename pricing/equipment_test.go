package pricing

import "testing"

func testEquipmentPrices() PricingConfiguration {
	return PricingConfiguration{
		Equipment: EquipmentPricing{
			TennisPosts:     PostSetPricing{UnitPrice: 500, InstallHours: 4},
			PickleballPosts: PostSetPricing{UnitPrice: 350, InstallHours: 3},
			MobileNet:       PostSetPricing{UnitPrice: 150},

			BasketballAdjustableGround: BasketballSystemPricing{UnitPrice: 2000, InstallHours: 6},
			BasketballFixedWall:        BasketballSystemPricing{UnitPrice: 1200, InstallHours: 5},
			ExtensionPerFoot:           100,

			WindscreenLowGrade:  WindscreenPricing{PricePerFoot: 6, InstallHoursPerFoot: 0.05},
			WindscreenHighGrade: WindscreenPricing{PricePerFoot: 9, InstallHoursPerFoot: 0.05},

			HoleCutting:     25,
			ConcretePerHole: 15,
			InstallRate:     50,
		},
	}
}

func TestPostSets(t *testing.T) {
	project := ProjectSpecification{
		EquipmentSelections: EquipmentSelections{TennisPostSets: 2},
	}
	out := CalculateEquipment(project, testEquipmentPrices(), DefaultRates())

	nearlyEqual(t, "equipment", out.TennisPosts.Equipment, 2*500)
	// 8 install hours at 50/hr plus 4 holes cut and poured.
	nearlyEqual(t, "installation", out.TennisPosts.Installation, 8*50+4*(25+15))
	if out.Totals.TotalHoles != 4 {
		t.Errorf("holes = %d, want 4", out.Totals.TotalHoles)
	}
	nearlyEqual(t, "install hours", out.Totals.InstallHours, 8)
}

func TestMobileNetsNeedNoHoles(t *testing.T) {
	project := ProjectSpecification{
		EquipmentSelections: EquipmentSelections{MobilePickleballNets: 3},
	}
	out := CalculateEquipment(project, testEquipmentPrices(), DefaultRates())

	nearlyEqual(t, "equipment", out.MobileNets.Equipment, 3*150)
	nearlyEqual(t, "installation", out.MobileNets.Installation, 0)
	if out.Totals.TotalHoles != 0 {
		t.Errorf("holes = %d, want 0", out.Totals.TotalHoles)
	}
}

func TestBasketballSystems(t *testing.T) {
	cases := []struct {
		name        string
		system      BasketballSystem
		equipment   float64
		holes       int
	}{
		{
			name:      "extension below baseline never bills negative",
			system:    BasketballSystem{SystemType: "adjustable", MountType: "ground", ExtensionFeet: 3},
			equipment: 2000,
			holes:     1,
		},
		{
			name:      "extension over baseline bills the excess",
			system:    BasketballSystem{SystemType: "adjustable", MountType: "ground", ExtensionFeet: 6},
			equipment: 2000 + 2*100,
			holes:     1,
		},
		{
			name:      "wall mount needs no footer",
			system:    BasketballSystem{SystemType: "fixed", MountType: "wall", ExtensionFeet: 4},
			equipment: 1200,
			holes:     0,
		},
		{
			name:      "unknown combination prices at zero",
			system:    BasketballSystem{SystemType: "fixed", MountType: "ground"},
			equipment: 0,
			holes:     1,
		},
	}
	prices := testEquipmentPrices()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			project := ProjectSpecification{
				EquipmentSelections: EquipmentSelections{
					BasketballSystems: []BasketballSystem{tc.system},
				},
			}
			out := CalculateEquipment(project, prices, DefaultRates())
			nearlyEqual(t, "equipment", out.Basketball.Equipment, tc.equipment)
			if out.Totals.TotalHoles != tc.holes {
				t.Errorf("holes = %d, want %d", out.Totals.TotalHoles, tc.holes)
			}
		})
	}
}

func TestWindscreen(t *testing.T) {
	project := ProjectSpecification{
		EquipmentSelections: EquipmentSelections{
			WindscreenLowGradeFt:  200,
			WindscreenHighGradeFt: 100,
		},
	}
	out := CalculateEquipment(project, testEquipmentPrices(), DefaultRates())

	nearlyEqual(t, "equipment", out.Windscreen.Equipment, 200*6+100*9)
	// 15 hours of hanging at 50/hr.
	nearlyEqual(t, "installation", out.Windscreen.Installation, 15*50)
	nearlyEqual(t, "install hours", out.Totals.InstallHours, 15)
}

func TestEquipmentTotalsRollUp(t *testing.T) {
	project := ProjectSpecification{
		EquipmentSelections: EquipmentSelections{
			TennisPostSets:       1,
			MobilePickleballNets: 2,
		},
	}
	out := CalculateEquipment(project, testEquipmentPrices(), DefaultRates())

	nearlyEqual(t, "equipment total", out.Totals.Equipment, out.TennisPosts.Equipment+out.MobileNets.Equipment)
	nearlyEqual(t, "installation total", out.Totals.Installation, out.TennisPosts.Installation)
	nearlyEqual(t, "grand total", out.Totals.GrandTotal, out.Totals.Equipment+out.Totals.Installation)
}
