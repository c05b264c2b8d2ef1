package pricing

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.001 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestCoatingGallons(t *testing.T) {
	rates := DefaultRates()
	cases := []struct {
		name   string
		sqFt   float64
		coats  int
		expect int
	}{
		{"standard two coat", 1000, 2, 24},
		{"single coat", 1000, 1, 12},
		{"rounds up", 1050, 2, 26},
		{"zero area", 0, 2, 0},
		{"negative area", -500, 2, 0},
		{"zero coats", 1000, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rates.CoatingGallons(tc.sqFt, tc.coats); got != tc.expect {
				t.Errorf("CoatingGallons(%v, %d) = %d, want %d", tc.sqFt, tc.coats, got, tc.expect)
			}
		})
	}
}

func TestDrums(t *testing.T) {
	rates := DefaultRates()
	cases := []struct {
		gallons int
		expect  int
	}{
		{24, 1},
		{30, 1},
		{31, 2},
		{120, 4},
		{0, 0},
	}
	for _, tc := range cases {
		if got := rates.Drums(tc.gallons); got != tc.expect {
			t.Errorf("Drums(%d) = %d, want %d", tc.gallons, got, tc.expect)
		}
	}
}

func TestPatchWorkContainerRounding(t *testing.T) {
	prices := PricingConfiguration{
		Materials: MaterialsPricing{
			PatchBinderBucket: 50,
			SandBag:           10,
			CementSet:         80,
		},
	}
	project := ProjectSpecification{
		SurfaceSystem: SurfaceSystem{
			PatchWork: PatchWork{Needed: true, EstimatedGallons: 7},
		},
	}

	out := CalculateMaterials(project, prices, DefaultRates())

	// 7 gallons: 2 buckets, ceil(7/3*2) = 5 sand bags, 1 cement set.
	nearlyEqual(t, "patch subtotal", out.PatchWork.Subtotal, 2*50+5*10+1*80)
	if got := out.PatchWork.Items[1].Quantity; got != 5 {
		t.Errorf("sand bags = %v, want 5", got)
	}
	if len(out.PatchWork.Items) != 3 {
		t.Fatalf("patch items = %d, want 3", len(out.PatchWork.Items))
	}
	if got := out.PatchWork.Items[0].Quantity; got != 2 {
		t.Errorf("binder buckets = %v, want 2", got)
	}
	nearlyEqual(t, "materials total", out.Total, out.PatchWork.Subtotal)
}

func TestPatchWorkNotNeededCostsNothing(t *testing.T) {
	prices := PricingConfiguration{
		Materials: MaterialsPricing{PatchBinderBucket: 50},
	}
	project := ProjectSpecification{
		SurfaceSystem: SurfaceSystem{
			PatchWork: PatchWork{Needed: false, EstimatedGallons: 7},
		},
	}
	out := CalculateMaterials(project, prices, DefaultRates())
	nearlyEqual(t, "total", out.Total, 0)
}

func TestCoatingDrumPricing(t *testing.T) {
	prices := PricingConfiguration{
		Materials: MaterialsPricing{
			AcrylicResurfacer: 4,
			ColorCoating:      5.5,
		},
	}
	project := ProjectSpecification{
		Dimensions: Dimensions{LengthFeet: 100, WidthFeet: 50},
	}

	out := CalculateMaterials(project, prices, DefaultRates())

	// 5000 sq ft, two coats: 120 gallons, 4 drums, priced per 30 gal drum.
	nearlyEqual(t, "resurfacing", out.Resurfacing.Subtotal, 4*(4*30))
	nearlyEqual(t, "color coating", out.ColorCoating.Subtotal, 4*(5.5*30))
}

func TestFiberglassAndCushion(t *testing.T) {
	prices := PricingConfiguration{
		Materials: MaterialsPricing{
			FiberglassMeshRoll: 100,
			FiberglassPrimer:   30,
			CushionBaseCoat:    20,
			CushionFinishCoat:  25,
		},
	}
	project := ProjectSpecification{
		SurfaceSystem: SurfaceSystem{
			FiberglassMesh: FiberglassMesh{Needed: true, AreaSqFt: 5000},
			CushionSystem:  CushionSystem{Needed: true, AreaSqFt: 5000},
		},
	}

	out := CalculateMaterials(project, prices, DefaultRates())

	// 5000/320 = 15.6 rolls rounds to 16; 5000/75 = 66.7 gallons rounds to 67.
	nearlyEqual(t, "fiberglass", out.Fiberglass.Subtotal, 16*100+67*30)
	// 50 gallons of each cushion coat.
	nearlyEqual(t, "cushion", out.Cushion.Subtotal, 50*20+50*25)
}

func TestLinePaintingPerCourt(t *testing.T) {
	prices := PricingConfiguration{
		Services: ServicesPricing{
			LinePaintingTennis:         300,
			LinePaintingPickleball:     200,
			LinePaintingBasketballHalf: 250,
		},
	}
	project := ProjectSpecification{
		CourtConfiguration: CourtConfiguration{
			Tennis:     CourtSelection{Selected: true, Count: 2},
			Pickleball: CourtSelection{Selected: true, Count: 4},
			Basketball: BasketballCourtSel{Selected: true, Count: 1, CourtType: "half"},
		},
	}
	out := CalculateMaterials(project, prices, DefaultRates())
	nearlyEqual(t, "line painting", out.LinePainting.Subtotal, 2*300+4*200+250)
}

func TestZeroSquareFootageIsAllZero(t *testing.T) {
	prices := PricingConfiguration{
		Materials: MaterialsPricing{AcrylicResurfacer: 4, ColorCoating: 5.5},
	}
	out := CalculateMaterials(ProjectSpecification{}, prices, DefaultRates())
	nearlyEqual(t, "total", out.Total, 0)
	if len(out.Resurfacing.Items) != 0 {
		t.Errorf("resurfacing items = %d, want none", len(out.Resurfacing.Items))
	}
}
