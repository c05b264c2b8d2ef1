package pricing

import "math"

// Rates holds the fixed production factors the estimate engine runs on.
// Prices come from the pricing catalog; these are how much product and
// crew time the work itself consumes.
type Rates struct {
	CoverageSqFtPerGallon float64 // acrylic coverage per gallon, one coat
	WasteFactor           float64 // multiplier applied to raw coating gallons
	GallonsPerDrum        float64 // resurfacer and color ship in 30 gallon drums
	BinderBucketGallons   float64 // patch binder bucket size
	SandBagsPerBatch      float64 // sand bags per 3 gallons of binder
	CementQuartsPerSet    float64 // quarts in one cement set
	MeshRollCoverageSqFt  float64 // fiberglass mesh coverage per roll
	PrimerSqFtPerGallon   float64 // fiberglass primer coverage
	CushionSqFtPerGallon  float64 // cushion coat coverage, per coat product
	HolesPerPostSet       int     // core drilled holes per net post set
	ExtensionIncludedFeet float64 // basketball extension length included in base price
	MileageRate           float64 // IRS style per mile reimbursement
	PerDiemDaily          float64 // per person per day
	CrewSize              int
	WorkdayHours          float64
	MarginRate            float64
}

// DefaultRates returns the factors the company quotes with today.
func DefaultRates() Rates {
	return Rates{
		CoverageSqFtPerGallon: 125,
		WasteFactor:           1.5,
		GallonsPerDrum:        30,
		BinderBucketGallons:   5,
		SandBagsPerBatch:      2,
		CementQuartsPerSet:    48,
		MeshRollCoverageSqFt:  320,
		PrimerSqFtPerGallon:   75,
		CushionSqFtPerGallon:  100,
		HolesPerPostSet:       2,
		ExtensionIncludedFeet: 4,
		MileageRate:           0.63,
		PerDiemDaily:          50,
		CrewSize:              2,
		WorkdayHours:          8,
		MarginRate:            0.30,
	}
}

// CoatingGallons converts an area and coat count into whole purchased
// gallons, waste included. Non positive inputs cost nothing.
func (r Rates) CoatingGallons(squareFeet float64, coats int) int {
	if squareFeet <= 0 || coats <= 0 {
		return 0
	}
	raw := squareFeet / r.CoverageSqFtPerGallon * r.WasteFactor * float64(coats)
	return int(math.Ceil(raw))
}

// Drums converts purchased gallons into whole drums.
func (r Rates) Drums(gallons int) int {
	if gallons <= 0 {
		return 0
	}
	return int(math.Ceil(float64(gallons) / r.GallonsPerDrum))
}

// DrumCost prices whole drums from a per gallon catalog price.
func (r Rates) DrumCost(drums int, pricePerGallon float64) float64 {
	return float64(drums) * pricePerGallon * r.GallonsPerDrum
}

func ceilUnits(quantity, per float64) int {
	if quantity <= 0 || per <= 0 {
		return 0
	}
	return int(math.Ceil(quantity / per))
}
