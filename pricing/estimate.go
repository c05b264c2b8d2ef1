// Package pricing implements the cost estimate engine for court
// construction and resurfacing projects. Everything in it is pure: the
// same project specification and pricing catalog always produce the same
// breakdown, and missing inputs price to zero instead of failing.
package pricing

// CostBreakdown is a complete priced estimate. It is a value built fresh
// on every call, never mutated after return.
type CostBreakdown struct {
	SquareFootage     float64       `json:"square_footage"`
	Materials         MaterialsCost `json:"materials"`
	Equipment         EquipmentCost `json:"equipment"`
	Labor             LaborCost     `json:"labor"`
	BaseTotal         float64       `json:"base_total"`
	MarginRate        float64       `json:"margin_rate"`
	Margin            float64       `json:"margin"`
	GrandTotal        float64       `json:"grand_total"`
	CostPerSquareFoot float64       `json:"cost_per_square_foot"`
}

// ComputeEstimate prices a project with the company's standard rates.
func ComputeEstimate(project ProjectSpecification, prices PricingConfiguration) CostBreakdown {
	return ComputeEstimateWithRates(project, prices, DefaultRates())
}

// ComputeEstimateWithRates runs all three calculators and rolls them up.
// Margin applies to materials and labor only; equipment is passed through
// at cost on top of the margined base.
func ComputeEstimateWithRates(project ProjectSpecification, prices PricingConfiguration, rates Rates) CostBreakdown {
	materials := CalculateMaterials(project, prices, rates)
	equipment := CalculateEquipment(project, prices, rates)
	labor := CalculateLabor(project, prices, rates, equipment.Totals.InstallHours)

	baseTotal := materials.Total + labor.Total
	margin := baseTotal * rates.MarginRate
	grandTotal := baseTotal + margin + equipment.Totals.GrandTotal

	sqft := project.Dimensions.SquareFootage()
	divisor := sqft
	if divisor < 1 {
		divisor = 1
	}

	return CostBreakdown{
		SquareFootage:     sqft,
		Materials:         materials,
		Equipment:         equipment,
		Labor:             labor,
		BaseTotal:         baseTotal,
		MarginRate:        rates.MarginRate,
		Margin:            margin,
		GrandTotal:        grandTotal,
		CostPerSquareFoot: grandTotal / divisor,
	}
}
