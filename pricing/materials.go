package pricing

import "math"

// LineItem is one purchasable quantity in a cost breakdown.
type LineItem struct {
	Label     string  `json:"label"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Cost      float64 `json:"cost"`
}

// ComponentCost groups the line items for one surface component.
type ComponentCost struct {
	Items    []LineItem `json:"items,omitempty"`
	Subtotal float64    `json:"subtotal"`
}

func (c *ComponentCost) add(label string, qty float64, unit string, unitPrice float64) {
	cost := qty * unitPrice
	c.Items = append(c.Items, LineItem{
		Label:     label,
		Quantity:  qty,
		Unit:      unit,
		UnitPrice: unitPrice,
		Cost:      cost,
	})
	c.Subtotal += cost
}

// MaterialsCost is the surface material side of an estimate.
type MaterialsCost struct {
	SitePrep     ComponentCost `json:"site_prep"`
	PatchWork    ComponentCost `json:"patch_work"`
	Resurfacing  ComponentCost `json:"resurfacing"`
	ColorCoating ComponentCost `json:"color_coating"`
	Fiberglass   ComponentCost `json:"fiberglass"`
	Cushion      ComponentCost `json:"cushion"`
	LinePainting ComponentCost `json:"line_painting"`
	Total        float64       `json:"total"`
}

// CalculateMaterials prices the surface work for a project. Components
// the project does not call for contribute nothing, and the zero value
// project prices to zero.
func CalculateMaterials(project ProjectSpecification, prices PricingConfiguration, rates Rates) MaterialsCost {
	var out MaterialsCost
	sqft := project.Dimensions.SquareFootage()
	surface := project.SurfaceSystem
	m := prices.Materials

	if surface.NeedsPressureWash && sqft > 0 {
		out.SitePrep.add("Pressure washing", sqft, "sq ft", prices.Services.PressureWashPerSqFt)
	}
	if surface.NeedsAcidWash && sqft > 0 {
		out.SitePrep.add("Acid washing", sqft, "sq ft", prices.Services.AcidWashPerSqFt)
	}

	if surface.PatchWork.Needed {
		pw := surface.PatchWork
		if buckets := ceilUnits(pw.EstimatedGallons, rates.BinderBucketGallons); buckets > 0 {
			out.PatchWork.add("Patch binder", float64(buckets), "bucket", m.PatchBinderBucket)

			bags := math.Ceil(pw.EstimatedGallons / 3 * rates.SandBagsPerBatch)
			out.PatchWork.add("Silica sand", bags, "bag", m.SandBag)

			quarts := math.Ceil(pw.EstimatedGallons)
			sets := math.Ceil(quarts / rates.CementQuartsPerSet)
			out.PatchWork.add("Portland cement", sets, "set", m.CementSet)
		}
		if pw.MinorCrackGallons > 0 {
			out.PatchWork.add("Minor crack filler", math.Ceil(pw.MinorCrackGallons), "gallon", m.MinorCrackGallon)
		}
		if pw.MajorCrackGallons > 0 {
			out.PatchWork.add("Major crack filler", math.Ceil(pw.MajorCrackGallons), "gallon", m.MajorCrackGallon)
		}
	}

	// Resurfacer goes down in two coats across the full surface and is
	// purchased by the drum.
	if drums := rates.Drums(rates.CoatingGallons(sqft, 2)); drums > 0 {
		out.Resurfacing.add("Acrylic resurfacer", float64(drums), "drum", m.AcrylicResurfacer*rates.GallonsPerDrum)
	}

	// Two color coats across the full surface regardless of how many
	// colors the layout splits into.
	if drums := rates.Drums(rates.CoatingGallons(sqft, 2)); drums > 0 {
		out.ColorCoating.add("Color coating", float64(drums), "drum", m.ColorCoating*rates.GallonsPerDrum)
	}

	if surface.FiberglassMesh.Needed && surface.FiberglassMesh.AreaSqFt > 0 {
		area := surface.FiberglassMesh.AreaSqFt
		rolls := ceilUnits(area, rates.MeshRollCoverageSqFt)
		out.Fiberglass.add("Fiberglass mesh", float64(rolls), "roll", m.FiberglassMeshRoll)
		primer := ceilUnits(area, rates.PrimerSqFtPerGallon)
		out.Fiberglass.add("Fiberglass primer", float64(primer), "gallon", m.FiberglassPrimer)
	}

	if surface.CushionSystem.Needed && surface.CushionSystem.AreaSqFt > 0 {
		area := surface.CushionSystem.AreaSqFt
		gallons := ceilUnits(area, rates.CushionSqFtPerGallon)
		out.Cushion.add("Cushion base coat", float64(gallons), "gallon", m.CushionBaseCoat)
		out.Cushion.add("Cushion finish coat", float64(gallons), "gallon", m.CushionFinishCoat)
	}

	courts := project.CourtConfiguration
	if courts.Tennis.Selected && courts.Tennis.Count > 0 {
		out.LinePainting.add("Tennis lines", float64(courts.Tennis.Count), "court", prices.Services.LinePaintingTennis)
	}
	if courts.Pickleball.Selected && courts.Pickleball.Count > 0 {
		out.LinePainting.add("Pickleball lines", float64(courts.Pickleball.Count), "court", prices.Services.LinePaintingPickleball)
	}
	if courts.Basketball.Selected && courts.Basketball.Count > 0 {
		price := prices.Services.LinePaintingBasketballFull
		label := "Basketball lines (full court)"
		if courts.Basketball.CourtType == "half" {
			price = prices.Services.LinePaintingBasketballHalf
			label = "Basketball lines (half court)"
		}
		out.LinePainting.add(label, float64(courts.Basketball.Count), "court", price)
	}

	out.Total = out.SitePrep.Subtotal + out.PatchWork.Subtotal + out.Resurfacing.Subtotal +
		out.ColorCoating.Subtotal + out.Fiberglass.Subtotal + out.Cushion.Subtotal +
		out.LinePainting.Subtotal
	return out
}
