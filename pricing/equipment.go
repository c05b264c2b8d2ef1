package pricing

// EquipmentItemCost splits one equipment category into the hardware cost
// and the cost of putting it in the ground. Installation covers the
// installer's time plus hole cutting and concrete where footers apply.
type EquipmentItemCost struct {
	Quantity     float64 `json:"quantity"`
	Equipment    float64 `json:"equipment"`
	Installation float64 `json:"installation"`
	Total        float64 `json:"total"`
}

type EquipmentTotals struct {
	Equipment    float64 `json:"equipment"`
	Installation float64 `json:"installation"`
	GrandTotal   float64 `json:"grand_total"`
	TotalHoles   int     `json:"total_holes"`
	InstallHours float64 `json:"install_hours"`
}

// EquipmentCost is the equipment side of an estimate. Totals carries the
// derived hole count and installation hours so the labor calculator can
// schedule the same hours into the crew's days on site.
type EquipmentCost struct {
	TennisPosts     EquipmentItemCost `json:"tennis_posts"`
	PickleballPosts EquipmentItemCost `json:"pickleball_posts"`
	MobileNets      EquipmentItemCost `json:"mobile_nets"`
	Basketball      EquipmentItemCost `json:"basketball"`
	Windscreen      EquipmentItemCost `json:"windscreen"`
	Totals          EquipmentTotals   `json:"totals"`
}

// CalculateEquipment prices posts, hoops and windscreen for a project.
func CalculateEquipment(project ProjectSpecification, prices PricingConfiguration, rates Rates) EquipmentCost {
	var out EquipmentCost
	sel := project.EquipmentSelections
	e := prices.Equipment

	footerCost := e.HoleCutting + e.ConcretePerHole

	postSets := func(count int, entry PostSetPricing) EquipmentItemCost {
		sets := float64(count)
		holes := count * rates.HolesPerPostSet
		hours := sets * entry.InstallHours
		out.Totals.TotalHoles += holes
		out.Totals.InstallHours += hours
		return EquipmentItemCost{
			Quantity:     sets,
			Equipment:    sets * entry.UnitPrice,
			Installation: hours*e.InstallRate + float64(holes)*footerCost,
		}
	}

	if sel.TennisPostSets > 0 {
		out.TennisPosts = postSets(sel.TennisPostSets, e.TennisPosts)
	}
	if sel.PickleballPostSets > 0 {
		out.PickleballPosts = postSets(sel.PickleballPostSets, e.PickleballPosts)
	}

	// Mobile nets sit on the surface, nothing gets drilled.
	if sel.MobilePickleballNets > 0 {
		nets := float64(sel.MobilePickleballNets)
		out.MobileNets = EquipmentItemCost{
			Quantity:  nets,
			Equipment: nets * e.MobileNet.UnitPrice,
		}
	}

	for _, system := range sel.BasketballSystems {
		entry := e.Basketball(system.SystemType, system.MountType)
		cost := entry.UnitPrice
		// Only the pole length past the included baseline is billed.
		if extra := system.ExtensionFeet - rates.ExtensionIncludedFeet; extra > 0 {
			cost += extra * e.ExtensionPerFoot
		}
		out.Basketball.Quantity++
		out.Basketball.Equipment += cost
		out.Basketball.Installation += entry.InstallHours * e.InstallRate
		out.Totals.InstallHours += entry.InstallHours

		// Wall mounts bolt to structure, only ground mounts need a footer.
		if system.MountType != "wall" {
			out.Basketball.Installation += footerCost
			out.Totals.TotalHoles++
		}
	}

	addWindscreen := func(feet float64, entry WindscreenPricing) {
		if feet <= 0 {
			return
		}
		hours := feet * entry.InstallHoursPerFoot
		out.Windscreen.Quantity += feet
		out.Windscreen.Equipment += feet * entry.PricePerFoot
		out.Windscreen.Installation += hours * e.InstallRate
		out.Totals.InstallHours += hours
	}
	addWindscreen(sel.WindscreenLowGradeFt, e.WindscreenLowGrade)
	addWindscreen(sel.WindscreenHighGradeFt, e.WindscreenHighGrade)

	for _, item := range []*EquipmentItemCost{
		&out.TennisPosts, &out.PickleballPosts, &out.MobileNets, &out.Basketball, &out.Windscreen,
	} {
		item.Total = item.Equipment + item.Installation
		out.Totals.Equipment += item.Equipment
		out.Totals.Installation += item.Installation
	}
	out.Totals.GrandTotal = out.Totals.Equipment + out.Totals.Installation
	return out
}
