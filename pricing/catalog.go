package pricing

import "strings"

// PricingConfiguration is the nested view of the pricing catalog the
// engine consumes. Every field defaults to zero, and the engine treats a
// zero price as "costs nothing" rather than an error, so a half filled
// catalog still produces a complete breakdown.
type PricingConfiguration struct {
	Materials MaterialsPricing `json:"materials"`
	Equipment EquipmentPricing `json:"equipment"`
	Services  ServicesPricing  `json:"services"`
}

type MaterialsPricing struct {
	PatchBinderBucket   float64 `json:"patch_binder_bucket"`    // 5 gallon bucket
	SandBag             float64 `json:"sand_bag"`               // 50 lb bag
	CementSet           float64 `json:"cement_set"`             // 48 quart set
	MinorCrackGallon    float64 `json:"minor_crack_gallon"`     // per gallon
	MajorCrackGallon    float64 `json:"major_crack_gallon"`     // per gallon
	AcrylicResurfacer   float64 `json:"acrylic_resurfacer"`     // per gallon, sold by drum
	ColorCoating        float64 `json:"color_coating"`          // per gallon, sold by drum
	FiberglassMeshRoll  float64 `json:"fiberglass_mesh_roll"`   // per 320 sq ft roll
	FiberglassPrimer    float64 `json:"fiberglass_primer"`      // per gallon
	CushionBaseCoat     float64 `json:"cushion_base_coat"`      // per gallon
	CushionFinishCoat   float64 `json:"cushion_finish_coat"`    // per gallon
}

type PostSetPricing struct {
	UnitPrice    float64 `json:"unit_price"`
	InstallHours float64 `json:"install_hours"`
}

type WindscreenPricing struct {
	PricePerFoot        float64 `json:"price_per_foot"`
	InstallHoursPerFoot float64 `json:"install_hours_per_foot"`
}

type BasketballSystemPricing struct {
	UnitPrice    float64 `json:"unit_price"`
	InstallHours float64 `json:"install_hours"`
}

type EquipmentPricing struct {
	TennisPosts     PostSetPricing    `json:"tennis_posts"`
	PickleballPosts PostSetPricing    `json:"pickleball_posts"`
	MobileNet       PostSetPricing    `json:"mobile_net"`

	BasketballAdjustableGround BasketballSystemPricing `json:"basketball_adjustable_ground"`
	BasketballAdjustableWall   BasketballSystemPricing `json:"basketball_adjustable_wall"`
	BasketballFixedGround      BasketballSystemPricing `json:"basketball_fixed_ground"`
	BasketballFixedWall        BasketballSystemPricing `json:"basketball_fixed_wall"`
	ExtensionPerFoot           float64                 `json:"extension_per_foot"`

	WindscreenLowGrade  WindscreenPricing `json:"windscreen_low_grade"`
	WindscreenHighGrade WindscreenPricing `json:"windscreen_high_grade"`

	HoleCutting     float64 `json:"hole_cutting"`      // per core drilled hole
	ConcretePerHole float64 `json:"concrete_per_hole"` // per footer poured
	InstallRate     float64 `json:"install_rate"`      // installer hourly rate
}

// Basketball resolves the price entry for a hoop system. Unknown
// combinations price at zero, same as any other missing catalog entry.
func (e EquipmentPricing) Basketball(systemType, mountType string) BasketballSystemPricing {
	adjustable := strings.EqualFold(systemType, "adjustable")
	wall := strings.EqualFold(mountType, "wall")
	switch {
	case adjustable && wall:
		return e.BasketballAdjustableWall
	case adjustable:
		return e.BasketballAdjustableGround
	case wall:
		return e.BasketballFixedWall
	default:
		return e.BasketballFixedGround
	}
}

type ServicesPricing struct {
	PressureWashPerSqFt        float64 `json:"pressure_wash_per_sq_ft"`
	AcidWashPerSqFt            float64 `json:"acid_wash_per_sq_ft"`
	LinePaintingTennis         float64 `json:"line_painting_tennis"`          // per court
	LinePaintingPickleball     float64 `json:"line_painting_pickleball"`      // per court
	LinePaintingBasketballFull float64 `json:"line_painting_basketball_full"` // per court
	LinePaintingBasketballHalf float64 `json:"line_painting_basketball_half"` // per court
	GeneralLaborRate           float64 `json:"general_labor_rate"`            // crew hourly rate
}
