package pricing

// ProjectSpecification is the normalized description of a court project.
// It is stored on the project row as JSON and fed to the estimate engine
// untouched, so the same spec always prices the same way.
type ProjectSpecification struct {
	Dimensions          Dimensions          `json:"dimensions"`
	SurfaceSystem       SurfaceSystem       `json:"surface_system"`
	CourtConfiguration  CourtConfiguration  `json:"court_configuration"`
	EquipmentSelections EquipmentSelections `json:"equipment"`
	Logistics           Logistics           `json:"logistics"`
}

type Dimensions struct {
	LengthFeet float64 `json:"length_feet"`
	WidthFeet  float64 `json:"width_feet"`
}

// SquareFootage is always derived from the stored dimensions, never
// persisted, so the two can not drift apart.
func (d Dimensions) SquareFootage() float64 {
	if d.LengthFeet <= 0 || d.WidthFeet <= 0 {
		return 0
	}
	return d.LengthFeet * d.WidthFeet
}

type SurfaceSystem struct {
	NeedsPressureWash bool           `json:"needs_pressure_wash"`
	NeedsAcidWash     bool           `json:"needs_acid_wash"`
	PatchWork         PatchWork      `json:"patch_work"`
	FiberglassMesh    FiberglassMesh `json:"fiberglass_mesh"`
	CushionSystem     CushionSystem  `json:"cushion_system"`
	TopCoat           TopCoat        `json:"top_coat"`
}

type PatchWork struct {
	Needed            bool    `json:"needed"`
	EstimatedGallons  float64 `json:"estimated_gallons"`
	MinorCrackGallons float64 `json:"minor_crack_gallons"`
	MajorCrackGallons float64 `json:"major_crack_gallons"`
}

type FiberglassMesh struct {
	Needed   bool    `json:"needed"`
	AreaSqFt float64 `json:"area_sq_ft"`
}

type CushionSystem struct {
	Needed   bool    `json:"needed"`
	AreaSqFt float64 `json:"area_sq_ft"`
}

type TopCoat struct {
	NumberOfColors int    `json:"number_of_colors"`
	Notes          string `json:"notes"`
}

type CourtConfiguration struct {
	Tennis     CourtSelection     `json:"tennis"`
	Pickleball CourtSelection     `json:"pickleball"`
	Basketball BasketballCourtSel `json:"basketball"`
	ApronColor string             `json:"apron_color"`
}

type CourtSelection struct {
	Selected bool     `json:"selected"`
	Count    int      `json:"count"`
	Colors   []string `json:"colors,omitempty"`
}

// BasketballCourtSel carries the court type because half and full courts
// take different line sets.
type BasketballCourtSel struct {
	Selected  bool   `json:"selected"`
	Count     int    `json:"count"`
	CourtType string `json:"court_type"` // "full" or "half"
	Color     string `json:"color,omitempty"`
}

type EquipmentSelections struct {
	TennisPostSets        int                `json:"tennis_post_sets"`
	PickleballPostSets    int                `json:"pickleball_post_sets"`
	MobilePickleballNets  int                `json:"mobile_pickleball_nets"`
	BasketballSystems     []BasketballSystem `json:"basketball_systems,omitempty"`
	WindscreenLowGradeFt  float64            `json:"windscreen_low_grade_ft"`
	WindscreenHighGradeFt float64            `json:"windscreen_high_grade_ft"`
}

// BasketballSystem describes one hoop: adjustable or fixed height, ground
// or wall mounted, with the pole extension length in feet.
type BasketballSystem struct {
	SystemType    string  `json:"system_type"` // "adjustable" or "fixed"
	MountType     string  `json:"mount_type"`  // "ground" or "wall"
	ExtensionFeet float64 `json:"extension_feet"`
}

type Logistics struct {
	TravelDays           int     `json:"travel_days"`
	NumberOfTrips        int     `json:"number_of_trips"`
	AdditionalLaborHours float64 `json:"additional_labor_hours"`
	HotelNightlyRate     float64 `json:"hotel_nightly_rate"`
	DistanceToSiteMiles  float64 `json:"distance_to_site_miles"`
	LogisticsNotes       string  `json:"logistics_notes,omitempty"`
}
