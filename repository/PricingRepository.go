package repository

import (
	"backend/models"
	"backend/pricing"
	"database/sql"
	"fmt"
)

// BuildPricingConfiguration folds flat catalog rows into the nested
// configuration the estimate engine consumes. Rows with names the
// engine does not know are skipped, and anything the catalog is missing
// stays at zero, which the engine prices as free.
func BuildPricingConfiguration(items []models.PricingItem) pricing.PricingConfiguration {
	var cfg pricing.PricingConfiguration

	for _, item := range items {
		switch item.Category {
		case "materials":
			applyMaterialsPrice(&cfg.Materials, item)
		case "equipment":
			applyEquipmentPrice(&cfg.Equipment, item)
		case "services":
			applyServicesPrice(&cfg.Services, item)
		}
	}
	return cfg
}

func applyMaterialsPrice(m *pricing.MaterialsPricing, item models.PricingItem) {
	switch item.Name {
	case "patch_binder_bucket":
		m.PatchBinderBucket = item.Value
	case "sand_bag":
		m.SandBag = item.Value
	case "cement_set":
		m.CementSet = item.Value
	case "minor_crack_gallon":
		m.MinorCrackGallon = item.Value
	case "major_crack_gallon":
		m.MajorCrackGallon = item.Value
	case "acrylic_resurfacer":
		m.AcrylicResurfacer = item.Value
	case "color_coating":
		m.ColorCoating = item.Value
	case "fiberglass_mesh_roll":
		m.FiberglassMeshRoll = item.Value
	case "fiberglass_primer":
		m.FiberglassPrimer = item.Value
	case "cushion_base_coat":
		m.CushionBaseCoat = item.Value
	case "cushion_finish_coat":
		m.CushionFinishCoat = item.Value
	}
}

func applyEquipmentPrice(e *pricing.EquipmentPricing, item models.PricingItem) {
	switch item.Name {
	case "tennis_posts":
		e.TennisPosts.UnitPrice = item.Value
	case "tennis_posts_install_hours":
		e.TennisPosts.InstallHours = item.Value
	case "pickleball_posts":
		e.PickleballPosts.UnitPrice = item.Value
	case "pickleball_posts_install_hours":
		e.PickleballPosts.InstallHours = item.Value
	case "mobile_net":
		e.MobileNet.UnitPrice = item.Value
	case "basketball_adjustable_ground":
		e.BasketballAdjustableGround.UnitPrice = item.Value
	case "basketball_adjustable_ground_install_hours":
		e.BasketballAdjustableGround.InstallHours = item.Value
	case "basketball_adjustable_wall":
		e.BasketballAdjustableWall.UnitPrice = item.Value
	case "basketball_adjustable_wall_install_hours":
		e.BasketballAdjustableWall.InstallHours = item.Value
	case "basketball_fixed_ground":
		e.BasketballFixedGround.UnitPrice = item.Value
	case "basketball_fixed_ground_install_hours":
		e.BasketballFixedGround.InstallHours = item.Value
	case "basketball_fixed_wall":
		e.BasketballFixedWall.UnitPrice = item.Value
	case "basketball_fixed_wall_install_hours":
		e.BasketballFixedWall.InstallHours = item.Value
	case "extension_per_foot":
		e.ExtensionPerFoot = item.Value
	case "windscreen_low_grade":
		e.WindscreenLowGrade.PricePerFoot = item.Value
	case "windscreen_low_grade_install_hours_per_foot":
		e.WindscreenLowGrade.InstallHoursPerFoot = item.Value
	case "windscreen_high_grade":
		e.WindscreenHighGrade.PricePerFoot = item.Value
	case "windscreen_high_grade_install_hours_per_foot":
		e.WindscreenHighGrade.InstallHoursPerFoot = item.Value
	case "hole_cutting":
		e.HoleCutting = item.Value
	case "concrete_per_hole":
		e.ConcretePerHole = item.Value
	case "install_rate":
		e.InstallRate = item.Value
	}
}

func applyServicesPrice(s *pricing.ServicesPricing, item models.PricingItem) {
	switch item.Name {
	case "pressure_wash_per_sq_ft":
		s.PressureWashPerSqFt = item.Value
	case "acid_wash_per_sq_ft":
		s.AcidWashPerSqFt = item.Value
	case "line_painting_tennis":
		s.LinePaintingTennis = item.Value
	case "line_painting_pickleball":
		s.LinePaintingPickleball = item.Value
	case "line_painting_basketball_full":
		s.LinePaintingBasketballFull = item.Value
	case "line_painting_basketball_half":
		s.LinePaintingBasketballHalf = item.Value
	case "general_labor_rate":
		s.GeneralLaborRate = item.Value
	}
}

// LoadPricingItems reads the full catalog.
func LoadPricingItems(db *sql.DB) ([]models.PricingItem, error) {
	rows, err := db.Query(`
		SELECT id, category, name, value, unit, COALESCE(description, ''), updated_at, COALESCE(updated_by, '')
		FROM pricing_items
		ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing items: %v", err)
	}
	defer rows.Close()

	var items []models.PricingItem
	for rows.Next() {
		var item models.PricingItem
		if err := rows.Scan(&item.ID, &item.Category, &item.Name, &item.Value, &item.Unit,
			&item.Description, &item.UpdatedAt, &item.UpdatedBy); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LoadPricingConfiguration reads the catalog and folds it for the engine.
func LoadPricingConfiguration(db *sql.DB) (pricing.PricingConfiguration, error) {
	items, err := LoadPricingItems(db)
	if err != nil {
		return pricing.PricingConfiguration{}, err
	}
	return BuildPricingConfiguration(items), nil
}

// LoadProjectSpecification reads the stored specification of one project.
func LoadProjectSpecification(db *sql.DB, projectID int) (pricing.ProjectSpecification, error) {
	var spec models.ProjectSpec
	err := db.QueryRow(`SELECT specification FROM projects WHERE id = $1`, projectID).Scan(&spec)
	if err != nil {
		if err == sql.ErrNoRows {
			return pricing.ProjectSpecification{}, fmt.Errorf("project %d not found", projectID)
		}
		return pricing.ProjectSpecification{}, err
	}
	return spec.ProjectSpecification, nil
}
