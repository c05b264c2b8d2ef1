package repository

import (
	"testing"

	"backend/models"
)

func TestBuildPricingConfiguration(t *testing.T) {
	items := []models.PricingItem{
		{Category: "materials", Name: "acrylic_resurfacer", Value: 4.25},
		{Category: "materials", Name: "patch_binder_bucket", Value: 52},
		{Category: "equipment", Name: "tennis_posts", Value: 485},
		{Category: "equipment", Name: "tennis_posts_install_hours", Value: 4},
		{Category: "equipment", Name: "windscreen_low_grade", Value: 5.75},
		{Category: "equipment", Name: "windscreen_low_grade_install_hours_per_foot", Value: 0.05},
		{Category: "services", Name: "general_labor_rate", Value: 35},
	}

	cfg := BuildPricingConfiguration(items)

	if cfg.Materials.AcrylicResurfacer != 4.25 {
		t.Errorf("acrylic resurfacer = %v, want 4.25", cfg.Materials.AcrylicResurfacer)
	}
	if cfg.Materials.PatchBinderBucket != 52 {
		t.Errorf("patch binder bucket = %v, want 52", cfg.Materials.PatchBinderBucket)
	}
	if cfg.Equipment.TennisPosts.UnitPrice != 485 || cfg.Equipment.TennisPosts.InstallHours != 4 {
		t.Errorf("tennis posts = %+v, want price 485 with 4 install hours", cfg.Equipment.TennisPosts)
	}
	if cfg.Equipment.WindscreenLowGrade.InstallHoursPerFoot != 0.05 {
		t.Errorf("windscreen install hours per foot = %v, want 0.05", cfg.Equipment.WindscreenLowGrade.InstallHoursPerFoot)
	}
	if cfg.Services.GeneralLaborRate != 35 {
		t.Errorf("general labor rate = %v, want 35", cfg.Services.GeneralLaborRate)
	}
}

func TestBuildPricingConfigurationSkipsUnknownRows(t *testing.T) {
	items := []models.PricingItem{
		{Category: "materials", Name: "unobtainium", Value: 999},
		{Category: "snacks", Name: "acrylic_resurfacer", Value: 999},
	}

	cfg := BuildPricingConfiguration(items)

	if cfg != (BuildPricingConfiguration(nil)) {
		t.Errorf("unknown rows changed the configuration: %+v", cfg)
	}
}

func TestBuildPricingConfigurationEmptyCatalog(t *testing.T) {
	cfg := BuildPricingConfiguration(nil)
	if cfg.Materials.AcrylicResurfacer != 0 || cfg.Services.GeneralLaborRate != 0 {
		t.Errorf("empty catalog should price everything at zero, got %+v", cfg)
	}
}
