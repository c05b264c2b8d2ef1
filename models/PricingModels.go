package models

import (
	"time"

	_ "github.com/lib/pq"
)

// PricingItem is one row of the pricing catalog. The catalog is stored
// flat and folded into the nested engine configuration when an estimate
// runs.
type PricingItem struct {
	ID          int       `json:"id" example:"1"`
	Category    string    `json:"category" example:"materials"`
	Name        string    `json:"name" example:"acrylic_resurfacer"`
	Value       float64   `json:"value" example:"4.25"`
	Unit        string    `json:"unit" example:"gallon"`
	Description string    `json:"description" example:"Acrylic resurfacer, per gallon"`
	UpdatedAt   time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	UpdatedBy   string    `json:"updated_by,omitempty" example:"admin"`
}

// PricingCategories are the catalog sections the transform understands.
var PricingCategories = []string{"materials", "equipment", "services"}

func ValidPricingCategory(category string) bool {
	for _, c := range PricingCategories {
		if c == category {
			return true
		}
	}
	return false
}
