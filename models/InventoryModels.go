package models

import (
	"time"

	_ "github.com/lib/pq"
)

type InventoryItem struct {
	ID           int       `json:"id" example:"1"`
	SKU          string    `json:"sku" example:"RESURF-30"`
	Name         string    `json:"name" example:"Acrylic resurfacer drum"`
	Category     string    `json:"category" example:"coatings"`
	Unit         string    `json:"unit" example:"drum"`
	QuantityOn   float64   `json:"quantity_on_hand" example:"12"`
	ReorderLevel float64   `json:"reorder_level" example:"4"`
	UnitCost     float64   `json:"unit_cost" example:"127.50"`
	VendorID     int       `json:"vendor_id,omitempty" example:"1"`
	Location     string    `json:"location" example:"Warehouse A, rack 3"`
	Notes        string    `json:"notes" example:""`
	CreatedAt    time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`

	VendorName   string `json:"vendor_name,omitempty" example:"Court Supply Co"`
	BelowReorder bool   `json:"below_reorder,omitempty" example:"false"`
}

// InventoryAdjustment records every stock movement so quantity on hand
// can always be audited back to zero.
type InventoryAdjustment struct {
	ID        int       `json:"id" example:"1"`
	ItemID    int       `json:"item_id" example:"1"`
	Delta     float64   `json:"delta" example:"-2"`
	Reason    string    `json:"reason" example:"used_on_project"`
	ProjectID int       `json:"project_id,omitempty" example:"1"`
	Notes     string    `json:"notes" example:""`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy string    `json:"created_by,omitempty" example:"admin"`
}

var AdjustmentReasons = []string{
	"received", "used_on_project", "damaged", "returned", "count_correction",
}

func ValidAdjustmentReason(reason string) bool {
	for _, r := range AdjustmentReasons {
		if r == reason {
			return true
		}
	}
	return false
}
