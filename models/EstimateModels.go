package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"backend/pricing"

	_ "github.com/lib/pq"
)

// EstimateBreakdown wraps the engine output for jsonb storage. Saved
// estimates keep the full breakdown so an old quote can be reprinted
// even after the pricing catalog moves on.
type EstimateBreakdown struct {
	pricing.CostBreakdown
}

func (b EstimateBreakdown) Value() (driver.Value, error) {
	return json.Marshal(b.CostBreakdown)
}

func (b *EstimateBreakdown) Scan(value interface{}) error {
	if value == nil {
		b.CostBreakdown = pricing.CostBreakdown{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &b.CostBreakdown)
	case string:
		return json.Unmarshal([]byte(v), &b.CostBreakdown)
	default:
		return fmt.Errorf("cannot scan type %T into EstimateBreakdown", v)
	}
}

type Estimate struct {
	ID        int               `json:"id" example:"1"`
	ProjectID int               `json:"project_id" example:"1"`
	Version   int               `json:"version" example:"2"`
	Status    string            `json:"status" example:"draft"`
	Breakdown EstimateBreakdown `json:"breakdown"`
	Notes     string            `json:"notes" example:""`
	CreatedAt time.Time         `json:"created_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy string            `json:"created_by,omitempty" example:"admin"`

	ProjectName string `json:"project_name,omitempty" example:"Riverside tennis courts"`
}

// EstimateStatuses: a draft can be superseded or promoted into a
// proposal; superseded estimates stay readable for history.
var EstimateStatuses = []string{"draft", "final", "superseded"}

func ValidEstimateStatus(status string) bool {
	for _, s := range EstimateStatuses {
		if s == status {
			return true
		}
	}
	return false
}
