package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"backend/pricing"

	_ "github.com/lib/pq"
)

// ProjectSpec wraps the engine's project specification so it can travel
// through a jsonb column.
type ProjectSpec struct {
	pricing.ProjectSpecification
}

func (s ProjectSpec) Value() (driver.Value, error) {
	return json.Marshal(s.ProjectSpecification)
}

func (s *ProjectSpec) Scan(value interface{}) error {
	if value == nil {
		s.ProjectSpecification = pricing.ProjectSpecification{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &s.ProjectSpecification)
	case string:
		return json.Unmarshal([]byte(v), &s.ProjectSpecification)
	default:
		return fmt.Errorf("cannot scan type %T into ProjectSpec", v)
	}
}

type Project struct {
	ID            int         `json:"id" example:"1"`
	ClientID      int         `json:"client_id" example:"1"`
	Name          string      `json:"name" example:"Riverside tennis courts"`
	Status        string      `json:"status" example:"estimating"`
	SiteAddress   string      `json:"site_address" example:"100 Riverside Dr"`
	SiteCity      string      `json:"site_city" example:"Roanoke"`
	SiteState     string      `json:"site_state" example:"VA"`
	SiteZipCode   string      `json:"site_zip_code" example:"24016"`
	StartDate     DateOnly    `json:"start_date" example:"2024-04-01"`
	TargetDate    DateOnly    `json:"target_date" example:"2024-06-15"`
	Specification ProjectSpec `json:"specification"`
	Notes         string      `json:"notes" example:""`
	Archived      bool        `json:"archived" example:"false"`
	CreatedAt     time.Time   `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time   `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy     string      `json:"created_by,omitempty" example:"admin"`

	// Denormalized for list views.
	ClientName string `json:"client_name,omitempty" example:"Riverside HOA"`
}

// ProjectDocument is a file attached to a project: site photos, survey
// sketches, permits.
type ProjectDocument struct {
	ID         int       `json:"id" example:"1"`
	ProjectID  int       `json:"project_id" example:"1"`
	FileName   string    `json:"file_name" example:"court_crack_north_end.jpg"`
	FilePath   string    `json:"file_path" example:"uploads/projects/1/1705312200_court_crack_north_end.jpg"`
	Kind       string    `json:"kind" example:"site_photo"`
	Caption    string    `json:"caption,omitempty" example:"Crack along north baseline"`
	UploadedAt time.Time `json:"uploaded_at" example:"2024-01-15T10:30:00Z"`
	UploadedBy string    `json:"uploaded_by,omitempty" example:"admin"`
}

// ProjectStatuses are the stages a project moves through, in order.
var ProjectStatuses = []string{
	"lead", "estimating", "proposal_sent", "contracted", "scheduled",
	"in_progress", "completed", "closed",
}

func ValidProjectStatus(status string) bool {
	for _, s := range ProjectStatuses {
		if s == status {
			return true
		}
	}
	return false
}
