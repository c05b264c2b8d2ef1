package models

import (
	"time"

	_ "github.com/lib/pq"
)

type Proposal struct {
	ID          int       `json:"id" example:"1"`
	ProjectID   int       `json:"project_id" example:"1"`
	EstimateID  int       `json:"estimate_id" example:"1"`
	Title       string    `json:"title" example:"Riverside tennis court resurfacing"`
	Body        string    `json:"body" example:""`
	Status      string    `json:"status" example:"draft"`
	PublicToken string    `json:"public_token,omitempty" example:"7f6c1a1e-8a3b-4f0a-9c2d-1d2e3f4a5b6c"`
	ValidUntil  DateOnly  `json:"valid_until" example:"2024-03-01"`
	SentAt      time.Time `json:"sent_at,omitempty" example:"2024-01-20T09:00:00Z"`
	ViewedAt    time.Time `json:"viewed_at,omitempty" example:"2024-01-21T14:00:00Z"`
	CreatedAt   time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy   string    `json:"created_by,omitempty" example:"admin"`

	ProjectName string `json:"project_name,omitempty" example:"Riverside tennis courts"`
	ClientName  string `json:"client_name,omitempty" example:"Riverside HOA"`
	ClientEmail string `json:"client_email,omitempty" example:"board@riversidehoa.org"`
}

var ProposalStatuses = []string{"draft", "sent", "viewed", "accepted", "declined", "expired"}

func ValidProposalStatus(status string) bool {
	for _, s := range ProposalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ProposalDraftJob tracks a background drafting run. Managed through
// gorm so retries and status transitions stay simple.
type ProposalDraftJob struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProposalID int       `json:"proposal_id" gorm:"index"`
	EstimateID int       `json:"estimate_id"`
	Status     string    `json:"status" gorm:"default:queued"` // queued, running, done, failed
	Tone       string    `json:"tone"`
	Error      string    `json:"error,omitempty"`
	Attempts   int       `json:"attempts"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (ProposalDraftJob) TableName() string {
	return "proposal_draft_jobs"
}
