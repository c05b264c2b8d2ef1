package models

import (
	"time"

	_ "github.com/lib/pq"
)

type Client struct {
	ID           int       `json:"id" example:"1"`
	Name         string    `json:"name" example:"Riverside HOA"`
	Organization string    `json:"organization" example:"Riverside Homeowners Association"`
	Email        string    `json:"email" example:"board@riversidehoa.org"`
	PhoneNo      string    `json:"phone_no" example:"5402281234"`
	Address      string    `json:"address" example:"100 Riverside Dr"`
	City         string    `json:"city" example:"Roanoke"`
	State        string    `json:"state" example:"VA"`
	ZipCode      string    `json:"zip_code" example:"24016"`
	ClientType   string    `json:"client_type" example:"commercial"`
	Source       string    `json:"source" example:"referral"`
	Notes        string    `json:"notes" example:""`
	Archived     bool      `json:"archived" example:"false"`
	CreatedAt    time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy    string    `json:"created_by,omitempty" example:"admin"`

	// Populated on list endpoints so the UI can show workload at a glance.
	ProjectCount int `json:"project_count,omitempty" example:"3"`
}
