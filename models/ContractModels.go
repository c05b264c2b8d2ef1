package models

import (
	"time"

	_ "github.com/lib/pq"
)

type Contract struct {
	ID            int       `json:"id" example:"1"`
	ReferenceCode string    `json:"reference_code" example:"PH-48219"`
	ProposalID    int       `json:"proposal_id" example:"1"`
	ProjectID     int       `json:"project_id" example:"1"`
	ContractValue float64   `json:"contract_value" example:"24500.00"`
	DepositAmount float64   `json:"deposit_amount" example:"7350.00"`
	Terms         string    `json:"terms" example:""`
	Status        string    `json:"status" example:"draft"`
	PublicToken   string    `json:"public_token,omitempty" example:"2b9d8c7e-6f5a-4e3d-b2c1-0a9b8c7d6e5f"`
	SentAt        time.Time `json:"sent_at,omitempty" example:"2024-02-01T09:00:00Z"`
	SignedAt      time.Time `json:"signed_at,omitempty" example:"2024-02-03T16:45:00Z"`
	SignedByName  string    `json:"signed_by_name,omitempty" example:"Pat Nguyen"`
	SignedByEmail string    `json:"signed_by_email,omitempty" example:"pat@riversidehoa.org"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy     string    `json:"created_by,omitempty" example:"admin"`

	ProjectName string `json:"project_name,omitempty" example:"Riverside tennis courts"`
	ClientName  string `json:"client_name,omitempty" example:"Riverside HOA"`
}

var ContractStatuses = []string{"draft", "sent", "signed", "cancelled"}

func ValidContractStatus(status string) bool {
	for _, s := range ContractStatuses {
		if s == status {
			return true
		}
	}
	return false
}
