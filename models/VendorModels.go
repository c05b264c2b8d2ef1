package models

import (
	"time"

	_ "github.com/lib/pq"
)

type Vendor struct {
	ID            int       `json:"id" example:"1"`
	Name          string    `json:"name" example:"Court Supply Co"`
	ContactName   string    `json:"contact_name" example:"Sam Ortiz"`
	Email         string    `json:"email" example:"orders@courtsupply.com"`
	PhoneNo       string    `json:"phone_no" example:"8005551100"`
	Address       string    `json:"address" example:"1 Industrial Way"`
	City          string    `json:"city" example:"Charlotte"`
	State         string    `json:"state" example:"NC"`
	ZipCode       string    `json:"zip_code" example:"28201"`
	AccountNumber string    `json:"account_number" example:"CS-4417"`
	PaymentTerms  string    `json:"payment_terms" example:"net30"`
	Notes         string    `json:"notes" example:""`
	Archived      bool      `json:"archived" example:"false"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`

	OpenInvoiceCount int     `json:"open_invoice_count,omitempty" example:"2"`
	OpenBalance      float64 `json:"open_balance,omitempty" example:"3420.50"`
}

type VendorInvoice struct {
	ID            int       `json:"id" example:"1"`
	VendorID      int       `json:"vendor_id" example:"1"`
	ProjectID     int       `json:"project_id,omitempty" example:"1"`
	InvoiceNumber string    `json:"invoice_number" example:"CS-2024-0117"`
	Amount        float64   `json:"amount" example:"1840.00"`
	IssueDate     DateOnly  `json:"issue_date" example:"2024-01-17"`
	DueDate       DateOnly  `json:"due_date" example:"2024-02-16"`
	Status        string    `json:"status" example:"open"`
	PaidAt        time.Time `json:"paid_at,omitempty" example:"2024-02-10T00:00:00Z"`
	DocumentPath  string    `json:"document_path,omitempty" example:"uploads/invoices/cs-2024-0117.pdf"`
	Notes         string    `json:"notes" example:""`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-17T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2024-01-17T10:30:00Z"`

	VendorName  string `json:"vendor_name,omitempty" example:"Court Supply Co"`
	ProjectName string `json:"project_name,omitempty" example:"Riverside tennis courts"`
}

var InvoiceStatuses = []string{"open", "paid", "disputed", "void"}

func ValidInvoiceStatus(status string) bool {
	for _, s := range InvoiceStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// InvoicePrefill is what document scanning pulls out of an uploaded
// invoice before anyone reviews it.
type InvoicePrefill struct {
	VendorName    string   `json:"vendor_name" example:"Court Supply Co"`
	InvoiceNumber string   `json:"invoice_number" example:"CS-2024-0117"`
	Amount        float64  `json:"amount" example:"1840.00"`
	IssueDate     DateOnly `json:"issue_date" example:"2024-01-17"`
	DueDate       DateOnly `json:"due_date" example:"2024-02-16"`
	Confidence    float64  `json:"confidence" example:"0.87"`
}
