package models

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Communication is one outbound or inbound message tied to a client.
type Communication struct {
	ID         int       `json:"id" example:"1"`
	ClientID   int       `json:"client_id" example:"1"`
	ProjectID  int       `json:"project_id,omitempty" example:"1"`
	Channel    string    `json:"channel" example:"email"` // email or sms
	Direction  string    `json:"direction" example:"outbound"`
	Subject    string    `json:"subject,omitempty" example:"Your proposal is ready"`
	Body       string    `json:"body" example:""`
	ToAddress  string    `json:"to_address" example:"board@riversidehoa.org"`
	Status     string    `json:"status" example:"sent"` // queued, sent, failed
	FailReason string    `json:"fail_reason,omitempty" example:""`
	SentAt     time.Time `json:"sent_at,omitempty" example:"2024-01-20T09:00:00Z"`
	CreatedAt  time.Time `json:"created_at" example:"2024-01-20T08:59:00Z"`
	CreatedBy  string    `json:"created_by,omitempty" example:"admin"`

	ClientName string `json:"client_name,omitempty" example:"Riverside HOA"`
}

type EmailTemplate struct {
	ID           int       `json:"id" example:"1"`
	Name         string    `json:"name" example:"Proposal cover letter"`
	TemplateType string    `json:"template_type" example:"proposal_ready"`
	Subject      string    `json:"subject" example:"Your proposal from Play Hardscapes"`
	Body         string    `json:"body" example:"<p>Hi {{client_name}},</p>"`
	IsDefault    bool      `json:"is_default" example:"true"`
	CreatedAt    time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// EmailTemplateVariable documents one placeholder a template can use.
type EmailTemplateVariable struct {
	Key         string `json:"key" example:"client_name"`
	Description string `json:"description" example:"Client full name"`
}

// EmailData carries the values templates interpolate.
type EmailData struct {
	Email        string `json:"email"`
	ClientName   string `json:"client_name"`
	ProjectName  string `json:"project_name"`
	ProposalLink string `json:"proposal_link"`
	ContractLink string `json:"contract_link"`
	GrandTotal   string `json:"grand_total"`
	ValidUntil   string `json:"valid_until"`
	DueDate      string `json:"due_date"`
	InvoiceNo    string `json:"invoice_no"`
	CompanyName  string `json:"company_name"`
	SenderName   string `json:"sender_name"`
	SupportEmail string `json:"support_email"`
}

// GetTemplateByID fetches one template.
func GetTemplateByID(db *sql.DB, id int) (*EmailTemplate, error) {
	var t EmailTemplate
	err := db.QueryRow(`
		SELECT id, name, template_type, subject, body, is_default, created_at, updated_at
		FROM email_templates WHERE id = $1`, id).Scan(
		&t.ID, &t.Name, &t.TemplateType, &t.Subject, &t.Body, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("email template %d not found", id)
		}
		return nil, err
	}
	return &t, nil
}

// GetDefaultTemplate fetches the default template for a type.
func GetDefaultTemplate(db *sql.DB, templateType string) (*EmailTemplate, error) {
	var t EmailTemplate
	err := db.QueryRow(`
		SELECT id, name, template_type, subject, body, is_default, created_at, updated_at
		FROM email_templates WHERE template_type = $1 AND is_default = true
		ORDER BY updated_at DESC LIMIT 1`, templateType).Scan(
		&t.ID, &t.Name, &t.TemplateType, &t.Subject, &t.Body, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no default template for type %s", templateType)
		}
		return nil, err
	}
	return &t, nil
}
