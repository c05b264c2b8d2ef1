package services

import (
	"database/sql"
	"fmt"
	"net/smtp"
	"os"
	"regexp"
	"strings"

	"backend/models"

	"golang.org/x/net/html"
)

// convertHTMLToText converts HTML content to plain text for email sending
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// If parsing fails, return the original content
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			// Add line breaks for block elements
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "table", "tr":
				text.WriteString("\n")
			case "td", "th":
				text.WriteString(" | ")
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}

	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	result = strings.TrimSpace(result)

	return result
}

// EmailService handles email operations with template support
type EmailService struct {
	db *sql.DB
}

// NewEmailService creates a new email service instance
func NewEmailService(db *sql.DB) *EmailService {
	return &EmailService{db: db}
}

// PreviewEmailAsText renders a template with its variables and converts
// it to the plain text a recipient's mail client would fall back to.
func (es *EmailService) PreviewEmailAsText(htmlContent string, emailData models.EmailData) (string, error) {
	processedContent, err := es.processTemplate(htmlContent, emailData)
	if err != nil {
		return "", fmt.Errorf("failed to process template: %v", err)
	}
	return convertHTMLToText(processedContent), nil
}

// SendTemplatedEmail sends an email using a template with variable
// substitution. A nil customTemplateID selects the default template for
// the type.
func (es *EmailService) SendTemplatedEmail(templateType string, emailData models.EmailData, customTemplateID *int) error {
	var emailTemplate *models.EmailTemplate
	var err error

	if customTemplateID != nil {
		emailTemplate, err = models.GetTemplateByID(es.db, *customTemplateID)
		if err != nil {
			return fmt.Errorf("failed to get custom template (ID: %d): %v", *customTemplateID, err)
		}
		if emailTemplate.TemplateType != templateType {
			return fmt.Errorf("custom template type mismatch: expected %s, got %s", templateType, emailTemplate.TemplateType)
		}
	} else {
		emailTemplate, err = models.GetDefaultTemplate(es.db, templateType)
		if err != nil {
			return fmt.Errorf("failed to get default template for type '%s': %v", templateType, err)
		}
	}

	subject, err := es.processTemplate(emailTemplate.Subject, emailData)
	if err != nil {
		return fmt.Errorf("failed to process subject template: %v", err)
	}

	body, err := es.processTemplate(emailTemplate.Body, emailData)
	if err != nil {
		return fmt.Errorf("failed to process body template: %v", err)
	}

	plainTextBody := convertHTMLToText(body)

	return es.sendEmail(emailData.Email, subject, plainTextBody)
}

// SendDirectEmail sends a one-off message written by a user, bypassing
// the template system.
func (es *EmailService) SendDirectEmail(to, subject, body string) error {
	return es.sendEmail(to, subject, body)
}

// processTemplate processes a template string with variable substitution
func (es *EmailService) processTemplate(templateStr string, data models.EmailData) (string, error) {
	variables := map[string]string{
		"client_name":   data.ClientName,
		"project_name":  data.ProjectName,
		"proposal_link": data.ProposalLink,
		"contract_link": data.ContractLink,
		"grand_total":   data.GrandTotal,
		"valid_until":   data.ValidUntil,
		"due_date":      data.DueDate,
		"invoice_no":    data.InvoiceNo,
		"email":         data.Email,
		"company_name":  data.CompanyName,
		"sender_name":   data.SenderName,
		"support_email": data.SupportEmail,
	}

	result := templateStr
	for key, value := range variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result, nil
}

// sendEmail sends an email over SMTP using credentials from the
// environment.
func (es *EmailService) sendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	auth := smtp.PlainAuth("", user, password, host)

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(host+":"+port, auth, from, []string{to}, msg)
}

// SendProposalEmail sends the proposal link to the client.
func (es *EmailService) SendProposalEmail(proposal models.Proposal, grandTotal string, customTemplateID *int) error {
	emailData := models.EmailData{
		Email:        proposal.ClientEmail,
		ClientName:   proposal.ClientName,
		ProjectName:  proposal.ProjectName,
		ProposalLink: PublicLink("proposals", proposal.PublicToken),
		GrandTotal:   grandTotal,
		ValidUntil:   proposal.ValidUntil.Format("January 2, 2006"),
		CompanyName:  companyName(),
		SupportEmail: supportEmail(),
	}
	return es.SendTemplatedEmail("proposal_ready", emailData, customTemplateID)
}

// SendContractEmail sends the contract signing link to the client.
func (es *EmailService) SendContractEmail(contract models.Contract, clientEmail string, customTemplateID *int) error {
	emailData := models.EmailData{
		Email:        clientEmail,
		ClientName:   contract.ClientName,
		ProjectName:  contract.ProjectName,
		ContractLink: PublicLink("contracts", contract.PublicToken),
		GrandTotal:   fmt.Sprintf("$%.2f", contract.ContractValue),
		CompanyName:  companyName(),
		SupportEmail: supportEmail(),
	}
	return es.SendTemplatedEmail("contract_ready", emailData, customTemplateID)
}

// SendInvoiceReminderEmail nudges the office about an invoice coming due.
func (es *EmailService) SendInvoiceReminderEmail(invoice models.VendorInvoice, toEmail string) error {
	emailData := models.EmailData{
		Email:       toEmail,
		ProjectName: invoice.ProjectName,
		InvoiceNo:   invoice.InvoiceNumber,
		GrandTotal:  fmt.Sprintf("$%.2f", invoice.Amount),
		DueDate:     invoice.DueDate.Format("January 2, 2006"),
		CompanyName: companyName(),
	}
	return es.SendTemplatedEmail("invoice_reminder", emailData, nil)
}

// PublicLink builds the client-facing URL for a tokened resource.
func PublicLink(kind, token string) string {
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "https://app.playhardscapes.com"
	}
	return fmt.Sprintf("%s/%s/view/%s", strings.TrimRight(base, "/"), kind, token)
}

func companyName() string {
	if name := os.Getenv("COMPANY_NAME"); name != "" {
		return name
	}
	return "Play Hardscapes"
}

func supportEmail() string {
	if email := os.Getenv("SUPPORT_EMAIL"); email != "" {
		return email
	}
	return "office@playhardscapes.com"
}

// ValidateTemplate validates a template string for syntax errors
func (es *EmailService) ValidateTemplate(templateStr string) error {
	openBraces := strings.Count(templateStr, "{{")
	closeBraces := strings.Count(templateStr, "}}")

	if openBraces != closeBraces {
		return fmt.Errorf("unmatched braces in template")
	}

	re := regexp.MustCompile(`\{\{([^}]+)\}\}`)
	matches := re.FindAllStringSubmatch(templateStr, -1)

	validVariables := map[string]bool{
		"client_name":   true,
		"project_name":  true,
		"proposal_link": true,
		"contract_link": true,
		"grand_total":   true,
		"valid_until":   true,
		"due_date":      true,
		"invoice_no":    true,
		"email":         true,
		"company_name":  true,
		"sender_name":   true,
		"support_email": true,
	}

	for _, match := range matches {
		if len(match) > 1 {
			variable := strings.TrimSpace(match[1])
			if !validVariables[variable] {
				return fmt.Errorf("invalid variable: %s", variable)
			}
		}
	}

	return nil
}

// GetAvailableVariables returns a list of available template variables
func (es *EmailService) GetAvailableVariables() []models.EmailTemplateVariable {
	return []models.EmailTemplateVariable{
		{Key: "client_name", Description: "Client full name"},
		{Key: "project_name", Description: "Project name"},
		{Key: "proposal_link", Description: "Public proposal link"},
		{Key: "contract_link", Description: "Public contract signing link"},
		{Key: "grand_total", Description: "Formatted estimate or contract total"},
		{Key: "valid_until", Description: "Proposal expiry date"},
		{Key: "due_date", Description: "Invoice due date"},
		{Key: "invoice_no", Description: "Vendor invoice number"},
		{Key: "email", Description: "Recipient email"},
		{Key: "company_name", Description: "Company name"},
		{Key: "sender_name", Description: "Sender full name"},
		{Key: "support_email", Description: "Support email"},
	}
}
