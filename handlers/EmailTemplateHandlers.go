package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var validTemplateTypes = []string{"proposal_ready", "contract_ready", "invoice_reminder"}

func validTemplateType(t string) bool {
	for _, v := range validTemplateTypes {
		if v == t {
			return true
		}
	}
	return false
}

// CreateEmailTemplateHandler godoc
// @Summary      Create an email template
// @Description  Marking a template default clears the default flag on
// @Description  every other template of the same type.
// @Tags         email-templates
// @Accept       json
// @Produce      json
// @Param        template  body      models.EmailTemplate  true  "Template"
// @Success      201       {object}  models.EmailTemplate
// @Failure      400       {object}  models.ErrorResponse
// @Router       /api/email-templates [post]
func CreateEmailTemplateHandler(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var template models.EmailTemplate
		if err := c.ShouldBindJSON(&template); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if template.Name == "" || template.Subject == "" || template.Body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, subject and body are required"})
			return
		}
		if !validTemplateType(template.TemplateType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template type", "valid_types": validTemplateTypes})
			return
		}
		if err := emailService.ValidateTemplate(template.Subject); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject template", "details": err.Error()})
			return
		}
		if err := emailService.ValidateTemplate(template.Body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body template", "details": err.Error()})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		if template.IsDefault {
			if _, err := tx.Exec(`UPDATE email_templates SET is_default = false WHERE template_type = $1`, template.TemplateType); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear existing default", "details": err.Error()})
				return
			}
		}

		err = tx.QueryRow(`
			INSERT INTO email_templates (name, template_type, subject, body, is_default, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING id, created_at, updated_at`,
			template.Name, template.TemplateType, template.Subject, template.Body, template.IsDefault,
		).Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template", "details": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Email Template",
			EventName:    "Post",
			Description:  fmt.Sprintf("Created email template %s (%s)", template.Name, template.TemplateType),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, template)
	}
}

// GetEmailTemplatesHandler godoc
// @Summary      List email templates
// @Tags         email-templates
// @Produce      json
// @Param        template_type  query  string  false  "Filter by type"
// @Success      200  {array}   models.EmailTemplate
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/email-templates [get]
func GetEmailTemplatesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		query := `
			SELECT id, name, template_type, subject, body, is_default, created_at, updated_at
			FROM email_templates`
		args := []interface{}{}
		if templateType := c.Query("template_type"); templateType != "" {
			query += " WHERE template_type = $1"
			args = append(args, templateType)
		}
		query += " ORDER BY template_type, is_default DESC, name"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query templates", "details": err.Error()})
			return
		}
		defer rows.Close()

		var templates []models.EmailTemplate
		for rows.Next() {
			var t models.EmailTemplate
			if err := rows.Scan(&t.ID, &t.Name, &t.TemplateType, &t.Subject, &t.Body, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan template", "details": err.Error()})
				return
			}
			templates = append(templates, t)
		}

		c.JSON(http.StatusOK, templates)
	}
}

// GetEmailTemplateHandler godoc
// @Summary      Get one email template
// @Tags         email-templates
// @Produce      json
// @Param        id  path  int  true  "Template ID"
// @Success      200  {object}  models.EmailTemplate
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/email-templates/{id} [get]
func GetEmailTemplateHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
			return
		}

		template, err := models.GetTemplateByID(db, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, template)
	}
}

// UpdateEmailTemplateHandler godoc
// @Summary      Update an email template
// @Tags         email-templates
// @Accept       json
// @Produce      json
// @Param        id        path      int                   true  "Template ID"
// @Param        template  body      models.EmailTemplate  true  "Template"
// @Success      200       {object}  models.EmailTemplate
// @Failure      404       {object}  models.ErrorResponse
// @Router       /api/email-templates/{id} [put]
func UpdateEmailTemplateHandler(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
			return
		}

		var template models.EmailTemplate
		if err := c.ShouldBindJSON(&template); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if template.Name == "" || template.Subject == "" || template.Body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, subject and body are required"})
			return
		}
		if !validTemplateType(template.TemplateType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template type", "valid_types": validTemplateTypes})
			return
		}
		if err := emailService.ValidateTemplate(template.Subject); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject template", "details": err.Error()})
			return
		}
		if err := emailService.ValidateTemplate(template.Body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body template", "details": err.Error()})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		if template.IsDefault {
			if _, err := tx.Exec(`UPDATE email_templates SET is_default = false WHERE template_type = $1 AND id <> $2`, template.TemplateType, id); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear existing default", "details": err.Error()})
				return
			}
		}

		template.ID = id
		err = tx.QueryRow(`
			UPDATE email_templates
			SET name = $1, template_type = $2, subject = $3, body = $4, is_default = $5, updated_at = NOW()
			WHERE id = $6
			RETURNING created_at, updated_at`,
			template.Name, template.TemplateType, template.Subject, template.Body, template.IsDefault, id,
		).Scan(&template.CreatedAt, &template.UpdatedAt)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template", "details": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Email Template",
			EventName:    "Put",
			Description:  fmt.Sprintf("Updated email template %s", template.Name),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, template)
	}
}

// DeleteEmailTemplateHandler godoc
// @Summary      Delete an email template
// @Description  The default template of a type cannot be deleted while
// @Description  other templates of that type still point at it.
// @Tags         email-templates
// @Produce      json
// @Param        id  path  int  true  "Template ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/email-templates/{id} [delete]
func DeleteEmailTemplateHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
			return
		}

		template, err := models.GetTemplateByID(db, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		if template.IsDefault {
			var others int
			if err := db.QueryRow(`
				SELECT COUNT(*) FROM email_templates
				WHERE template_type = $1 AND id <> $2`, template.TemplateType, id).Scan(&others); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check siblings", "details": err.Error()})
				return
			}
			if others > 0 {
				c.JSON(http.StatusConflict, gin.H{"error": "Pick a new default for this type before deleting"})
				return
			}
		}

		if _, err := db.Exec(`DELETE FROM email_templates WHERE id = $1`, id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Email Template",
			EventName:    "Post",
			Description:  fmt.Sprintf("Deleted email template %s", template.Name),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
	}
}

// PreviewEmailTemplateHandler godoc
// @Summary      Preview a template with sample data
// @Description  Renders the body with placeholder sample values and
// @Description  returns the plain text a mail client would show.
// @Tags         email-templates
// @Accept       json
// @Produce      json
// @Param        template  body      models.EmailTemplate  true  "Template to preview"
// @Success      200       {object}  object
// @Failure      400       {object}  models.ErrorResponse
// @Router       /api/email-templates/preview [post]
func PreviewEmailTemplateHandler(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var template models.EmailTemplate
		if err := c.ShouldBindJSON(&template); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		sample := models.EmailData{
			Email:        "board@riversidehoa.org",
			ClientName:   "Riverside HOA",
			ProjectName:  "Riverside tennis court resurfacing",
			ProposalLink: services.PublicLink("proposals", "sample-token"),
			ContractLink: services.PublicLink("contracts", "sample-token"),
			GrandTotal:   "$24,180.00",
			ValidUntil:   time.Now().AddDate(0, 1, 0).Format("January 2, 2006"),
			DueDate:      time.Now().AddDate(0, 0, 14).Format("January 2, 2006"),
			InvoiceNo:    "INV-1042",
		}

		subject, err := emailService.PreviewEmailAsText(template.Subject, sample)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to render subject", "details": err.Error()})
			return
		}
		body, err := emailService.PreviewEmailAsText(template.Body, sample)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to render body", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"subject": subject, "body": body})
	}
}

// GetTemplateVariablesHandler godoc
// @Summary      List the placeholders templates can use
// @Tags         email-templates
// @Produce      json
// @Success      200  {array}   models.EmailTemplateVariable
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/email-templates/variables [get]
func GetTemplateVariablesHandler(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		c.JSON(http.StatusOK, emailService.GetAvailableVariables())
	}
}
