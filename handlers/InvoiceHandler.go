package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateInvoiceHandler godoc
// @Summary      Record a vendor invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.VendorInvoice  true  "Invoice"
// @Success      201      {object}  models.VendorInvoice
// @Failure      400      {object}  models.ErrorResponse
// @Router       /api/invoices [post]
func CreateInvoiceHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var invoice models.VendorInvoice
		if err := c.ShouldBindJSON(&invoice); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if invoice.VendorID == 0 || invoice.InvoiceNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_id and invoice_number are required"})
			return
		}
		if invoice.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
			return
		}

		var projectID interface{}
		if invoice.ProjectID != 0 {
			projectID = invoice.ProjectID
		}

		err = db.QueryRow(`
			INSERT INTO vendor_invoices (vendor_id, project_id, invoice_number, amount, issue_date, due_date,
			                             status, document_path, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'open', $7, $8, NOW(), NOW())
			RETURNING id, created_at, updated_at`,
			invoice.VendorID, projectID, invoice.InvoiceNumber, invoice.Amount,
			invoice.IssueDate, invoice.DueDate, invoice.DocumentPath, invoice.Notes,
		).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice", "details": err.Error()})
			return
		}
		invoice.Status = "open"

		logEntry := models.ActivityLog{
			EventContext: "Invoices",
			EventName:    "Post",
			Description:  fmt.Sprintf("Recorded invoice %s for %.2f", invoice.InvoiceNumber, invoice.Amount),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    invoice.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, invoice)
	}
}

const invoiceSelect = `
	SELECT i.id, i.vendor_id, COALESCE(i.project_id, 0), i.invoice_number, i.amount, i.issue_date,
	       i.due_date, i.status, i.paid_at, COALESCE(i.document_path, ''), COALESCE(i.notes, ''),
	       i.created_at, i.updated_at, v.name, COALESCE(p.name, '')
	FROM vendor_invoices i
	JOIN vendors v ON v.id = i.vendor_id
	LEFT JOIN projects p ON p.id = i.project_id`

func scanInvoice(row interface {
	Scan(dest ...interface{}) error
}) (models.VendorInvoice, error) {
	var inv models.VendorInvoice
	var paidAt sql.NullTime
	err := row.Scan(
		&inv.ID, &inv.VendorID, &inv.ProjectID, &inv.InvoiceNumber, &inv.Amount, &inv.IssueDate,
		&inv.DueDate, &inv.Status, &paidAt, &inv.DocumentPath, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.VendorName, &inv.ProjectName,
	)
	if paidAt.Valid {
		inv.PaidAt = paidAt.Time
	}
	return inv, err
}

// GetInvoicesHandler godoc
// @Summary      List vendor invoices
// @Tags         invoices
// @Produce      json
// @Param        vendor_id   query  int     false  "Filter by vendor"
// @Param        project_id  query  int     false  "Filter by project"
// @Param        status      query  string  false  "Filter by status"
// @Param        overdue     query  bool    false  "Only open invoices past due"
// @Success      200  {array}   models.VendorInvoice
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/invoices [get]
func GetInvoicesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		where := " WHERE 1=1"
		args := []interface{}{}
		argPos := 1

		if vendorID := c.Query("vendor_id"); vendorID != "" {
			id, convErr := strconv.Atoi(vendorID)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor_id"})
				return
			}
			where += fmt.Sprintf(" AND i.vendor_id = $%d", argPos)
			args = append(args, id)
			argPos++
		}
		if projectID := c.Query("project_id"); projectID != "" {
			id, convErr := strconv.Atoi(projectID)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
				return
			}
			where += fmt.Sprintf(" AND i.project_id = $%d", argPos)
			args = append(args, id)
			argPos++
		}
		if status := c.Query("status"); status != "" {
			if !models.ValidInvoiceStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": status})
				return
			}
			where += fmt.Sprintf(" AND i.status = $%d", argPos)
			args = append(args, status)
			argPos++
		}
		if c.Query("overdue") == "true" {
			where += " AND i.status = 'open' AND i.due_date < CURRENT_DATE"
		}

		rows, err := db.Query(invoiceSelect+where+" ORDER BY i.due_date", args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query invoices", "details": err.Error()})
			return
		}
		defer rows.Close()

		var invoices []models.VendorInvoice
		for rows.Next() {
			inv, scanErr := scanInvoice(rows)
			if scanErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan invoice", "details": scanErr.Error()})
				return
			}
			invoices = append(invoices, inv)
		}

		c.JSON(http.StatusOK, invoices)
	}
}

// GetInvoiceHandler godoc
// @Summary      Get one invoice
// @Tags         invoices
// @Produce      json
// @Param        id  path  int  true  "Invoice ID"
// @Success      200  {object}  models.VendorInvoice
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/invoices/{id} [get]
func GetInvoiceHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
			return
		}

		invoice, err := scanInvoice(db.QueryRow(invoiceSelect+" WHERE i.id = $1", id))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query invoice", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, invoice)
	}
}

// UploadInvoiceHandler godoc
// @Summary      Upload an invoice document and extract its fields
// @Description  Stores the file under the uploads directory and runs it
// @Description  through document extraction. The prefill is returned for
// @Description  review, nothing is saved to the books yet.
// @Tags         invoices
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Invoice document"
// @Success      200   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/invoices/upload [post]
func UploadInvoiceHandler(db *sql.DB, ocr services.OCRClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file not found"})
			return
		}

		dir := filepath.Join(uploadDir, "invoices")
		if err := os.MkdirAll(dir, 0755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory", "details": err.Error()})
			return
		}
		uniqueName := fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(file.Filename))
		dstPath := filepath.Join(dir, uniqueName)
		if err := c.SaveUploadedFile(file, dstPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file", "details": err.Error()})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reopen file", "details": err.Error()})
			return
		}
		defer src.Close()

		prefill, err := ocr.ExtractInvoice(c.Request.Context(), file.Filename, src)
		if err != nil {
			// The document is saved either way; the office can key the
			// fields by hand.
			c.JSON(http.StatusOK, gin.H{
				"document_path":    dstPath,
				"prefill":          nil,
				"extraction_error": err.Error(),
			})
			return
		}

		// Try to match the extracted vendor name to a known vendor.
		var vendorID int
		if prefill.VendorName != "" {
			_ = db.QueryRow(
				`SELECT id FROM vendors WHERE name ILIKE $1 AND archived = false LIMIT 1`,
				prefill.VendorName,
			).Scan(&vendorID)
		}

		c.JSON(http.StatusOK, gin.H{
			"document_path": dstPath,
			"prefill":       prefill,
			"vendor_id":     vendorID,
		})
	}
}

// MarkInvoicePaidHandler godoc
// @Summary      Mark an invoice paid
// @Tags         invoices
// @Produce      json
// @Param        id  path  int  true  "Invoice ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/invoices/{id}/pay [patch]
func MarkInvoicePaidHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
			return
		}

		var status, invoiceNumber string
		if err := db.QueryRow(
			`SELECT status, invoice_number FROM vendor_invoices WHERE id = $1`, id,
		).Scan(&status, &invoiceNumber); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query invoice", "details": err.Error()})
			return
		}
		if status != "open" && status != "disputed" {
			c.JSON(http.StatusConflict, gin.H{"error": "Invoice is not payable", "details": status})
			return
		}

		if _, err := db.Exec(
			`UPDATE vendor_invoices SET status = 'paid', paid_at = NOW(), updated_at = NOW() WHERE id = $1`, id,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark invoice paid", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Invoices",
			EventName:    "Patch",
			Description:  fmt.Sprintf("Marked invoice %s paid", invoiceNumber),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "status": "paid"})
	}
}

type InvoiceStatusRequest struct {
	Status string `json:"status" example:"disputed"`
}

// UpdateInvoiceStatusHandler godoc
// @Summary      Dispute, void or reopen an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Invoice ID"
// @Param        request  body      InvoiceStatusRequest  true  "New status"
// @Success      200      {object}  object
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse
// @Router       /api/invoices/{id}/status [patch]
func UpdateInvoiceStatusHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
			return
		}

		var req InvoiceStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if req.Status != "disputed" && req.Status != "void" && req.Status != "open" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be open, disputed or void"})
			return
		}

		var current string
		if err := db.QueryRow(`SELECT status FROM vendor_invoices WHERE id = $1`, id).Scan(&current); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query invoice", "details": err.Error()})
			return
		}
		if current == "paid" {
			c.JSON(http.StatusConflict, gin.H{"error": "Paid invoices cannot change status"})
			return
		}

		if _, err := db.Exec(
			`UPDATE vendor_invoices SET status = $1, updated_at = NOW() WHERE id = $2`, req.Status, id,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Invoices",
			EventName:    "Patch",
			Description:  fmt.Sprintf("Invoice %d moved from %s to %s", id, current, req.Status),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
	}
}

// SendInvoiceReminders emails the office about open invoices due within
// the window. Called from the scheduler, not from a route.
func SendInvoiceReminders(db *sql.DB, emailService *services.EmailService, daysAhead int) (int, error) {
	toEmail := os.Getenv("BILLING_EMAIL")
	if toEmail == "" {
		toEmail = os.Getenv("SUPPORT_EMAIL")
	}
	if toEmail == "" {
		return 0, fmt.Errorf("no BILLING_EMAIL or SUPPORT_EMAIL configured")
	}

	rows, err := db.Query(invoiceSelect+`
		WHERE i.status = 'open' AND i.due_date <= CURRENT_DATE + $1 * INTERVAL '1 day'
		ORDER BY i.due_date`, daysAhead)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	sent := 0
	for rows.Next() {
		inv, scanErr := scanInvoice(rows)
		if scanErr != nil {
			return sent, scanErr
		}
		if err := emailService.SendInvoiceReminderEmail(inv, toEmail); err != nil {
			log.Printf("invoice reminder for %s failed: %v", inv.InvoiceNumber, err)
			continue
		}
		sent++
	}
	return sent, rows.Err()
}
