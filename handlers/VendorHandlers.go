package handlers

import (
	"backend/models"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateVendorHandler godoc
// @Summary      Create a vendor
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Param        vendor  body      models.Vendor  true  "Vendor"
// @Success      201     {object}  models.Vendor
// @Failure      400     {object}  models.ErrorResponse
// @Router       /api/vendors [post]
func CreateVendorHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var vendor models.Vendor
		if err := c.ShouldBindJSON(&vendor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if vendor.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Vendor name is required"})
			return
		}

		err = db.QueryRow(`
			INSERT INTO vendors (name, contact_name, email, phone_no, address, city, state, zip_code,
			                     account_number, payment_terms, notes, archived, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, NOW(), NOW())
			RETURNING id, created_at, updated_at`,
			vendor.Name, vendor.ContactName, vendor.Email, vendor.PhoneNo, vendor.Address,
			vendor.City, vendor.State, vendor.ZipCode, vendor.AccountNumber, vendor.PaymentTerms,
			vendor.Notes,
		).Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vendor", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Vendors",
			EventName:    "Post",
			Description:  fmt.Sprintf("Created vendor %q", vendor.Name),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, vendor)
	}
}

// GetVendorsHandler godoc
// @Summary      List vendors with their open balances
// @Tags         vendors
// @Produce      json
// @Param        search    query  string  false  "Search name or contact"
// @Param        archived  query  bool    false  "Include archived vendors"
// @Success      200  {array}   models.Vendor
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/vendors [get]
func GetVendorsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		where := " WHERE 1=1"
		args := []interface{}{}
		argPos := 1

		if c.DefaultQuery("archived", "false") != "true" {
			where += " AND v.archived = false"
		}
		if search := c.Query("search"); search != "" {
			where += fmt.Sprintf(" AND (v.name ILIKE $%d OR v.contact_name ILIKE $%d)", argPos, argPos)
			args = append(args, "%"+search+"%")
			argPos++
		}

		query := `
			SELECT v.id, v.name, COALESCE(v.contact_name, ''), COALESCE(v.email, ''), COALESCE(v.phone_no, ''),
			       COALESCE(v.address, ''), COALESCE(v.city, ''), COALESCE(v.state, ''), COALESCE(v.zip_code, ''),
			       COALESCE(v.account_number, ''), COALESCE(v.payment_terms, ''), COALESCE(v.notes, ''),
			       v.archived, v.created_at, v.updated_at,
			       (SELECT COUNT(*) FROM vendor_invoices i WHERE i.vendor_id = v.id AND i.status = 'open'),
			       COALESCE((SELECT SUM(i.amount) FROM vendor_invoices i WHERE i.vendor_id = v.id AND i.status = 'open'), 0)
			FROM vendors v` + where + " ORDER BY v.name"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query vendors", "details": err.Error()})
			return
		}
		defer rows.Close()

		var vendors []models.Vendor
		for rows.Next() {
			var v models.Vendor
			if err := rows.Scan(
				&v.ID, &v.Name, &v.ContactName, &v.Email, &v.PhoneNo, &v.Address, &v.City, &v.State,
				&v.ZipCode, &v.AccountNumber, &v.PaymentTerms, &v.Notes, &v.Archived,
				&v.CreatedAt, &v.UpdatedAt, &v.OpenInvoiceCount, &v.OpenBalance,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan vendor", "details": err.Error()})
				return
			}
			vendors = append(vendors, v)
		}

		c.JSON(http.StatusOK, vendors)
	}
}

// GetVendorHandler godoc
// @Summary      Get one vendor
// @Tags         vendors
// @Produce      json
// @Param        id  path  int  true  "Vendor ID"
// @Success      200  {object}  models.Vendor
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/vendors/{id} [get]
func GetVendorHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID"})
			return
		}

		var v models.Vendor
		err = db.QueryRow(`
			SELECT v.id, v.name, COALESCE(v.contact_name, ''), COALESCE(v.email, ''), COALESCE(v.phone_no, ''),
			       COALESCE(v.address, ''), COALESCE(v.city, ''), COALESCE(v.state, ''), COALESCE(v.zip_code, ''),
			       COALESCE(v.account_number, ''), COALESCE(v.payment_terms, ''), COALESCE(v.notes, ''),
			       v.archived, v.created_at, v.updated_at,
			       (SELECT COUNT(*) FROM vendor_invoices i WHERE i.vendor_id = v.id AND i.status = 'open'),
			       COALESCE((SELECT SUM(i.amount) FROM vendor_invoices i WHERE i.vendor_id = v.id AND i.status = 'open'), 0)
			FROM vendors v WHERE v.id = $1`, id).Scan(
			&v.ID, &v.Name, &v.ContactName, &v.Email, &v.PhoneNo, &v.Address, &v.City, &v.State,
			&v.ZipCode, &v.AccountNumber, &v.PaymentTerms, &v.Notes, &v.Archived,
			&v.CreatedAt, &v.UpdatedAt, &v.OpenInvoiceCount, &v.OpenBalance,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query vendor", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, v)
	}
}

// UpdateVendorHandler godoc
// @Summary      Update a vendor
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Param        id      path      int            true  "Vendor ID"
// @Param        vendor  body      models.Vendor  true  "Vendor"
// @Success      200     {object}  models.Vendor
// @Failure      404     {object}  models.ErrorResponse
// @Router       /api/vendors/{id} [put]
func UpdateVendorHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID"})
			return
		}

		var vendor models.Vendor
		if err := c.ShouldBindJSON(&vendor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if vendor.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Vendor name is required"})
			return
		}

		result, err := db.Exec(`
			UPDATE vendors
			SET name = $1, contact_name = $2, email = $3, phone_no = $4, address = $5, city = $6,
			    state = $7, zip_code = $8, account_number = $9, payment_terms = $10, notes = $11,
			    updated_at = NOW()
			WHERE id = $12`,
			vendor.Name, vendor.ContactName, vendor.Email, vendor.PhoneNo, vendor.Address, vendor.City,
			vendor.State, vendor.ZipCode, vendor.AccountNumber, vendor.PaymentTerms, vendor.Notes, id,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vendor", "details": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
			return
		}
		vendor.ID = id

		log := models.ActivityLog{
			EventContext: "Vendors",
			EventName:    "Put",
			Description:  fmt.Sprintf("Updated vendor %q", vendor.Name),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, vendor)
	}
}

// ArchiveVendorHandler godoc
// @Summary      Archive or restore a vendor
// @Tags         vendors
// @Produce      json
// @Param        id  path  int  true  "Vendor ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/vendors/{id}/archive [patch]
func ArchiveVendorHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID"})
			return
		}

		// Vendors with open invoices stay visible until the books clear.
		var openCount int
		if err := db.QueryRow(
			`SELECT COUNT(*) FROM vendor_invoices WHERE vendor_id = $1 AND status = 'open'`, id,
		).Scan(&openCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check invoices", "details": err.Error()})
			return
		}

		var archived bool
		err = db.QueryRow(`SELECT archived FROM vendors WHERE id = $1`, id).Scan(&archived)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query vendor", "details": err.Error()})
			return
		}
		if !archived && openCount > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Vendor has %d open invoices", openCount)})
			return
		}

		if err := db.QueryRow(`
			UPDATE vendors SET archived = NOT archived, updated_at = NOW()
			WHERE id = $1 RETURNING archived`, id).Scan(&archived); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive vendor", "details": err.Error()})
			return
		}

		action := "Archived"
		if !archived {
			action = "Restored"
		}
		log := models.ActivityLog{
			EventContext: "Vendors",
			EventName:    "Patch",
			Description:  fmt.Sprintf("%s vendor %d", action, id),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "archived": archived})
	}
}
