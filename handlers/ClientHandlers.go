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

// CreateClientHandler godoc
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        client  body      models.Client  true  "Client"
// @Success      201     {object}  models.Client
// @Failure      400     {object}  models.ErrorResponse
// @Failure      401     {object}  models.ErrorResponse
// @Router       /api/clients [post]
func CreateClientHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var client models.Client
		if err := c.ShouldBindJSON(&client); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if client.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Client name is required"})
			return
		}

		query := `
			INSERT INTO clients (name, organization, email, phone_no, address, city, state, zip_code,
			                     client_type, source, notes, archived, created_at, updated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, NOW(), NOW(), $12)
			RETURNING id, created_at, updated_at`
		err = db.QueryRow(query,
			client.Name, client.Organization, client.Email, client.PhoneNo, client.Address,
			client.City, client.State, client.ZipCode, client.ClientType, client.Source,
			client.Notes, userName,
		).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client", "details": err.Error()})
			return
		}
		client.CreatedBy = userName

		log := models.ActivityLog{
			EventContext: "Clients",
			EventName:    "Post",
			Description:  fmt.Sprintf("Created client %q", client.Name),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, client)
	}
}

// GetClientsHandler godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        search    query  string  false  "Search name, organization or email"
// @Param        archived  query  bool    false  "Include archived clients"
// @Param        page      query  int     false  "Page"
// @Param        limit     query  int     false  "Limit"
// @Success      200  {object}  object
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/clients [get]
func GetClientsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "25"))
		if err != nil || limit < 1 {
			limit = 25
		}
		offset := (page - 1) * limit

		where := " WHERE 1=1"
		args := []interface{}{}
		argPos := 1

		if c.DefaultQuery("archived", "false") != "true" {
			where += " AND c.archived = false"
		}
		if search := c.Query("search"); search != "" {
			where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.organization ILIKE $%d OR c.email ILIKE $%d)", argPos, argPos, argPos)
			args = append(args, "%"+search+"%")
			argPos++
		}

		var totalRecords int
		if err := db.QueryRow("SELECT COUNT(*) FROM clients c"+where, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count clients", "details": err.Error()})
			return
		}

		query := `
			SELECT c.id, c.name, c.organization, c.email, c.phone_no, c.address, c.city, c.state,
			       c.zip_code, c.client_type, c.source, COALESCE(c.notes, ''), c.archived,
			       c.created_at, c.updated_at, COALESCE(c.created_by, ''),
			       (SELECT COUNT(*) FROM projects p WHERE p.client_id = c.id) AS project_count
			FROM clients c` + where + fmt.Sprintf(`
			ORDER BY c.name
			LIMIT $%d OFFSET $%d`, argPos, argPos+1)
		args = append(args, limit, offset)

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query clients", "details": err.Error()})
			return
		}
		defer rows.Close()

		var clients []models.Client
		for rows.Next() {
			var client models.Client
			if err := rows.Scan(
				&client.ID, &client.Name, &client.Organization, &client.Email, &client.PhoneNo,
				&client.Address, &client.City, &client.State, &client.ZipCode, &client.ClientType,
				&client.Source, &client.Notes, &client.Archived, &client.CreatedAt, &client.UpdatedAt,
				&client.CreatedBy, &client.ProjectCount,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan client", "details": err.Error()})
				return
			}
			clients = append(clients, client)
		}

		c.JSON(http.StatusOK, gin.H{
			"clients": clients,
			"pagination": gin.H{
				"current_page":  page,
				"page_size":     limit,
				"total_records": totalRecords,
			},
		})
	}
}

// GetClientHandler godoc
// @Summary      Get one client
// @Tags         clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  models.Client
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/clients/{id} [get]
func GetClientHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
			return
		}

		var client models.Client
		err = db.QueryRow(`
			SELECT id, name, organization, email, phone_no, address, city, state, zip_code,
			       client_type, source, COALESCE(notes, ''), archived, created_at, updated_at, COALESCE(created_by, '')
			FROM clients WHERE id = $1`, id).Scan(
			&client.ID, &client.Name, &client.Organization, &client.Email, &client.PhoneNo,
			&client.Address, &client.City, &client.State, &client.ZipCode, &client.ClientType,
			&client.Source, &client.Notes, &client.Archived, &client.CreatedAt, &client.UpdatedAt,
			&client.CreatedBy,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query client", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, client)
	}
}

// UpdateClientHandler godoc
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path      int            true  "Client ID"
// @Param        client  body      models.Client  true  "Client"
// @Success      200     {object}  models.Client
// @Failure      400     {object}  models.ErrorResponse
// @Failure      404     {object}  models.ErrorResponse
// @Router       /api/clients/{id} [put]
func UpdateClientHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
			return
		}

		var client models.Client
		if err := c.ShouldBindJSON(&client); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if client.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Client name is required"})
			return
		}

		result, err := db.Exec(`
			UPDATE clients
			SET name = $1, organization = $2, email = $3, phone_no = $4, address = $5,
			    city = $6, state = $7, zip_code = $8, client_type = $9, source = $10,
			    notes = $11, updated_at = NOW()
			WHERE id = $12`,
			client.Name, client.Organization, client.Email, client.PhoneNo, client.Address,
			client.City, client.State, client.ZipCode, client.ClientType, client.Source,
			client.Notes, id,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client", "details": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}
		client.ID = id

		log := models.ActivityLog{
			EventContext: "Clients",
			EventName:    "Put",
			Description:  fmt.Sprintf("Updated client %q", client.Name),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, client)
	}
}

// ArchiveClientHandler godoc
// @Summary      Archive or restore a client
// @Tags         clients
// @Produce      json
// @Param        id  path  int  true  "Client ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/clients/{id}/archive [patch]
func ArchiveClientHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
			return
		}

		var archived bool
		err = db.QueryRow(`
			UPDATE clients SET archived = NOT archived, updated_at = NOW()
			WHERE id = $1 RETURNING archived`, id).Scan(&archived)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive client", "details": err.Error()})
			return
		}

		action := "Archived"
		if !archived {
			action = "Restored"
		}
		log := models.ActivityLog{
			EventContext: "Clients",
			EventName:    "Patch",
			Description:  fmt.Sprintf("%s client %d", action, id),
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
