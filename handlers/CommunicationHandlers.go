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

// SendCommunicationRequest is the payload for an outbound message.
type SendCommunicationRequest struct {
	ClientID  int    `json:"client_id" example:"1"`
	ProjectID int    `json:"project_id,omitempty" example:"1"`
	Channel   string `json:"channel" example:"email"`
	Subject   string `json:"subject,omitempty" example:"Schedule update"`
	Body      string `json:"body" example:"Crew arrives Monday at 8am."`
}

// SendCommunicationHandler godoc
// @Summary      Send an email or SMS to a client
// @Description  Sends through the configured provider and records the
// @Description  message on the client's timeline. A provider failure is
// @Description  still recorded, with status failed.
// @Tags         communications
// @Accept       json
// @Produce      json
// @Param        message  body      SendCommunicationRequest  true  "Message"
// @Success      201      {object}  models.Communication
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Router       /api/communications/send [post]
func SendCommunicationHandler(db *sql.DB, emailService *services.EmailService, sms services.SMSSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var req SendCommunicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if req.Channel != "email" && req.Channel != "sms" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Channel must be email or sms"})
			return
		}
		if req.Body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message body is required"})
			return
		}
		if req.Channel == "email" && req.Subject == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Subject is required for email"})
			return
		}

		var clientName, clientEmail, clientPhone string
		err = db.QueryRow(`
			SELECT name, COALESCE(email, ''), COALESCE(phone_no, '')
			FROM clients WHERE id = $1`, req.ClientID,
		).Scan(&clientName, &clientEmail, &clientPhone)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query client", "details": err.Error()})
			return
		}

		var toAddress string
		var sendErr error
		switch req.Channel {
		case "email":
			if clientEmail == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Client has no email address on file"})
				return
			}
			toAddress = clientEmail
			sendErr = emailService.SendDirectEmail(clientEmail, req.Subject, req.Body)
		case "sms":
			if clientPhone == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Client has no phone number on file"})
				return
			}
			if sms == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "SMS is not configured"})
				return
			}
			toAddress = clientPhone
			sendErr = sms.SendSMS(c.Request.Context(), clientPhone, req.Body)
		}

		comm := models.Communication{
			ClientID:   req.ClientID,
			ProjectID:  req.ProjectID,
			Channel:    req.Channel,
			Direction:  "outbound",
			Subject:    req.Subject,
			Body:       req.Body,
			ToAddress:  toAddress,
			Status:     "sent",
			CreatedBy:  userName,
			ClientName: clientName,
		}
		if sendErr != nil {
			comm.Status = "failed"
			comm.FailReason = sendErr.Error()
		} else {
			comm.SentAt = time.Now()
		}

		var projectID interface{}
		if req.ProjectID != 0 {
			projectID = req.ProjectID
		}
		var sentAt interface{}
		if comm.Status == "sent" {
			sentAt = comm.SentAt
		}
		err = db.QueryRow(`
			INSERT INTO communications (client_id, project_id, channel, direction, subject, body,
			                            to_address, status, fail_reason, sent_at, created_at, created_by)
			VALUES ($1, $2, $3, 'outbound', $4, $5, $6, $7, $8, $9, NOW(), $10)
			RETURNING id, created_at`,
			req.ClientID, projectID, req.Channel, req.Subject, req.Body,
			toAddress, comm.Status, comm.FailReason, sentAt, userName,
		).Scan(&comm.ID, &comm.CreatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record communication", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Communication",
			EventName:    "Post",
			Description:  fmt.Sprintf("Sent %s to %s (%s)", req.Channel, clientName, comm.Status),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    req.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		if comm.Status == "failed" {
			// The record is created so the failed attempt is visible,
			// but the caller still needs to know the send did not land.
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message", "details": comm.FailReason, "communication": comm})
			return
		}

		c.JSON(http.StatusCreated, comm)
	}
}

// LogCommunicationHandler godoc
// @Summary      Record a message that happened outside the system
// @Description  Used for inbound replies and calls placed from a phone,
// @Description  so the client timeline stays complete. Nothing is sent.
// @Tags         communications
// @Accept       json
// @Produce      json
// @Param        communication  body      models.Communication  true  "Communication"
// @Success      201            {object}  models.Communication
// @Failure      400            {object}  models.ErrorResponse
// @Router       /api/communications [post]
func LogCommunicationHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var comm models.Communication
		if err := c.ShouldBindJSON(&comm); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if comm.Channel != "email" && comm.Channel != "sms" && comm.Channel != "phone" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Channel must be email, sms or phone"})
			return
		}
		if comm.Direction != "inbound" && comm.Direction != "outbound" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Direction must be inbound or outbound"})
			return
		}

		var exists bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1)`, comm.ClientID).Scan(&exists); err != nil || !exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Client does not exist"})
			return
		}

		var projectID interface{}
		if comm.ProjectID != 0 {
			projectID = comm.ProjectID
		}
		comm.Status = "sent"
		comm.CreatedBy = userName
		err = db.QueryRow(`
			INSERT INTO communications (client_id, project_id, channel, direction, subject, body,
			                            to_address, status, fail_reason, sent_at, created_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'sent', '', NOW(), NOW(), $8)
			RETURNING id, sent_at, created_at`,
			comm.ClientID, projectID, comm.Channel, comm.Direction, comm.Subject, comm.Body,
			comm.ToAddress, userName,
		).Scan(&comm.ID, &comm.SentAt, &comm.CreatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record communication", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Communication",
			EventName:    "Post",
			Description:  fmt.Sprintf("Logged %s %s for client %d", comm.Direction, comm.Channel, comm.ClientID),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    comm.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, comm)
	}
}

// GetCommunicationsHandler godoc
// @Summary      List communications, newest first
// @Tags         communications
// @Produce      json
// @Param        client_id   query  int     false  "Filter by client"
// @Param        project_id  query  int     false  "Filter by project"
// @Param        channel     query  string  false  "Filter by channel"
// @Param        page        query  int     false  "Page number"
// @Param        limit       query  int     false  "Page size"
// @Success      200  {object}  object
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/communications [get]
func GetCommunicationsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 25
		}

		where := " WHERE 1=1"
		args := []interface{}{}
		argPos := 1

		if clientID := c.Query("client_id"); clientID != "" {
			where += fmt.Sprintf(" AND cm.client_id = $%d", argPos)
			args = append(args, clientID)
			argPos++
		}
		if projectID := c.Query("project_id"); projectID != "" {
			where += fmt.Sprintf(" AND cm.project_id = $%d", argPos)
			args = append(args, projectID)
			argPos++
		}
		if channel := c.Query("channel"); channel != "" {
			where += fmt.Sprintf(" AND cm.channel = $%d", argPos)
			args = append(args, channel)
			argPos++
		}

		var total int
		if err := db.QueryRow("SELECT COUNT(*) FROM communications cm"+where, args...).Scan(&total); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count communications", "details": err.Error()})
			return
		}

		query := `
			SELECT cm.id, cm.client_id, COALESCE(cm.project_id, 0), cm.channel, cm.direction,
			       COALESCE(cm.subject, ''), cm.body, COALESCE(cm.to_address, ''), cm.status,
			       COALESCE(cm.fail_reason, ''), COALESCE(cm.sent_at, cm.created_at), cm.created_at,
			       COALESCE(cm.created_by, ''), cl.name
			FROM communications cm
			JOIN clients cl ON cl.id = cm.client_id` + where +
			fmt.Sprintf(" ORDER BY cm.created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, limit, (page-1)*limit)

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query communications", "details": err.Error()})
			return
		}
		defer rows.Close()

		var comms []models.Communication
		for rows.Next() {
			var comm models.Communication
			if err := rows.Scan(
				&comm.ID, &comm.ClientID, &comm.ProjectID, &comm.Channel, &comm.Direction,
				&comm.Subject, &comm.Body, &comm.ToAddress, &comm.Status,
				&comm.FailReason, &comm.SentAt, &comm.CreatedAt,
				&comm.CreatedBy, &comm.ClientName,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan communication", "details": err.Error()})
				return
			}
			comms = append(comms, comm)
		}

		c.JSON(http.StatusOK, gin.H{
			"communications": comms,
			"current_page":   page,
			"page_size":      limit,
			"total_records":  total,
		})
	}
}
