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
	"github.com/google/uuid"
)

type CreateProposalRequest struct {
	EstimateID int             `json:"estimate_id" example:"1"`
	Title      string          `json:"title" example:"Riverside tennis court resurfacing"`
	Tone       string          `json:"tone" example:"friendly"`
	ValidUntil models.DateOnly `json:"valid_until" example:"2024-03-01"`
}

// CreateProposalHandler godoc
// @Summary      Create a proposal from a saved estimate
// @Description  The proposal starts as a draft with an empty body; a
// @Description  background job writes the prose from the estimate breakdown
// @Description  and the response includes its job id for polling.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        request  body      CreateProposalRequest  true  "Proposal"
// @Success      201      {object}  object
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Router       /api/proposals [post]
func CreateProposalHandler(db *sql.DB, manager *DraftJobManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var req CreateProposalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}

		estimate, err := loadEstimate(db, req.EstimateID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query estimate", "details": err.Error()})
			return
		}
		if estimate.Status == "superseded" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot build a proposal on a superseded estimate"})
			return
		}

		proposal := models.Proposal{
			ProjectID:   estimate.ProjectID,
			EstimateID:  req.EstimateID,
			Title:       req.Title,
			Status:      "draft",
			PublicToken: uuid.NewString(),
			ValidUntil:  req.ValidUntil,
			CreatedBy:   userName,
		}
		err = db.QueryRow(`
			INSERT INTO proposals (project_id, estimate_id, title, body, status, public_token, valid_until,
			                       created_at, updated_at, created_by)
			VALUES ($1, $2, $3, '', 'draft', $4, $5, NOW(), NOW(), $6)
			RETURNING id, created_at, updated_at`,
			proposal.ProjectID, proposal.EstimateID, proposal.Title, proposal.PublicToken,
			proposal.ValidUntil, userName,
		).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create proposal", "details": err.Error()})
			return
		}

		job, err := manager.Enqueue(proposal.ID, req.EstimateID, req.Tone)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue drafting job", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Proposals",
			EventName:    "Post",
			Description:  fmt.Sprintf("Created proposal %q from estimate v%d", proposal.Title, estimate.Version),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    proposal.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"proposal": proposal, "draft_job": job})
	}
}

func scanProposal(row interface {
	Scan(dest ...interface{}) error
}) (models.Proposal, error) {
	var p models.Proposal
	var sentAt, viewedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.ProjectID, &p.EstimateID, &p.Title, &p.Body, &p.Status, &p.PublicToken,
		&p.ValidUntil, &sentAt, &viewedAt, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy,
		&p.ProjectName, &p.ClientName, &p.ClientEmail,
	)
	if sentAt.Valid {
		p.SentAt = sentAt.Time
	}
	if viewedAt.Valid {
		p.ViewedAt = viewedAt.Time
	}
	return p, err
}

const proposalSelect = `
	SELECT pr.id, pr.project_id, pr.estimate_id, pr.title, COALESCE(pr.body, ''), pr.status,
	       pr.public_token, pr.valid_until, pr.sent_at, pr.viewed_at, pr.created_at, pr.updated_at,
	       COALESCE(pr.created_by, ''), p.name, c.name, c.email
	FROM proposals pr
	JOIN projects p ON p.id = pr.project_id
	JOIN clients c ON c.id = p.client_id`

// GetProposalsHandler godoc
// @Summary      List proposals
// @Tags         proposals
// @Produce      json
// @Param        project_id  query  int     false  "Filter by project"
// @Param        status      query  string  false  "Filter by status"
// @Success      200  {array}   models.Proposal
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/proposals [get]
func GetProposalsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		where := " WHERE 1=1"
		args := []interface{}{}
		argPos := 1

		if projectID := c.Query("project_id"); projectID != "" {
			id, convErr := strconv.Atoi(projectID)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
				return
			}
			where += fmt.Sprintf(" AND pr.project_id = $%d", argPos)
			args = append(args, id)
			argPos++
		}
		if status := c.Query("status"); status != "" {
			if !models.ValidProposalStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": status})
				return
			}
			where += fmt.Sprintf(" AND pr.status = $%d", argPos)
			args = append(args, status)
			argPos++
		}

		rows, err := db.Query(proposalSelect+where+" ORDER BY pr.updated_at DESC", args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposals", "details": err.Error()})
			return
		}
		defer rows.Close()

		var proposals []models.Proposal
		for rows.Next() {
			p, scanErr := scanProposal(rows)
			if scanErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan proposal", "details": scanErr.Error()})
				return
			}
			proposals = append(proposals, p)
		}

		c.JSON(http.StatusOK, proposals)
	}
}

// GetProposalHandler godoc
// @Summary      Get one proposal
// @Tags         proposals
// @Produce      json
// @Param        id  path  int  true  "Proposal ID"
// @Success      200  {object}  models.Proposal
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/proposals/{id} [get]
func GetProposalHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
			return
		}

		proposal, err := scanProposal(db.QueryRow(proposalSelect+" WHERE pr.id = $1", id))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposal", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, proposal)
	}
}

// UpdateProposalHandler godoc
// @Summary      Edit a draft proposal's title, body or expiry
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id        path      int              true  "Proposal ID"
// @Param        proposal  body      models.Proposal  true  "Proposal"
// @Success      200       {object}  models.Proposal
// @Failure      404       {object}  models.ErrorResponse
// @Failure      409       {object}  models.ErrorResponse
// @Router       /api/proposals/{id} [put]
func UpdateProposalHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
			return
		}

		var input models.Proposal
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		var status string
		if err := db.QueryRow(`SELECT status FROM proposals WHERE id = $1`, id).Scan(&status); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposal", "details": err.Error()})
			return
		}
		if status != "draft" {
			c.JSON(http.StatusConflict, gin.H{"error": "Only draft proposals can be edited", "details": status})
			return
		}

		if _, err := db.Exec(`
			UPDATE proposals SET title = $1, body = $2, valid_until = $3, updated_at = NOW()
			WHERE id = $4`,
			input.Title, input.Body, input.ValidUntil, id,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update proposal", "details": err.Error()})
			return
		}

		proposal, err := scanProposal(db.QueryRow(proposalSelect+" WHERE pr.id = $1", id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload proposal", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Proposals",
			EventName:    "Put",
			Description:  fmt.Sprintf("Edited proposal %q", proposal.Title),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    proposal.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, proposal)
	}
}

type SendProposalRequest struct {
	TemplateID *int `json:"template_id,omitempty" example:"2"`
}

// SendProposalHandler godoc
// @Summary      Email a proposal to the client
// @Description  Sends the public viewing link, marks the proposal sent and
// @Description  moves the project to proposal_sent.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true   "Proposal ID"
// @Param        request  body      SendProposalRequest  false  "Optional custom template"
// @Success      200      {object}  models.Proposal
// @Failure      404      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse
// @Router       /api/proposals/{id}/send [post]
func SendProposalHandler(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
			return
		}

		var req SendProposalRequest
		_ = c.ShouldBindJSON(&req)

		proposal, err := scanProposal(db.QueryRow(proposalSelect+" WHERE pr.id = $1", id))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposal", "details": err.Error()})
			return
		}
		if proposal.Status != "draft" && proposal.Status != "sent" {
			c.JSON(http.StatusConflict, gin.H{"error": "Proposal cannot be sent in its current state", "details": proposal.Status})
			return
		}
		if proposal.Body == "" {
			c.JSON(http.StatusConflict, gin.H{"error": "Proposal body is still empty; wait for drafting to finish"})
			return
		}
		if proposal.ClientEmail == "" {
			c.JSON(http.StatusConflict, gin.H{"error": "Client has no email address on file"})
			return
		}

		estimate, err := loadEstimate(db, proposal.EstimateID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load estimate", "details": err.Error()})
			return
		}
		grandTotal := fmt.Sprintf("$%.2f", estimate.Breakdown.GrandTotal)

		if err := emailService.SendProposalEmail(proposal, grandTotal, req.TemplateID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send proposal email", "details": err.Error()})
			return
		}

		if _, err := db.Exec(
			`UPDATE proposals SET status = 'sent', sent_at = NOW(), updated_at = NOW() WHERE id = $1`, id,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark proposal sent", "details": err.Error()})
			return
		}
		// Best effort stage bump; a resend on an already advanced project
		// is not an error.
		db.Exec(`UPDATE projects SET status = 'proposal_sent', updated_at = NOW()
		         WHERE id = $1 AND status = 'estimating'`, proposal.ProjectID)
		proposal.Status = "sent"
		proposal.SentAt = time.Now()

		log := models.ActivityLog{
			EventContext: "Proposals",
			EventName:    "Post",
			Description:  fmt.Sprintf("Sent proposal %q to %s", proposal.Title, proposal.ClientEmail),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    proposal.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, proposal)
	}
}

// PublicProposalViewHandler godoc
// @Summary      View a proposal by its public token
// @Description  Unauthenticated endpoint behind the emailed link. First
// @Description  view of a sent proposal marks it viewed; expired proposals
// @Description  report their state instead of the body.
// @Tags         public
// @Produce      json
// @Param        token  path  string  true  "Public token"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /proposals/view/{token} [get]
func PublicProposalViewHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		proposal, err := scanProposal(db.QueryRow(proposalSelect+" WHERE pr.public_token = $1", token))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposal", "details": err.Error()})
			return
		}

		if !proposal.ValidUntil.IsZero() && time.Now().After(proposal.ValidUntil.Time.AddDate(0, 0, 1)) {
			if proposal.Status == "sent" || proposal.Status == "viewed" {
				db.Exec(`UPDATE proposals SET status = 'expired', updated_at = NOW() WHERE id = $1`, proposal.ID)
				proposal.Status = "expired"
			}
		}
		if proposal.Status == "expired" {
			c.JSON(http.StatusOK, gin.H{"status": "expired", "title": proposal.Title})
			return
		}

		if proposal.Status == "sent" {
			if _, err := db.Exec(
				`UPDATE proposals SET status = 'viewed', viewed_at = NOW(), updated_at = NOW() WHERE id = $1`,
				proposal.ID,
			); err == nil {
				proposal.Status = "viewed"
				proposal.ViewedAt = time.Now()
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"title":       proposal.Title,
			"body":        proposal.Body,
			"status":      proposal.Status,
			"client_name": proposal.ClientName,
			"valid_until": proposal.ValidUntil,
		})
	}
}

type ProposalResponseRequest struct {
	Decision string `json:"decision" example:"accept"` // accept or decline
}

// PublicProposalRespondHandler godoc
// @Summary      Accept or decline a proposal by its public token
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token    path      string                   true  "Public token"
// @Param        request  body      ProposalResponseRequest  true  "Decision"
// @Success      200      {object}  object
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse
// @Router       /proposals/view/{token}/respond [post]
func PublicProposalRespondHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var req ProposalResponseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		var newStatus string
		switch req.Decision {
		case "accept":
			newStatus = "accepted"
		case "decline":
			newStatus = "declined"
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be accept or decline"})
			return
		}

		proposal, err := scanProposal(db.QueryRow(proposalSelect+" WHERE pr.public_token = $1", token))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposal", "details": err.Error()})
			return
		}
		if proposal.Status != "sent" && proposal.Status != "viewed" {
			c.JSON(http.StatusConflict, gin.H{"error": "Proposal is no longer open for a response", "details": proposal.Status})
			return
		}

		if _, err := db.Exec(
			`UPDATE proposals SET status = $1, updated_at = NOW() WHERE id = $2`, newStatus, proposal.ID,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record response", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Proposals",
			EventName:    "Post",
			Description:  fmt.Sprintf("Client %s proposal %q", newStatus, proposal.Title),
			UserName:     proposal.ClientName,
			IPAddress:    c.ClientIP(),
			ProjectID:    proposal.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": newStatus})
	}
}
