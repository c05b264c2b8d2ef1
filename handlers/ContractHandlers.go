package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreateContractRequest struct {
	ProposalID    int     `json:"proposal_id" example:"1"`
	DepositAmount float64 `json:"deposit_amount" example:"7350.00"`
	Terms         string  `json:"terms" example:""`
}

// CreateContractHandler godoc
// @Summary      Create a contract from an accepted proposal
// @Description  The contract value is copied from the proposal's estimate
// @Description  so the signed number always matches the quoted one.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request  body      CreateContractRequest  true  "Contract"
// @Success      201      {object}  models.Contract
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse
// @Router       /api/contracts [post]
func CreateContractHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var req CreateContractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if req.DepositAmount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Deposit cannot be negative"})
			return
		}

		proposal, err := scanProposal(db.QueryRow(proposalSelect+" WHERE pr.id = $1", req.ProposalID))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposal", "details": err.Error()})
			return
		}
		if proposal.Status != "accepted" {
			c.JSON(http.StatusConflict, gin.H{"error": "Only accepted proposals can become contracts", "details": proposal.Status})
			return
		}

		var existing int
		if err := db.QueryRow(
			`SELECT COUNT(*) FROM contracts WHERE proposal_id = $1 AND status <> 'cancelled'`, req.ProposalID,
		).Scan(&existing); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check contracts", "details": err.Error()})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Proposal already has a live contract"})
			return
		}

		estimate, err := loadEstimate(db, proposal.EstimateID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load estimate", "details": err.Error()})
			return
		}
		if req.DepositAmount > estimate.Breakdown.GrandTotal {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Deposit exceeds the contract value"})
			return
		}

		contract := models.Contract{
			ReferenceCode: repository.GenerateReferenceCode("PH"),
			ProposalID:    req.ProposalID,
			ProjectID:     proposal.ProjectID,
			ContractValue: estimate.Breakdown.GrandTotal,
			DepositAmount: req.DepositAmount,
			Terms:         req.Terms,
			Status:        "draft",
			PublicToken:   uuid.NewString(),
			CreatedBy:     userName,
			ProjectName:   proposal.ProjectName,
			ClientName:    proposal.ClientName,
		}
		err = db.QueryRow(`
			INSERT INTO contracts (reference_code, proposal_id, project_id, contract_value, deposit_amount,
			                       terms, status, public_token, created_at, updated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, 'draft', $7, NOW(), NOW(), $8)
			RETURNING id, created_at, updated_at`,
			contract.ReferenceCode, contract.ProposalID, contract.ProjectID, contract.ContractValue,
			contract.DepositAmount, contract.Terms, contract.PublicToken, userName,
		).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contract", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Contracts",
			EventName:    "Post",
			Description:  fmt.Sprintf("Created contract %s for %.2f", contract.ReferenceCode, contract.ContractValue),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    contract.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, contract)
	}
}

const contractSelect = `
	SELECT ct.id, ct.reference_code, ct.proposal_id, ct.project_id, ct.contract_value, ct.deposit_amount,
	       COALESCE(ct.terms, ''), ct.status, ct.public_token, ct.sent_at, ct.signed_at,
	       COALESCE(ct.signed_by_name, ''), COALESCE(ct.signed_by_email, ''), ct.created_at, ct.updated_at,
	       COALESCE(ct.created_by, ''), p.name, c.name
	FROM contracts ct
	JOIN projects p ON p.id = ct.project_id
	JOIN clients c ON c.id = p.client_id`

func scanContract(row interface {
	Scan(dest ...interface{}) error
}) (models.Contract, error) {
	var ct models.Contract
	var sentAt, signedAt sql.NullTime
	err := row.Scan(
		&ct.ID, &ct.ReferenceCode, &ct.ProposalID, &ct.ProjectID, &ct.ContractValue, &ct.DepositAmount,
		&ct.Terms, &ct.Status, &ct.PublicToken, &sentAt, &signedAt,
		&ct.SignedByName, &ct.SignedByEmail, &ct.CreatedAt, &ct.UpdatedAt,
		&ct.CreatedBy, &ct.ProjectName, &ct.ClientName,
	)
	if sentAt.Valid {
		ct.SentAt = sentAt.Time
	}
	if signedAt.Valid {
		ct.SignedAt = signedAt.Time
	}
	return ct, err
}

// GetContractsHandler godoc
// @Summary      List contracts
// @Tags         contracts
// @Produce      json
// @Param        project_id  query  int     false  "Filter by project"
// @Param        status      query  string  false  "Filter by status"
// @Success      200  {array}   models.Contract
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/contracts [get]
func GetContractsHandler(db *sql.DB) gin.HandlerFunc {
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
			where += fmt.Sprintf(" AND ct.project_id = $%d", argPos)
			args = append(args, id)
			argPos++
		}
		if status := c.Query("status"); status != "" {
			if !models.ValidContractStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": status})
				return
			}
			where += fmt.Sprintf(" AND ct.status = $%d", argPos)
			args = append(args, status)
			argPos++
		}

		rows, err := db.Query(contractSelect+where+" ORDER BY ct.updated_at DESC", args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query contracts", "details": err.Error()})
			return
		}
		defer rows.Close()

		var contracts []models.Contract
		for rows.Next() {
			ct, scanErr := scanContract(rows)
			if scanErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan contract", "details": scanErr.Error()})
				return
			}
			contracts = append(contracts, ct)
		}

		c.JSON(http.StatusOK, contracts)
	}
}

// GetContractHandler godoc
// @Summary      Get one contract
// @Tags         contracts
// @Produce      json
// @Param        id  path  int  true  "Contract ID"
// @Success      200  {object}  models.Contract
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/contracts/{id} [get]
func GetContractHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract ID"})
			return
		}

		contract, err := scanContract(db.QueryRow(contractSelect+" WHERE ct.id = $1", id))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query contract", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, contract)
	}
}

// SendContractHandler godoc
// @Summary      Email a contract signing link to the client
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true   "Contract ID"
// @Param        request  body      SendProposalRequest  false  "Optional custom template"
// @Success      200      {object}  models.Contract
// @Failure      404      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse
// @Router       /api/contracts/{id}/send [post]
func SendContractHandler(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract ID"})
			return
		}

		var req SendProposalRequest
		_ = c.ShouldBindJSON(&req)

		contract, err := scanContract(db.QueryRow(contractSelect+" WHERE ct.id = $1", id))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query contract", "details": err.Error()})
			return
		}
		if contract.Status != "draft" && contract.Status != "sent" {
			c.JSON(http.StatusConflict, gin.H{"error": "Contract cannot be sent in its current state", "details": contract.Status})
			return
		}

		var clientEmail string
		if err := db.QueryRow(`
			SELECT c.email FROM clients c
			JOIN projects p ON p.client_id = c.id
			WHERE p.id = $1`, contract.ProjectID).Scan(&clientEmail); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load client email", "details": err.Error()})
			return
		}
		if clientEmail == "" {
			c.JSON(http.StatusConflict, gin.H{"error": "Client has no email address on file"})
			return
		}

		if err := emailService.SendContractEmail(contract, clientEmail, req.TemplateID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send contract email", "details": err.Error()})
			return
		}

		if _, err := db.Exec(
			`UPDATE contracts SET status = 'sent', sent_at = NOW(), updated_at = NOW() WHERE id = $1`, id,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark contract sent", "details": err.Error()})
			return
		}
		contract.Status = "sent"
		contract.SentAt = time.Now()

		log := models.ActivityLog{
			EventContext: "Contracts",
			EventName:    "Post",
			Description:  fmt.Sprintf("Sent contract %s to %s", contract.ReferenceCode, clientEmail),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    contract.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, contract)
	}
}

// PublicContractViewHandler godoc
// @Summary      View a contract by its public token
// @Tags         public
// @Produce      json
// @Param        token  path  string  true  "Public token"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /contracts/view/{token} [get]
func PublicContractViewHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		contract, err := scanContract(db.QueryRow(contractSelect+" WHERE ct.public_token = $1", token))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query contract", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"reference_code": contract.ReferenceCode,
			"project_name":   contract.ProjectName,
			"client_name":    contract.ClientName,
			"contract_value": contract.ContractValue,
			"deposit_amount": contract.DepositAmount,
			"terms":          contract.Terms,
			"status":         contract.Status,
			"signed_at":      contract.SignedAt,
			"signed_by_name": contract.SignedByName,
		})
	}
}

type SignContractRequest struct {
	Name  string `json:"name" example:"Pat Nguyen"`
	Email string `json:"email" example:"pat@riversidehoa.org"`
}

// PublicContractSignHandler godoc
// @Summary      Sign a contract by its public token
// @Description  Signing also moves the project to contracted.
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token    path      string               true  "Public token"
// @Param        request  body      SignContractRequest  true  "Signer"
// @Success      200      {object}  object
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse
// @Router       /contracts/view/{token}/sign [post]
func PublicContractSignHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var req SignContractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if req.Name == "" || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signer name and email are required"})
			return
		}

		contract, err := scanContract(db.QueryRow(contractSelect+" WHERE ct.public_token = $1", token))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query contract", "details": err.Error()})
			return
		}
		if contract.Status != "sent" {
			c.JSON(http.StatusConflict, gin.H{"error": "Contract is not open for signing", "details": contract.Status})
			return
		}

		if _, err := db.Exec(`
			UPDATE contracts
			SET status = 'signed', signed_at = NOW(), signed_by_name = $1, signed_by_email = $2, updated_at = NOW()
			WHERE id = $3`, req.Name, req.Email, contract.ID,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record signature", "details": err.Error()})
			return
		}
		db.Exec(`UPDATE projects SET status = 'contracted', updated_at = NOW()
		         WHERE id = $1 AND status = 'proposal_sent'`, contract.ProjectID)

		log := models.ActivityLog{
			EventContext: "Contracts",
			EventName:    "Post",
			Description:  fmt.Sprintf("Contract %s signed by %s", contract.ReferenceCode, req.Name),
			UserName:     req.Name,
			IPAddress:    c.ClientIP(),
			ProjectID:    contract.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "signed", "reference_code": contract.ReferenceCode})
	}
}

// CancelContractHandler godoc
// @Summary      Cancel a contract
// @Tags         contracts
// @Produce      json
// @Param        id  path  int  true  "Contract ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/contracts/{id}/cancel [patch]
func CancelContractHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract ID"})
			return
		}

		var status string
		var projectID int
		var referenceCode string
		if err := db.QueryRow(
			`SELECT status, project_id, reference_code FROM contracts WHERE id = $1`, id,
		).Scan(&status, &projectID, &referenceCode); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query contract", "details": err.Error()})
			return
		}
		if status == "signed" {
			c.JSON(http.StatusConflict, gin.H{"error": "A signed contract cannot be cancelled"})
			return
		}

		if _, err := db.Exec(`UPDATE contracts SET status = 'cancelled', updated_at = NOW() WHERE id = $1`, id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel contract", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Contracts",
			EventName:    "Patch",
			Description:  fmt.Sprintf("Cancelled contract %s", referenceCode),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    projectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "status": "cancelled"})
	}
}
