package handlers

import (
	"backend/models"
	"backend/pricing"
	"backend/repository"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PreviewEstimateHandler godoc
// @Summary      Price a project without saving anything
// @Description  Runs the estimate engine against the project's stored
// @Description  specification and the current pricing catalog. Nothing is
// @Description  written, so the UI can re-price on every form change.
// @Tags         estimates
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {object}  pricing.CostBreakdown
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/estimate-preview [get]
func PreviewEstimateHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		spec, err := repository.LoadProjectSpecification(db, projectID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load specification", "details": err.Error()})
			return
		}

		prices, err := repository.LoadPricingConfiguration(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing catalog", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, pricing.ComputeEstimate(spec, prices))
	}
}

// PreviewAdhocEstimateHandler godoc
// @Summary      Price a specification sent in the request body
// @Description  Same engine as the project preview but for a spec that has
// @Description  not been saved to any project yet.
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        spec  body      models.ProjectSpec  true  "Specification"
// @Success      200   {object}  pricing.CostBreakdown
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/estimate-preview [post]
func PreviewAdhocEstimateHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var spec models.ProjectSpec
		if err := c.ShouldBindJSON(&spec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		prices, err := repository.LoadPricingConfiguration(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing catalog", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, pricing.ComputeEstimate(spec.ProjectSpecification, prices))
	}
}

// SaveEstimateHandler godoc
// @Summary      Price a project and save the result as a new version
// @Description  Re-runs the engine so the saved breakdown always reflects
// @Description  the catalog at save time, then stores it with the next
// @Description  version number for the project.
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id        path      int              true   "Project ID"
// @Param        estimate  body      models.Estimate  false  "Only notes is read"
// @Success      201       {object}  models.Estimate
// @Failure      404       {object}  models.ErrorResponse
// @Router       /api/projects/{id}/estimates [post]
func SaveEstimateHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var estimate models.Estimate
		// Body is optional; an empty body saves with no notes.
		_ = c.ShouldBindJSON(&estimate)

		spec, err := repository.LoadProjectSpecification(db, projectID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load specification", "details": err.Error()})
			return
		}
		prices, err := repository.LoadPricingConfiguration(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing catalog", "details": err.Error()})
			return
		}

		version, err := repository.NextEstimateVersion(db, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to determine version", "details": err.Error()})
			return
		}

		estimate.ProjectID = projectID
		estimate.Version = version
		estimate.Status = "draft"
		estimate.Breakdown = models.EstimateBreakdown{CostBreakdown: pricing.ComputeEstimate(spec, prices)}
		estimate.CreatedBy = userName

		err = db.QueryRow(`
			INSERT INTO estimates (project_id, version, status, breakdown, notes, created_at, created_by)
			VALUES ($1, $2, 'draft', $3, $4, NOW(), $5)
			RETURNING id, created_at`,
			projectID, version, estimate.Breakdown, estimate.Notes, userName,
		).Scan(&estimate.ID, &estimate.CreatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save estimate", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Estimates",
			EventName:    "Post",
			Description:  fmt.Sprintf("Saved estimate v%d, grand total %.2f", version, estimate.Breakdown.GrandTotal),
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

		c.JSON(http.StatusCreated, estimate)
	}
}

// GetEstimatesHandler godoc
// @Summary      List a project's estimate versions, newest first
// @Tags         estimates
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {array}   models.Estimate
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/estimates [get]
func GetEstimatesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		rows, err := db.Query(`
			SELECT e.id, e.project_id, e.version, e.status, e.breakdown, COALESCE(e.notes, ''),
			       e.created_at, COALESCE(e.created_by, ''), p.name
			FROM estimates e
			JOIN projects p ON p.id = e.project_id
			WHERE e.project_id = $1
			ORDER BY e.version DESC`, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query estimates", "details": err.Error()})
			return
		}
		defer rows.Close()

		var estimates []models.Estimate
		for rows.Next() {
			var e models.Estimate
			if err := rows.Scan(
				&e.ID, &e.ProjectID, &e.Version, &e.Status, &e.Breakdown, &e.Notes,
				&e.CreatedAt, &e.CreatedBy, &e.ProjectName,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan estimate", "details": err.Error()})
				return
			}
			estimates = append(estimates, e)
		}

		c.JSON(http.StatusOK, estimates)
	}
}

func loadEstimate(db *sql.DB, id int) (models.Estimate, error) {
	var e models.Estimate
	err := db.QueryRow(`
		SELECT e.id, e.project_id, e.version, e.status, e.breakdown, COALESCE(e.notes, ''),
		       e.created_at, COALESCE(e.created_by, ''), p.name
		FROM estimates e
		JOIN projects p ON p.id = e.project_id
		WHERE e.id = $1`, id).Scan(
		&e.ID, &e.ProjectID, &e.Version, &e.Status, &e.Breakdown, &e.Notes,
		&e.CreatedAt, &e.CreatedBy, &e.ProjectName,
	)
	return e, err
}

// GetEstimateHandler godoc
// @Summary      Get one saved estimate
// @Tags         estimates
// @Produce      json
// @Param        id  path  int  true  "Estimate ID"
// @Success      200  {object}  models.Estimate
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/estimates/{id} [get]
func GetEstimateHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid estimate ID"})
			return
		}

		estimate, err := loadEstimate(db, id)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query estimate", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, estimate)
	}
}

// FinalizeEstimateHandler godoc
// @Summary      Mark an estimate final
// @Description  The chosen version becomes final and every other draft or
// @Description  final version on the same project is superseded.
// @Tags         estimates
// @Produce      json
// @Param        id  path  int  true  "Estimate ID"
// @Success      200  {object}  models.Estimate
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/estimates/{id}/finalize [patch]
func FinalizeEstimateHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid estimate ID"})
			return
		}

		estimate, err := loadEstimate(db, id)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query estimate", "details": err.Error()})
			return
		}
		if estimate.Status == "superseded" {
			c.JSON(http.StatusConflict, gin.H{"error": "A superseded estimate cannot be finalized"})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec(
			`UPDATE estimates SET status = 'superseded' WHERE project_id = $1 AND id <> $2 AND status <> 'superseded'`,
			estimate.ProjectID, id,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to supersede other versions", "details": err.Error()})
			return
		}
		if _, err := tx.Exec(`UPDATE estimates SET status = 'final' WHERE id = $1`, id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize estimate", "details": err.Error()})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}
		estimate.Status = "final"

		log := models.ActivityLog{
			EventContext: "Estimates",
			EventName:    "Patch",
			Description:  fmt.Sprintf("Finalized estimate v%d", estimate.Version),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    estimate.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, estimate)
	}
}
