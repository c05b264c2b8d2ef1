package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateProjectHandler godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        project  body      models.Project  true  "Project"
// @Success      201      {object}  models.Project
// @Failure      400      {object}  models.ErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Router       /api/projects [post]
func CreateProjectHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var project models.Project
		if err := c.ShouldBindJSON(&project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if project.Name == "" || project.ClientID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project name and client_id are required"})
			return
		}
		if project.Status == "" {
			project.Status = "lead"
		}
		if !models.ValidProjectStatus(project.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": project.Status})
			return
		}

		var clientExists bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1)`, project.ClientID).Scan(&clientExists); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check client", "details": err.Error()})
			return
		}
		if !clientExists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Client does not exist"})
			return
		}

		err = db.QueryRow(`
			INSERT INTO projects (client_id, name, status, site_address, site_city, site_state, site_zip_code,
			                      start_date, target_date, specification, notes, archived, created_at, updated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, NOW(), NOW(), $12)
			RETURNING id, created_at, updated_at`,
			project.ClientID, project.Name, project.Status, project.SiteAddress, project.SiteCity,
			project.SiteState, project.SiteZipCode, project.StartDate, project.TargetDate,
			project.Specification, project.Notes, userName,
		).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project", "details": err.Error()})
			return
		}
		project.CreatedBy = userName

		log := models.ActivityLog{
			EventContext: "Projects",
			EventName:    "Post",
			Description:  fmt.Sprintf("Created project %q", project.Name),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    project.ID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, project)
	}
}

// GetProjectsHandler godoc
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        status     query  string  false  "Filter by status"
// @Param        client_id  query  int     false  "Filter by client"
// @Param        search     query  string  false  "Search project name"
// @Param        page       query  int     false  "Page"
// @Param        limit      query  int     false  "Limit"
// @Success      200  {object}  object
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/projects [get]
func GetProjectsHandler(db *sql.DB) gin.HandlerFunc {
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

		where := " WHERE p.archived = false"
		args := []interface{}{}
		argPos := 1

		if status := c.Query("status"); status != "" {
			if !models.ValidProjectStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": status})
				return
			}
			where += fmt.Sprintf(" AND p.status = $%d", argPos)
			args = append(args, status)
			argPos++
		}
		if clientID := c.Query("client_id"); clientID != "" {
			id, convErr := strconv.Atoi(clientID)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client_id"})
				return
			}
			where += fmt.Sprintf(" AND p.client_id = $%d", argPos)
			args = append(args, id)
			argPos++
		}
		if search := c.Query("search"); search != "" {
			where += fmt.Sprintf(" AND p.name ILIKE $%d", argPos)
			args = append(args, "%"+search+"%")
			argPos++
		}

		var totalRecords int
		if err := db.QueryRow("SELECT COUNT(*) FROM projects p"+where, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count projects", "details": err.Error()})
			return
		}

		query := `
			SELECT p.id, p.client_id, p.name, p.status, COALESCE(p.site_address, ''), COALESCE(p.site_city, ''),
			       COALESCE(p.site_state, ''), COALESCE(p.site_zip_code, ''), p.start_date, p.target_date,
			       p.specification, COALESCE(p.notes, ''), p.archived, p.created_at, p.updated_at,
			       COALESCE(p.created_by, ''), c.name AS client_name
			FROM projects p
			JOIN clients c ON c.id = p.client_id` + where + fmt.Sprintf(`
			ORDER BY p.updated_at DESC
			LIMIT $%d OFFSET $%d`, argPos, argPos+1)
		args = append(args, limit, offset)

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query projects", "details": err.Error()})
			return
		}
		defer rows.Close()

		var projects []models.Project
		for rows.Next() {
			var project models.Project
			if err := rows.Scan(
				&project.ID, &project.ClientID, &project.Name, &project.Status, &project.SiteAddress,
				&project.SiteCity, &project.SiteState, &project.SiteZipCode, &project.StartDate,
				&project.TargetDate, &project.Specification, &project.Notes, &project.Archived,
				&project.CreatedAt, &project.UpdatedAt, &project.CreatedBy, &project.ClientName,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan project", "details": err.Error()})
				return
			}
			projects = append(projects, project)
		}

		c.JSON(http.StatusOK, gin.H{
			"projects": projects,
			"pagination": gin.H{
				"current_page":  page,
				"page_size":     limit,
				"total_records": totalRecords,
			},
		})
	}
}

// GetProjectHandler godoc
// @Summary      Get one project
// @Tags         projects
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  models.Project
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id} [get]
func GetProjectHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		project, err := loadProject(db, id)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query project", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

func loadProject(db *sql.DB, id int) (models.Project, error) {
	var project models.Project
	err := db.QueryRow(`
		SELECT p.id, p.client_id, p.name, p.status, COALESCE(p.site_address, ''), COALESCE(p.site_city, ''),
		       COALESCE(p.site_state, ''), COALESCE(p.site_zip_code, ''), p.start_date, p.target_date,
		       p.specification, COALESCE(p.notes, ''), p.archived, p.created_at, p.updated_at,
		       COALESCE(p.created_by, ''), c.name AS client_name
		FROM projects p
		JOIN clients c ON c.id = p.client_id
		WHERE p.id = $1`, id).Scan(
		&project.ID, &project.ClientID, &project.Name, &project.Status, &project.SiteAddress,
		&project.SiteCity, &project.SiteState, &project.SiteZipCode, &project.StartDate,
		&project.TargetDate, &project.Specification, &project.Notes, &project.Archived,
		&project.CreatedAt, &project.UpdatedAt, &project.CreatedBy, &project.ClientName,
	)
	return project, err
}

// UpdateProjectHandler godoc
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Project ID"
// @Param        project  body      models.Project  true  "Project"
// @Success      200      {object}  models.Project
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Router       /api/projects/{id} [put]
func UpdateProjectHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var project models.Project
		if err := c.ShouldBindJSON(&project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if project.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
			return
		}

		result, err := db.Exec(`
			UPDATE projects
			SET name = $1, site_address = $2, site_city = $3, site_state = $4, site_zip_code = $5,
			    start_date = $6, target_date = $7, specification = $8, notes = $9, updated_at = NOW()
			WHERE id = $10`,
			project.Name, project.SiteAddress, project.SiteCity, project.SiteState, project.SiteZipCode,
			project.StartDate, project.TargetDate, project.Specification, project.Notes, id,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project", "details": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		project.ID = id

		log := models.ActivityLog{
			EventContext: "Projects",
			EventName:    "Put",
			Description:  fmt.Sprintf("Updated project %q", project.Name),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    id,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

type StatusChangeRequest struct {
	Status string `json:"status" example:"contracted"`
}

// allowedStatusChanges lists, for each status, the statuses a project may
// move to next. Closed is terminal.
var allowedStatusChanges = map[string][]string{
	"lead":          {"estimating", "closed"},
	"estimating":    {"proposal_sent", "closed"},
	"proposal_sent": {"contracted", "estimating", "closed"},
	"contracted":    {"scheduled", "closed"},
	"scheduled":     {"in_progress", "closed"},
	"in_progress":   {"completed", "closed"},
	"completed":     {"closed"},
	"closed":        {},
}

// ChangeProjectStatusHandler godoc
// @Summary      Move a project to its next stage
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Project ID"
// @Param        request  body      StatusChangeRequest  true  "Target status"
// @Success      200      {object}  object
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse
// @Router       /api/projects/{id}/status [patch]
func ChangeProjectStatusHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var req StatusChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if !models.ValidProjectStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": req.Status})
			return
		}

		var current string
		if err := db.QueryRow(`SELECT status FROM projects WHERE id = $1`, id).Scan(&current); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query project", "details": err.Error()})
			return
		}

		allowed := false
		for _, next := range allowedStatusChanges[current] {
			if next == req.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusConflict, gin.H{
				"error":   fmt.Sprintf("Cannot move project from %s to %s", current, req.Status),
				"details": strings.Join(allowedStatusChanges[current], ", "),
			})
			return
		}

		if _, err := db.Exec(`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`, req.Status, id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Projects",
			EventName:    "Patch",
			Description:  fmt.Sprintf("Project status changed from %s to %s", current, req.Status),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    id,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status, "previous_status": current})
	}
}

// UpdateProjectSpecificationHandler godoc
// @Summary      Replace a project's court specification
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Project ID"
// @Param        spec  body      models.ProjectSpec true  "Specification"
// @Success      200   {object}  models.ProjectSpec
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/projects/{id}/specification [put]
func UpdateProjectSpecificationHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var spec models.ProjectSpec
		if err := c.ShouldBindJSON(&spec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if spec.Dimensions.LengthFeet < 0 || spec.Dimensions.WidthFeet < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dimensions cannot be negative"})
			return
		}

		result, err := db.Exec(`UPDATE projects SET specification = $1, updated_at = NOW() WHERE id = $2`, spec, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update specification", "details": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		log := models.ActivityLog{
			EventContext: "Projects",
			EventName:    "Put",
			Description:  fmt.Sprintf("Updated specification for project %d", id),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    id,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, spec)
	}
}

// GeocodeProjectHandler godoc
// @Summary      Compute driving distance from the shop to the project site
// @Description  Geocodes the site address and the shop address, then stores
// @Description  the straight line mileage on the project's logistics block.
// @Tags         projects
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Failure      502  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/geocode [post]
func GeocodeProjectHandler(db *sql.DB, geocoder services.Geocoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		project, err := loadProject(db, id)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query project", "details": err.Error()})
			return
		}

		if project.SiteCity == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project has no site address to geocode"})
			return
		}
		siteAddress := strings.TrimSpace(fmt.Sprintf("%s, %s, %s %s",
			project.SiteAddress, project.SiteCity, project.SiteState, project.SiteZipCode))

		homeAddress := os.Getenv("HOME_BASE_ADDRESS")
		if homeAddress == "" {
			homeAddress = "Roanoke, VA"
		}

		siteLat, siteLon, err := geocoder.Geocode(c.Request.Context(), siteAddress)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to geocode site address", "details": err.Error()})
			return
		}
		homeLat, homeLon, err := geocoder.Geocode(c.Request.Context(), homeAddress)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to geocode home base", "details": err.Error()})
			return
		}

		miles := services.DistanceMiles(homeLat, homeLon, siteLat, siteLon)

		spec := project.Specification
		spec.Logistics.DistanceToSiteMiles = miles
		if _, err := db.Exec(`UPDATE projects SET specification = $1, updated_at = NOW() WHERE id = $2`, spec, id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save distance", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Projects",
			EventName:    "Post",
			Description:  fmt.Sprintf("Geocoded project %d: %.1f miles from home base", id, miles),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    id,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "distance_to_site_miles": miles})
	}
}

// ArchiveProjectHandler godoc
// @Summary      Archive or restore a project
// @Tags         projects
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/archive [patch]
func ArchiveProjectHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var archived bool
		err = db.QueryRow(`
			UPDATE projects SET archived = NOT archived, updated_at = NOW()
			WHERE id = $1 RETURNING archived`, id).Scan(&archived)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive project", "details": err.Error()})
			return
		}

		action := "Archived"
		if !archived {
			action = "Restored"
		}
		log := models.ActivityLog{
			EventContext: "Projects",
			EventName:    "Patch",
			Description:  fmt.Sprintf("%s project %d", action, id),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    id,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "archived": archived})
	}
}
