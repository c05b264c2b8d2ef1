package handlers

import (
	"backend/models"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const uploadDir = "uploads"

var documentKinds = map[string]bool{
	"site_photo": true,
	"survey":     true,
	"permit":     true,
	"other":      true,
}

// ServeUploadedFileHandler godoc
// @Summary      Serve an uploaded file
// @Description  Paths are confined to the uploads directory; traversal
// @Description  attempts get a 400.
// @Tags         uploads
// @Produce      application/octet-stream
// @Param        file  query  string  true  "Path relative to the uploads directory"
// @Success      200  {file}    file
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/files [get]
func ServeUploadedFileHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		fileName := c.Query("file")
		if fileName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file parameter is required"})
			return
		}

		cleanName := filepath.Clean(fileName)
		if strings.Contains(cleanName, "..") || filepath.IsAbs(cleanName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file path"})
			return
		}

		absUploads, err := filepath.Abs(uploadDir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		// The client may send the stored path with or without the
		// uploads/ prefix.
		cleanName = strings.TrimPrefix(cleanName, uploadDir+string(os.PathSeparator))
		filePath := filepath.Join(absUploads, cleanName)
		if !strings.HasPrefix(filePath, absUploads+string(os.PathSeparator)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file path"})
			return
		}

		info, err := os.Stat(filePath)
		if os.IsNotExist(err) || (err == nil && info.IsDir()) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}

		c.FileAttachment(filePath, filepath.Base(filePath))
	}
}

// UploadProjectDocumentHandler godoc
// @Summary      Attach a file to a project
// @Tags         projects
// @Accept       multipart/form-data
// @Produce      json
// @Param        id       path      int     true   "Project ID"
// @Param        file     formData  file    true   "Document"
// @Param        kind     formData  string  false  "site_photo, survey, permit or other"
// @Param        caption  formData  string  false  "Caption"
// @Success      201      {object}  models.ProjectDocument
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Router       /api/projects/{id}/documents [post]
func UploadProjectDocumentHandler(db *sql.DB) gin.HandlerFunc {
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

		var exists bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists); err != nil || !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		kind := c.DefaultPostForm("kind", "site_photo")
		if !documentKinds[kind] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document kind"})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is required", "details": err.Error()})
			return
		}

		dir := filepath.Join(uploadDir, "projects", strconv.Itoa(projectID))
		if err := os.MkdirAll(dir, 0755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory", "details": err.Error()})
			return
		}

		uniqueName := fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(file.Filename))
		savedPath := filepath.Join(dir, uniqueName)
		if err := c.SaveUploadedFile(file, savedPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file", "details": err.Error()})
			return
		}

		doc := models.ProjectDocument{
			ProjectID:  projectID,
			FileName:   file.Filename,
			FilePath:   savedPath,
			Kind:       kind,
			Caption:    c.PostForm("caption"),
			UploadedBy: userName,
		}
		err = db.QueryRow(`
			INSERT INTO project_documents (project_id, file_name, file_path, kind, caption, uploaded_at, uploaded_by)
			VALUES ($1, $2, $3, $4, $5, NOW(), $6)
			RETURNING id, uploaded_at`,
			projectID, doc.FileName, doc.FilePath, doc.Kind, doc.Caption, userName,
		).Scan(&doc.ID, &doc.UploadedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record document", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Project Documents",
			EventName:    "Post",
			Description:  fmt.Sprintf("Uploaded %s %s", kind, file.Filename),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    projectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, doc)
	}
}

// GetProjectDocumentsHandler godoc
// @Summary      List a project's documents
// @Tags         projects
// @Produce      json
// @Param        id    path   int     true   "Project ID"
// @Param        kind  query  string  false  "Filter by kind"
// @Success      200  {array}   models.ProjectDocument
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/documents [get]
func GetProjectDocumentsHandler(db *sql.DB) gin.HandlerFunc {
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

		query := `
			SELECT id, project_id, file_name, file_path, kind, COALESCE(caption, ''), uploaded_at, COALESCE(uploaded_by, '')
			FROM project_documents
			WHERE project_id = $1`
		args := []interface{}{projectID}
		if kind := c.Query("kind"); kind != "" {
			query += " AND kind = $2"
			args = append(args, kind)
		}
		query += " ORDER BY uploaded_at DESC"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query documents", "details": err.Error()})
			return
		}
		defer rows.Close()

		var docs []models.ProjectDocument
		for rows.Next() {
			var doc models.ProjectDocument
			if err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.FileName, &doc.FilePath, &doc.Kind, &doc.Caption, &doc.UploadedAt, &doc.UploadedBy); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan document", "details": err.Error()})
				return
			}
			docs = append(docs, doc)
		}

		c.JSON(http.StatusOK, docs)
	}
}

// DeleteProjectDocumentHandler godoc
// @Summary      Remove a document from a project
// @Tags         projects
// @Produce      json
// @Param        id     path  int  true  "Project ID"
// @Param        docId  path  int  true  "Document ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/documents/{docId} [delete]
func DeleteProjectDocumentHandler(db *sql.DB) gin.HandlerFunc {
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
		docID, err := strconv.Atoi(c.Param("docId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
			return
		}

		var filePath, fileName string
		err = db.QueryRow(`
			DELETE FROM project_documents WHERE id = $1 AND project_id = $2
			RETURNING file_path, file_name`, docID, projectID,
		).Scan(&filePath, &fileName)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document", "details": err.Error()})
			return
		}

		// The row is authoritative; a missing file on disk is not an error.
		_ = os.Remove(filePath)

		logEntry := models.ActivityLog{
			EventContext: "Project Documents",
			EventName:    "Post",
			Description:  fmt.Sprintf("Deleted document %s", fileName),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    projectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
	}
}
