package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetSettingsHandler godoc
// @Summary      Get the current user's settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  models.Setting
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/settings [get]
func GetSettingsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, _, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		setting := models.Setting{UserID: session.UserID, AllowMultipleSessions: true}
		err = db.QueryRow(
			`SELECT allow_multiple_sessions FROM settings WHERE user_id = $1`,
			session.UserID,
		).Scan(&setting.AllowMultipleSessions)
		if err != nil && err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, setting)
	}
}

// UpdateSettingsHandler godoc
// @Summary      Update the current user's settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        settings  body      models.Setting  true  "Settings"
// @Success      200       {object}  models.Setting
// @Failure      400       {object}  models.ErrorResponse
// @Failure      401       {object}  models.ErrorResponse
// @Router       /api/settings [put]
func UpdateSettingsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var setting models.Setting
		if err := c.ShouldBindJSON(&setting); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		setting.UserID = session.UserID

		_, err = db.Exec(`
			INSERT INTO settings (user_id, allow_multiple_sessions)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET allow_multiple_sessions = EXCLUDED.allow_multiple_sessions`,
			setting.UserID, setting.AllowMultipleSessions,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Settings",
			EventName:    "Put",
			Description:  "Updated session settings",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, setting)
	}
}
