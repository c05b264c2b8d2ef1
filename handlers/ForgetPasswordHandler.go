package handlers

import (
	"backend/models"
	"backend/services"
	"backend/utils"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const resetTokenTTL = 15 * time.Minute

// ForgetPasswordHandler godoc
// @Summary      Request a password reset link
// @Description  Always answers 200 so the endpoint cannot be used to
// @Description  probe which addresses have accounts.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "{\"email\":\"user@example.com\"}"
// @Success      200   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/auth/forgot-password [post]
func ForgetPasswordHandler(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
			return
		}

		accepted := gin.H{"message": "If the address has an account, a reset link is on its way"}

		var userID int
		err := db.QueryRow(`SELECT id FROM users WHERE email = $1 AND suspended = false`, req.Email).Scan(&userID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusOK, accepted)
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
			return
		}

		token := uuid.New().String()
		expiry := time.Now().Add(resetTokenTTL)
		if _, err := db.Exec(`UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`, token, expiry, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save token", "details": err.Error()})
			return
		}

		baseURL := os.Getenv("PUBLIC_BASE_URL")
		if baseURL == "" {
			baseURL = "https://app.playhardscapes.com"
		}
		resetLink := fmt.Sprintf("%s/reset-password/%s", baseURL, token)
		body := fmt.Sprintf("Click the link below to reset your password:\n\n%s\n\nThis link expires in 15 minutes.", resetLink)

		if err := emailService.SendDirectEmail(req.Email, "Reset your password", body); err != nil {
			log.Printf("failed to send reset email to %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email"})
			return
		}

		c.JSON(http.StatusOK, accepted)
	}
}

// ResetPasswordHandler godoc
// @Summary      Reset a password with an emailed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string  true  "Reset token"
// @Param        body   body      object  true  "{\"new_password\":\"...\"}"
// @Success      200    {object}  object
// @Failure      400    {object}  models.ErrorResponse
// @Router       /api/auth/reset-password/{token} [post]
func ResetPasswordHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
			return
		}

		var req struct {
			NewPassword string `json:"new_password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
			return
		}

		var userID int
		var userName string
		var expiry time.Time
		err := db.QueryRow(`
			SELECT id, CONCAT(first_name, ' ', last_name), reset_token_expiry
			FROM users WHERE reset_token = $1`, token,
		).Scan(&userID, &userName, &expiry)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
			return
		}
		if time.Now().After(expiry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token has expired"})
			return
		}

		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		// Every session dies with the old password.
		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`
			UPDATE users SET password = $1, reset_token = NULL, reset_token_expiry = NULL
			WHERE id = $2`, hashed, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password", "details": err.Error()})
			return
		}
		if _, err := tx.Exec(`DELETE FROM session WHERE user_id = $1`, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear sessions", "details": err.Error()})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Login",
			EventName:    "Post",
			Description:  "Password reset via emailed token",
			UserName:     userName,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
	}
}
