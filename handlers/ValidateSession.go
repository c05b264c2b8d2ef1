package handlers

import (
	"backend/utils"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ValidateSession godoc
// @Summary      Validate a session token
// @Description  Checks the JWT signature, expiry and the session row, and
// @Description  returns who the caller is.
// @Tags         auth
// @Produce      json
// @Param        Authorization  header  string  true  "Session token"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/validate-session [post]
func ValidateSession(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := strings.TrimSpace(c.GetHeader("Authorization"))
		sessionToken = strings.TrimSpace(strings.TrimPrefix(sessionToken, "Bearer "))
		if sessionToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing Authorization header"})
			return
		}

		parsedToken, err := utils.ValidateJWT(sessionToken)
		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		if exp, ok := claims["exp"].(float64); !ok || time.Now().Unix() > int64(exp) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			return
		}

		// The token alone is not enough, the session row has to be live
		// too: logout and suspension delete it.
		var userID int
		var email, role string
		var suspended bool
		err = db.QueryRow(`
			SELECT u.id, u.email, u.role, u.suspended
			FROM session s
			JOIN users u ON u.id = s.user_id
			WHERE s.session_id = $1 AND s.expires_at > NOW()`, sessionToken,
		).Scan(&userID, &email, &role, &suspended)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}
		if suspended {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is suspended"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Session validated",
			"user_id": userID,
			"email":   email,
			"role":    role,
		})
	}
}
