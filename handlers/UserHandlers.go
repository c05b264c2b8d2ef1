package handlers

import (
	"backend/models"
	"backend/utils"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var validRoles = map[string]bool{
	"admin":     true,
	"estimator": true,
	"office":    true,
	"field":     true,
}

// CreateUserHandler godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      models.User  true  "User"
// @Success      201   {object}  models.User
// @Failure      400   {object}  models.ErrorResponse
// @Failure      409   {object}  models.ErrorResponse
// @Router       /api/users [post]
func CreateUserHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if user.Email == "" || user.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}
		if user.Role == "" {
			user.Role = "office"
		}
		if !validRoles[user.Role] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role", "details": user.Role})
			return
		}

		var exists bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, user.Email).Scan(&exists); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email", "details": err.Error()})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
			return
		}

		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password", "details": err.Error()})
			return
		}

		err = db.QueryRow(`
			INSERT INTO users (email, password, first_name, last_name, phone_no, role, is_admin, suspended, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW(), NOW())
			RETURNING id, created_at, updated_at`,
			user.Email, hashed, user.FirstName, user.LastName, user.PhoneNo, user.Role, user.Role == "admin",
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
			return
		}
		user.Password = ""

		log := models.ActivityLog{
			EventContext:      "Users",
			EventName:         "Post",
			Description:       fmt.Sprintf("Created user %s", user.Email),
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			AffectedUserName:  user.FirstName + " " + user.LastName,
			AffectedUserEmail: user.Email,
			CreatedAt:         time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// GetUsersHandler godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/users [get]
func GetUsersHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		rows, err := db.Query(`
			SELECT id, email, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(phone_no, ''),
			       COALESCE(role, 'office'), is_admin, suspended, created_at, updated_at
			FROM users
			ORDER BY first_name, last_name`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query users", "details": err.Error()})
			return
		}
		defer rows.Close()

		var users []models.User
		for rows.Next() {
			var user models.User
			if err := rows.Scan(
				&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PhoneNo,
				&user.Role, &user.IsAdmin, &user.Suspended, &user.CreatedAt, &user.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user", "details": err.Error()})
				return
			}
			users = append(users, user)
		}

		c.JSON(http.StatusOK, users)
	}
}

// UpdateUserHandler godoc
// @Summary      Update a user's profile and role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "User ID"
// @Param        user  body      models.User  true  "User"
// @Success      200   {object}  models.User
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/users/{id} [put]
func UpdateUserHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if user.Role != "" && !validRoles[user.Role] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role", "details": user.Role})
			return
		}

		result, err := db.Exec(`
			UPDATE users
			SET first_name = $1, last_name = $2, phone_no = $3,
			    role = COALESCE(NULLIF($4, ''), role),
			    is_admin = ($4 = 'admin' OR (is_admin AND $4 = '')),
			    updated_at = NOW()
			WHERE id = $5`,
			user.FirstName, user.LastName, user.PhoneNo, user.Role, id,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "details": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		user.ID = id
		user.Password = ""

		log := models.ActivityLog{
			EventContext:     "Users",
			EventName:        "Put",
			Description:      fmt.Sprintf("Updated user %d", id),
			UserName:         userName,
			HostName:         session.HostName,
			IPAddress:        session.IPAddress,
			AffectedUserName: user.FirstName + " " + user.LastName,
			CreatedAt:        time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:""`
	NewPassword     string `json:"new_password" example:""`
}

// ChangePasswordHandler godoc
// @Summary      Change the current user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  object
// @Failure      400      {object}  models.ErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Router       /api/users/password [put]
func ChangePasswordHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if len(req.NewPassword) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be at least 8 characters"})
			return
		}

		var storedHash string
		if err := db.QueryRow(`SELECT password FROM users WHERE id = $1`, session.UserID).Scan(&storedHash); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user", "details": err.Error()})
			return
		}
		if !utils.ValidatePassword(req.CurrentPassword, storedHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}

		newHash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password", "details": err.Error()})
			return
		}
		if _, err := db.Exec(`UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, newHash, session.UserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Users",
			EventName:    "Put",
			Description:  "Changed own password",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}

// SuspendUserHandler godoc
// @Summary      Suspend or reinstate a user
// @Tags         users
// @Produce      json
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/users/{id}/suspend [patch]
func SuspendUserHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		if id == session.UserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot suspend your own account"})
			return
		}

		var suspended bool
		var email string
		err = db.QueryRow(`
			UPDATE users SET suspended = NOT suspended, updated_at = NOW()
			WHERE id = $1 RETURNING suspended, email`, id).Scan(&suspended, &email)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suspend user", "details": err.Error()})
			return
		}

		// A suspended user's sessions go with them.
		if suspended {
			if _, err := db.Exec(`DELETE FROM session WHERE user_id = $1`, id); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear sessions", "details": err.Error()})
				return
			}
		}

		action := "Suspended"
		if !suspended {
			action = "Reinstated"
		}
		log := models.ActivityLog{
			EventContext:      "Users",
			EventName:         "Patch",
			Description:       fmt.Sprintf("%s user %s", action, email),
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			AffectedUserEmail: email,
			CreatedAt:         time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "suspended": suspended})
	}
}
