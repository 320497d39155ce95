package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/algohub-dev/algohub/internal/auth"
	"github.com/algohub-dev/algohub/internal/models"
)

// sessionCookie mirrors the bearer token for browser clients
const sessionCookie = "session"

// CredentialsRequest is the login and signup body
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string `json:"token"`
}

func (s *Server) bindCredentials(c *gin.Context) (*CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return nil, false
	}

	if err := s.validator.Struct(&req); err != nil {
		s.logger.Debug().Err(err).Msg("Credentials validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required", "details": err.Error()})
		return nil, false
	}

	return &req, true
}

func (s *Server) signup(c *gin.Context) {
	req, ok := s.bindCredentials(c)
	if !ok {
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check username")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         auth.RoleUser,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

func (s *Server) login(c *gin.Context) {
	req, ok := s.bindCredentials(c)
	if !ok {
		return
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := s.createSession(&user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.config.Auth.SessionTTL.Seconds()), "/", "", false, true)

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")
	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

// createSession issues a token and makes it the user's only live session
func (s *Server) createSession(user *models.User) (string, error) {
	ttl := s.config.Auth.SessionTTL
	sessionID := ulid.Make().String()

	token, err := auth.GenerateToken(user.ID, user.Username, user.Role, sessionID, ttl)
	if err != nil {
		return "", err
	}

	session := models.UserSession{
		UserID:    user.ID,
		TokenID:   sessionID,
		ExpiresAt: time.Now().Add(ttl),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_id", "expires_at", "updated_at"}),
	}).Create(&session).Error
	if err != nil {
		return "", err
	}

	return token, nil
}
