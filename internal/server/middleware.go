package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/algohub-dev/algohub/internal/auth"
	"github.com/algohub-dev/algohub/internal/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrSessionRevoked    = errors.New("session revoked")
	ErrUserNotFound      = errors.New("user not found")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// notAuthorized answers 401 with the reason the CLI recognizes as a forced logout
func notAuthorized(c *gin.Context, log zerolog.Logger, reason error) {
	respondWithError(c, log, http.StatusUnauthorized, reason, "Not authorized: "+reason.Error())
}

// JWTAuthMiddleware validates the bearer token and the user's live session
func JWTAuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			notAuthorized(c, log, err)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				notAuthorized(c, log, ErrTokenExpired)
				return
			}
			log.Debug().Err(err).Msg("Failed to validate JWT token")
			notAuthorized(c, log, ErrInvalidToken)
			return
		}

		var user models.User
		if err := models.FindByID(db, claims.UserID, &user); err != nil {
			log.Debug().Err(err).Str("user_id", claims.UserID).Msg("User not found")
			notAuthorized(c, log, ErrUserNotFound)
			return
		}

		// Only the most recent login of a user is live
		var session models.UserSession
		if err := db.Where("user_id = ?", user.ID).First(&session).Error; err != nil || session.TokenID != claims.ID {
			notAuthorized(c, log, ErrSessionRevoked)
			return
		}

		setSession(c, &auth.SessionData{
			UserID:    user.ID,
			Username:  user.Username,
			Role:      user.Role,
			SessionID: claims.ID,
		})

		c.Next()
	}
}

// AdminOnlyMiddleware ensures the authenticated user is an admin
func AdminOnlyMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			notAuthorized(c, log, errors.New("no session"))
			return
		}

		if !sessionData.IsAdmin() {
			respondWithError(c, log, http.StatusForbidden, errors.New("not admin"), "Admin access required")
			return
		}

		c.Next()
	}
}
