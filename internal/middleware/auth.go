package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"secondhand_market/internal/service"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
)

type AuthMiddleware struct {
	identity service.IdentityService
	log      logger.Logger
}

func NewAuthMiddleware(identity service.IdentityService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
		log:      log,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		token, ok := BearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		identity, err := m.identity.Authenticate(c.Request.Context(), token)
		if err != nil {
			if apperrors.HTTPStatusFromError(err) != http.StatusUnauthorized {
				m.log.Error("Identity verification failed", "error", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ctxUserID, identity.UserID)
		c.Set(ctxUserEmail, identity.Email)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetUserID returns the authenticated caller set by RequireAuth.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
