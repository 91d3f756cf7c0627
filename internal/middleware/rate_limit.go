package middleware

import (
	"github.com/gin-gonic/gin"

	"secondhand_market/internal/service"
	"secondhand_market/pkg/logger"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		log:              log,
	}
}

// Limit throttles action per authenticated user. It must run after RequireAuth.
func (m *RateLimitMiddleware) Limit(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Next()
			return
		}

		if err := m.rateLimitService.Allow(c.Request.Context(), action, userID); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
