package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"secondhand_market/internal/config"
	"secondhand_market/internal/middleware"
	"secondhand_market/internal/service"
	"secondhand_market/internal/ws"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Chat         *ChatHandler
	Offer        *OfferHandler
	Notification *NotificationHandler
	WebSocket    *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *ws.Hub, cfg *config.Config, log logger.Logger) *Handlers {
	dispatcher := ws.NewDispatcher(hub, services.Chat, services.RateLimit)
	return &Handlers{
		Health:       NewHealthHandler(),
		Chat:         NewChatHandler(services.Chat, log),
		Offer:        NewOfferHandler(services.Offer, log),
		Notification: NewNotificationHandler(services.Notification, log),
		WebSocket:    NewWebSocketHandler(services.Identity, hub, dispatcher, cfg.WebSocket, log),
	}
}

var errInvalidID = apperrors.New(apperrors.ErrInvalidInput, "invalid id")

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// currentUser reads the caller set by the auth middleware, writing a 401 if absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return userID, true
}
