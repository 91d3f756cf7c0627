package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"secondhand_market/internal/config"
	"secondhand_market/internal/middleware"
	"secondhand_market/internal/service"
	"secondhand_market/internal/ws"
	"secondhand_market/pkg/logger"
)

type WebSocketHandler struct {
	identity       service.IdentityService
	hub            *ws.Hub
	dispatcher     *ws.Dispatcher
	allowedOrigins []string
	sendBuffer     int
	maxMessageSize int64
	upgrader       websocket.Upgrader
	log            logger.Logger
}

func NewWebSocketHandler(identity service.IdentityService, hub *ws.Hub, dispatcher *ws.Dispatcher, cfg config.WebSocketConfig, log logger.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		identity:       identity,
		hub:            hub,
		dispatcher:     dispatcher,
		allowedOrigins: cfg.AllowedOrigins,
		sendBuffer:     cfg.SendBuffer,
		maxMessageSize: cfg.MaxMessageSize,
		log:            log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	h.log.Warn("Rejected websocket origin", "origin", origin)
	return false
}

// Connect authenticates the handshake token and upgrades the connection.
// The token comes from ?token= or the Authorization header.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	identity, err := h.identity.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.log.Debug("Websocket authentication failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Failed to upgrade connection", "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, identity.UserID, h.dispatcher, h.sendBuffer, h.maxMessageSize)
	h.hub.Register(client)
	h.log.Debug("Realtime client connected", "user_id", identity.UserID)

	go client.WritePump()
	go client.ReadPump()
}
