package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"secondhand_market/internal/service"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

type CreateRoomRequest struct {
	ListingID int64 `json:"listingId" binding:"required"`
}

func (h *ChatHandler) CreateRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.New(apperrors.ErrInvalidInput, "listingId is required"))
		return
	}

	room, created, err := h.chatService.GetOrCreateRoom(c.Request.Context(), req.ListingID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, room)
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rooms, err := h.chatService.ListRooms(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *ChatHandler) GetRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	detail, err := h.chatService.GetRoomDetail(c.Request.Context(), roomID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.New(apperrors.ErrInvalidInput, "invalid request body"))
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), roomID, userID, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
