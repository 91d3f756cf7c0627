package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Realtime event names.
const (
	EventNewMessage  = "new_message"
	EventChatUpdated = "chat_updated"
)

// Event is a server-to-client realtime push.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// ChatUpdated is the payload pushed to a participant's personal channel.
type ChatUpdated struct {
	RoomID      int64  `json:"roomId"`
	LastMessage string `json:"lastMessage"`
}

func RoomChannel(roomID int64) string {
	return fmt.Sprintf("chat:%d", roomID)
}

func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
