package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID          int64                  `json:"id"`
	EventTime   time.Time              `json:"event_time"`
	ActorUserID *uuid.UUID             `json:"actor_user_id,omitempty"`
	ChatRoomID  *int64                 `json:"chat_room_id,omitempty"`
	EventType   string                 `json:"event_type"`
	Payload     map[string]interface{} `json:"payload"`
}

const (
	EventTypeOfferCreated  = "OFFER_CREATED"
	EventTypeOfferAccepted = "OFFER_ACCEPTED"
	EventTypeOfferRejected = "OFFER_REJECTED"
)
