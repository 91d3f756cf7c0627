package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/service"
	apperrors "secondhand_market/pkg/errors"
)

// Inbound event names.
const (
	EventJoinRoom     = "join_room"
	EventLeaveRoom    = "leave_room"
	EventSendMessage  = "send_message"
	EventReadMessages = "read_messages"
)

// Inbound is a client-to-server event.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RoomID accepts a room id sent as a number, a numeric string or {"roomId": ...}.
type RoomID int64

func (r *RoomID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			RoomID RoomID `json:"roomId"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*r = obj.RoomID
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*r = RoomID(v)
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid room id %q", v)
		}
		*r = RoomID(id)
	default:
		return fmt.Errorf("invalid room id %s", string(b))
	}
	return nil
}

type sendMessageData struct {
	RoomID  RoomID `json:"roomId"`
	Content string `json:"content"`
}

// ChatActions is the part of the chat service reachable over the realtime channel.
type ChatActions interface {
	SendMessage(ctx context.Context, roomID int64, senderID uuid.UUID, content string) (*domain.Message, error)
	MarkRoomRead(ctx context.Context, roomID int64, readerID uuid.UUID) (int64, error)
}

// Limiter throttles realtime sends the same way as the REST endpoint.
type Limiter interface {
	Allow(ctx context.Context, action string, userID uuid.UUID) error
}

// Dispatcher routes inbound events. Joining a room needs no membership
// check since sending and reading re-check it.
type Dispatcher struct {
	hub     *Hub
	chat    ChatActions
	limiter Limiter
}

func NewDispatcher(hub *Hub, chat ChatActions, limiter Limiter) *Dispatcher {
	return &Dispatcher{hub: hub, chat: chat, limiter: limiter}
}

func (d *Dispatcher) Dispatch(ctx context.Context, c *Client, msg Inbound) error {
	switch msg.Event {
	case EventJoinRoom, EventLeaveRoom, EventReadMessages:
		var roomID RoomID
		if err := json.Unmarshal(msg.Data, &roomID); err != nil {
			return apperrors.New(apperrors.ErrInvalidInput, "invalid room id")
		}
		channel := domain.RoomChannel(int64(roomID))
		switch msg.Event {
		case EventJoinRoom:
			d.hub.Join(c, channel)
		case EventLeaveRoom:
			d.hub.Leave(c, channel)
		default:
			_, err := d.chat.MarkRoomRead(ctx, int64(roomID), c.userID)
			return err
		}
		return nil

	case EventSendMessage:
		var data sendMessageData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return apperrors.New(apperrors.ErrInvalidInput, "invalid message payload")
		}
		if d.limiter != nil {
			if err := d.limiter.Allow(ctx, service.ActionSendMessage, c.userID); err != nil {
				return err
			}
		}
		_, err := d.chat.SendMessage(ctx, int64(data.RoomID), c.userID, data.Content)
		return err

	default:
		return apperrors.New(apperrors.ErrInvalidInput, "unknown event "+strconv.Quote(msg.Event))
	}
}
