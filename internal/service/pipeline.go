package service

import (
	"context"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/repository"
	"secondhand_market/pkg/logger"
)

// messagePipeline is the persist and fan-out path shared by plain chat
// messages and offer messages.
type messagePipeline struct {
	publisher EventPublisher
	log       logger.Logger
}

func newMessagePipeline(publisher EventPublisher, log logger.Logger) *messagePipeline {
	if publisher == nil {
		publisher = NewNopPublisher()
	}
	return &messagePipeline{publisher: publisher, log: log}
}

// appendMessage stores a message and moves the room summary to it. Callers run
// it inside the transaction of the surrounding state change.
func (p *messagePipeline) appendMessage(ctx context.Context, repos *repository.Repositories, room *domain.ChatRoom,
	senderID uuid.UUID, content string, msgType domain.MessageType, summary string) (*domain.Message, error) {
	msg := &domain.Message{
		ChatRoomID: room.ID,
		SenderID:   senderID,
		Content:    content,
		Type:       msgType,
	}
	if err := repos.Message.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := repos.ChatRoom.UpdateSummary(ctx, room.ID, summary, msg.CreatedAt); err != nil {
		return nil, err
	}
	return msg, nil
}

// fanOut pushes a committed message to the room channel and its summary to
// the other participant. Delivery failures are logged and never undo the write.
func (p *messagePipeline) fanOut(ctx context.Context, room *domain.ChatRoom, msg *domain.Message, summary string) {
	roomEvent := domain.Event{Name: domain.EventNewMessage, Data: msg}
	if err := p.publisher.Publish(ctx, domain.RoomChannel(room.ID), roomEvent); err != nil {
		p.log.Warn("Failed to publish message", "error", err, "room_id", room.ID, "message_id", msg.ID)
	}

	recipient := room.Counterpart(msg.SenderID)
	updated := domain.Event{
		Name: domain.EventChatUpdated,
		Data: domain.ChatUpdated{RoomID: room.ID, LastMessage: summary},
	}
	if err := p.publisher.Publish(ctx, domain.UserChannel(recipient), updated); err != nil {
		p.log.Warn("Failed to publish chat update", "error", err, "room_id", room.ID, "user_id", recipient)
	}
}
