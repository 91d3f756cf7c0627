package repository

import (
	"context"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	"secondhand_market/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	UpdateContent(ctx context.Context, messageID int64, content string) error
	ListByRoom(ctx context.Context, roomID int64) ([]*domain.Message, error)
	// MarkRead flags every unread message in the room not sent by readerID and
	// returns how many rows changed.
	MarkRead(ctx context.Context, roomID int64, readerID uuid.UUID) (int64, error)
}

type messageRepository struct {
	db  DBTX
	log logger.Logger
}

func NewMessageRepository(db DBTX, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (chat_room_id, sender_id, content, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.ChatRoomID, message.SenderID, message.Content, string(message.Type),
	).Scan(&message.ID, &message.IsRead, &message.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create message", "error", err, "room_id", message.ChatRoomID)
		return err
	}

	return nil
}

func (r *messageRepository) UpdateContent(ctx context.Context, messageID int64, content string) error {
	tag, err := r.db.Exec(ctx, `UPDATE messages SET content = $2 WHERE id = $1`, messageID, content)
	if err != nil {
		r.log.Error("Failed to update message content", "error", err, "message_id", messageID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *messageRepository) ListByRoom(ctx context.Context, roomID int64) ([]*domain.Message, error) {
	query := `
		SELECT id, chat_room_id, sender_id, content, type, is_read, created_at
		FROM messages
		WHERE chat_room_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err, "room_id", roomID)
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		message := &domain.Message{}
		var msgType string
		err := rows.Scan(
			&message.ID, &message.ChatRoomID, &message.SenderID, &message.Content,
			&msgType, &message.IsRead, &message.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		message.Type = domain.MessageType(msgType)
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Failed to iterate messages", "error", err)
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, roomID int64, readerID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = true
		WHERE chat_room_id = $1 AND sender_id <> $2 AND is_read = false
	`

	tag, err := r.db.Exec(ctx, query, roomID, readerID)
	if err != nil {
		r.log.Error("Failed to mark messages read", "error", err, "room_id", roomID)
		return 0, err
	}
	return tag.RowsAffected(), nil
}
