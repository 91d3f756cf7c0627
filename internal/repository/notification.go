package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"secondhand_market/internal/domain"
	"secondhand_market/pkg/logger"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error)
	// MarkRead only touches a notification owned by userID.
	MarkRead(ctx context.Context, id int64, userID uuid.UUID) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db  DBTX
	log logger.Logger
}

func NewNotificationRepository(db DBTX, log logger.Logger) NotificationRepository {
	return &notificationRepository{db: db, log: log}
}

const notificationColumns = `id, user_id, type, title, body, link, is_read, created_at`

func scanNotification(row pgx.Row, n *domain.Notification) error {
	return row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Link, &n.IsRead, &n.CreatedAt)
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, body, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at
	`

	err := r.db.QueryRow(ctx, query,
		notification.UserID, notification.Type, notification.Title, notification.Body, notification.Link,
	).Scan(&notification.ID, &notification.IsRead, &notification.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create notification", "error", err, "user_id", notification.UserID)
		return err
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.log.Error("Failed to list notifications", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		if err := scanNotification(rows, n); err != nil {
			r.log.Error("Failed to scan notification", "error", err)
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Failed to iterate notifications", "error", err)
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64, userID uuid.UUID) (*domain.Notification, error) {
	query := `
		UPDATE notifications SET is_read = true
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	n := &domain.Notification{}
	if err := scanNotification(r.db.QueryRow(ctx, query, id, userID), n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		r.log.Error("Failed to mark notification read", "error", err, "notification_id", id)
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		r.log.Error("Failed to mark all notifications read", "error", err, "user_id", userID)
		return 0, err
	}
	return tag.RowsAffected(), nil
}
