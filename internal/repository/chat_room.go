package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"secondhand_market/internal/domain"
	"secondhand_market/pkg/logger"
)

type ChatRoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error)
	GetByListingAndBuyer(ctx context.Context, listingID int64, buyerID uuid.UUID) (*domain.ChatRoom, error)
	// CreateIfAbsent inserts room unless one already exists for its listing and
	// buyer. In both cases room is filled with the stored row.
	CreateIfAbsent(ctx context.Context, room *domain.ChatRoom) (bool, error)
	UpdateSummary(ctx context.Context, roomID int64, summary string, at time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ChatRoomListItem, error)
}

type chatRoomRepository struct {
	db  DBTX
	log logger.Logger
}

func NewChatRoomRepository(db DBTX, log logger.Logger) ChatRoomRepository {
	return &chatRoomRepository{db: db, log: log}
}

const chatRoomColumns = `id, product_id, buyer_id, seller_id, last_message, last_message_at, created_at`

func scanChatRoom(row pgx.Row, room *domain.ChatRoom) error {
	return row.Scan(
		&room.ID, &room.ListingID, &room.BuyerID, &room.SellerID,
		&room.LastMessage, &room.LastMessageAt, &room.CreatedAt,
	)
}

func (r *chatRoomRepository) GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	query := `SELECT ` + chatRoomColumns + ` FROM chat_rooms WHERE id = $1`

	room := &domain.ChatRoom{}
	if err := scanChatRoom(r.db.QueryRow(ctx, query, id), room); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatRoomNotFound
		}
		r.log.Error("Failed to get chat room", "error", err, "room_id", id)
		return nil, err
	}
	return room, nil
}

func (r *chatRoomRepository) GetByListingAndBuyer(ctx context.Context, listingID int64, buyerID uuid.UUID) (*domain.ChatRoom, error) {
	query := `SELECT ` + chatRoomColumns + ` FROM chat_rooms WHERE product_id = $1 AND buyer_id = $2`

	room := &domain.ChatRoom{}
	if err := scanChatRoom(r.db.QueryRow(ctx, query, listingID, buyerID), room); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatRoomNotFound
		}
		r.log.Error("Failed to get chat room by listing", "error", err, "listing_id", listingID)
		return nil, err
	}
	return room, nil
}

func (r *chatRoomRepository) CreateIfAbsent(ctx context.Context, room *domain.ChatRoom) (bool, error) {
	query := `
		INSERT INTO chat_rooms (product_id, buyer_id, seller_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, buyer_id) DO NOTHING
		RETURNING ` + chatRoomColumns

	err := scanChatRoom(r.db.QueryRow(ctx, query, room.ListingID, room.BuyerID, room.SellerID), room)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		// lost the race against a concurrent creator
	case isCheckViolation(err):
		return false, ErrSelfChat
	default:
		r.log.Error("Failed to create chat room", "error", err)
		return false, err
	}

	if room.ListingID == nil {
		return false, ErrChatRoomNotFound
	}
	existing, err := r.GetByListingAndBuyer(ctx, *room.ListingID, room.BuyerID)
	if err != nil {
		return false, err
	}
	*room = *existing
	return false, nil
}

func (r *chatRoomRepository) UpdateSummary(ctx context.Context, roomID int64, summary string, at time.Time) error {
	query := `
		UPDATE chat_rooms
		SET last_message = $2, last_message_at = $3
		WHERE id = $1 AND (last_message_at IS NULL OR last_message_at <= $3)
	`

	if _, err := r.db.Exec(ctx, query, roomID, summary, at); err != nil {
		r.log.Error("Failed to update chat room summary", "error", err, "room_id", roomID)
		return err
	}
	return nil
}

func (r *chatRoomRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ChatRoomListItem, error) {
	query := `
		SELECT r.id, r.product_id, r.buyer_id, r.seller_id, r.last_message, r.last_message_at, r.created_at,
			u.nickname, u.profile_image,
			(SELECT pi.image_url FROM product_images pi
				WHERE pi.product_id = r.product_id
				ORDER BY pi.display_order ASC LIMIT 1),
			(SELECT COUNT(*) FROM messages m
				WHERE m.chat_room_id = r.id AND m.sender_id <> $1 AND m.is_read = false)
		FROM chat_rooms r
		LEFT JOIN users u ON u.id = CASE WHEN r.buyer_id = $1 THEN r.seller_id ELSE r.buyer_id END
		WHERE r.buyer_id = $1 OR r.seller_id = $1
		ORDER BY COALESCE(r.last_message_at, r.created_at) DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list chat rooms", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.ChatRoomListItem, 0)
	for rows.Next() {
		item := &domain.ChatRoomListItem{}
		var nickname, profileImage *string
		var unread int64
		err := rows.Scan(
			&item.ID, &item.ListingID, &item.BuyerID, &item.SellerID,
			&item.LastMessage, &item.LastMessageAt, &item.CreatedAt,
			&nickname, &profileImage, &item.ThumbnailURL, &unread,
		)
		if err != nil {
			r.log.Error("Failed to scan chat room", "error", err)
			return nil, err
		}
		item.OtherUser = &domain.UserProfile{
			ID:           item.Counterpart(userID),
			ProfileImage: profileImage,
		}
		if nickname != nil {
			item.OtherUser.Nickname = *nickname
		}
		item.UnreadCount = int(unread)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Failed to iterate chat rooms", "error", err)
		return nil, err
	}

	return items, nil
}
