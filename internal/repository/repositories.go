package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"secondhand_market/pkg/logger"
)

type Repositories struct {
	ChatRoom     ChatRoomRepository
	Message      MessageRepository
	Offer        OfferRepository
	Notification NotificationRepository
	Listing      ListingRepository
	User         UserRepository
	Audit        AuditRepository
	RateLimit    RateLimitRepository
}

func NewRepositories(db DBTX, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		ChatRoom:     NewChatRoomRepository(db, log),
		Message:      NewMessageRepository(db, log),
		Offer:        NewOfferRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		Listing:      NewListingRepository(db, log),
		User:         NewUserRepository(db, log),
		Audit:        NewAuditRepository(db, log),
		RateLimit:    NewRateLimitRepository(redis, log),
	}
}

// Transactor runs fn with repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type pgTransactor struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	log   logger.Logger
}

func NewTransactor(pool *pgxpool.Pool, redis *redis.Client, log logger.Logger) Transactor {
	return &pgTransactor{pool: pool, redis: redis, log: log}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(repos *Repositories) error) error {
	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(NewRepositories(tx, t.redis, t.log))
	})
}
