package repository

import (
	"context"
	"fmt"

	"secondhand_market/pkg/logger"
)

// schema is applied in order at startup. Every statement is idempotent.
// users, products and product_images belong to the profile and listing
// services; they are declared here so a fresh database is usable.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		nickname      TEXT NOT NULL UNIQUE,
		profile_image TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGSERIAL PRIMARY KEY,
		seller_id   UUID NOT NULL REFERENCES users(id),
		title       TEXT NOT NULL,
		description TEXT,
		price       INTEGER,
		is_free     BOOLEAN NOT NULL DEFAULT false,
		status      TEXT NOT NULL DEFAULT 'SALE',
		allow_offer BOOLEAN NOT NULL DEFAULT true,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS product_images (
		id            BIGSERIAL PRIMARY KEY,
		product_id    BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		image_url     TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS chat_rooms (
		id              BIGSERIAL PRIMARY KEY,
		product_id      BIGINT REFERENCES products(id),
		buyer_id        UUID NOT NULL REFERENCES users(id),
		seller_id       UUID NOT NULL REFERENCES users(id),
		last_message    TEXT,
		last_message_at TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT chat_rooms_product_buyer_key UNIQUE (product_id, buyer_id),
		CONSTRAINT chat_rooms_distinct_participants CHECK (buyer_id <> seller_id)
	)`,
	`CREATE INDEX IF NOT EXISTS chat_rooms_seller_idx ON chat_rooms (seller_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id           BIGSERIAL PRIMARY KEY,
		chat_room_id BIGINT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
		sender_id    UUID NOT NULL REFERENCES users(id),
		content      TEXT NOT NULL,
		type         TEXT NOT NULL DEFAULT 'TEXT' CHECK (type IN ('TEXT', 'PRICE_OFFER', 'PRICE_RESULT')),
		is_read      BOOLEAN NOT NULL DEFAULT false,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_room_created_idx ON messages (chat_room_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS price_offers (
		id           BIGSERIAL PRIMARY KEY,
		product_id   BIGINT NOT NULL REFERENCES products(id),
		buyer_id     UUID NOT NULL REFERENCES users(id),
		seller_id    UUID NOT NULL REFERENCES users(id),
		chat_room_id BIGINT NOT NULL REFERENCES chat_rooms(id),
		message_id   BIGINT NOT NULL REFERENCES messages(id),
		offer_price  INTEGER NOT NULL CHECK (offer_price > 0),
		status       TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'ACCEPTED', 'REJECTED')),
		responded_at TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS price_offers_one_pending_idx
		ON price_offers (product_id, buyer_id) WHERE status = 'PENDING'`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGSERIAL PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id),
		type       TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		body       TEXT NOT NULL DEFAULT '',
		link       TEXT NOT NULL DEFAULT '',
		is_read    BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_created_idx ON notifications (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id            BIGSERIAL PRIMARY KEY,
		event_time    TIMESTAMPTZ NOT NULL DEFAULT now(),
		actor_user_id UUID,
		chat_room_id  BIGINT,
		event_type    TEXT NOT NULL,
		payload       JSONB NOT NULL DEFAULT '{}'::jsonb
	)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db DBTX, log logger.Logger) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			log.Error("Migration statement failed", "index", i, "error", err)
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	log.Info("Database schema is up to date", "statements", len(schema))
	return nil
}
