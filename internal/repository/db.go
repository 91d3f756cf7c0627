package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"secondhand_market/internal/config"
	apperrors "secondhand_market/pkg/errors"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so every repository can
// run inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	poolCfg.MaxConnIdleTime = cfg.MaxIdleTime
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation
}

var (
	ErrChatRoomNotFound     = apperrors.New(apperrors.ErrNotFound, "chat room not found")
	ErrMessageNotFound      = apperrors.New(apperrors.ErrNotFound, "message not found")
	ErrOfferNotFound        = apperrors.New(apperrors.ErrNotFound, "offer not found")
	ErrListingNotFound      = apperrors.New(apperrors.ErrNotFound, "listing not found")
	ErrUserNotFound         = apperrors.New(apperrors.ErrNotFound, "user not found")
	ErrNotificationNotFound = apperrors.New(apperrors.ErrNotFound, "notification not found")
	ErrPendingOfferExists   = apperrors.New(apperrors.ErrConflict, "a pending offer already exists for this listing")
	ErrOfferNotPending      = apperrors.New(apperrors.ErrConflict, "offer has already been responded to")
	ErrSelfChat             = apperrors.New(apperrors.ErrInvalidOperation, "cannot open a chat on your own listing")
)
