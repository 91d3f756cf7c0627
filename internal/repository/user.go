package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"secondhand_market/internal/domain"
	"secondhand_market/pkg/logger"
)

type UserRepository interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)
}

type userRepository struct {
	db  DBTX
	log logger.Logger
}

func NewUserRepository(db DBTX, log logger.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

func (r *userRepository) GetProfile(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	query := `SELECT id, nickname, profile_image FROM users WHERE id = $1`

	p := &domain.UserProfile{}
	if err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Nickname, &p.ProfileImage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.Error("Failed to get user profile", "error", err, "user_id", id)
		return nil, err
	}
	return p, nil
}
