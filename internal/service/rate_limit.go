package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"secondhand_market/internal/config"
	"secondhand_market/internal/repository"
	"secondhand_market/pkg/logger"
)

// Rate limited actions.
const (
	ActionSendMessage = "message"
	ActionCreateOffer = "offer"
)

const rateLimitWindow = time.Minute

type RateLimitService interface {
	// Allow counts one action by userID and fails with a too-many-requests
	// error once the per-minute budget is spent.
	Allow(ctx context.Context, action string, userID uuid.UUID) error
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	limits        map[string]int
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, cfg config.RateLimitConfig, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		limits: map[string]int{
			ActionSendMessage: cfg.MessagesPerMinute,
			ActionCreateOffer: cfg.OffersPerMinute,
		},
		log: log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, action string, userID uuid.UUID) error {
	limit, ok := s.limits[action]
	if !ok || limit <= 0 {
		return nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", action, userID)
	allowed, _, err := s.rateLimitRepo.Allow(ctx, key, limit, rateLimitWindow)
	if err != nil {
		// counters unavailable: let the request through
		s.log.Warn("Rate limit check failed", "error", err, "action", action)
		return nil
	}
	if !allowed {
		s.log.Info("Rate limit exceeded", "action", action, "user_id", userID)
		return ErrRateLimited
	}
	return nil
}
