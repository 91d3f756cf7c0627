package service

import (
	"context"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/repository"
	"secondhand_market/pkg/logger"
)

const notificationListLimit = 50

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID int64, userID uuid.UUID) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	log              logger.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, log logger.Logger) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		log:              log,
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, notificationListLimit)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID int64, userID uuid.UUID) (*domain.Notification, error) {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.log.Debug("Notifications marked read", "user_id", userID, "count", n)
	return n, nil
}
