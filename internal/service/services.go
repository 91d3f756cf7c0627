package service

import (
	"secondhand_market/internal/config"
	"secondhand_market/internal/repository"
	"secondhand_market/pkg/logger"
)

type Services struct {
	Identity     IdentityService
	Chat         ChatService
	Offer        OfferService
	Notification NotificationService
	RateLimit    RateLimitService
}

func NewServices(repos *repository.Repositories, tx repository.Transactor, publisher EventPublisher, cfg *config.Config, log logger.Logger) *Services {
	pipeline := newMessagePipeline(publisher, log)
	chat := NewChatService(repos, tx, pipeline, log)

	return &Services{
		Identity:     NewIdentityService(cfg.Auth, log),
		Chat:         chat,
		Offer:        NewOfferService(repos, tx, chat, pipeline, log),
		Notification: NewNotificationService(repos.Notification, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, cfg.RateLimit, log),
	}
}
