package service

import (
	"context"

	"secondhand_market/internal/domain"
)

// EventPublisher delivers a realtime event to every subscriber of channel.
// Implementations must not block on slow subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event domain.Event) error
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event.
func NewNopPublisher() EventPublisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, domain.Event) error { return nil }
