package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/repository"
)

// logOfferEvent records an offer transition in the audit trail of the
// surrounding transaction.
func logOfferEvent(ctx context.Context, repo repository.AuditRepository, actorID uuid.UUID, offer *domain.PriceOffer, eventType string) error {
	roomID := offer.ChatRoomID
	return repo.CreateLog(ctx, &domain.AuditLog{
		EventTime:   time.Now(),
		ActorUserID: &actorID,
		ChatRoomID:  &roomID,
		EventType:   eventType,
		Payload: map[string]interface{}{
			"offer_id":    offer.ID,
			"listing_id":  offer.ListingID,
			"offer_price": offer.OfferPrice,
			"status":      string(offer.Status),
		},
	})
}
