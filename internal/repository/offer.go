package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"secondhand_market/internal/domain"
	"secondhand_market/pkg/logger"
)

const pendingOfferIndex = "price_offers_one_pending_idx"

type OfferRepository interface {
	Create(ctx context.Context, offer *domain.PriceOffer) error
	GetByID(ctx context.Context, id int64) (*domain.PriceOffer, error)
	// Resolve moves a PENDING offer to status. It fails with a conflict when the
	// offer is no longer pending, so only one caller can win.
	Resolve(ctx context.Context, id int64, status domain.OfferStatus) (*domain.PriceOffer, error)
}

type offerRepository struct {
	db  DBTX
	log logger.Logger
}

func NewOfferRepository(db DBTX, log logger.Logger) OfferRepository {
	return &offerRepository{db: db, log: log}
}

const offerColumns = `id, product_id, buyer_id, seller_id, chat_room_id, message_id, offer_price, status, responded_at, created_at`

func scanOffer(row pgx.Row) (*domain.PriceOffer, error) {
	offer := &domain.PriceOffer{}
	var status string
	err := row.Scan(
		&offer.ID, &offer.ListingID, &offer.BuyerID, &offer.SellerID, &offer.ChatRoomID,
		&offer.MessageID, &offer.OfferPrice, &status, &offer.RespondedAt, &offer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	offer.Status = domain.OfferStatus(status)
	return offer, nil
}

func (r *offerRepository) Create(ctx context.Context, offer *domain.PriceOffer) error {
	query := `
		INSERT INTO price_offers (product_id, buyer_id, seller_id, chat_room_id, message_id, offer_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + offerColumns

	created, err := scanOffer(r.db.QueryRow(ctx, query,
		offer.ListingID, offer.BuyerID, offer.SellerID, offer.ChatRoomID, offer.MessageID, offer.OfferPrice,
	))
	if err != nil {
		if isUniqueViolation(err, pendingOfferIndex) {
			r.log.Warn("Pending offer already exists", "listing_id", offer.ListingID, "buyer_id", offer.BuyerID)
			return ErrPendingOfferExists
		}
		r.log.Error("Failed to create offer", "error", err, "listing_id", offer.ListingID)
		return err
	}

	*offer = *created
	return nil
}

func (r *offerRepository) GetByID(ctx context.Context, id int64) (*domain.PriceOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM price_offers WHERE id = $1`

	offer, err := scanOffer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		r.log.Error("Failed to get offer", "error", err, "offer_id", id)
		return nil, err
	}
	return offer, nil
}

func (r *offerRepository) Resolve(ctx context.Context, id int64, status domain.OfferStatus) (*domain.PriceOffer, error) {
	query := `
		UPDATE price_offers
		SET status = $2, responded_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + offerColumns

	offer, err := scanOffer(r.db.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferNotPending
		}
		r.log.Error("Failed to resolve offer", "error", err, "offer_id", id)
		return nil, err
	}
	return offer, nil
}
