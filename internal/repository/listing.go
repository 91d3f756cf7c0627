package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"secondhand_market/internal/domain"
	"secondhand_market/pkg/logger"
)

// ListingRepository reads products owned by the listing service.
type ListingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	GetSummary(ctx context.Context, id int64) (*domain.ListingSummary, error)
}

type listingRepository struct {
	db  DBTX
	log logger.Logger
}

func NewListingRepository(db DBTX, log logger.Logger) ListingRepository {
	return &listingRepository{db: db, log: log}
}

func (r *listingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	query := `
		SELECT id, seller_id, title, price, is_free, status, allow_offer
		FROM products
		WHERE id = $1
	`

	l := &domain.Listing{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.SellerID, &l.Title, &l.Price, &l.IsFree, &l.Status, &l.AllowOffer,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		r.log.Error("Failed to get listing", "error", err, "listing_id", id)
		return nil, err
	}
	return l, nil
}

func (r *listingRepository) GetSummary(ctx context.Context, id int64) (*domain.ListingSummary, error) {
	query := `
		SELECT p.id, p.title, p.price, p.is_free, p.status,
			(SELECT pi.image_url FROM product_images pi
				WHERE pi.product_id = p.id
				ORDER BY pi.display_order ASC LIMIT 1)
		FROM products p
		WHERE p.id = $1
	`

	s := &domain.ListingSummary{}
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Title, &s.Price, &s.IsFree, &s.Status, &s.ThumbnailURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		r.log.Error("Failed to get listing summary", "error", err, "listing_id", id)
		return nil, err
	}
	return s, nil
}
