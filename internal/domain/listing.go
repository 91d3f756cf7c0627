package domain

import (
	"github.com/google/uuid"
)

const ListingStatusSale = "SALE"

// Listing is the part of a marketplace product the chat core reads.
type Listing struct {
	ID         int64     `json:"id"`
	SellerID   uuid.UUID `json:"sellerId"`
	Title      string    `json:"title"`
	Price      *int      `json:"price"`
	IsFree     bool      `json:"isFree"`
	Status     string    `json:"status"`
	AllowOffer bool      `json:"allowOffer"`
}

// AcceptsOffers reports whether a buyer may currently propose a price.
func (l *Listing) AcceptsOffers() bool {
	return l.Status == ListingStatusSale && l.AllowOffer
}

type ListingSummary struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Price        *int    `json:"price"`
	IsFree       bool    `json:"isFree"`
	Status       string  `json:"status"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}
