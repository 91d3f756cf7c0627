package domain

import (
	"time"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusRejected OfferStatus = "REJECTED"
)

// OfferDecision is the seller's answer to a pending offer.
type OfferDecision string

const (
	OfferDecisionAccept OfferDecision = "ACCEPT"
	OfferDecisionReject OfferDecision = "REJECT"
)

// Status returns the terminal status the decision moves an offer to.
func (d OfferDecision) Status() OfferStatus {
	if d == OfferDecisionAccept {
		return OfferStatusAccepted
	}
	return OfferStatusRejected
}

func (d OfferDecision) Valid() bool {
	return d == OfferDecisionAccept || d == OfferDecisionReject
}

type PriceOffer struct {
	ID          int64       `json:"id"`
	ListingID   int64       `json:"listingId"`
	BuyerID     uuid.UUID   `json:"buyerId"`
	SellerID    uuid.UUID   `json:"sellerId"`
	ChatRoomID  int64       `json:"chatRoomId"`
	MessageID   int64       `json:"messageId"`
	OfferPrice  int         `json:"offerPrice"`
	Status      OfferStatus `json:"status"`
	RespondedAt *time.Time  `json:"respondedAt"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// OfferResult is returned by offer creation.
type OfferResult struct {
	Offer      *PriceOffer `json:"offer"`
	ChatRoomID int64       `json:"chatRoomId"`
}
