package service

import (
	apperrors "secondhand_market/pkg/errors"
)

var (
	ErrNotParticipant     = apperrors.New(apperrors.ErrForbidden, "you are not a participant of this chat room")
	ErrEmptyMessage       = apperrors.New(apperrors.ErrInvalidInput, "message content is required")
	ErrMessageTooLong     = apperrors.New(apperrors.ErrInvalidInput, "message content is too long")
	ErrInvalidOfferPrice  = apperrors.New(apperrors.ErrInvalidInput, "offer price must be greater than zero")
	ErrInvalidDecision    = apperrors.New(apperrors.ErrInvalidInput, "decision must be ACCEPT or REJECT")
	ErrSelfOffer          = apperrors.New(apperrors.ErrInvalidOperation, "cannot make an offer on your own listing")
	ErrListingUnavailable = apperrors.New(apperrors.ErrInvalidOperation, "listing is not available for offers")
	ErrOffersDisabled     = apperrors.New(apperrors.ErrInvalidOperation, "listing does not accept price offers")
	ErrNotOfferSeller     = apperrors.New(apperrors.ErrForbidden, "only the seller can respond to this offer")
	ErrRateLimited        = apperrors.New(apperrors.ErrTooManyRequests, "too many requests, slow down")
)
