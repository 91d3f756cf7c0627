package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/repository"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

type OfferService interface {
	CreateOffer(ctx context.Context, listingID int64, buyerID uuid.UUID, offerPrice int) (*domain.OfferResult, error)
	RespondToOffer(ctx context.Context, offerID int64, actingUserID uuid.UUID, decision domain.OfferDecision) (*domain.PriceOffer, error)
}

type offerService struct {
	repos    *repository.Repositories
	tx       repository.Transactor
	rooms    RoomResolver
	pipeline *messagePipeline
	log      logger.Logger
}

func NewOfferService(repos *repository.Repositories, tx repository.Transactor, rooms RoomResolver, pipeline *messagePipeline, log logger.Logger) OfferService {
	return &offerService{
		repos:    repos,
		tx:       tx,
		rooms:    rooms,
		pipeline: pipeline,
		log:      log,
	}
}

func (s *offerService) CreateOffer(ctx context.Context, listingID int64, buyerID uuid.UUID, offerPrice int) (*domain.OfferResult, error) {
	if offerPrice <= 0 {
		return nil, ErrInvalidOfferPrice
	}

	listing, err := s.repos.Listing.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	switch {
	case listing.SellerID == buyerID:
		return nil, ErrSelfOffer
	case listing.Status != domain.ListingStatusSale:
		return nil, ErrListingUnavailable
	case !listing.AllowOffer:
		return nil, ErrOffersDisabled
	}

	room, _, err := s.rooms.GetOrCreateRoom(ctx, listingID, buyerID)
	if err != nil {
		return nil, err
	}

	buyerName := s.nickname(ctx, buyerID, fallbackBuyerName)
	summary := offerSummary(offerPrice)

	var (
		offer *domain.PriceOffer
		msg   *domain.Message
	)
	err = s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		payload := domain.PriceOfferPayload{OfferPrice: offerPrice, Type: domain.MessageTypePriceOffer}
		content, err := encodePayload(payload)
		if err != nil {
			return err
		}

		msg, err = s.pipeline.appendMessage(ctx, repos, room, buyerID, content, domain.MessageTypePriceOffer, summary)
		if err != nil {
			return err
		}

		offer = &domain.PriceOffer{
			ListingID:  listing.ID,
			BuyerID:    buyerID,
			SellerID:   listing.SellerID,
			ChatRoomID: room.ID,
			MessageID:  msg.ID,
			OfferPrice: offerPrice,
		}
		if err := repos.Offer.Create(ctx, offer); err != nil {
			return err
		}

		// the message row exists before the offer, so its payload learns the id afterwards
		payload.OfferID = &offer.ID
		if content, err = encodePayload(payload); err != nil {
			return err
		}
		if err := repos.Message.UpdateContent(ctx, msg.ID, content); err != nil {
			return err
		}
		msg.Content = content

		if err := repos.Notification.Create(ctx, &domain.Notification{
			UserID: listing.SellerID,
			Type:   domain.NotificationTypePrice,
			Title:  "가격 제안",
			Body:   offerNotificationBody(buyerName, offerPrice),
			Link:   chatLink(room.ID),
		}); err != nil {
			return err
		}

		return logOfferEvent(ctx, repos.Audit, buyerID, offer, domain.EventTypeOfferCreated)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.log.Error("Failed to create offer", "error", err, "listing_id", listingID, "buyer_id", buyerID)
		}
		return nil, err
	}

	s.log.Info("Price offer created", "offer_id", offer.ID, "listing_id", listingID, "room_id", room.ID)
	s.pipeline.fanOut(ctx, room, msg, summary)

	return &domain.OfferResult{Offer: offer, ChatRoomID: room.ID}, nil
}

func (s *offerService) RespondToOffer(ctx context.Context, offerID int64, actingUserID uuid.UUID, decision domain.OfferDecision) (*domain.PriceOffer, error) {
	if !decision.Valid() {
		return nil, ErrInvalidDecision
	}

	current, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if current.SellerID != actingUserID {
		return nil, ErrNotOfferSeller
	}
	if current.Status != domain.OfferStatusPending {
		return nil, repository.ErrOfferNotPending
	}

	room, err := s.repos.ChatRoom.GetByID(ctx, current.ChatRoomID)
	if err != nil {
		return nil, err
	}

	accepted := decision == domain.OfferDecisionAccept
	sellerName := s.nickname(ctx, actingUserID, fallbackSellerName)
	summary := resultSummary(accepted)
	eventType := domain.EventTypeOfferRejected
	if accepted {
		eventType = domain.EventTypeOfferAccepted
	}

	var (
		offer *domain.PriceOffer
		msg   *domain.Message
	)
	err = s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		var err error
		offer, err = repos.Offer.Resolve(ctx, offerID, decision.Status())
		if err != nil {
			return err
		}

		content, err := encodePayload(domain.PriceResultPayload{
			OfferID:    offer.ID,
			OfferPrice: offer.OfferPrice,
			Status:     offer.Status,
			Type:       domain.MessageTypePriceResult,
		})
		if err != nil {
			return err
		}

		msg, err = s.pipeline.appendMessage(ctx, repos, room, actingUserID, content, domain.MessageTypePriceResult, summary)
		if err != nil {
			return err
		}

		if err := repos.Notification.Create(ctx, &domain.Notification{
			UserID: offer.BuyerID,
			Type:   domain.NotificationTypePrice,
			Title:  resultNotificationTitle(accepted),
			Body:   resultNotificationBody(sellerName, offer.OfferPrice, accepted),
			Link:   chatLink(room.ID),
		}); err != nil {
			return err
		}

		return logOfferEvent(ctx, repos.Audit, actingUserID, offer, eventType)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.log.Error("Failed to respond to offer", "error", err, "offer_id", offerID)
		}
		return nil, err
	}

	s.log.Info("Price offer resolved", "offer_id", offer.ID, "status", offer.Status)
	s.pipeline.fanOut(ctx, room, msg, summary)

	return offer, nil
}

func (s *offerService) nickname(ctx context.Context, userID uuid.UUID, fallback string) string {
	profile, err := s.repos.User.GetProfile(ctx, userID)
	if err != nil || profile.Nickname == "" {
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.log.Warn("Failed to load nickname", "error", err, "user_id", userID)
		}
		return fallback
	}
	return profile.Nickname
}

func encodePayload(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode message payload: %w", err)
	}
	return string(b), nil
}

func chatLink(roomID int64) string {
	return fmt.Sprintf("/chats/%d", roomID)
}
