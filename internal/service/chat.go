package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/repository"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

// RoomResolver finds or opens the chat room between a listing's seller and a buyer.
type RoomResolver interface {
	GetOrCreateRoom(ctx context.Context, listingID int64, buyerID uuid.UUID) (*domain.ChatRoom, bool, error)
}

type ChatService interface {
	RoomResolver
	ListRooms(ctx context.Context, userID uuid.UUID) ([]*domain.ChatRoomListItem, error)
	// GetRoomDetail returns the conversation and marks the counterpart's messages read.
	GetRoomDetail(ctx context.Context, roomID int64, userID uuid.UUID) (*domain.ChatRoomDetail, error)
	SendMessage(ctx context.Context, roomID int64, senderID uuid.UUID, content string) (*domain.Message, error)
	MarkRoomRead(ctx context.Context, roomID int64, readerID uuid.UUID) (int64, error)
}

type chatService struct {
	repos    *repository.Repositories
	tx       repository.Transactor
	pipeline *messagePipeline
	log      logger.Logger
}

func NewChatService(repos *repository.Repositories, tx repository.Transactor, pipeline *messagePipeline, log logger.Logger) ChatService {
	return &chatService{
		repos:    repos,
		tx:       tx,
		pipeline: pipeline,
		log:      log,
	}
}

func (s *chatService) GetOrCreateRoom(ctx context.Context, listingID int64, buyerID uuid.UUID) (*domain.ChatRoom, bool, error) {
	listing, err := s.repos.Listing.GetByID(ctx, listingID)
	if err != nil {
		return nil, false, err
	}
	if listing.SellerID == buyerID {
		return nil, false, repository.ErrSelfChat
	}

	room, err := s.repos.ChatRoom.GetByListingAndBuyer(ctx, listingID, buyerID)
	if err == nil {
		return room, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	room = &domain.ChatRoom{
		ListingID: &listing.ID,
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
	}
	created, err := s.repos.ChatRoom.CreateIfAbsent(ctx, room)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("Chat room created", "room_id", room.ID, "listing_id", listingID, "buyer_id", buyerID)
	}
	return room, created, nil
}

func (s *chatService) ListRooms(ctx context.Context, userID uuid.UUID) ([]*domain.ChatRoomListItem, error) {
	return s.repos.ChatRoom.ListByUser(ctx, userID)
}

func (s *chatService) GetRoomDetail(ctx context.Context, roomID int64, userID uuid.UUID) (*domain.ChatRoomDetail, error) {
	room, err := s.repos.ChatRoom.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if _, err := s.repos.Message.MarkRead(ctx, room.ID, userID); err != nil {
		return nil, err
	}

	messages, err := s.repos.Message.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	detail := &domain.ChatRoomDetail{
		Room:      room,
		OtherUser: s.profileOrStub(ctx, room.Counterpart(userID)),
		Messages:  messages,
	}
	if room.ListingID != nil {
		listing, err := s.repos.Listing.GetSummary(ctx, *room.ListingID)
		switch {
		case err == nil:
			detail.Listing = listing
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
	}

	return detail, nil
}

func (s *chatService) SendMessage(ctx context.Context, roomID int64, senderID uuid.UUID, content string) (*domain.Message, error) {
	room, err := s.participantRoom(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > domain.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	var msg *domain.Message
	err = s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		var err error
		msg, err = s.pipeline.appendMessage(ctx, repos, room, senderID, content, domain.MessageTypeText, content)
		return err
	})
	if err != nil {
		s.log.Error("Failed to send message", "error", err, "room_id", roomID)
		return nil, err
	}

	s.pipeline.fanOut(ctx, room, msg, content)
	return msg, nil
}

func (s *chatService) MarkRoomRead(ctx context.Context, roomID int64, readerID uuid.UUID) (int64, error) {
	room, err := s.participantRoom(ctx, roomID, readerID)
	if err != nil {
		return 0, err
	}
	return s.repos.Message.MarkRead(ctx, room.ID, readerID)
}

// participantRoom loads a room for userID. A missing room is reported the same
// way as a room the user does not belong to.
func (s *chatService) participantRoom(ctx context.Context, roomID int64, userID uuid.UUID) (*domain.ChatRoom, error) {
	room, err := s.repos.ChatRoom.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, err
	}
	if !room.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return room, nil
}

func (s *chatService) profileOrStub(ctx context.Context, userID uuid.UUID) *domain.UserProfile {
	profile, err := s.repos.User.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.log.Warn("Failed to load user profile", "error", err, "user_id", userID)
		}
		return &domain.UserProfile{ID: userID}
	}
	return profile
}
