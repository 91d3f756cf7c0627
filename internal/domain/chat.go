package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom is a conversation between a listing's seller and one buyer.
// There is at most one room per (ListingID, BuyerID).
type ChatRoom struct {
	ID            int64      `json:"id"`
	ListingID     *int64     `json:"listingId"`
	BuyerID       uuid.UUID  `json:"buyerId"`
	SellerID      uuid.UUID  `json:"sellerId"`
	LastMessage   *string    `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// IsParticipant reports whether userID is the buyer or the seller of the room.
func (r *ChatRoom) IsParticipant(userID uuid.UUID) bool {
	return r.BuyerID == userID || r.SellerID == userID
}

// Counterpart returns the other participant. The caller must be a participant.
func (r *ChatRoom) Counterpart(userID uuid.UUID) uuid.UUID {
	if r.BuyerID == userID {
		return r.SellerID
	}
	return r.BuyerID
}

type MessageType string

const (
	MessageTypeText        MessageType = "TEXT"
	MessageTypePriceOffer  MessageType = "PRICE_OFFER"
	MessageTypePriceResult MessageType = "PRICE_RESULT"
)

// MaxMessageLength is the longest TEXT message accepted, in runes.
const MaxMessageLength = 1000

type Message struct {
	ID         int64       `json:"id"`
	ChatRoomID int64       `json:"chatRoomId"`
	SenderID   uuid.UUID   `json:"senderId"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	IsRead     bool        `json:"isRead"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// PriceOfferPayload is the JSON content of a PRICE_OFFER message.
type PriceOfferPayload struct {
	OfferPrice int         `json:"offerPrice"`
	OfferID    *int64      `json:"offerId,omitempty"`
	Type       MessageType `json:"type"`
}

// PriceResultPayload is the JSON content of a PRICE_RESULT message.
type PriceResultPayload struct {
	OfferID    int64       `json:"offerId"`
	OfferPrice int         `json:"offerPrice"`
	Status     OfferStatus `json:"status"`
	Type       MessageType `json:"type"`
}

// ChatRoomListItem is a room as shown in the caller's chat list.
type ChatRoomListItem struct {
	ChatRoom
	OtherUser    *UserProfile `json:"otherUser"`
	ThumbnailURL *string      `json:"thumbnailUrl"`
	UnreadCount  int          `json:"unreadCount"`
}

// ChatRoomDetail is a room with everything needed to render the conversation.
type ChatRoomDetail struct {
	Room      *ChatRoom       `json:"room"`
	OtherUser *UserProfile    `json:"otherUser"`
	Listing   *ListingSummary `json:"product"`
	Messages  []*Message      `json:"messages"`
}
