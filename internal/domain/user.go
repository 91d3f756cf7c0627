package domain

import (
	"github.com/google/uuid"
)

// Identity is the authenticated caller as reported by the identity provider.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type UserProfile struct {
	ID           uuid.UUID `json:"id"`
	Nickname     string    `json:"nickname"`
	ProfileImage *string   `json:"profileImage"`
}
