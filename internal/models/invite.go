package models

import (
	"time"
)

type InviteStatus string

const (
	InviteStatusActive  InviteStatus = "active"
	InviteStatusUsed    InviteStatus = "used"
	InviteStatusExpired InviteStatus = "expired"
	InviteStatusRevoked InviteStatus = "revoked"
)

// Invite is a short-lived code that establishes a mutual friendship when
// redeemed. Used, expired, and revoked are terminal states.
type Invite struct {
	Code            string       `json:"id"`
	CreatorUID      string       `json:"creatorUid"`
	CreatorUsername string       `json:"creatorUsername"`
	Status          InviteStatus `json:"status"`
	CreatedAt       time.Time    `json:"createdAt"`
	ExpiresAt       time.Time    `json:"expiresAt"`
	AcceptedBy      *string      `json:"acceptedBy,omitempty"`
	AcceptedAt      *time.Time   `json:"acceptedAt,omitempty"`
}
