package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey authorizes external webhook callers to ping the owning profile.
// Keys are stored hashed; ContactName is the display name shown on pushes
// triggered through the key.
type APIKey struct {
	ID          uuid.UUID `json:"id"`
	OwnerUID    string    `json:"ownerUid"`
	ContactName string    `json:"contactName"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
}
