package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an append-only in-app record of a received ping. It is the
// durable source of truth; push delivery is best-effort on top of it.
type Notification struct {
	ID           uuid.UUID `json:"id"`
	RecipientUID string    `json:"recipientUid"`
	SenderUID    string    `json:"senderUid"`
	SenderName   string    `json:"senderName"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"timestamp"`
}
