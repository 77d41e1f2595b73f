package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/pingpal/pingpal-server/internal/models"
)

// ProfileServiceInterface defines the contract for profile operations.
type ProfileServiceInterface interface {
	Create(ctx context.Context, uid, username string) (*models.Profile, error)
	GetByUID(ctx context.Context, uid string) (*models.Profile, error)
	ListFriends(ctx context.Context, uid string) ([]models.FriendProfile, error)
	UpdatePushToken(ctx context.Context, uid, token, platform string) error
}

// InviteServiceInterface defines the contract for invite operations.
type InviteServiceInterface interface {
	Create(ctx context.Context, creatorUID string) (*models.Invite, error)
	Accept(ctx context.Context, code, accepterUID string) (string, error)
	Revoke(ctx context.Context, code, requesterUID string) error
	ListActive(ctx context.Context, creatorUID string) ([]models.Invite, error)
}

// NotificationServiceInterface defines the contract for sending and reading
// in-app notifications.
type NotificationServiceInterface interface {
	Send(ctx context.Context, senderUID, senderName, recipientUID, message string) (SendStatus, error)
	TriggerExternal(ctx context.Context, key *models.APIKey, message string) error
	List(ctx context.Context, recipientUID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientUID string, id uuid.UUID) error
	UnreadCount(ctx context.Context, recipientUID string) (int, error)
}

// MuteServiceInterface defines the contract for mute-list edits.
type MuteServiceInterface interface {
	Mute(ctx context.Context, uid, mutedUID string) error
	Unmute(ctx context.Context, uid, mutedUID string) error
}

// APIKeyServiceInterface resolves webhook api keys to their records.
type APIKeyServiceInterface interface {
	Lookup(ctx context.Context, key string) (*models.APIKey, error)
}

// SessionServiceInterface defines the contract for secret-key login and
// session validation.
type SessionServiceInterface interface {
	LoginWithSecretKey(ctx context.Context, secretKey string) (token string, uid string, err error)
	RegisterSecretKey(ctx context.Context, uid, secretKey string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}
