package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/pingpal/pingpal-server/internal/models"
	"github.com/pingpal/pingpal-server/internal/services"
)

type mockProfileService struct {
	CreateFunc          func(ctx context.Context, uid, username string) (*models.Profile, error)
	GetByUIDFunc        func(ctx context.Context, uid string) (*models.Profile, error)
	ListFriendsFunc     func(ctx context.Context, uid string) ([]models.FriendProfile, error)
	UpdatePushTokenFunc func(ctx context.Context, uid, token, platform string) error
}

func (m *mockProfileService) Create(ctx context.Context, uid, username string) (*models.Profile, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, uid, username)
	}
	return nil, nil
}

func (m *mockProfileService) GetByUID(ctx context.Context, uid string) (*models.Profile, error) {
	if m.GetByUIDFunc != nil {
		return m.GetByUIDFunc(ctx, uid)
	}
	return nil, nil
}

func (m *mockProfileService) ListFriends(ctx context.Context, uid string) ([]models.FriendProfile, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, uid)
	}
	return nil, nil
}

func (m *mockProfileService) UpdatePushToken(ctx context.Context, uid, token, platform string) error {
	if m.UpdatePushTokenFunc != nil {
		return m.UpdatePushTokenFunc(ctx, uid, token, platform)
	}
	return nil
}

type mockInviteService struct {
	CreateFunc     func(ctx context.Context, creatorUID string) (*models.Invite, error)
	AcceptFunc     func(ctx context.Context, code, accepterUID string) (string, error)
	RevokeFunc     func(ctx context.Context, code, requesterUID string) error
	ListActiveFunc func(ctx context.Context, creatorUID string) ([]models.Invite, error)
}

func (m *mockInviteService) Create(ctx context.Context, creatorUID string) (*models.Invite, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, creatorUID)
	}
	return nil, nil
}

func (m *mockInviteService) Accept(ctx context.Context, code, accepterUID string) (string, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, code, accepterUID)
	}
	return "", nil
}

func (m *mockInviteService) Revoke(ctx context.Context, code, requesterUID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, code, requesterUID)
	}
	return nil
}

func (m *mockInviteService) ListActive(ctx context.Context, creatorUID string) ([]models.Invite, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, creatorUID)
	}
	return nil, nil
}

type mockNotificationService struct {
	SendFunc            func(ctx context.Context, senderUID, senderName, recipientUID, message string) (services.SendStatus, error)
	TriggerExternalFunc func(ctx context.Context, key *models.APIKey, message string) error
	ListFunc            func(ctx context.Context, recipientUID string, limit int) ([]models.Notification, error)
	MarkReadFunc        func(ctx context.Context, recipientUID string, id uuid.UUID) error
	UnreadCountFunc     func(ctx context.Context, recipientUID string) (int, error)
}

func (m *mockNotificationService) Send(ctx context.Context, senderUID, senderName, recipientUID, message string) (services.SendStatus, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, senderUID, senderName, recipientUID, message)
	}
	return services.SendStatusSent, nil
}

func (m *mockNotificationService) TriggerExternal(ctx context.Context, key *models.APIKey, message string) error {
	if m.TriggerExternalFunc != nil {
		return m.TriggerExternalFunc(ctx, key, message)
	}
	return nil
}

func (m *mockNotificationService) List(ctx context.Context, recipientUID string, limit int) ([]models.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, recipientUID, limit)
	}
	return []models.Notification{}, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, recipientUID string, id uuid.UUID) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, recipientUID, id)
	}
	return nil
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, recipientUID string) (int, error) {
	if m.UnreadCountFunc != nil {
		return m.UnreadCountFunc(ctx, recipientUID)
	}
	return 0, nil
}

type mockMuteService struct {
	MuteFunc   func(ctx context.Context, uid, mutedUID string) error
	UnmuteFunc func(ctx context.Context, uid, mutedUID string) error
}

func (m *mockMuteService) Mute(ctx context.Context, uid, mutedUID string) error {
	if m.MuteFunc != nil {
		return m.MuteFunc(ctx, uid, mutedUID)
	}
	return nil
}

func (m *mockMuteService) Unmute(ctx context.Context, uid, mutedUID string) error {
	if m.UnmuteFunc != nil {
		return m.UnmuteFunc(ctx, uid, mutedUID)
	}
	return nil
}

type mockAPIKeyService struct {
	LookupFunc func(ctx context.Context, key string) (*models.APIKey, error)
}

func (m *mockAPIKeyService) Lookup(ctx context.Context, key string) (*models.APIKey, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, key)
	}
	return nil, nil
}

type mockSessionService struct {
	LoginWithSecretKeyFunc func(ctx context.Context, secretKey string) (string, string, error)
	RegisterSecretKeyFunc  func(ctx context.Context, uid, secretKey string) (string, error)
	ValidateFunc           func(ctx context.Context, token string) (string, error)
	RevokeFunc             func(ctx context.Context, token string) error
}

func (m *mockSessionService) LoginWithSecretKey(ctx context.Context, secretKey string) (string, string, error) {
	if m.LoginWithSecretKeyFunc != nil {
		return m.LoginWithSecretKeyFunc(ctx, secretKey)
	}
	return "", "", nil
}

func (m *mockSessionService) RegisterSecretKey(ctx context.Context, uid, secretKey string) (string, error) {
	if m.RegisterSecretKeyFunc != nil {
		return m.RegisterSecretKeyFunc(ctx, uid, secretKey)
	}
	return "", nil
}

func (m *mockSessionService) Validate(ctx context.Context, token string) (string, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, token)
	}
	return "", nil
}

func (m *mockSessionService) Revoke(ctx context.Context, token string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, token)
	}
	return nil
}
