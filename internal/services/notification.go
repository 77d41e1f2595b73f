package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/models"
	"github.com/pingpal/pingpal-server/internal/push"
)

var (
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// SendStatus reports how a send attempt concluded. A muted recipient is a
// success from the sender's point of view; nothing is delivered or stored.
type SendStatus string

const (
	SendStatusSent  SendStatus = "sent"
	SendStatusMuted SendStatus = "muted"
)

const (
	fallbackSenderName = "Someone"
	fallbackMessage    = "Yo!"

	defaultListLimit = 50
	maxListLimit     = 200
)

type NotificationService struct {
	db     DB
	sender push.Sender
	logger *logging.Logger
}

func NewNotificationService(db DB, sender push.Sender, logger *logging.Logger) *NotificationService {
	return &NotificationService{db: db, sender: sender, logger: logger}
}

// Send records an in-app notification for the recipient and pushes to their
// device. Push failures are logged, never surfaced: the in-app record is the
// source of truth.
func (s *NotificationService) Send(ctx context.Context, senderUID, senderName, recipientUID, message string) (SendStatus, error) {
	var pushToken *string
	err := s.db.QueryRow(ctx,
		"SELECT push_token FROM profiles WHERE uid = $1", recipientUID,
	).Scan(&pushToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrRecipientNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup recipient: %w", err)
	}

	var muted bool
	err = s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM mutes WHERE user_uid = $1 AND muted_uid = $2)",
		recipientUID, senderUID,
	).Scan(&muted)
	if err != nil {
		return "", fmt.Errorf("check mute: %w", err)
	}
	if muted {
		// Silently dropped. The sender cannot tell they are muted.
		return SendStatusMuted, nil
	}

	if strings.TrimSpace(senderName) == "" {
		senderName = fallbackSenderName
	}
	if strings.TrimSpace(message) == "" {
		message = fallbackMessage
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO notifications (recipient_uid, sender_uid, sender_name, message)
		 VALUES ($1, $2, $3, $4)`,
		recipientUID, senderUID, senderName, message,
	)
	if err != nil {
		return "", fmt.Errorf("record notification: %w", err)
	}

	s.deliver(ctx, pushToken, senderName, message, map[string]string{
		"senderUid": senderUID,
		"type":      "yo",
	})

	return SendStatusSent, nil
}

// TriggerExternal pushes on behalf of an API key holder. No in-app record is
// written; the key owner's device is the only destination.
func (s *NotificationService) TriggerExternal(ctx context.Context, key *models.APIKey, message string) error {
	var pushToken *string
	err := s.db.QueryRow(ctx,
		"SELECT push_token FROM profiles WHERE uid = $1", key.OwnerUID,
	).Scan(&pushToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRecipientNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup key owner: %w", err)
	}

	if strings.TrimSpace(message) == "" {
		message = fallbackMessage
	}

	s.deliver(ctx, pushToken, key.ContactName, message, map[string]string{
		"type": "webhook",
	})
	return nil
}

// List returns the recipient's most recent notifications.
func (s *NotificationService) List(ctx context.Context, recipientUID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, recipient_uid, sender_uid, sender_name, message, is_read, created_at
		 FROM notifications
		 WHERE recipient_uid = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		recipientUID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientUID, &n.SenderUID, &n.SenderName,
			&n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags a notification as read. Only the recipient can mark their
// own notifications.
func (s *NotificationService) MarkRead(ctx context.Context, recipientUID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_uid = $2",
		id, recipientUID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// UnreadCount returns how many unread notifications the recipient has.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientUID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_uid = $1 AND is_read = FALSE",
		recipientUID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *NotificationService) deliver(ctx context.Context, token *string, title, body string, data map[string]string) {
	if token == nil || *token == "" {
		s.logger.Debug("recipient has no push token, skipping delivery")
		return
	}
	if err := s.sender.Send(ctx, *token, title, body, data); err != nil {
		s.logger.Error("push delivery failed", logging.Fields{"error": err.Error()})
	}
}
