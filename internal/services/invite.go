package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pingpal/pingpal-server/internal/models"
)

var (
	ErrInviteNotFound   = errors.New("invite not found")
	ErrInviteNotActive  = errors.New("invite is no longer active")
	ErrInviteExpired    = errors.New("invite has expired")
	ErrInviteConsumed   = errors.New("invite was already accepted")
	ErrCannotAcceptOwn  = errors.New("cannot accept your own invite")
	ErrNotInviteCreator = errors.New("only the creator can revoke an invite")
)

const (
	inviteCodeLength = 6
	inviteCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	inviteTTL        = 24 * time.Hour
)

type InviteService struct {
	db DB
}

func NewInviteService(db DB) *InviteService {
	return &InviteService{db: db}
}

// Create issues a fresh invite code for the caller. Code collisions are
// resolved by regenerating; the conditional insert makes the check and the
// write a single step.
func (s *InviteService) Create(ctx context.Context, creatorUID string) (*models.Invite, error) {
	var username string
	err := s.db.QueryRow(ctx,
		"SELECT username FROM profiles WHERE uid = $1", creatorUID,
	).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup invite creator: %w", err)
	}

	for {
		code, err := generateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("generate invite code: %w", err)
		}

		invite := &models.Invite{}
		err = s.db.QueryRow(ctx,
			`INSERT INTO invites (code, creator_uid, creator_username, expires_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (code) DO NOTHING
			 RETURNING code, creator_uid, creator_username, status, created_at, expires_at`,
			code, creatorUID, username, time.Now().UTC().Add(inviteTTL),
		).Scan(&invite.Code, &invite.CreatorUID, &invite.CreatorUsername,
			&invite.Status, &invite.CreatedAt, &invite.ExpiresAt)
		if errors.Is(err, pgx.ErrNoRows) {
			// Code already taken, try another.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert invite: %w", err)
		}
		return invite, nil
	}
}

// Accept redeems an invite for accepterUID and records the friendship in
// both directions. Returns the creator's username for the confirmation
// message. Two concurrent accepts race on the status update; the loser gets
// ErrInviteConsumed.
func (s *InviteService) Accept(ctx context.Context, code, accepterUID string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var (
		creatorUID      string
		creatorUsername string
		status          models.InviteStatus
		expiresAt       time.Time
	)
	err := s.db.QueryRow(ctx,
		"SELECT creator_uid, creator_username, status, expires_at FROM invites WHERE code = $1",
		code,
	).Scan(&creatorUID, &creatorUsername, &status, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrInviteNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup invite: %w", err)
	}

	if accepterUID == creatorUID {
		return "", ErrCannotAcceptOwn
	}
	if status != models.InviteStatusActive {
		return "", ErrInviteNotActive
	}
	if time.Now().After(expiresAt) {
		// Lazy expiry: invites are marked expired on first access past the
		// deadline, not by a background job.
		_, err := s.db.Exec(ctx,
			"UPDATE invites SET status = $1 WHERE code = $2 AND status = $3",
			models.InviteStatusExpired, code, models.InviteStatusActive,
		)
		if err != nil {
			return "", fmt.Errorf("expire invite: %w", err)
		}
		return "", ErrInviteExpired
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin invite accept transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE invites
		 SET status = $1, accepted_by = $2, accepted_at = NOW()
		 WHERE code = $3 AND status = $4`,
		models.InviteStatusUsed, accepterUID, code, models.InviteStatusActive,
	)
	if err != nil {
		return "", fmt.Errorf("mark invite used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrInviteConsumed
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO friendships (user_uid, friend_uid, sound)
		 VALUES ($1, $2, 'default'), ($2, $1, 'default')
		 ON CONFLICT (user_uid, friend_uid) DO NOTHING`,
		creatorUID, accepterUID,
	)
	if err != nil {
		return "", fmt.Errorf("record friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit invite accept: %w", err)
	}
	committed = true

	return creatorUsername, nil
}

// Revoke marks an invite revoked regardless of its current status. Only the
// creator may revoke.
func (s *InviteService) Revoke(ctx context.Context, code, requesterUID string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	var creatorUID string
	err := s.db.QueryRow(ctx,
		"SELECT creator_uid FROM invites WHERE code = $1", code,
	).Scan(&creatorUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInviteNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup invite: %w", err)
	}

	if creatorUID != requesterUID {
		return ErrNotInviteCreator
	}

	_, err = s.db.Exec(ctx,
		"UPDATE invites SET status = $1 WHERE code = $2",
		models.InviteStatusRevoked, code,
	)
	if err != nil {
		return fmt.Errorf("revoke invite: %w", err)
	}
	return nil
}

// ListActive returns the caller's active invites, newest first.
func (s *InviteService) ListActive(ctx context.Context, creatorUID string) ([]models.Invite, error) {
	rows, err := s.db.Query(ctx,
		`SELECT code, creator_uid, creator_username, status, created_at, expires_at
		 FROM invites
		 WHERE creator_uid = $1 AND status = $2
		 ORDER BY created_at DESC`,
		creatorUID, models.InviteStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	invites := []models.Invite{}
	for rows.Next() {
		var inv models.Invite
		if err := rows.Scan(&inv.Code, &inv.CreatorUID, &inv.CreatorUsername,
			&inv.Status, &inv.CreatedAt, &inv.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, inviteCodeLength)
	for i, b := range buf {
		code[i] = inviteCodeChars[int(b)%len(inviteCodeChars)]
	}
	return string(code), nil
}
