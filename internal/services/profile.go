package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/pingpal/pingpal-server/internal/models"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrEmptyPushToken   = errors.New("push token is empty")
)

const (
	minUsernameLength = 3
	defaultMessage    = "Yo!"

	// Friend lookups resolve profiles in batches; large friend lists are
	// fetched in several queries.
	friendBatchSize = 100
)

var defaultCustomMessages = []string{"On my way!", "Running late", "Call me"}

type ProfileService struct {
	db DB
}

func NewProfileService(db DB) *ProfileService {
	return &ProfileService{db: db}
}

// Create reserves the username and writes the profile in one transaction.
// The reservation insert is conditional, so of two concurrent registrations
// for the same name exactly one commits.
func (s *ProfileService) Create(ctx context.Context, uid, username string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < minUsernameLength {
		return nil, ErrUsernameTooShort
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin profile create transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	profile := &models.Profile{}
	err = tx.QueryRow(ctx,
		`INSERT INTO profiles (uid, username, default_message, custom_messages)
		 VALUES ($1, $2, $3, $4)
		 RETURNING uid, username, default_message, custom_messages, push_token, platform, last_updated, created_at`,
		uid, username, defaultMessage, defaultCustomMessages,
	).Scan(&profile.UID, &profile.Username, &profile.DefaultMessage, &profile.CustomMessages,
		&profile.PushToken, &profile.Platform, &profile.LastUpdated, &profile.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO usernames (username, uid)
		 VALUES (lower($1), $2)
		 ON CONFLICT (username) DO NOTHING`,
		username, uid,
	)
	if err != nil {
		return nil, fmt.Errorf("reserve username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUsernameTaken
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit profile create: %w", err)
	}
	committed = true

	profile.Friends = []models.Friend{}
	profile.MutedUsers = []string{}
	return profile, nil
}

// GetByUID returns the full profile, including friend and mute lists.
func (s *ProfileService) GetByUID(ctx context.Context, uid string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.db.QueryRow(ctx,
		`SELECT uid, username, default_message, custom_messages, push_token, platform, last_updated, created_at
		 FROM profiles WHERE uid = $1`,
		uid,
	).Scan(&profile.UID, &profile.Username, &profile.DefaultMessage, &profile.CustomMessages,
		&profile.PushToken, &profile.Platform, &profile.LastUpdated, &profile.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	friends, err := s.friendEdges(ctx, uid)
	if err != nil {
		return nil, err
	}
	profile.Friends = friends

	muted, err := s.mutedUIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	profile.MutedUsers = muted

	return profile, nil
}

// ListFriends resolves the caller's friend edges to their public profiles.
// An empty friend list is a normal outcome, not an error.
func (s *ProfileService) ListFriends(ctx context.Context, uid string) ([]models.FriendProfile, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM profiles WHERE uid = $1)", uid,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check profile: %w", err)
	}
	if !exists {
		return nil, ErrProfileNotFound
	}

	edges, err := s.friendEdges(ctx, uid)
	if err != nil {
		return nil, err
	}

	uids := make([]string, 0, len(edges))
	for _, e := range edges {
		uids = append(uids, e.UID)
	}

	friends := []models.FriendProfile{}
	for start := 0; start < len(uids); start += friendBatchSize {
		end := start + friendBatchSize
		if end > len(uids) {
			end = len(uids)
		}

		rows, err := s.db.Query(ctx,
			`SELECT uid, username, default_message
			 FROM profiles
			 WHERE uid = ANY($1)
			 ORDER BY username`,
			uids[start:end],
		)
		if err != nil {
			return nil, fmt.Errorf("list friends: %w", err)
		}

		for rows.Next() {
			var f models.FriendProfile
			if err := rows.Scan(&f.UID, &f.Username, &f.DefaultMessage); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan friend: %w", err)
			}
			friends = append(friends, f)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("list friends: %w", err)
		}
	}

	return friends, nil
}

// UpdatePushToken overwrites the device token, platform label, and
// last-updated timestamp.
func (s *ProfileService) UpdatePushToken(ctx context.Context, uid, token, platform string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyPushToken
	}
	if platform == "" {
		platform = "unknown"
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE profiles
		 SET push_token = $1, platform = $2, last_updated = NOW()
		 WHERE uid = $3`,
		token, platform, uid,
	)
	if err != nil {
		return fmt.Errorf("update push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *ProfileService) friendEdges(ctx context.Context, uid string) ([]models.Friend, error) {
	rows, err := s.db.Query(ctx,
		`SELECT friend_uid, sound FROM friendships
		 WHERE user_uid = $1
		 ORDER BY created_at`,
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list friend edges: %w", err)
	}
	defer rows.Close()

	friends := []models.Friend{}
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.UID, &f.Sound); err != nil {
			return nil, fmt.Errorf("scan friend edge: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list friend edges: %w", err)
	}
	return friends, nil
}

func (s *ProfileService) mutedUIDs(ctx context.Context, uid string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		"SELECT muted_uid FROM mutes WHERE user_uid = $1 ORDER BY created_at",
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list mutes: %w", err)
	}
	defer rows.Close()

	muted := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan mute: %w", err)
		}
		muted = append(muted, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mutes: %w", err)
	}
	return muted, nil
}
