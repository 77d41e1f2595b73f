package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	sessionDuration  = 30 * 24 * time.Hour // 30 days
	sessionKeyPrefix = "session:"
)

var (
	ErrInvalidSecretKey = errors.New("invalid secret key")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
)

// SessionService exchanges a stored secret key for a session token and
// validates bearer tokens on later requests. Sessions live in Redis with a
// sliding TTL; Postgres is the fallback when Redis is unavailable.
type SessionService struct {
	db    DB
	redis Redis
}

func NewSessionService(db DB, redis Redis) *SessionService {
	return &SessionService{db: db, redis: redis}
}

// LoginWithSecretKey resolves a restore key to its account and issues a new
// session token. The raw key never touches storage; only its hash is
// compared.
func (s *SessionService) LoginWithSecretKey(ctx context.Context, secretKey string) (token, uid string, err error) {
	if secretKey == "" {
		return "", "", ErrInvalidSecretKey
	}

	keyHash := hashToken(secretKey)
	err = s.db.QueryRow(ctx,
		"SELECT uid FROM login_keys WHERE key_hash = $1", keyHash,
	).Scan(&uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrInvalidSecretKey
	}
	if err != nil {
		return "", "", fmt.Errorf("lookup secret key: %w", err)
	}

	token, err = s.createSession(ctx, uid)
	if err != nil {
		return "", "", err
	}
	return token, uid, nil
}

// RegisterSecretKey stores the hash of a restore key for uid and returns a
// session token for immediate use.
func (s *SessionService) RegisterSecretKey(ctx context.Context, uid, secretKey string) (string, error) {
	if secretKey == "" {
		return "", ErrInvalidSecretKey
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO login_keys (key_hash, uid) VALUES ($1, $2)
		 ON CONFLICT (key_hash) DO NOTHING`,
		hashToken(secretKey), uid,
	)
	if err != nil {
		return "", fmt.Errorf("store secret key: %w", err)
	}

	return s.createSession(ctx, uid)
}

// Validate resolves a session token to its account uid, extending the
// session's TTL on a Redis hit.
func (s *SessionService) Validate(ctx context.Context, token string) (string, error) {
	tokenHash := hashToken(token)

	redisKey := sessionKeyPrefix + tokenHash
	uid, err := s.redis.Get(ctx, redisKey)
	if err == nil {
		// Sliding expiry on every hit.
		_ = s.redis.Expire(ctx, redisKey, sessionDuration)
		return uid, nil
	}

	var (
		storedUID string
		expiresAt time.Time
	)
	err = s.db.QueryRow(ctx,
		"SELECT uid, expires_at FROM sessions WHERE token_hash = $1", tokenHash,
	).Scan(&storedUID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query session: %w", err)
	}

	if time.Now().After(expiresAt) {
		_, _ = s.db.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
		return "", ErrSessionExpired
	}

	return storedUID, nil
}

// Revoke invalidates a session token everywhere it may be stored.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	tokenHash := hashToken(token)
	_ = s.redis.Del(ctx, sessionKeyPrefix+tokenHash)
	if _, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionService) createSession(ctx context.Context, uid string) (string, error) {
	token, tokenHash, err := generateSessionToken()
	if err != nil {
		return "", err
	}

	err = s.redis.Set(ctx, sessionKeyPrefix+tokenHash, uid, sessionDuration)
	if err != nil {
		// Redis down: persist the session in Postgres instead.
		_, err = s.db.Exec(ctx,
			"INSERT INTO sessions (token_hash, uid, expires_at) VALUES ($1, $2, $3)",
			tokenHash, uid, time.Now().Add(sessionDuration),
		)
		if err != nil {
			return "", fmt.Errorf("create session in database: %w", err)
		}
	}

	return token, nil
}

func generateSessionToken() (token, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("generate random bytes: %w", err)
	}
	token = hex.EncodeToString(bytes)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
