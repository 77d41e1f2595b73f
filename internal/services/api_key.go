package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pingpal/pingpal-server/internal/models"
)

var (
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrAPIKeyDisabled = errors.New("api key is disabled")
)

// APIKeyService resolves webhook credentials. Keys are stored hashed; the
// raw key exists only in the caller's hands.
type APIKeyService struct {
	db DB
}

func NewAPIKeyService(db DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// Lookup resolves a raw key to its record. Disabled keys are found but
// rejected, so callers can distinguish 401 from 403.
func (s *APIKeyService) Lookup(ctx context.Context, rawKey string) (*models.APIKey, error) {
	key := &models.APIKey{}
	err := s.db.QueryRow(ctx,
		`SELECT id, owner_uid, contact_name, enabled, created_at
		 FROM api_keys WHERE key_hash = $1`,
		hashToken(rawKey),
	).Scan(&key.ID, &key.OwnerUID, &key.ContactName, &key.Enabled, &key.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}

	if !key.Enabled {
		return nil, ErrAPIKeyDisabled
	}
	return key, nil
}
