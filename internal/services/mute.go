package services

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrCannotMuteSelf = errors.New("cannot mute yourself")
	ErrAlreadyMuted   = errors.New("user is already muted")
	ErrMuteNotFound   = errors.New("user is not muted")
)

// MuteService maintains each user's mute list. Muting is one-directional and
// invisible to the muted party.
type MuteService struct {
	db DB
}

func NewMuteService(db DB) *MuteService {
	return &MuteService{db: db}
}

func (s *MuteService) Mute(ctx context.Context, userUID, targetUID string) error {
	if userUID == targetUID {
		return ErrCannotMuteSelf
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO mutes (user_uid, muted_uid) VALUES ($1, $2)
		 ON CONFLICT (user_uid, muted_uid) DO NOTHING`,
		userUID, targetUID,
	)
	if err != nil {
		return fmt.Errorf("insert mute: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyMuted
	}
	return nil
}

func (s *MuteService) Unmute(ctx context.Context, userUID, targetUID string) error {
	tag, err := s.db.Exec(ctx,
		"DELETE FROM mutes WHERE user_uid = $1 AND muted_uid = $2",
		userUID, targetUID,
	)
	if err != nil {
		return fmt.Errorf("delete mute: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMuteNotFound
	}
	return nil
}
