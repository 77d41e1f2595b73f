package identity

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"github.com/pingpal/pingpal-server/internal/models"
)

var ErrInvalidToken = errors.New("invalid identity token")

// Verifier resolves a bearer ID token to an identity.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*models.Identity, error)
}

// FirebaseVerifier validates Firebase ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth client init: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	ident := &models.Identity{UID: token.UID}
	if name, ok := token.Claims["name"].(string); ok {
		ident.Name = name
	}
	return ident, nil
}

// DisabledVerifier rejects every token. Used when no Firebase credentials
// are configured and only session-token auth is available.
type DisabledVerifier struct{}

func (DisabledVerifier) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	return nil, ErrInvalidToken
}
