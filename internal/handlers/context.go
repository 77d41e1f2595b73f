package handlers

import (
	"context"

	"github.com/pingpal/pingpal-server/internal/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

func SetIdentityInContext(ctx context.Context, ident *models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

func GetIdentityFromContext(ctx context.Context) *models.Identity {
	ident, _ := ctx.Value(identityContextKey).(*models.Identity)
	return ident
}
