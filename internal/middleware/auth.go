package middleware

import (
	"net/http"
	"strings"

	"github.com/pingpal/pingpal-server/internal/handlers"
	"github.com/pingpal/pingpal-server/internal/identity"
	"github.com/pingpal/pingpal-server/internal/models"
	"github.com/pingpal/pingpal-server/internal/services"
)

type AuthMiddleware struct {
	verifier identity.Verifier
	sessions services.SessionServiceInterface
	profiles services.ProfileServiceInterface
}

func NewAuthMiddleware(verifier identity.Verifier, sessions services.SessionServiceInterface, profiles services.ProfileServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, sessions: sessions, profiles: profiles}
}

// Authenticate resolves the bearer credential and adds the identity to the
// request context. Does not reject unauthenticated requests.
//
// Two credential shapes are accepted: Firebase ID tokens (JWTs, recognized by
// their two dots) and opaque session tokens.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ident := m.resolve(r, token)
		if ident == nil {
			// Invalid credential, continue without identity
			next.ServeHTTP(w, r)
			return
		}

		ctx := handlers.SetIdentityInContext(r.Context(), ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests with 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetIdentityFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request, token string) *models.Identity {
	if strings.Count(token, ".") == 2 {
		ident, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			return nil
		}
		return ident
	}

	uid, err := m.sessions.Validate(r.Context(), token)
	if err != nil {
		return nil
	}

	ident := &models.Identity{UID: uid}
	// Session tokens carry no display name; pull it from the profile when one
	// exists so senders are not all "Someone".
	if profile, err := m.profiles.GetByUID(r.Context(), uid); err == nil {
		ident.Name = profile.Username
	}
	return ident
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
