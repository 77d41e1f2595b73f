package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/services"
)

type AuthHandler struct {
	sessionService services.SessionServiceInterface
}

func NewAuthHandler(sessionService services.SessionServiceInterface) *AuthHandler {
	return &AuthHandler{sessionService: sessionService}
}

type LoginRequest struct {
	SecretKey string `json:"secretKey"`
}

type LoginResponse struct {
	SessionToken string `json:"sessionToken"`
	UID          string `json:"uid"`
}

// Login exchanges a restore key for a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.SecretKey) == "" {
		writeError(w, http.StatusBadRequest, "Missing secret key")
		return
	}

	token, uid, err := h.sessionService.LoginWithSecretKey(r.Context(), req.SecretKey)
	if errors.Is(err, services.ErrInvalidSecretKey) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		logging.Error("login failed", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{SessionToken: token, UID: uid})
}

// Logout revokes the presented session token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if GetIdentityFromContext(r.Context()) == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	header := r.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if err := h.sessionService.Revoke(r.Context(), token); err != nil {
		logging.Error("logout failed", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
