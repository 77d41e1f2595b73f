package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/models"
	"github.com/pingpal/pingpal-server/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileServiceInterface
	sessionService services.SessionServiceInterface
}

func NewProfileHandler(profileService services.ProfileServiceInterface, sessionService services.SessionServiceInterface) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		sessionService: sessionService,
	}
}

type CreateProfileRequest struct {
	Username string `json:"username"`
	// Optional restore key. When present, its hash is stored and a session
	// token is issued with the response.
	SecretKey string `json:"secretKey,omitempty"`
}

type CreateProfileResponse struct {
	Success      bool            `json:"success"`
	Profile      *models.Profile `json:"profile"`
	SessionToken string          `json:"sessionToken,omitempty"`
}

type FriendsResponse struct {
	Friends []models.FriendProfile `json:"friends"`
}

type DeviceTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.profileService.Create(r.Context(), ident.UID, req.Username)
	if errors.Is(err, services.ErrUsernameTooShort) {
		writeError(w, http.StatusBadRequest, "Username must be at least 3 characters")
		return
	}
	if errors.Is(err, services.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "Username already taken")
		return
	}
	if err != nil {
		logging.Error("create profile failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := CreateProfileResponse{Success: true, Profile: profile}
	if req.SecretKey != "" {
		token, err := h.sessionService.RegisterSecretKey(r.Context(), ident.UID, req.SecretKey)
		if err != nil {
			logging.Error("register secret key failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		} else {
			resp.SessionToken = token
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := h.profileService.GetByUID(r.Context(), ident.UID)
	if errors.Is(err, services.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		logging.Error("get profile failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Friends(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	friends, err := h.profileService.ListFriends(r.Context(), ident.UID)
	if errors.Is(err, services.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		logging.Error("list friends failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendsResponse{Friends: friends})
}

func (h *ProfileHandler) UpdateDeviceToken(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req DeviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.profileService.UpdatePushToken(r.Context(), ident.UID, req.Token, req.Platform)
	if errors.Is(err, services.ErrEmptyPushToken) {
		writeError(w, http.StatusBadRequest, "Missing device token")
		return
	}
	if errors.Is(err, services.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		logging.Error("update device token failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
