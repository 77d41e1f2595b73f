package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/services"
)

type MuteHandler struct {
	muteService services.MuteServiceInterface
}

func NewMuteHandler(muteService services.MuteServiceInterface) *MuteHandler {
	return &MuteHandler{muteService: muteService}
}

type MuteRequest struct {
	UID string `json:"uid"`
}

func (h *MuteHandler) Mute(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req MuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UID == "" {
		writeError(w, http.StatusBadRequest, "Missing uid")
		return
	}

	err := h.muteService.Mute(r.Context(), ident.UID, req.UID)
	if errors.Is(err, services.ErrCannotMuteSelf) {
		writeError(w, http.StatusBadRequest, "Cannot mute yourself")
		return
	}
	if errors.Is(err, services.ErrAlreadyMuted) {
		writeError(w, http.StatusConflict, "User already muted")
		return
	}
	if err != nil {
		logging.Error("mute failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *MuteHandler) Unmute(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req MuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UID == "" {
		writeError(w, http.StatusBadRequest, "Missing uid")
		return
	}

	err := h.muteService.Unmute(r.Context(), ident.UID, req.UID)
	if errors.Is(err, services.ErrMuteNotFound) {
		writeError(w, http.StatusNotFound, "User is not muted")
		return
	}
	if err != nil {
		logging.Error("unmute failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
