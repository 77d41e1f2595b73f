package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/models"
	"github.com/pingpal/pingpal-server/internal/services"
)

type InviteHandler struct {
	inviteService services.InviteServiceInterface
}

func NewInviteHandler(inviteService services.InviteServiceInterface) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

type CreateInviteResponse struct {
	InviteCode string `json:"inviteCode"`
}

type AcceptInviteRequest struct {
	InviteCode string `json:"inviteCode"`
}

type AcceptInviteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type RevokeInviteRequest struct {
	InviteID string `json:"inviteId"`
}

type InviteListResponse struct {
	Invites []models.Invite `json:"invites"`
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	invite, err := h.inviteService.Create(r.Context(), ident.UID)
	if errors.Is(err, services.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		logging.Error("create invite failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CreateInviteResponse{InviteCode: invite.Code})
}

func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.InviteCode == "" {
		writeError(w, http.StatusBadRequest, "Missing invite code")
		return
	}

	creatorUsername, err := h.inviteService.Accept(r.Context(), req.InviteCode, ident.UID)
	switch {
	case errors.Is(err, services.ErrInviteNotFound):
		writeError(w, http.StatusNotFound, "Invite not found")
		return
	case errors.Is(err, services.ErrCannotAcceptOwn):
		writeError(w, http.StatusBadRequest, "Cannot accept your own invite")
		return
	case errors.Is(err, services.ErrInviteNotActive), errors.Is(err, services.ErrInviteConsumed):
		writeError(w, http.StatusBadRequest, "Invite already used")
		return
	case errors.Is(err, services.ErrInviteExpired):
		writeError(w, http.StatusBadRequest, "Invite has expired")
		return
	case err != nil:
		logging.Error("accept invite failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, AcceptInviteResponse{
		Success: true,
		Message: fmt.Sprintf("You are now friends with %s!", creatorUsername),
	})
}

func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RevokeInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.InviteID == "" {
		writeError(w, http.StatusBadRequest, "Missing invite id")
		return
	}

	err := h.inviteService.Revoke(r.Context(), req.InviteID, ident.UID)
	if errors.Is(err, services.ErrInviteNotFound) {
		writeError(w, http.StatusNotFound, "Invite not found")
		return
	}
	if errors.Is(err, services.ErrNotInviteCreator) {
		writeError(w, http.StatusForbidden, "Not your invite")
		return
	}
	if err != nil {
		logging.Error("revoke invite failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *InviteHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	invites, err := h.inviteService.ListActive(r.Context(), ident.UID)
	if err != nil {
		logging.Error("list invites failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, InviteListResponse{Invites: invites})
}
