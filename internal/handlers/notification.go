package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/models"
	"github.com/pingpal/pingpal-server/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationServiceInterface
}

func NewNotificationHandler(notificationService services.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type SendYoRequest struct {
	RecipientUID string `json:"recipientUid"`
	Message      string `json:"message"`
}

type SendYoResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

func (h *NotificationHandler) SendYo(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SendYoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RecipientUID == "" {
		writeError(w, http.StatusBadRequest, "Missing recipient")
		return
	}

	status, err := h.notificationService.Send(r.Context(), ident.UID, ident.Name, req.RecipientUID, req.Message)
	if errors.Is(err, services.ErrRecipientNotFound) {
		writeError(w, http.StatusNotFound, "Recipient not found")
		return
	}
	if err != nil {
		logging.Error("send notification failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SendYoResponse{Success: true, Status: string(status)})
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	notifications, err := h.notificationService.List(r.Context(), ident.UID, limit)
	if err != nil {
		logging.Error("list notifications failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	unread, err := h.notificationService.UnreadCount(r.Context(), ident.UID)
	if err != nil {
		logging.Error("unread count failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	err = h.notificationService.MarkRead(r.Context(), ident.UID, id)
	if errors.Is(err, services.ErrNotificationNotFound) {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	if err != nil {
		logging.Error("mark notification read failed", logging.Fields{"uid": ident.UID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
