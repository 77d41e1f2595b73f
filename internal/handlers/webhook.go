package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/services"
)

// WebhookHandler serves third-party integrations authenticated by API key.
// Responses are plain text, not JSON: callers are curl scripts and CI hooks.
type WebhookHandler struct {
	apiKeyService       services.APIKeyServiceInterface
	notificationService services.NotificationServiceInterface
}

func NewWebhookHandler(apiKeyService services.APIKeyServiceInterface, notificationService services.NotificationServiceInterface) *WebhookHandler {
	return &WebhookHandler{
		apiKeyService:       apiKeyService,
		notificationService: notificationService,
	}
}

type TriggerRequest struct {
	Message string `json:"message"`
}

func (h *WebhookHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	rawKey := bearerCredential(r)
	if rawKey == "" {
		writeText(w, http.StatusUnauthorized, "Missing API key.")
		return
	}

	key, err := h.apiKeyService.Lookup(r.Context(), rawKey)
	if errors.Is(err, services.ErrAPIKeyNotFound) {
		writeText(w, http.StatusUnauthorized, "Invalid API key.")
		return
	}
	if errors.Is(err, services.ErrAPIKeyDisabled) {
		writeText(w, http.StatusForbidden, "API key is disabled.")
		return
	}
	if err != nil {
		logging.Error("api key lookup failed", logging.Fields{"error": err.Error()})
		writeText(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	var req TriggerRequest
	if r.Body != nil {
		// A missing or malformed body means a default message, not an error.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	err = h.notificationService.TriggerExternal(r.Context(), key, req.Message)
	if errors.Is(err, services.ErrRecipientNotFound) {
		writeText(w, http.StatusNotFound, "User not found.")
		return
	}
	if err != nil {
		logging.Error("webhook trigger failed", logging.Fields{"key_id": key.ID.String(), "error": err.Error()})
		writeText(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeText(w, http.StatusOK, "Notification sent successfully.")
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

func bearerCredential(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
