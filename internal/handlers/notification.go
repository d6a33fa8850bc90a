package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/services"
)

// NotificationHandler handles notification inbox and preference requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /api/v1/notifications?unread=true&limit=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondServiceError(w, r, err, "list notifications")
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notificationService.Inbox(r.Context(), middleware.GetUserID(r.Context()), unreadOnly, limit)
	if err != nil {
		respondServiceError(w, r, err, "list notifications")
		return
	}
	respondJSON(w, r, http.StatusOK, notifications)
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.MarkRead(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "mark notification read")
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

// Preferences handles GET /api/v1/notifications/preferences
func (h *NotificationHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.notificationService.Preferences(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get preferences")
		return
	}
	respondJSON(w, r, http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /api/v1/notifications/preferences
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req services.UpdatePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "update preferences")
		return
	}

	prefs, err := h.notificationService.UpdatePreferences(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "update preferences")
		return
	}
	respondJSON(w, r, http.StatusOK, prefs)
}
