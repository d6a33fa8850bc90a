package handlers

import (
	"net/http"

	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/services"
)

// AnalyticsHandler handles analytics HTTP requests
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Get handles GET /api/v1/analytics?days=
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		respondServiceError(w, r, err, "compute analytics")
		return
	}

	metrics, err := h.analyticsService.Metrics(r.Context(), middleware.GetUserID(r.Context()), days)
	if err != nil {
		respondServiceError(w, r, err, "compute analytics")
		return
	}
	respondJSON(w, r, http.StatusOK, metrics)
}
