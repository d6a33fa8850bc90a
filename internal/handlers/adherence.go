package handlers

import (
	"net/http"

	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/services"
)

// AdherenceHandler handles adherence HTTP requests
type AdherenceHandler struct {
	adherenceService *services.AdherenceService
}

// NewAdherenceHandler creates a new adherence handler
func NewAdherenceHandler(adherenceService *services.AdherenceService) *AdherenceHandler {
	return &AdherenceHandler{adherenceService: adherenceService}
}

// List handles GET /api/v1/adherence?days=&limit=
func (h *AdherenceHandler) List(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		respondServiceError(w, r, err, "list adherence")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondServiceError(w, r, err, "list adherence")
		return
	}

	records, err := h.adherenceService.History(r.Context(), middleware.GetUserID(r.Context()), days, limit)
	if err != nil {
		respondServiceError(w, r, err, "list adherence")
		return
	}
	respondJSON(w, r, http.StatusOK, records)
}

// Create handles POST /api/v1/adherence
func (h *AdherenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.RecordDoseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "record dose")
		return
	}

	record, err := h.adherenceService.Record(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "record dose")
		return
	}
	respondJSON(w, r, http.StatusCreated, record)
}

// Summary handles GET /api/v1/adherence/summary?period=
func (h *AdherenceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.adherenceService.Summary(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, r, err, "summarize adherence")
		return
	}
	respondJSON(w, r, http.StatusOK, summary)
}
