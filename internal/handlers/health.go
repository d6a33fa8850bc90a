package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the primary database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler handles the health check
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a health handler. A nil db means the server runs on memory stores.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Database: "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		respondJSON(w, r, http.StatusOK, HealthResponse{Status: "degraded", Database: "unavailable"})
		return
	}
	respondJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Database: "connected"})
}
