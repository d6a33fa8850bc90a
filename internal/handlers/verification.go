package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/services"
)

// VerificationHandler handles pill verification HTTP requests
type VerificationHandler struct {
	verificationService *services.VerificationService
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verificationService *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

// StartVerificationRequest represents a request to start a verification session
type StartVerificationRequest struct {
	MedicationID string `json:"medication_id"`
}

// Start handles POST /api/v1/verifications
func (h *VerificationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartVerificationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "start verification")
		return
	}

	session, err := h.verificationService.Start(r.Context(), middleware.GetUserID(r.Context()), req.MedicationID)
	if err != nil {
		respondServiceError(w, r, err, "start verification")
		return
	}
	respondJSON(w, r, http.StatusCreated, session)
}

// Get handles GET /api/v1/verifications/{id}
func (h *VerificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.verificationService.Session(middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "get verification")
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

// Capture handles POST /api/v1/verifications/{id}/capture
func (h *VerificationHandler) Capture(w http.ResponseWriter, r *http.Request) {
	session, err := h.verificationService.Capture(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "capture verification")
		return
	}
	respondJSON(w, r, http.StatusAccepted, session)
}

// Photo handles POST /api/v1/verifications/{id}/photo
func (h *VerificationHandler) Photo(w http.ResponseWriter, r *http.Request) {
	var req services.PhotoUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "generate upload URL")
		return
	}

	upload, err := h.verificationService.PhotoUploadURL(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, r, err, "generate upload URL")
		return
	}
	respondJSON(w, r, http.StatusOK, upload)
}

// Cancel handles DELETE /api/v1/verifications/{id}
func (h *VerificationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.verificationService.Cancel(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "cancel verification")
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
