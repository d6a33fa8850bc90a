package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/services"
)

// MedicationHandler handles medication HTTP requests
type MedicationHandler struct {
	medicationService *services.MedicationService
	adherenceService  *services.AdherenceService
}

// NewMedicationHandler creates a new medication handler
func NewMedicationHandler(medicationService *services.MedicationService, adherenceService *services.AdherenceService) *MedicationHandler {
	return &MedicationHandler{
		medicationService: medicationService,
		adherenceService:  adherenceService,
	}
}

// SetActiveRequest represents a request to activate or deactivate a medication
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// List handles GET /api/v1/medications
func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	meds, err := h.medicationService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "list medications")
		return
	}
	respondJSON(w, r, http.StatusOK, meds)
}

// Get handles GET /api/v1/medications/{id}
func (h *MedicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	med, err := h.medicationService.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "get medication")
		return
	}
	respondJSON(w, r, http.StatusOK, med)
}

// Create handles POST /api/v1/medications
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateMedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "create medication")
		return
	}

	med, err := h.medicationService.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "create medication")
		return
	}
	respondJSON(w, r, http.StatusCreated, med)
}

// Update handles PATCH /api/v1/medications/{id}
func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateMedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "update medication")
		return
	}

	med, err := h.medicationService.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, r, err, "update medication")
		return
	}
	respondJSON(w, r, http.StatusOK, med)
}

// SetActive handles PUT /api/v1/medications/{id}/active
func (h *MedicationHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "update medication")
		return
	}
	if req.IsActive == nil {
		respondServiceError(w, r, domainerrors.ValidationWithDetails("validation failed", map[string]string{"is_active": "is required"}), "update medication")
		return
	}

	med, err := h.medicationService.SetActive(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		respondServiceError(w, r, err, "update medication")
		return
	}
	respondJSON(w, r, http.StatusOK, med)
}

// Delete handles DELETE /api/v1/medications/{id}
func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.medicationService.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "delete medication")
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

// Adherence handles GET /api/v1/medications/{id}/adherence
func (h *MedicationHandler) Adherence(w http.ResponseWriter, r *http.Request) {
	records, err := h.adherenceService.ByMedication(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "list adherence")
		return
	}
	respondJSON(w, r, http.StatusOK, records)
}
