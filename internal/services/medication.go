package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
	"pillpal-backend/internal/validation"
)

// CreateMedicationRequest represents a request to add a medication
type CreateMedicationRequest struct {
	Name         string     `json:"name" validate:"required,max=100"`
	Dosage       string     `json:"dosage" validate:"required,max=50"`
	Frequency    string     `json:"frequency" validate:"required,oneof=once_daily twice_daily three_times_daily weekly as_needed"`
	TimeOfDay    string     `json:"time_of_day" validate:"required,oneof=morning noon afternoon evening bedtime custom"`
	Instructions *string    `json:"instructions" validate:"omitempty,max=500"`
	NextDose     *time.Time `json:"next_dose" validate:"required"`
	Color        string     `json:"color" validate:"omitempty,max=20"`
	RefillDate   *time.Time `json:"refill_date"`
	IsActive     *bool      `json:"is_active"`
}

// UpdateMedicationRequest represents a partial medication update
type UpdateMedicationRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Dosage       *string    `json:"dosage" validate:"omitempty,min=1,max=50"`
	Frequency    *string    `json:"frequency" validate:"omitempty,oneof=once_daily twice_daily three_times_daily weekly as_needed"`
	TimeOfDay    *string    `json:"time_of_day" validate:"omitempty,oneof=morning noon afternoon evening bedtime custom"`
	Instructions *string    `json:"instructions" validate:"omitempty,max=500"`
	NextDose     *time.Time `json:"next_dose"`
	IsActive     *bool      `json:"is_active"`
	Color        *string    `json:"color" validate:"omitempty,max=20"`
	RefillDate   *time.Time `json:"refill_date"`
}

func (r UpdateMedicationRequest) patch(now time.Time) models.MedicationPatch {
	p := models.MedicationPatch{
		Name:         r.Name,
		Dosage:       r.Dosage,
		Instructions: r.Instructions,
		NextDose:     r.NextDose,
		IsActive:     r.IsActive,
		Color:        r.Color,
		RefillDate:   r.RefillDate,
		UpdatedAt:    now,
	}
	if r.Frequency != nil {
		f := models.Frequency(*r.Frequency)
		p.Frequency = &f
	}
	if r.TimeOfDay != nil {
		t := models.TimeOfDay(*r.TimeOfDay)
		p.TimeOfDay = &t
	}
	return p
}

// MedicationService handles medication management
type MedicationService struct {
	meds      repository.MedicationStore
	hub       Broadcaster
	validator *validation.Validator
	now       func() time.Time
}

// NewMedicationService creates a new medication service
func NewMedicationService(meds repository.MedicationStore, hub Broadcaster, v *validation.Validator) *MedicationService {
	return &MedicationService{
		meds:      meds,
		hub:       hub,
		validator: v,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the user's medications ordered by next dose
func (s *MedicationService) List(ctx context.Context, userID string) ([]models.Medication, error) {
	return s.meds.List(ctx, userID)
}

// Get returns one medication of the user
func (s *MedicationService) Get(ctx context.Context, userID, id string) (*models.Medication, error) {
	return s.meds.Get(ctx, userID, id)
}

// Create validates and stores a new medication
func (s *MedicationService) Create(ctx context.Context, userID string, req CreateMedicationRequest) (*models.Medication, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	med := &models.Medication{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         req.Name,
		Dosage:       req.Dosage,
		Frequency:    models.Frequency(req.Frequency),
		TimeOfDay:    models.TimeOfDay(req.TimeOfDay),
		Instructions: req.Instructions,
		NextDose:     req.NextDose.UTC(),
		IsActive:     true,
		Color:        req.Color,
		RefillDate:   req.RefillDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.IsActive != nil {
		med.IsActive = *req.IsActive
	}

	if err := s.meds.Create(ctx, med); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}

	log.Info().Str("user_id", userID).Str("medication_id", med.ID).Msg("Medication created")
	notify(s.hub, userID, MessageMedicationUpdated, med)
	return med, nil
}

// Update applies a partial update
func (s *MedicationService) Update(ctx context.Context, userID, id string, req UpdateMedicationRequest) (*models.Medication, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	med, err := s.meds.Update(ctx, userID, id, req.patch(s.now()))
	if err != nil {
		return nil, err
	}
	notify(s.hub, userID, MessageMedicationUpdated, med)
	return med, nil
}

// SetActive activates or deactivates a medication
func (s *MedicationService) SetActive(ctx context.Context, userID, id string, active bool) (*models.Medication, error) {
	med, err := s.meds.SetActive(ctx, userID, id, active)
	if err != nil {
		return nil, err
	}
	notify(s.hub, userID, MessageMedicationUpdated, med)
	return med, nil
}

// Delete removes a medication; its adherence history is kept
func (s *MedicationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.meds.Delete(ctx, userID, id); err != nil {
		return err
	}
	log.Info().Str("user_id", userID).Str("medication_id", id).Msg("Medication deleted")
	notify(s.hub, userID, MessageMedicationUpdated, map[string]any{"id": id, "deleted": true})
	return nil
}
