package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pillpal-backend/internal/analytics"
	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
	"pillpal-backend/internal/validation"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 500
)

// Summary periods
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// RecordDoseRequest represents a request to log a dose event
type RecordDoseRequest struct {
	MedicationID string     `json:"medication_id" validate:"required"`
	Status       string     `json:"status" validate:"required,oneof=taken missed skipped"`
	Timestamp    *time.Time `json:"timestamp"`
	PillVerified bool       `json:"pill_verified"`
	UserVerified bool       `json:"user_verified"`
	Notes        *string    `json:"notes" validate:"omitempty,max=500"`
}

// DaySummary groups the records of one calendar day
type DaySummary struct {
	Date    string                   `json:"date"`
	Taken   int                      `json:"taken"`
	Total   int                      `json:"total"`
	Records []models.AdherenceRecord `json:"records"`
}

// AdherenceSummary aggregates the records of a period
type AdherenceSummary struct {
	Period        string       `json:"period"`
	Since         *time.Time   `json:"since,omitempty"`
	Total         int          `json:"total"`
	Taken         int          `json:"taken"`
	Missed        int          `json:"missed"`
	Skipped       int          `json:"skipped"`
	AdherenceRate int          `json:"adherence_rate"`
	Days          []DaySummary `json:"days"`
}

// AdherenceService records dose events and reports history
type AdherenceService struct {
	adherence repository.AdherenceStore
	meds      repository.MedicationStore
	hub       Broadcaster
	validator *validation.Validator
	loc       *time.Location
	now       func() time.Time
}

// NewAdherenceService creates a new adherence service. Summary days are grouped in loc.
func NewAdherenceService(
	adherence repository.AdherenceStore,
	meds repository.MedicationStore,
	hub Broadcaster,
	v *validation.Validator,
	loc *time.Location,
) *AdherenceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AdherenceService{
		adherence: adherence,
		meds:      meds,
		hub:       hub,
		validator: v,
		loc:       loc,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record logs a dose event. Any event for the upcoming dose advances the medication's next dose.
func (s *AdherenceService) Record(ctx context.Context, userID string, req RecordDoseRequest) (*models.AdherenceRecord, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	med, err := s.meds.Get(ctx, userID, req.MedicationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ts := now
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	record := &models.AdherenceRecord{
		ID:             uuid.New().String(),
		UserID:         userID,
		MedicationID:   med.ID,
		MedicationName: med.DisplayName(),
		Status:         models.AdherenceStatus(req.Status),
		Timestamp:      ts,
		PillVerified:   req.PillVerified,
		UserVerified:   req.UserVerified,
		Notes:          req.Notes,
		CreatedAt:      now,
	}
	if err := s.adherence.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record dose: %w", err)
	}

	if coversNextDose(med, ts) {
		next := med.Frequency.NextAfter(med.NextDose, ts)
		if _, err := s.meds.Update(ctx, userID, med.ID, models.MedicationPatch{NextDose: &next, UpdatedAt: now}); err != nil {
			log.Error().Err(err).Str("medication_id", med.ID).Msg("Failed to advance next dose")
		}
	}

	log.Info().
		Str("user_id", userID).
		Str("medication_id", med.ID).
		Str("status", string(record.Status)).
		Msg("Dose recorded")
	notify(s.hub, userID, MessageAdherenceRecorded, record)
	return record, nil
}

// coversNextDose reports whether an event at ts belongs to the scheduled next dose.
// Events more than half an interval before it refer to a dose the schedule already passed.
func coversNextDose(med *models.Medication, ts time.Time) bool {
	interval := med.Frequency.Interval()
	if interval == 0 {
		return false
	}
	return ts.After(med.NextDose.Add(-interval / 2))
}

// History returns the user's records, most recent first. days <= 0 means no lower bound.
func (s *AdherenceService) History(ctx context.Context, userID string, days, limit int) ([]models.AdherenceRecord, error) {
	if days < 0 {
		return nil, domainerrors.Validation("days must not be negative")
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	filter := models.AdherenceFilter{Limit: limit}
	if days > 0 {
		since := s.now().AddDate(0, 0, -days)
		filter.Since = &since
	}
	return s.adherence.List(ctx, userID, filter)
}

// ByMedication returns every record of one medication
func (s *AdherenceService) ByMedication(ctx context.Context, userID, medicationID string) ([]models.AdherenceRecord, error) {
	if _, err := s.meds.Get(ctx, userID, medicationID); err != nil {
		return nil, err
	}
	return s.adherence.ListByMedication(ctx, userID, medicationID)
}

// Summary aggregates the records of day, week, month or all. Empty period means week.
func (s *AdherenceService) Summary(ctx context.Context, userID, period string) (*AdherenceSummary, error) {
	if period == "" {
		period = PeriodWeek
	}

	now := s.now()
	var since *time.Time
	switch period {
	case PeriodDay:
		t := now.AddDate(0, 0, -1)
		since = &t
	case PeriodWeek:
		t := now.AddDate(0, 0, -7)
		since = &t
	case PeriodMonth:
		t := now.AddDate(0, -1, 0)
		since = &t
	case PeriodAll:
	default:
		return nil, domainerrors.Validationf("period must be one of: %s %s %s %s", PeriodDay, PeriodWeek, PeriodMonth, PeriodAll)
	}

	records, err := s.adherence.List(ctx, userID, models.AdherenceFilter{Since: since})
	if err != nil {
		return nil, err
	}

	summary := &AdherenceSummary{
		Period:        period,
		Since:         since,
		Total:         len(records),
		AdherenceRate: analytics.AdherenceRate(records),
		Days:          []DaySummary{},
	}
	index := map[string]int{}
	for _, r := range records {
		switch r.Status {
		case models.StatusTaken:
			summary.Taken++
		case models.StatusMissed:
			summary.Missed++
		case models.StatusSkipped:
			summary.Skipped++
		}

		date := r.Timestamp.In(s.loc).Format(time.DateOnly)
		i, ok := index[date]
		if !ok {
			i = len(summary.Days)
			index[date] = i
			summary.Days = append(summary.Days, DaySummary{Date: date})
		}
		day := &summary.Days[i]
		day.Total++
		if r.Status == models.StatusTaken {
			day.Taken++
		}
		day.Records = append(day.Records, r)
	}
	return summary, nil
}
