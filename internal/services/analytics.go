package services

import (
	"context"
	"time"

	"pillpal-backend/internal/analytics"
	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
)

// AnalyticsService runs the analytics engine over a user's recent history
type AnalyticsService struct {
	adherence repository.AdherenceStore
	engine    *analytics.Engine
	window    int
	now       func() time.Time
}

// NewAnalyticsService creates a new analytics service over at most window records
func NewAnalyticsService(adherence repository.AdherenceStore, engine *analytics.Engine, window int) *AnalyticsService {
	if window <= 0 {
		window = DefaultHistoryLimit
	}
	return &AnalyticsService{
		adherence: adherence,
		engine:    engine,
		window:    window,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Metrics computes the user's metrics. days <= 0 considers the whole window.
func (s *AnalyticsService) Metrics(ctx context.Context, userID string, days int) (*analytics.Metrics, error) {
	if days < 0 {
		return nil, domainerrors.Validation("days must not be negative")
	}

	filter := models.AdherenceFilter{Limit: s.window}
	if days > 0 {
		since := s.now().AddDate(0, 0, -days)
		filter.Since = &since
	}

	records, err := s.adherence.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	m := s.engine.Compute(records)
	return &m, nil
}
