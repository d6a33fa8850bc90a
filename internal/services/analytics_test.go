package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pillpal-backend/internal/analytics"
	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

func TestAnalyticsService_Metrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	med := f.addMedication(t, "u1", models.FrequencyAsNeeded, testNow)

	statuses := []string{"taken", "taken", "missed", "taken", "taken", "taken", "taken", "missed", "taken", "taken"}
	for i, status := range statuses {
		ts := testNow.AddDate(0, 0, -i)
		_, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: med.ID, Status: status, Timestamp: &ts})
		require.NoError(t, err)
	}

	svc := NewAnalyticsService(f.stores.Adherence, analytics.NewEngine(time.UTC), 100)
	svc.now = fixedClock()

	m, err := svc.Metrics(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, m.SampleSize)
	assert.Equal(t, 80, m.AdherenceRate)
	assert.Len(t, m.Patterns, 21)

	recent, err := svc.Metrics(ctx, "u1", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, recent.SampleSize)

	empty, err := svc.Metrics(ctx, "u2", 0)
	require.NoError(t, err)
	assert.Equal(t, analytics.DefaultPredictedAdherence, empty.PredictedAdherence)

	_, err = svc.Metrics(ctx, "u1", -3)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAnalyticsService_Window(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	med := f.addMedication(t, "u1", models.FrequencyAsNeeded, testNow)

	for i := 0; i < 6; i++ {
		ts := testNow.Add(-time.Duration(i) * time.Hour)
		_, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: med.ID, Status: "taken", Timestamp: &ts})
		require.NoError(t, err)
	}

	m, err := NewAnalyticsService(f.stores.Adherence, analytics.NewEngine(nil), 4).Metrics(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, m.SampleSize)
}
