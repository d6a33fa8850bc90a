package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

func TestAdherenceService_TakenAdvancesNextDose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := testNow.Add(-time.Hour)
	med := f.addMedication(t, "u1", models.FrequencyOnceDaily, due)

	record, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: med.ID, Status: "taken"})
	require.NoError(t, err)

	assert.Equal(t, "Lisinopril 10mg", record.MedicationName)
	assert.Equal(t, testNow, record.Timestamp)
	assert.Equal(t, "u1", record.UserID)

	stored, err := f.medication.Get(ctx, "u1", med.ID)
	require.NoError(t, err)
	assert.Equal(t, due.Add(24*time.Hour), stored.NextDose)
	assert.Len(t, f.hub.ofType(MessageAdherenceRecorded), 1)
}

func TestAdherenceService_MissedAdvancesNextDose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := testNow.Add(-time.Hour)
	med := f.addMedication(t, "u1", models.FrequencyTwiceDaily, due)

	_, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: med.ID, Status: "missed"})
	require.NoError(t, err)

	stored, err := f.medication.Get(ctx, "u1", med.ID)
	require.NoError(t, err)
	assert.Equal(t, due.Add(12*time.Hour), stored.NextDose)
}

func TestAdherenceService_LateLogKeepsSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// the scheduler already moved past this morning's dose
	next := testNow.Add(23 * time.Hour)
	med := f.addMedication(t, "u1", models.FrequencyOnceDaily, next)

	late := testNow.Add(-time.Hour)
	_, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: med.ID, Status: "taken", Timestamp: &late})
	require.NoError(t, err)

	stored, err := f.medication.Get(ctx, "u1", med.ID)
	require.NoError(t, err)
	assert.Equal(t, next, stored.NextDose)
}

func TestAdherenceService_RecordRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	med := f.addMedication(t, "u1", models.FrequencyOnceDaily, testNow)

	t.Run("unknown status", func(t *testing.T) {
		_, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: med.ID, Status: "forgot"})
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	})

	t.Run("missing medication", func(t *testing.T) {
		_, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: "nope", Status: "taken"})
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})

	t.Run("another user's medication", func(t *testing.T) {
		_, err := f.adherence.Record(ctx, "u2", RecordDoseRequest{MedicationID: med.ID, Status: "taken"})
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})

	records, err := f.adherence.History(ctx, "u1", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAdherenceService_HistoryWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	med := f.addMedication(t, "u1", models.FrequencyAsNeeded, testNow)

	for i := 0; i < 5; i++ {
		ts := testNow.AddDate(0, 0, -i*2)
		_, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: med.ID, Status: "taken", Timestamp: &ts})
		require.NoError(t, err)
	}

	recent, err := f.adherence.History(ctx, "u1", 3, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	limited, err := f.adherence.History(ctx, "u1", 0, 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, testNow, limited[0].Timestamp)

	_, err = f.adherence.History(ctx, "u1", -1, 0)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	byMed, err := f.adherence.ByMedication(ctx, "u1", med.ID)
	require.NoError(t, err)
	assert.Len(t, byMed, 5)
}

func TestAdherenceService_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	med := f.addMedication(t, "u1", models.FrequencyAsNeeded, testNow)

	log := func(status string, ts time.Time) {
		_, err := f.adherence.Record(ctx, "u1", RecordDoseRequest{MedicationID: med.ID, Status: status, Timestamp: &ts})
		require.NoError(t, err)
	}
	log("taken", testNow.Add(-time.Hour))
	log("missed", testNow.Add(-2*time.Hour))
	log("taken", testNow.AddDate(0, 0, -2))
	log("skipped", testNow.AddDate(0, 0, -2).Add(time.Hour))
	log("taken", testNow.AddDate(0, 0, -20))

	week, err := f.adherence.Summary(ctx, "u1", "week")
	require.NoError(t, err)
	assert.Equal(t, 4, week.Total)
	assert.Equal(t, 2, week.Taken)
	assert.Equal(t, 1, week.Missed)
	assert.Equal(t, 1, week.Skipped)
	assert.Equal(t, 50, week.AdherenceRate)
	require.Len(t, week.Days, 2)
	assert.Equal(t, "2026-03-12", week.Days[0].Date)
	assert.Equal(t, 1, week.Days[0].Taken)
	assert.Equal(t, 2, week.Days[0].Total)
	assert.Equal(t, "2026-03-10", week.Days[1].Date)

	day, err := f.adherence.Summary(ctx, "u1", "day")
	require.NoError(t, err)
	assert.Equal(t, 2, day.Total)

	all, err := f.adherence.Summary(ctx, "u1", "all")
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)
	assert.Nil(t, all.Since)

	defaulted, err := f.adherence.Summary(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, defaulted.Period)

	_, err = f.adherence.Summary(ctx, "u1", "year")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
