package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

var now = time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

func TestMedicationStore(t *testing.T) {
	ctx := context.Background()
	s := NewMedicationStore()

	later := &models.Medication{ID: "b", UserID: "u1", Name: "B", NextDose: now.Add(2 * time.Hour), IsActive: true, Frequency: models.FrequencyOnceDaily}
	sooner := &models.Medication{ID: "a", UserID: "u1", Name: "A", NextDose: now.Add(time.Hour), IsActive: true, Frequency: models.FrequencyOnceDaily}
	other := &models.Medication{ID: "c", UserID: "u2", Name: "C", NextDose: now, IsActive: true, Frequency: models.FrequencyOnceDaily}
	for _, m := range []*models.Medication{later, sooner, other} {
		require.NoError(t, s.Create(ctx, m))
	}

	assert.ErrorIs(t, s.Create(ctx, sooner), domainerrors.ErrConflict)

	meds, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, meds, 2)
	assert.Equal(t, "a", meds[0].ID)
	assert.Equal(t, "b", meds[1].ID)

	_, err = s.Get(ctx, "u1", "c")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	name := "Renamed"
	updated, err := s.Update(ctx, "u1", "a", models.MedicationPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.UpdatedAt.IsZero())

	inactive, err := s.SetActive(ctx, "u1", "b", false)
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	due, err := s.ListDue(ctx, now.Add(90*time.Minute))
	require.NoError(t, err)
	ids := []string{}
	for _, m := range due {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"c", "a"}, ids)

	require.NoError(t, s.Delete(ctx, "u1", "a"))
	assert.ErrorIs(t, s.Delete(ctx, "u1", "a"), domainerrors.ErrNotFound)
}

func TestAdherenceStore_OrderSinceAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewAdherenceStore()

	for i, offset := range []time.Duration{-3 * time.Hour, 0, -time.Hour, -48 * time.Hour} {
		r := &models.AdherenceRecord{
			ID:           string(rune('a' + i)),
			UserID:       "u1",
			MedicationID: "m1",
			Status:       models.StatusTaken,
			Timestamp:    now.Add(offset),
		}
		require.NoError(t, s.Create(ctx, r))
	}
	require.NoError(t, s.Create(ctx, &models.AdherenceRecord{ID: "x", UserID: "u2", MedicationID: "m1", Timestamp: now}))

	all, err := s.List(ctx, "u1", models.AdherenceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}

	since := now.Add(-24 * time.Hour)
	recent, err := s.List(ctx, "u1", models.AdherenceFilter{Since: &since, Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].ID)
	assert.Equal(t, "c", recent[1].ID)

	byMed, err := s.ListByMedication(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.Len(t, byMed, 4)
}

func TestSampleStores_SharedWithEveryUser(t *testing.T) {
	ctx := context.Background()
	stores := NewSampleStores(now)

	meds, err := stores.Medications.List(ctx, "anyone")
	require.NoError(t, err)
	require.Len(t, meds, 4)
	assert.Equal(t, "Atorvastatin", meds[0].Name)

	records, err := stores.Adherence.List(ctx, "anyone", models.AdherenceFilter{})
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, "Metformin 500mg", records[0].MedicationName)
	assert.Equal(t, models.StatusTaken, records[0].Status)

	due, err := stores.Medications.ListDue(ctx, now.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestSampleStores_SharedRowsAreReadOnly(t *testing.T) {
	ctx := context.Background()
	stores := NewSampleStores(now)

	meds, err := stores.Medications.List(ctx, "alice")
	require.NoError(t, err)
	shared := meds[0]

	name := "Renamed"
	_, err = stores.Medications.Update(ctx, "alice", shared.ID, models.MedicationPatch{Name: &name})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = stores.Medications.SetActive(ctx, "alice", shared.ID, false)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.ErrorIs(t, stores.Medications.Delete(ctx, "alice", shared.ID), domainerrors.ErrNotFound)

	got, err := stores.Medications.Get(ctx, "bob", shared.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.Name, got.Name)
	assert.True(t, got.IsActive)

	bobs, err := stores.Medications.List(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, bobs, 4)
}

func TestMedicationStore_IsolatesOwners(t *testing.T) {
	ctx := context.Background()
	s := NewMedicationStore()
	require.NoError(t, s.Create(ctx, &models.Medication{ID: "m1", UserID: "alice", Name: "Metformin", Dosage: "500mg", Frequency: models.FrequencyTwiceDaily, NextDose: now, IsActive: true}))

	_, err := s.Get(ctx, "bob", "m1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	name := "Renamed"
	_, err = s.Update(ctx, "bob", "m1", models.MedicationPatch{Name: &name})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "bob", "m1"), domainerrors.ErrNotFound)

	got, err := s.Get(ctx, "alice", "m1")
	require.NoError(t, err)
	assert.Equal(t, "Metformin", got.Name)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	subject := "google|123"

	require.NoError(t, s.Create(ctx, &models.User{ID: "u1", ExternalSubject: &subject, Token: "secret", CreatedAt: now}))
	assert.ErrorIs(t, s.Create(ctx, &models.User{ID: "u2", ExternalSubject: &subject}), domainerrors.ErrConflict)

	u, err := s.GetBySubject(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Empty(t, u.Token)

	token := "device-token"
	require.NoError(t, s.UpdatePushToken(ctx, "u1", &token))
	u, err = s.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u.PushToken)
	assert.Equal(t, token, *u.PushToken)

	assert.ErrorIs(t, s.UpdatePushToken(ctx, "missing", &token), domainerrors.ErrNotFound)
}

func TestNotificationStore(t *testing.T) {
	ctx := context.Background()
	s := NewNotificationStore()

	require.NoError(t, s.Create(ctx, &models.Notification{ID: "n1", UserID: "u1", Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, s.Create(ctx, &models.Notification{ID: "n2", UserID: "u1", Timestamp: now}))
	require.NoError(t, s.Create(ctx, &models.Notification{ID: "n3", UserID: "u2", Timestamp: now}))

	require.NoError(t, s.MarkRead(ctx, "u1", "n2"))
	assert.ErrorIs(t, s.MarkRead(ctx, "u1", "n3"), domainerrors.ErrNotFound)

	all, err := s.List(ctx, "u1", false, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "n2", all[0].ID)
	assert.True(t, all[0].Read)

	unread, err := s.List(ctx, "u1", true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n1", unread[0].ID)
}

func TestPreferenceStore_Upsert(t *testing.T) {
	ctx := context.Background()
	s := NewPreferenceStore()

	pref := models.NotificationPreference{UserID: "u1", Type: models.PreferenceMedicationReminder, Enabled: true, Timing: 15}
	require.NoError(t, s.Upsert(ctx, &pref))
	pref.Timing = 30
	require.NoError(t, s.Upsert(ctx, &pref))

	prefs, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Equal(t, 30, prefs[0].Timing)
}
