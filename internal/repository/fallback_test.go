package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
	"pillpal-backend/internal/repository/memory"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

// brokenMedications fails every call with err
type brokenMedications struct {
	repository.MedicationStore
	err   error
	calls int
}

func (b *brokenMedications) List(ctx context.Context, userID string) ([]models.Medication, error) {
	b.calls++
	return nil, b.err
}

func (b *brokenMedications) Get(ctx context.Context, userID, id string) (*models.Medication, error) {
	b.calls++
	return nil, b.err
}

func fallbackStores(primary repository.MedicationStore) repository.Stores {
	stores := memory.NewStores()
	stores.Medications = primary
	return repository.WithFallback(stores, memory.NewSampleStores(time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)))
}

func TestWithFallback_ServesSampleDataOnFailure(t *testing.T) {
	primary := &brokenMedications{err: errConnRefused}
	stores := fallbackStores(primary)
	ctx := repository.TrackFallback(context.Background())

	meds, err := stores.Medications.List(ctx, "u1")

	require.NoError(t, err)
	assert.Len(t, meds, 4)
	assert.Equal(t, 1, primary.calls)
	assert.True(t, repository.UsedFallback(ctx))
}

func TestWithFallback_DomainErrorsPassThrough(t *testing.T) {
	primary := &brokenMedications{err: domainerrors.NotFound("medication not found")}
	stores := fallbackStores(primary)
	ctx := repository.TrackFallback(context.Background())

	_, err := stores.Medications.Get(ctx, "u1", "sample-aspirin")

	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.False(t, repository.UsedFallback(ctx))
}

func TestWithFallback_CancelledContextDoesNotFallBack(t *testing.T) {
	primary := &brokenMedications{err: context.Canceled}
	stores := fallbackStores(primary)
	ctx, cancel := context.WithCancel(repository.TrackFallback(context.Background()))
	cancel()

	_, err := stores.Medications.List(ctx, "u1")

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, repository.UsedFallback(ctx))
}

func TestWithFallback_HealthyPrimaryIsNotMarked(t *testing.T) {
	stores := repository.WithFallback(memory.NewStores(), memory.NewSampleStores(time.Now()))
	ctx := repository.TrackFallback(context.Background())

	meds, err := stores.Medications.List(ctx, "u1")

	require.NoError(t, err)
	assert.Empty(t, meds)
	assert.False(t, repository.UsedFallback(ctx))
}

func TestUsedFallback_UntrackedContext(t *testing.T) {
	assert.False(t, repository.UsedFallback(context.Background()))
}
