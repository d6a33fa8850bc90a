package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

// MedicationStore is an in-memory medication store
type MedicationStore struct {
	mu    sync.RWMutex
	items map[string]models.Medication
}

// NewMedicationStore creates an empty medication store
func NewMedicationStore() *MedicationStore {
	return &MedicationStore{items: make(map[string]models.Medication)}
}

// Seed inserts medications as is
func (s *MedicationStore) Seed(meds ...models.Medication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range meds {
		s.items[m.ID] = m
	}
}

func (s *MedicationStore) List(ctx context.Context, userID string) ([]models.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Medication{}
	for _, m := range s.items {
		if visible(m.UserID, userID) {
			out = append(out, m)
		}
	}
	sortByNextDose(out)
	return out, nil
}

func (s *MedicationStore) Get(ctx context.Context, userID, id string) (*models.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.items[id]
	if !ok || !visible(m.UserID, userID) {
		return nil, domainerrors.NotFound("medication not found")
	}
	return &m, nil
}

func (s *MedicationStore) Create(ctx context.Context, m *models.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[m.ID]; exists {
		return domainerrors.Conflict("medication already exists")
	}
	s.items[m.ID] = *m
	return nil
}

// Update and Delete only touch rows the user owns. Shared rows are read-only.
func (s *MedicationStore) Update(ctx context.Context, userID, id string, patch models.MedicationPatch) (*models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.items[id]
	if !ok || m.UserID != userID {
		return nil, domainerrors.NotFound("medication not found")
	}
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now().UTC()
	}
	patch.Apply(&m)
	s.items[id] = m
	return &m, nil
}

func (s *MedicationStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.items[id]
	if !ok || m.UserID != userID {
		return domainerrors.NotFound("medication not found")
	}
	delete(s.items, id)
	return nil
}

func (s *MedicationStore) SetActive(ctx context.Context, userID, id string, active bool) (*models.Medication, error) {
	return s.Update(ctx, userID, id, models.MedicationPatch{IsActive: &active})
}

// ListDue skips shared sample rows since they have no owner to remind
func (s *MedicationStore) ListDue(ctx context.Context, before time.Time) ([]models.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Medication{}
	for _, m := range s.items {
		if m.UserID == SharedOwner || !m.IsActive || m.Frequency == models.FrequencyAsNeeded {
			continue
		}
		if !m.NextDose.After(before) {
			out = append(out, m)
		}
	}
	sortByNextDose(out)
	return out, nil
}

func sortByNextDose(meds []models.Medication) {
	sort.Slice(meds, func(i, j int) bool {
		if meds[i].NextDose.Equal(meds[j].NextDose) {
			return meds[i].ID < meds[j].ID
		}
		return meds[i].NextDose.Before(meds[j].NextDose)
	})
}
