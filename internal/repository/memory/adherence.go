package memory

import (
	"context"
	"sort"
	"sync"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

// AdherenceStore is an in-memory, append-only adherence store
type AdherenceStore struct {
	mu      sync.RWMutex
	records []models.AdherenceRecord
}

// NewAdherenceStore creates an empty adherence store
func NewAdherenceStore() *AdherenceStore {
	return &AdherenceStore{}
}

// Seed appends records as is
func (s *AdherenceStore) Seed(records ...models.AdherenceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

func (s *AdherenceStore) List(ctx context.Context, userID string, filter models.AdherenceFilter) ([]models.AdherenceRecord, error) {
	return s.collect(filter.Limit, func(r models.AdherenceRecord) bool {
		if !visible(r.UserID, userID) {
			return false
		}
		return filter.Since == nil || !r.Timestamp.Before(*filter.Since)
	}), nil
}

func (s *AdherenceStore) ListByMedication(ctx context.Context, userID, medicationID string) ([]models.AdherenceRecord, error) {
	return s.collect(0, func(r models.AdherenceRecord) bool {
		return visible(r.UserID, userID) && r.MedicationID == medicationID
	}), nil
}

func (s *AdherenceStore) Create(ctx context.Context, r *models.AdherenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.ID == r.ID {
			return domainerrors.Conflict("adherence record already exists")
		}
	}
	s.records = append(s.records, *r)
	return nil
}

func (s *AdherenceStore) collect(limit int, keep func(models.AdherenceRecord) bool) []models.AdherenceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AdherenceRecord{}
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
