package memory

import (
	"context"
	"sort"
	"sync"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

// PreferenceStore is an in-memory notification preference store
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]map[models.PreferenceType]models.NotificationPreference
}

// NewPreferenceStore creates an empty preference store
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{prefs: make(map[string]map[models.PreferenceType]models.NotificationPreference)}
}

func (s *PreferenceStore) List(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.NotificationPreference{}
	for _, p := range s.prefs[userID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (s *PreferenceStore) Upsert(ctx context.Context, p *models.NotificationPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byType, ok := s.prefs[p.UserID]
	if !ok {
		byType = make(map[models.PreferenceType]models.NotificationPreference)
		s.prefs[p.UserID] = byType
	}
	byType[p.Type] = *p
	return nil
}

// NotificationStore is an in-memory notification inbox
type NotificationStore struct {
	mu    sync.RWMutex
	items []models.Notification
}

// NewNotificationStore creates an empty notification store
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *n)
	return nil
}

func (s *NotificationStore) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Notification{}
	for _, n := range s.items {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id && s.items[i].UserID == userID {
			s.items[i].Read = true
			return nil
		}
	}
	return domainerrors.NotFound("notification not found")
}
