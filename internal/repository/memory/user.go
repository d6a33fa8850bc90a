package memory

import (
	"context"
	"sync"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

// UserStore is an in-memory user store
type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewUserStore creates an empty user store
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User)}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return domainerrors.Conflict("user already exists")
	}
	if u.ExternalSubject != nil {
		for _, existing := range s.users {
			if existing.ExternalSubject != nil && *existing.ExternalSubject == *u.ExternalSubject {
				return domainerrors.Conflict("user already exists")
			}
		}
	}
	stored := *u
	stored.Token = ""
	s.users[u.ID] = stored
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domainerrors.NotFound("user not found")
	}
	return &u, nil
}

func (s *UserStore) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ExternalSubject != nil && *u.ExternalSubject == subject {
			return &u, nil
		}
	}
	return nil, domainerrors.NotFound("user not found")
}

func (s *UserStore) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return domainerrors.NotFound("user not found")
	}
	u.PushToken = pushToken
	s.users[userID] = u
	return nil
}

// ProfileStore is an in-memory profile store
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

// NewProfileStore creates an empty profile store
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]models.Profile)}
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, domainerrors.NotFound("profile not found")
	}
	return &p, nil
}

func (s *ProfileStore) Upsert(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = *p
	return nil
}
