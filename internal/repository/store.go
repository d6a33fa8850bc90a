package repository

import (
	"context"
	"time"

	"pillpal-backend/internal/models"
)

// MedicationStore persists medication definitions. List is ordered by next dose ascending.
type MedicationStore interface {
	List(ctx context.Context, userID string) ([]models.Medication, error)
	Get(ctx context.Context, userID, id string) (*models.Medication, error)
	Create(ctx context.Context, m *models.Medication) error
	Update(ctx context.Context, userID, id string, patch models.MedicationPatch) (*models.Medication, error)
	Delete(ctx context.Context, userID, id string) error
	SetActive(ctx context.Context, userID, id string, active bool) (*models.Medication, error)
	// ListDue returns active scheduled medications of all users due at or before the given time.
	ListDue(ctx context.Context, before time.Time) ([]models.Medication, error)
}

// AdherenceStore persists dose events. Lists are ordered by timestamp descending.
type AdherenceStore interface {
	List(ctx context.Context, userID string, filter models.AdherenceFilter) ([]models.AdherenceRecord, error)
	Create(ctx context.Context, r *models.AdherenceRecord) error
	ListByMedication(ctx context.Context, userID, medicationID string) ([]models.AdherenceRecord, error)
}

// UserStore persists user accounts
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// ProfileStore persists user profiles
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}

// PreferenceStore persists notification preferences, one per user and type
type PreferenceStore interface {
	List(ctx context.Context, userID string) ([]models.NotificationPreference, error)
	Upsert(ctx context.Context, p *models.NotificationPreference) error
}

// NotificationStore persists the notification inbox. Lists are newest first.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// Stores bundles every store the services need
type Stores struct {
	Medications   MedicationStore
	Adherence     AdherenceStore
	Users         UserStore
	Profiles      ProfileStore
	Preferences   PreferenceStore
	Notifications NotificationStore
}
