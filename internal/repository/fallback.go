package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

type fallbackKey struct{}

// TrackFallback returns a context that records whether any store call fell back
func TrackFallback(ctx context.Context) context.Context {
	return context.WithValue(ctx, fallbackKey{}, new(atomic.Bool))
}

// UsedFallback reports whether a store call made with ctx was served by the fallback
func UsedFallback(ctx context.Context) bool {
	flag, ok := ctx.Value(fallbackKey{}).(*atomic.Bool)
	return ok && flag.Load()
}

func markFallback(ctx context.Context) {
	if flag, ok := ctx.Value(fallbackKey{}).(*atomic.Bool); ok {
		flag.Store(true)
	}
}

func shouldFallback(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() == nil && !domainerrors.IsDomain(err)
}

func attempt[T any](ctx context.Context, op string, primary, fallback func() (T, error)) (T, error) {
	v, err := primary()
	if !shouldFallback(ctx, err) {
		return v, err
	}
	log.Warn().Err(err).Str("op", op).Msg("Primary store failed, serving fallback data")
	markFallback(ctx)
	return fallback()
}

func attemptExec(ctx context.Context, op string, primary, fallback func() error) error {
	_, err := attempt(ctx, op,
		func() (struct{}, error) { return struct{}{}, primary() },
		func() (struct{}, error) { return struct{}{}, fallback() },
	)
	return err
}

// WithFallback wraps every primary store so failed calls are retried on the matching fallback store
func WithFallback(primary, fallback Stores) Stores {
	return Stores{
		Medications:   &fallbackMedications{primary: primary.Medications, fallback: fallback.Medications},
		Adherence:     &fallbackAdherence{primary: primary.Adherence, fallback: fallback.Adherence},
		Users:         &fallbackUsers{primary: primary.Users, fallback: fallback.Users},
		Profiles:      &fallbackProfiles{primary: primary.Profiles, fallback: fallback.Profiles},
		Preferences:   &fallbackPreferences{primary: primary.Preferences, fallback: fallback.Preferences},
		Notifications: &fallbackNotifications{primary: primary.Notifications, fallback: fallback.Notifications},
	}
}

type fallbackMedications struct {
	primary, fallback MedicationStore
}

func (s *fallbackMedications) List(ctx context.Context, userID string) ([]models.Medication, error) {
	return attempt(ctx, "medications.list",
		func() ([]models.Medication, error) { return s.primary.List(ctx, userID) },
		func() ([]models.Medication, error) { return s.fallback.List(ctx, userID) },
	)
}

func (s *fallbackMedications) Get(ctx context.Context, userID, id string) (*models.Medication, error) {
	return attempt(ctx, "medications.get",
		func() (*models.Medication, error) { return s.primary.Get(ctx, userID, id) },
		func() (*models.Medication, error) { return s.fallback.Get(ctx, userID, id) },
	)
}

func (s *fallbackMedications) Create(ctx context.Context, m *models.Medication) error {
	return attemptExec(ctx, "medications.create",
		func() error { return s.primary.Create(ctx, m) },
		func() error { return s.fallback.Create(ctx, m) },
	)
}

func (s *fallbackMedications) Update(ctx context.Context, userID, id string, patch models.MedicationPatch) (*models.Medication, error) {
	return attempt(ctx, "medications.update",
		func() (*models.Medication, error) { return s.primary.Update(ctx, userID, id, patch) },
		func() (*models.Medication, error) { return s.fallback.Update(ctx, userID, id, patch) },
	)
}

func (s *fallbackMedications) Delete(ctx context.Context, userID, id string) error {
	return attemptExec(ctx, "medications.delete",
		func() error { return s.primary.Delete(ctx, userID, id) },
		func() error { return s.fallback.Delete(ctx, userID, id) },
	)
}

func (s *fallbackMedications) SetActive(ctx context.Context, userID, id string, active bool) (*models.Medication, error) {
	return attempt(ctx, "medications.set_active",
		func() (*models.Medication, error) { return s.primary.SetActive(ctx, userID, id, active) },
		func() (*models.Medication, error) { return s.fallback.SetActive(ctx, userID, id, active) },
	)
}

func (s *fallbackMedications) ListDue(ctx context.Context, before time.Time) ([]models.Medication, error) {
	return attempt(ctx, "medications.list_due",
		func() ([]models.Medication, error) { return s.primary.ListDue(ctx, before) },
		func() ([]models.Medication, error) { return s.fallback.ListDue(ctx, before) },
	)
}

type fallbackAdherence struct {
	primary, fallback AdherenceStore
}

func (s *fallbackAdherence) List(ctx context.Context, userID string, filter models.AdherenceFilter) ([]models.AdherenceRecord, error) {
	return attempt(ctx, "adherence.list",
		func() ([]models.AdherenceRecord, error) { return s.primary.List(ctx, userID, filter) },
		func() ([]models.AdherenceRecord, error) { return s.fallback.List(ctx, userID, filter) },
	)
}

func (s *fallbackAdherence) Create(ctx context.Context, r *models.AdherenceRecord) error {
	return attemptExec(ctx, "adherence.create",
		func() error { return s.primary.Create(ctx, r) },
		func() error { return s.fallback.Create(ctx, r) },
	)
}

func (s *fallbackAdherence) ListByMedication(ctx context.Context, userID, medicationID string) ([]models.AdherenceRecord, error) {
	return attempt(ctx, "adherence.list_by_medication",
		func() ([]models.AdherenceRecord, error) { return s.primary.ListByMedication(ctx, userID, medicationID) },
		func() ([]models.AdherenceRecord, error) { return s.fallback.ListByMedication(ctx, userID, medicationID) },
	)
}

type fallbackUsers struct {
	primary, fallback UserStore
}

func (s *fallbackUsers) Create(ctx context.Context, u *models.User) error {
	return attemptExec(ctx, "users.create",
		func() error { return s.primary.Create(ctx, u) },
		func() error { return s.fallback.Create(ctx, u) },
	)
}

func (s *fallbackUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return attempt(ctx, "users.get",
		func() (*models.User, error) { return s.primary.GetByID(ctx, id) },
		func() (*models.User, error) { return s.fallback.GetByID(ctx, id) },
	)
}

func (s *fallbackUsers) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	return attempt(ctx, "users.get_by_subject",
		func() (*models.User, error) { return s.primary.GetBySubject(ctx, subject) },
		func() (*models.User, error) { return s.fallback.GetBySubject(ctx, subject) },
	)
}

func (s *fallbackUsers) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return attemptExec(ctx, "users.update_push_token",
		func() error { return s.primary.UpdatePushToken(ctx, userID, pushToken) },
		func() error { return s.fallback.UpdatePushToken(ctx, userID, pushToken) },
	)
}

type fallbackProfiles struct {
	primary, fallback ProfileStore
}

func (s *fallbackProfiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	return attempt(ctx, "profiles.get",
		func() (*models.Profile, error) { return s.primary.Get(ctx, userID) },
		func() (*models.Profile, error) { return s.fallback.Get(ctx, userID) },
	)
}

func (s *fallbackProfiles) Upsert(ctx context.Context, p *models.Profile) error {
	return attemptExec(ctx, "profiles.upsert",
		func() error { return s.primary.Upsert(ctx, p) },
		func() error { return s.fallback.Upsert(ctx, p) },
	)
}

type fallbackPreferences struct {
	primary, fallback PreferenceStore
}

func (s *fallbackPreferences) List(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	return attempt(ctx, "preferences.list",
		func() ([]models.NotificationPreference, error) { return s.primary.List(ctx, userID) },
		func() ([]models.NotificationPreference, error) { return s.fallback.List(ctx, userID) },
	)
}

func (s *fallbackPreferences) Upsert(ctx context.Context, p *models.NotificationPreference) error {
	return attemptExec(ctx, "preferences.upsert",
		func() error { return s.primary.Upsert(ctx, p) },
		func() error { return s.fallback.Upsert(ctx, p) },
	)
}

type fallbackNotifications struct {
	primary, fallback NotificationStore
}

func (s *fallbackNotifications) Create(ctx context.Context, n *models.Notification) error {
	return attemptExec(ctx, "notifications.create",
		func() error { return s.primary.Create(ctx, n) },
		func() error { return s.fallback.Create(ctx, n) },
	)
}

func (s *fallbackNotifications) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	return attempt(ctx, "notifications.list",
		func() ([]models.Notification, error) { return s.primary.List(ctx, userID, unreadOnly, limit) },
		func() ([]models.Notification, error) { return s.fallback.List(ctx, userID, unreadOnly, limit) },
	)
}

func (s *fallbackNotifications) MarkRead(ctx context.Context, userID, id string) error {
	return attemptExec(ctx, "notifications.mark_read",
		func() error { return s.primary.MarkRead(ctx, userID, id) },
		func() error { return s.fallback.MarkRead(ctx, userID, id) },
	)
}
