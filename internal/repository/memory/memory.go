// Package memory implements in-memory stores used as the fallback data provider
// and in tests.
package memory

import (
	"time"

	"pillpal-backend/internal/repository"
)

// SharedOwner is the owner of sample rows. Shared rows are visible to every user
// and writable by none.
const SharedOwner = ""

// Ensure interfaces are met.
var _ repository.MedicationStore = (*MedicationStore)(nil)
var _ repository.AdherenceStore = (*AdherenceStore)(nil)
var _ repository.UserStore = (*UserStore)(nil)
var _ repository.ProfileStore = (*ProfileStore)(nil)
var _ repository.PreferenceStore = (*PreferenceStore)(nil)
var _ repository.NotificationStore = (*NotificationStore)(nil)

// NewStores creates empty in-memory stores
func NewStores() repository.Stores {
	return repository.Stores{
		Medications:   NewMedicationStore(),
		Adherence:     NewAdherenceStore(),
		Users:         NewUserStore(),
		Profiles:      NewProfileStore(),
		Preferences:   NewPreferenceStore(),
		Notifications: NewNotificationStore(),
	}
}

// NewSampleStores creates in-memory stores seeded with the sample dataset anchored at now
func NewSampleStores(now time.Time) repository.Stores {
	meds, records := SampleData(now)

	medStore := NewMedicationStore()
	medStore.Seed(meds...)
	adherenceStore := NewAdherenceStore()
	adherenceStore.Seed(records...)

	stores := NewStores()
	stores.Medications = medStore
	stores.Adherence = adherenceStore
	return stores
}

func visible(owner, userID string) bool {
	return owner == userID || owner == SharedOwner
}
