package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
)

const (
	// maxReminderLead bounds how far ahead a reminder timing may reach
	maxReminderLead = 24 * time.Hour
	dedupeRetention = 48 * time.Hour
)

// ReminderService sends dose reminders and missed-dose alerts on a ticker
type ReminderService struct {
	meds          repository.MedicationStore
	notifications *NotificationService
	interval      time.Duration
	now           func() time.Time

	mu       sync.Mutex
	reminded map[string]time.Time
	alerted  map[string]time.Time
}

// NewReminderService creates a reminder scheduler that checks every interval
func NewReminderService(meds repository.MedicationStore, notifications *NotificationService, interval time.Duration) *ReminderService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderService{
		meds:          meds,
		notifications: notifications,
		interval:      interval,
		now:           func() time.Time { return time.Now().UTC() },
		reminded:      make(map[string]time.Time),
		alerted:       make(map[string]time.Time),
	}
}

// Run checks for due doses until ctx is cancelled
func (s *ReminderService) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("Reminder scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Reminder scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				log.Error().Err(err).Msg("Reminder check failed")
			}
		}
	}
}

// Tick runs a single reminder check
func (s *ReminderService) Tick(ctx context.Context) error {
	now := s.now()
	due, err := s.meds.ListDue(ctx, now.Add(maxReminderLead))
	if err != nil {
		return fmt.Errorf("failed to list due medications: %w", err)
	}

	prefs := map[string][2]models.NotificationPreference{}
	for i := range due {
		med := &due[i]
		p, ok := prefs[med.UserID]
		if !ok {
			all, err := s.notifications.Preferences(ctx, med.UserID)
			if err != nil {
				log.Error().Err(err).Str("user_id", med.UserID).Msg("Failed to load preferences")
				continue
			}
			p = [2]models.NotificationPreference{
				models.PreferenceOf(all, med.UserID, models.PreferenceMedicationReminder),
				models.PreferenceOf(all, med.UserID, models.PreferenceAdherenceAlert),
			}
			prefs[med.UserID] = p
		}
		s.check(ctx, now, med, p[0], p[1])
	}

	s.prune(now)
	return nil
}

func (s *ReminderService) check(ctx context.Context, now time.Time, med *models.Medication, reminder, alert models.NotificationPreference) {
	key := med.ID + "|" + med.NextDose.UTC().Format(time.RFC3339)
	lead := time.Duration(reminder.Timing) * time.Minute
	grace := time.Duration(alert.Timing) * time.Minute

	if now.After(med.NextDose.Add(grace)) {
		if alert.Enabled && now.Sub(med.NextDose) <= dedupeRetention && s.claim(s.alerted, key, now) {
			n := &models.Notification{
				UserID:         med.UserID,
				Title:          "Adherence Alert",
				Message:        fmt.Sprintf("You missed your %s dose. Would you like to log it?", med.DisplayName()),
				Type:           models.NotificationAlert,
				MedicationID:   &med.ID,
				ActionRequired: true,
			}
			s.deliver(ctx, n, MessageAlert, alert)
		}
		s.advance(ctx, now, med)
		return
	}

	if reminder.Enabled && !now.Before(med.NextDose.Add(-lead)) {
		if s.claim(s.reminded, key, now) {
			n := &models.Notification{
				UserID:         med.UserID,
				Title:          "Medication Reminder",
				Message:        fmt.Sprintf("Time to take your %s", med.DisplayName()),
				Type:           models.NotificationReminder,
				MedicationID:   &med.ID,
				ActionRequired: true,
			}
			s.deliver(ctx, n, MessageReminder, reminder)
		}
	}
}

// advance moves an overdue medication to its next scheduled dose
func (s *ReminderService) advance(ctx context.Context, now time.Time, med *models.Medication) {
	next := med.Frequency.NextAfter(med.NextDose, now)
	if _, err := s.meds.Update(ctx, med.UserID, med.ID, models.MedicationPatch{NextDose: &next, UpdatedAt: now}); err != nil {
		log.Error().Err(err).Str("medication_id", med.ID).Msg("Failed to advance overdue dose")
		return
	}
	log.Debug().Str("medication_id", med.ID).Time("next_dose", next).Msg("Overdue dose advanced")
}

func (s *ReminderService) deliver(ctx context.Context, n *models.Notification, msgType string, pref models.NotificationPreference) {
	if err := s.notifications.Deliver(ctx, n, msgType, pref); err != nil {
		log.Error().Err(err).Str("user_id", n.UserID).Str("type", msgType).Msg("Failed to deliver notification")
		return
	}
	log.Info().Str("user_id", n.UserID).Str("medication_id", *n.MedicationID).Str("type", msgType).Msg("Notification sent")
}

// claim records key in sent and reports whether it was new
func (s *ReminderService) claim(sent map[string]time.Time, key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := sent[key]; done {
		return false
	}
	sent[key] = now
	return true
}

func (s *ReminderService) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sent := range []map[string]time.Time{s.reminded, s.alerted} {
		for key, at := range sent {
			if now.Sub(at) > dedupeRetention {
				delete(sent, key)
			}
		}
	}
}
