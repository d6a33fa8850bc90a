package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
)

type recordingPush struct {
	mu   sync.Mutex
	sent []string
}

func (p *recordingPush) Send(ctx context.Context, deviceToken string, n *models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, deviceToken+":"+n.Title)
	return nil
}

func (p *recordingPush) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func newNotificationService(f *fixture, push PushSender) *NotificationService {
	svc := NewNotificationService(f.stores.Preferences, f.stores.Notifications, f.stores.Users, f.hub, push, f.validator)
	svc.now = fixedClock()
	return svc
}

func TestNotificationService_PreferencesDefaultAndUpdate(t *testing.T) {
	f := newFixture(t)
	svc := newNotificationService(f, nil)
	ctx := context.Background()

	prefs, err := svc.Preferences(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, prefs, 4)
	assert.Equal(t, models.PreferenceMedicationReminder, prefs[0].Type)
	assert.Equal(t, 15, prefs[0].Timing)

	updated, err := svc.UpdatePreferences(ctx, "u1", UpdatePreferencesRequest{Preferences: []PreferenceUpdate{
		{Type: "medication_reminder", Enabled: false, Timing: 5, Method: "email", Priority: "low"},
	}})
	require.NoError(t, err)
	require.Len(t, updated, 4)
	assert.False(t, updated[0].Enabled)
	assert.Equal(t, 5, updated[0].Timing)
	assert.Equal(t, models.MethodEmail, updated[0].Method)
	assert.True(t, updated[1].Enabled)

	_, err = svc.UpdatePreferences(ctx, "u1", UpdatePreferencesRequest{Preferences: []PreferenceUpdate{
		{Type: "carrier_pigeon", Method: "push", Priority: "low"},
	}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.UpdatePreferences(ctx, "u1", UpdatePreferencesRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestNotificationService_DeliverAndInbox(t *testing.T) {
	f := newFixture(t)
	push := &recordingPush{}
	svc := newNotificationService(f, push)
	ctx := context.Background()

	require.NoError(t, f.stores.Users.Create(ctx, &models.User{ID: "u1", CreatedAt: testNow}))
	token := "device-1"
	require.NoError(t, f.stores.Users.UpdatePushToken(ctx, "u1", &token))

	pushPref := models.PreferenceOf(nil, "u1", models.PreferenceMedicationReminder)
	n := &models.Notification{UserID: "u1", Title: "Medication Reminder", Message: "Time to take your Lisinopril 10mg", Type: models.NotificationReminder}
	require.NoError(t, svc.Deliver(ctx, n, MessageReminder, pushPref))

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, models.PriorityHigh, n.Priority)
	assert.Equal(t, 1, push.count())
	require.Len(t, f.hub.ofType(MessageReminder), 1)
	assert.Equal(t, n.Message, f.hub.ofType(MessageReminder)[0].Message)

	emailPref := models.PreferenceOf(nil, "u1", models.PreferenceHealthInsight)
	require.NoError(t, svc.Deliver(ctx, &models.Notification{UserID: "u1", Title: "Insight", Type: models.NotificationInsight}, MessageAlert, emailPref))
	assert.Equal(t, 1, push.count())

	inbox, err := svc.Inbox(ctx, "u1", false, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	require.NoError(t, svc.MarkRead(ctx, "u1", n.ID))
	unread, err := svc.Inbox(ctx, "u1", true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Insight", unread[0].Title)

	assert.ErrorIs(t, svc.MarkRead(ctx, "u2", n.ID), domainerrors.ErrNotFound)
}

func TestNotificationService_RejectsTimingOutOfRange(t *testing.T) {
	f := newFixture(t)
	svc := newNotificationService(f, nil)
	ctx := context.Background()

	for _, timing := range []int{1337, 7, -5} {
		_, err := svc.UpdatePreferences(ctx, "u1", UpdatePreferencesRequest{Preferences: []PreferenceUpdate{
			{Type: "adherence_alert", Enabled: true, Timing: timing, Method: "push", Priority: "high"},
		}})
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "timing %d", timing)
	}

	prefs, err := svc.Preferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, models.PreferenceOf(prefs, "u1", models.PreferenceAdherenceAlert).Timing)

	_, err = svc.UpdatePreferences(ctx, "u1", UpdatePreferencesRequest{Preferences: []PreferenceUpdate{
		{Type: "adherence_alert", Enabled: true, Timing: 120, Method: "push", Priority: "high"},
	}})
	assert.NoError(t, err)
}

// presenceHub records messages and reports only the listed users as online
type presenceHub struct {
	recordingHub
	online map[string]bool
}

func (h *presenceHub) IsOnline(userID string) bool { return h.online[userID] }

func TestNotificationService_DeliverSkipsOfflineUsers(t *testing.T) {
	f := newFixture(t)
	hub := &presenceHub{online: map[string]bool{"u1": true}}
	svc := NewNotificationService(f.stores.Preferences, f.stores.Notifications, f.stores.Users, hub, &recordingPush{}, f.validator)
	ctx := context.Background()
	pref := models.PreferenceOf(nil, "u1", models.PreferenceMedicationReminder)

	require.NoError(t, svc.Deliver(ctx, &models.Notification{UserID: "u1", Title: "Medication Reminder", Type: models.NotificationReminder}, MessageReminder, pref))
	require.NoError(t, svc.Deliver(ctx, &models.Notification{UserID: "u2", Title: "Medication Reminder", Type: models.NotificationReminder}, MessageReminder, pref))

	sent := hub.ofType(MessageReminder)
	require.Len(t, sent, 1)
	assert.Equal(t, "u1", sent[0].Data.(*models.Notification).UserID)

	// offline users still find it in their inbox
	inbox, err := svc.Inbox(ctx, "u2", false, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}
