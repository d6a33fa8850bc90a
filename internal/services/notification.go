package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
	"pillpal-backend/internal/validation"
)

const defaultInboxLimit = 50

// PreferenceUpdate represents a single notification preference
type PreferenceUpdate struct {
	Type     string `json:"type" validate:"required,oneof=medication_reminder adherence_alert health_insight predictive_warning"`
	Enabled  bool   `json:"enabled"`
	Timing   int    `json:"timing" validate:"gte=0,lte=120,step=5"`
	Method   string `json:"method" validate:"required,oneof=push email sms"`
	Priority string `json:"priority" validate:"required,oneof=low medium high"`
}

// UpdatePreferencesRequest replaces one or more preferences
type UpdatePreferencesRequest struct {
	Preferences []PreferenceUpdate `json:"preferences" validate:"required,min=1,dive"`
}

// NotificationService handles preferences and the notification inbox
type NotificationService struct {
	prefs         repository.PreferenceStore
	notifications repository.NotificationStore
	users         repository.UserStore
	hub           Broadcaster
	push          PushSender
	validator     *validation.Validator
	now           func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	prefs repository.PreferenceStore,
	notifications repository.NotificationStore,
	users repository.UserStore,
	hub Broadcaster,
	push PushSender,
	v *validation.Validator,
) *NotificationService {
	if push == nil {
		push = LogPushSender{}
	}
	return &NotificationService{
		prefs:         prefs,
		notifications: notifications,
		users:         users,
		hub:           hub,
		push:          push,
		validator:     v,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Preferences returns every preference type for the user, defaults filled in
func (s *NotificationService) Preferences(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	stored, err := s.prefs.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	defaults := models.DefaultPreferences(userID)
	out := make([]models.NotificationPreference, 0, len(defaults))
	for _, d := range defaults {
		out = append(out, models.PreferenceOf(stored, userID, d.Type))
	}
	return out, nil
}

// UpdatePreferences stores the given preferences and returns the full set
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) ([]models.NotificationPreference, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	for _, u := range req.Preferences {
		pref := &models.NotificationPreference{
			UserID:   userID,
			Type:     models.PreferenceType(u.Type),
			Enabled:  u.Enabled,
			Timing:   u.Timing,
			Method:   models.NotificationMethod(u.Method),
			Priority: models.Priority(u.Priority),
		}
		if err := s.prefs.Upsert(ctx, pref); err != nil {
			return nil, fmt.Errorf("failed to update preference: %w", err)
		}
	}
	return s.Preferences(ctx, userID)
}

// Inbox returns the newest notifications of the user
func (s *NotificationService) Inbox(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = defaultInboxLimit
	}
	return s.notifications.List(ctx, userID, unreadOnly, limit)
}

// MarkRead flags a notification as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifications.MarkRead(ctx, userID, id)
}

// online reports whether the hub may reach the user. Hubs without presence are always tried.
func (s *NotificationService) online(userID string) bool {
	if s.hub == nil {
		return false
	}
	if p, ok := s.hub.(Presence); ok {
		return p.IsOnline(userID)
	}
	return true
}

// Deliver stores a notification, sends it over the hub and pushes it
// when the preference asks for push and the user has a device token
func (s *NotificationService) Deliver(ctx context.Context, n *models.Notification, msgType string, pref models.NotificationPreference) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = s.now()
	}
	if n.Priority == "" {
		n.Priority = pref.Priority
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if s.online(n.UserID) {
		message := WSMessage{Type: msgType, Timestamp: n.Timestamp.UnixMilli(), Message: n.Message, Data: n}
		if err := s.hub.SendToUser(n.UserID, message); err != nil {
			log.Debug().Err(err).Str("user_id", n.UserID).Msg("Notification not delivered over websocket")
		}
	}

	if pref.Method != models.MethodPush {
		return nil
	}
	user, err := s.users.GetByID(ctx, n.UserID)
	if err != nil || user.PushToken == nil {
		return nil
	}
	if err := s.push.Send(ctx, *user.PushToken, n); err != nil {
		log.Error().Err(err).Str("user_id", n.UserID).Msg("Failed to push notification")
	}
	return nil
}
