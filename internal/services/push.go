package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"

	"pillpal-backend/internal/config"
	"pillpal-backend/internal/models"
)

// PushSender delivers a notification to a device
type PushSender interface {
	Send(ctx context.Context, deviceToken string, n *models.Notification) error
}

// APNsSender sends notifications through Apple Push Notification service
type APNsSender struct {
	client *apns2.Client
	topic  string
}

// NewAPNsSender creates a token-authenticated APNs sender
func NewAPNsSender(cfg config.APNsConfig) (*APNsSender, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsSender{client: client, topic: cfg.Topic}, nil
}

// Send pushes the notification to the device
func (s *APNsSender) Send(ctx context.Context, deviceToken string, n *models.Notification) error {
	res, err := s.client.PushWithContext(ctx, buildPushNotification(s.topic, deviceToken, n))
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

func buildPushNotification(topic, deviceToken string, n *models.Notification) *apns2.Notification {
	p := payload.NewPayload().
		AlertTitle(n.Title).
		AlertBody(n.Message).
		Sound("default").
		Custom("notification_id", n.ID).
		Custom("type", string(n.Type))
	if n.MedicationID != nil {
		p = p.Custom("medication_id", *n.MedicationID)
	}

	priority := apns2.PriorityLow
	if n.Priority == models.PriorityHigh {
		priority = apns2.PriorityHigh
	}

	return &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       topic,
		Priority:    priority,
		Payload:     p,
	}
}

// LogPushSender logs notifications instead of pushing them
type LogPushSender struct{}

// Send logs the notification
func (LogPushSender) Send(ctx context.Context, deviceToken string, n *models.Notification) error {
	log.Debug().
		Str("user_id", n.UserID).
		Str("title", n.Title).
		Msg("Push disabled, notification not sent")
	return nil
}
