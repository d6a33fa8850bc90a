package services

import (
	"encoding/json"
	"testing"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pillpal-backend/internal/models"
)

func TestBuildPushNotification(t *testing.T) {
	medID := "med-1"
	n := &models.Notification{
		ID:           "n1",
		Title:        "Medication Reminder",
		Message:      "Time to take your Lisinopril 10mg",
		Type:         models.NotificationReminder,
		Priority:     models.PriorityHigh,
		MedicationID: &medID,
	}

	push := buildPushNotification("com.example.pillpal", "device-token", n)

	assert.Equal(t, "device-token", push.DeviceToken)
	assert.Equal(t, "com.example.pillpal", push.Topic)
	assert.Equal(t, apns2.PriorityHigh, push.Priority)

	raw, err := json.Marshal(push.Payload)
	require.NoError(t, err)

	var body struct {
		APS struct {
			Alert struct {
				Title string `json:"title"`
				Body  string `json:"body"`
			} `json:"alert"`
		} `json:"aps"`
		MedicationID string `json:"medication_id"`
		Type         string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Medication Reminder", body.APS.Alert.Title)
	assert.Equal(t, n.Message, body.APS.Alert.Body)
	assert.Equal(t, "med-1", body.MedicationID)
	assert.Equal(t, "reminder", body.Type)
}

func TestBuildPushNotification_LowPriority(t *testing.T) {
	push := buildPushNotification("topic", "token", &models.Notification{Title: "Insight", Priority: models.PriorityMedium})
	assert.Equal(t, apns2.PriorityLow, push.Priority)
}
