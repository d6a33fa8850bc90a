package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
	"pillpal-backend/internal/repository/memory"
	"pillpal-backend/internal/validation"
)

// Thursday 9:00 UTC
var testNow = time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

// recordingHub captures every message sent through it
type recordingHub struct {
	mu       sync.Mutex
	messages []sentMessage
}

type sentMessage struct {
	UserID  string
	Message WSMessage
}

func (h *recordingHub) SendToUser(userID string, message WSMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, sentMessage{UserID: userID, Message: message})
	return nil
}

func (h *recordingHub) ofType(msgType string) []WSMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []WSMessage
	for _, m := range h.messages {
		if m.Message.Type == msgType {
			out = append(out, m.Message)
		}
	}
	return out
}

type fixture struct {
	stores     repository.Stores
	hub        *recordingHub
	validator  *validation.Validator
	medication *MedicationService
	adherence  *AdherenceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		stores:    memory.NewStores(),
		hub:       &recordingHub{},
		validator: validation.New(),
	}
	f.medication = NewMedicationService(f.stores.Medications, f.hub, f.validator)
	f.medication.now = fixedClock()
	f.adherence = NewAdherenceService(f.stores.Adherence, f.stores.Medications, f.hub, f.validator, time.UTC)
	f.adherence.now = fixedClock()
	return f
}

func (f *fixture) addMedication(t *testing.T, userID string, freq models.Frequency, nextDose time.Time) *models.Medication {
	t.Helper()
	med, err := f.medication.Create(context.Background(), userID, CreateMedicationRequest{
		Name:      "Lisinopril",
		Dosage:    "10mg",
		Frequency: string(freq),
		TimeOfDay: string(models.TimeOfDayMorning),
		NextDose:  &nextDose,
	})
	require.NoError(t, err)
	return med
}
