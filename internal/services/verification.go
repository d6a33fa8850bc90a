package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pillpal-backend/internal/config"
	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
	"pillpal-backend/internal/validation"
)

// Verification stages, in order
const (
	StageStarted      = "started"
	StagePillDetected = "pill_detected"
	StageUserVerified = "user_verified"
	StageProcessing   = "processing"
	StageComplete     = "complete"
	StageCancelled    = "cancelled"
	StageFailed       = "failed"
)

const (
	recordTimeout = 10 * time.Second
	sessionTTL    = 5 * time.Minute
)

// VerificationSession is a running camera verification
type VerificationSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	MedicationID string    `json:"medication_id"`
	Stage        string    `json:"stage"`
	StartedAt    time.Time `json:"started_at"`
	PhotoKey     string    `json:"photo_key,omitempty"`

	timers []*time.Timer
}

// VerificationEvent is the payload of a verification message
type VerificationEvent struct {
	SessionID    string                  `json:"session_id"`
	MedicationID string                  `json:"medication_id"`
	Stage        string                  `json:"stage"`
	Record       *models.AdherenceRecord `json:"record,omitempty"`
}

// PhotoUploadRequest represents a request for a verification photo upload URL
type PhotoUploadRequest struct {
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png image/heic"`
}

// VerificationService runs the scripted pill verification flow
type VerificationService struct {
	meds      repository.MedicationStore
	adherence *AdherenceService
	uploader  PhotoUploader
	hub       Broadcaster
	validator *validation.Validator
	delays    config.VerificationConfig

	mu       sync.Mutex
	sessions map[string]*VerificationSession
}

// NewVerificationService creates a new verification service. A nil uploader disables photos.
func NewVerificationService(
	meds repository.MedicationStore,
	adherence *AdherenceService,
	uploader PhotoUploader,
	hub Broadcaster,
	v *validation.Validator,
	delays config.VerificationConfig,
) *VerificationService {
	return &VerificationService{
		meds:      meds,
		adherence: adherence,
		uploader:  uploader,
		hub:       hub,
		validator: v,
		delays:    delays,
		sessions:  make(map[string]*VerificationSession),
	}
}

// Start opens a session; pill detection and user verification follow on timers
func (s *VerificationService) Start(ctx context.Context, userID, medicationID string) (*VerificationSession, error) {
	if medicationID == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"medication_id": "is required"})
	}
	if _, err := s.meds.Get(ctx, userID, medicationID); err != nil {
		return nil, err
	}

	session := &VerificationSession{
		ID:           uuid.New().String(),
		UserID:       userID,
		MedicationID: medicationID,
		Stage:        StageStarted,
		StartedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	snapshot := *session
	s.mu.Unlock()

	log.Info().Str("user_id", userID).Str("session_id", session.ID).Msg("Verification started")
	s.emit(&snapshot, StageStarted, nil)

	id := session.ID
	s.schedule(id, s.delays.DetectDelay, func() {
		if s.advance(id, StageStarted, StagePillDetected) {
			s.schedule(id, s.delays.VerifyDelay, func() {
				s.advance(id, StagePillDetected, StageUserVerified)
			})
		}
	})
	s.schedule(id, sessionTTL, func() { s.expire(id) })
	return &snapshot, nil
}

// Capture confirms the dose once the user is verified. The taken record is
// written after the processing delay.
func (s *VerificationService) Capture(ctx context.Context, userID, sessionID string) (*VerificationSession, error) {
	s.mu.Lock()
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if session.Stage != StageUserVerified {
		s.mu.Unlock()
		return nil, domainerrors.Conflict("verification is not ready for capture")
	}
	session.Stage = StageProcessing
	snapshot := *session
	s.mu.Unlock()

	s.emit(&snapshot, StageProcessing, nil)
	s.schedule(sessionID, s.delays.ProcessDelay, func() {
		s.complete(sessionID)
	})
	return &snapshot, nil
}

// Cancel stops a session
func (s *VerificationService) Cancel(ctx context.Context, userID, sessionID string) error {
	s.mu.Lock()
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	for _, t := range session.timers {
		t.Stop()
	}
	delete(s.sessions, sessionID)
	session.Stage = StageCancelled
	snapshot := *session
	s.mu.Unlock()

	log.Info().Str("user_id", userID).Str("session_id", sessionID).Msg("Verification cancelled")
	s.emit(&snapshot, StageCancelled, nil)
	return nil
}

// PhotoUploadURL issues a pre-signed URL for the session's verification photo
func (s *VerificationService) PhotoUploadURL(ctx context.Context, userID, sessionID string, req PhotoUploadRequest) (*UploadResponse, error) {
	if s.uploader == nil {
		return nil, &domainerrors.Error{Code: domainerrors.CodeUnavailable, Message: "photo uploads are not configured"}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	key := fmt.Sprintf("verifications/%s/%s%s", userID, sessionID, photoExtension(req.ContentType))
	session.PhotoKey = key
	s.mu.Unlock()

	return s.uploader.PresignUpload(ctx, key, req.ContentType)
}

// Session returns a copy of a running session
func (s *VerificationService) Session(userID, sessionID string) (*VerificationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := *session
	return &snapshot, nil
}

// lookup must be called with mu held
func (s *VerificationService) lookup(userID, sessionID string) (*VerificationSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, domainerrors.NotFound("verification session not found")
	}
	return session, nil
}

// schedule runs f after d unless the session is gone
func (s *VerificationService) schedule(sessionID string, d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		session.timers = append(session.timers, time.AfterFunc(d, f))
	}
}

// advance moves the session from one stage to the next and reports whether it did
func (s *VerificationService) advance(sessionID, from, to string) bool {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Stage != from {
		s.mu.Unlock()
		return false
	}
	session.Stage = to
	snapshot := *session
	s.mu.Unlock()

	s.emit(&snapshot, to, nil)
	return true
}

// expire drops a session that was never captured
func (s *VerificationService) expire(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Stage == StageProcessing {
		return
	}
	for _, t := range session.timers {
		t.Stop()
	}
	delete(s.sessions, sessionID)
	log.Debug().Str("session_id", sessionID).Msg("Verification session expired")
}

func (s *VerificationService) complete(sessionID string) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Stage != StageProcessing {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, sessionID)
	snapshot := *session
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	record, err := s.adherence.Record(ctx, snapshot.UserID, RecordDoseRequest{
		MedicationID: snapshot.MedicationID,
		Status:       string(models.StatusTaken),
		PillVerified: true,
		UserVerified: true,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to record verified dose")
		snapshot.Stage = StageFailed
		s.emit(&snapshot, StageFailed, nil)
		return
	}

	snapshot.Stage = StageComplete
	log.Info().Str("user_id", snapshot.UserID).Str("session_id", sessionID).Msg("Verification complete")
	s.emit(&snapshot, StageComplete, record)
}

func (s *VerificationService) emit(session *VerificationSession, stage string, record *models.AdherenceRecord) {
	notify(s.hub, session.UserID, MessageVerification, VerificationEvent{
		SessionID:    session.ID,
		MedicationID: session.MedicationID,
		Stage:        stage,
		Record:       record,
	})
}

func photoExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}
