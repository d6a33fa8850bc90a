package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is a message received from a WebSocket client
type clientMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub                 *services.WSHub
	tokens              middleware.TokenValidator
	verificationService *services.VerificationService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	tokens middleware.TokenValidator,
	verificationService *services.VerificationService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                 hub,
		tokens:              tokens,
		verificationService: verificationService,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateWebSocketToken(r.URL.Query().Get("token"), h.tokens)
	if err != nil {
		respondServiceError(w, r, err, "authenticate")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	ctx := r.Context()
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Debug().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(userID, "Invalid message format")
			continue
		}

		if err := h.handleMessage(ctx, userID, msg); err != nil {
			log.Debug().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			h.sendError(userID, clientErrorMessage(err))
		}
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, userID string, msg clientMessage) error {
	switch msg.Type {
	case services.MessagePing:
		return h.hub.SendToUser(userID, services.WSMessage{Type: services.MessagePong})
	case services.MessageVerificationCapture:
		_, err := h.verificationService.Capture(ctx, userID, msg.SessionID)
		return err
	case services.MessageVerificationCancel:
		return h.verificationService.Cancel(ctx, userID, msg.SessionID)
	default:
		h.sendError(userID, "Unknown message type")
		return nil
	}
}

// clientErrorMessage hides internal failures from the client
func clientErrorMessage(err error) string {
	var derr *domainerrors.Error
	if errors.As(err, &derr) && derr.Code != domainerrors.CodeInternal {
		return derr.Message
	}
	return "Failed to handle message"
}

// sendError sends an error message to a user
func (h *WebSocketHandler) sendError(userID, message string) {
	msg := services.WSMessage{
		Type:    services.MessageError,
		Message: message,
	}
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}
