package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Server to client message types
const (
	MessageReminder          = "reminder"
	MessageAlert             = "alert"
	MessageVerification      = "verification"
	MessageAdherenceRecorded = "adherence_recorded"
	MessageMedicationUpdated = "medication_updated"
	MessageError             = "error"
	MessagePong              = "pong"
)

// Client to server message types
const (
	MessagePing                = "ping"
	MessageVerificationCapture = "verification_capture"
	MessageVerificationCancel  = "verification_cancel"
)

const writeWait = 10 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Broadcaster delivers realtime messages to connected users
type Broadcaster interface {
	SendToUser(userID string, message WSMessage) error
}

// Presence reports whether a user has a live realtime connection
type Presence interface {
	IsOnline(userID string) bool
}

var _ Presence = (*WSHub)(nil)

// notify sends a message and logs delivery failures; offline users are expected
func notify(b Broadcaster, userID, msgType string, data any) {
	if b == nil {
		return
	}
	message := WSMessage{Type: msgType, Timestamp: time.Now().UnixMilli(), Data: data}
	if err := b.SendToUser(userID, message); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Str("type", msgType).Msg("Realtime message not delivered")
	}
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
	}
}

// Register registers a new WebSocket connection for a user, replacing any previous one
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[userID]; exists {
		existing.conn.Close()
	}
	h.connections[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.connections[userID]; exists && client.conn == conn {
		client.conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// Close closes every connection
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, client := range h.connections {
		client.conn.Close()
		delete(h.connections, userID)
	}
}
