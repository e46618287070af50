package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// MsgSubscribed greets a new subscriber with the session state
const MsgSubscribed MessageType = "subscribed"

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans session events out to the clinicians watching that session
type Hub struct {
	// sessionID -> subscribers
	subs    map[string]map[*Connection]bool
	stopped bool
	mu      sync.RWMutex

	broadcast chan *BroadcastMessage
	logger    *slog.Logger
}

// Connection is one subscriber
type Connection struct {
	SessionID string
	UserID    string
	Send      chan []byte
}

// BroadcastMessage is a message for every subscriber of a session
type BroadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a new WebSocket hub. Run must be started for broadcasts
// to be delivered
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:      make(map[string]map[*Connection]bool),
		broadcast: make(chan *BroadcastMessage, 256),
		logger:    logger,
	}
}

// Run delivers broadcasts until ctx is cancelled, then closes every
// connection
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.stopped = true
			for _, conns := range h.subs {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.subs = make(map[string]map[*Connection]bool)
			h.mu.Unlock()
			return

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error("failed to encode ws message", "type", msg.Message.Type, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.subs[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// slow subscriber, drop
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection. Once the hub has stopped the connection is
// closed right away
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		close(conn.Send)
		return
	}
	if h.subs[conn.SessionID] == nil {
		h.subs[conn.SessionID] = make(map[*Connection]bool)
	}
	h.subs[conn.SessionID][conn] = true
	h.logger.Debug("ws subscriber connected", "session_id", conn.SessionID, "user_id", conn.UserID)
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.subs[conn.SessionID]
	if !ok || !conns[conn] {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.subs, conn.SessionID)
	}
	h.logger.Debug("ws subscriber disconnected", "session_id", conn.SessionID, "user_id", conn.UserID)
}

// Subscribers returns the number of connections watching a session
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Send queues a message for one registered connection only
func (h *Hub) Send(conn *Connection, msgType MessageType, payload interface{}) error {
	data, err := encode(msgType, payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.subs[conn.SessionID][conn] {
		return nil
	}
	select {
	case conn.Send <- data:
	default:
	}
	return nil
}

// BroadcastToSession sends a message to everyone watching the session
// (implements service.Broadcaster). It never blocks the caller
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode ws payload", "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}:
	default:
		h.logger.Warn("ws broadcast queue full, dropping message", "session_id", sessionID, "type", msgType)
	}
}

func encode(msgType MessageType, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: data})
}
