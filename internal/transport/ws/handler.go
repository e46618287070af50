package ws

import (
	"anamnese/internal/model"
	"anamnese/internal/service"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// StaffValidator checks staff tokens
type StaffValidator interface {
	ValidateStaffToken(token string) (*model.StaffClaims, error)
}

// SessionLookup finds a session of a tenant
type SessionLookup interface {
	Get(ctx context.Context, tenantID, sessionID string) (*model.Session, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	auth     StaffValidator
	sessions SessionLookup
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler. origins lists the allowed
// browser origins; "*" allows any
func NewHandler(hub *Hub, auth StaffValidator, sessions SessionLookup, origins []string, logger *slog.Logger) *Handler {
	wildcard := slices.Contains(origins, "*")
	return &Handler{
		hub:      hub,
		auth:     auth,
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return wildcard || origin == "" || slices.Contains(origins, origin)
			},
		},
	}
}

// SessionWS handles GET /v1/ws/sessions/{sessionId}?token=
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.ValidateStaffToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Get(r.Context(), claims.TenantID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		h.logger.Error("ws session lookup failed", "session_id", sessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := &Connection{
		SessionID: session.ID,
		UserID:    claims.UserID,
		Send:      make(chan []byte, 256),
	}

	h.hub.Register(conn)
	err = h.hub.Send(conn, MsgSubscribed, map[string]interface{}{
		"sessionId":         session.ID,
		"status":            session.Status,
		"completionPercent": session.Progress,
	})
	if err != nil {
		h.logger.Warn("failed to send ws greeting", "session_id", session.ID, "error", err)
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", "session_id", conn.SessionID, "error", err)
			}
			break
		}
		// subscribers only listen
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
