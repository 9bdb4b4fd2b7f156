package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jwebster45206/resume-quest/internal/logger"
	"github.com/jwebster45206/resume-quest/pkg/engine"
	"github.com/jwebster45206/resume-quest/pkg/input"
)

const wsWriteTimeout = 5 * time.Second

// ClientMessage is what a websocket client sends: held keys as "key"
// messages with Down set, one-shot actions as "press" messages.
type ClientMessage struct {
	Type string `json:"type"`
	Key  string `json:"key"`
	Down bool   `json:"down,omitempty"`
}

// HoldingSessionStore can pin a session for as long as a connection
// streams it, so a client that only talks over the socket is not evicted as
// idle.
type HoldingSessionStore interface {
	SessionStore
	Hold(id uuid.UUID) (release func(), err error)
}

// WSHandler streams session snapshots over a websocket, one per frame, and
// applies the input the client sends back.
type WSHandler struct {
	sessions HoldingSessionStore
	frame    time.Duration
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions HoldingSessionStore, frame time.Duration, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		frame:    frame,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Register mounts GET /v1/sessions/{id}/ws.
func (h *WSHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /v1/sessions/{id}/ws", h)
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	eng, ok := lookupSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	log := logger.WithSession(h.logger, eng.ID().String())

	release, err := h.sessions.Hold(eng.ID())
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	defer release()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()
	// Keys held when the client vanishes must not keep the player walking.
	defer eng.ReleaseKeys()

	log.Info("Websocket connected", "remote_addr", r.RemoteAddr)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		h.readLoop(conn, eng, log)
	}()

	ticker := time.NewTicker(h.frame)
	defer ticker.Stop()

	for {
		if err := h.writeSnapshot(conn, eng); err != nil {
			log.Debug("Websocket write failed", "error", err)
			return
		}
		select {
		case <-closed:
			log.Info("Websocket disconnected")
			return
		case <-r.Context().Done():
			return
		case <-eng.Done():
			log.Info("Session ended, closing websocket")
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"),
				time.Now().Add(wsWriteTimeout))
			return
		case <-ticker.C:
		}
	}
}

func (h *WSHandler) writeSnapshot(conn *websocket.Conn, eng *engine.Engine) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(eng.Snapshot())
}

func (h *WSHandler) readLoop(conn *websocket.Conn, eng *engine.Engine, log *slog.Logger) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debug("Discarding malformed websocket message", "error", err)
			continue
		}
		key, ok := input.Parse(msg.Key)
		if !ok {
			log.Debug("Discarding unknown key", "key", msg.Key)
			continue
		}

		switch msg.Type {
		case "key":
			eng.SetKey(key, msg.Down)
		case "press":
			eng.Press(key)
		default:
			log.Debug("Discarding unknown message type", "type", msg.Type)
		}
	}
}
