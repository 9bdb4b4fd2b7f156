package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/resume-quest/internal/logger"
	"github.com/jwebster45206/resume-quest/internal/sessions"
	"github.com/jwebster45206/resume-quest/pkg/chat"
	"github.com/jwebster45206/resume-quest/pkg/engine"
	"github.com/jwebster45206/resume-quest/pkg/input"
	"github.com/jwebster45206/resume-quest/pkg/shop"
)

// SessionStore is the set of live games the handlers act on.
type SessionStore interface {
	Create() *engine.Engine
	Get(id uuid.UUID) (*engine.Engine, error)
	Delete(id uuid.UUID) error
}

type KeyRequest struct {
	Key  string `json:"key"`
	Down bool   `json:"down"`
}

type PressRequest struct {
	Key string `json:"key"`
}

type MenuRequest struct {
	View engine.MenuView `json:"view"`
}

type PurchaseRequest struct {
	ItemID string `json:"item_id"`
}

// ActionResponse is returned by endpoints that report what an action did
// along with the resulting state.
type ActionResponse struct {
	Outcome  engine.Outcome  `json:"outcome,omitempty"`
	Unlocked bool            `json:"unlocked,omitempty"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

type SessionHandler struct {
	sessions SessionStore
	logger   *slog.Logger
}

func NewSessionHandler(sessions SessionStore, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Register mounts the session routes.
func (h *SessionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/sessions", h.handleCreate)
	mux.HandleFunc("GET /v1/sessions/{id}", h.withSession(h.handleGet))
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.handleDelete)
	mux.HandleFunc("POST /v1/sessions/{id}/keys", h.withSession(h.handleKey))
	mux.HandleFunc("POST /v1/sessions/{id}/press", h.withSession(h.handlePress))
	mux.HandleFunc("POST /v1/sessions/{id}/menu", h.withSession(h.handleMenu))
	mux.HandleFunc("GET /v1/sessions/{id}/shop", h.withSession(h.handleCatalog))
	mux.HandleFunc("POST /v1/sessions/{id}/purchase", h.withSession(h.handlePurchase))
	mux.HandleFunc("POST /v1/sessions/{id}/chat", h.withSession(h.handleChat))
	mux.HandleFunc("DELETE /v1/sessions/{id}/chat", h.withSession(h.handleCloseChat))
	mux.HandleFunc("POST /v1/sessions/{id}/title-click", h.withSession(h.handleTitleClick))
}

type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, eng *engine.Engine)

// withSession resolves the {id} path value to a live engine.
func (h *SessionHandler) withSession(fn sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng, ok := lookupSession(w, r, h.sessions, h.logger)
		if !ok {
			return
		}
		fn(w, r, eng)
	}
}

func lookupSession(w http.ResponseWriter, r *http.Request, store SessionStore, log *slog.Logger) (*engine.Engine, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		log.Warn("Invalid session ID", "id", r.PathValue("id"), "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid session ID format")
		return nil, false
	}
	eng, err := store.Get(id)
	if err != nil {
		writeError(w, log, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return eng, true
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	eng := h.sessions.Create()
	writeJSON(w, h.logger, http.StatusCreated, eng.Snapshot())
}

func (h *SessionHandler) handleGet(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	writeJSON(w, h.logger, http.StatusOK, eng.Snapshot())
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	if err := h.sessions.Delete(id); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		logger.WithError(h.logger, err).Error("Failed to delete session", "session_id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleKey(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	var req KeyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	key, ok := input.Parse(req.Key)
	if !ok || !key.IsMovement() {
		writeError(w, h.logger, http.StatusBadRequest, "Unknown movement key")
		return
	}
	eng.SetKey(key, req.Down)
	writeJSON(w, h.logger, http.StatusOK, eng.Snapshot())
}

func (h *SessionHandler) handlePress(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	var req PressRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	key, ok := input.Parse(req.Key)
	if !ok || !key.IsAction() {
		writeError(w, h.logger, http.StatusBadRequest, "Unknown action key")
		return
	}
	outcome := eng.Press(key)
	writeJSON(w, h.logger, http.StatusOK, ActionResponse{Outcome: outcome, Snapshot: eng.Snapshot()})
}

func (h *SessionHandler) handleMenu(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	var req MenuRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.View != engine.MenuMain && req.View != engine.MenuMissions {
		writeError(w, h.logger, http.StatusBadRequest, "Unknown menu view")
		return
	}
	eng.OpenMenu(req.View)
	writeJSON(w, h.logger, http.StatusOK, eng.Snapshot())
}

func (h *SessionHandler) handleCatalog(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	writeJSON(w, h.logger, http.StatusOK, eng.Catalog())
}

func (h *SessionHandler) handlePurchase(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	var req PurchaseRequest
	if err := decodeBody(w, r, &req); err != nil || req.ItemID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "item_id is required")
		return
	}

	err := eng.Purchase(req.ItemID)
	switch {
	case err == nil:
		writeJSON(w, h.logger, http.StatusOK, eng.Snapshot())
	case errors.Is(err, shop.ErrUnknownItem):
		writeError(w, h.logger, http.StatusNotFound, err.Error())
	case errors.Is(err, shop.ErrInsufficientCoins), errors.Is(err, shop.ErrAlreadyOwned):
		writeError(w, h.logger, http.StatusConflict, err.Error())
	default:
		logger.WithError(h.logger, err).Error("Purchase failed", "item_id", req.ItemID)
		writeError(w, h.logger, http.StatusInternalServerError, "Purchase failed")
	}
}

// handleChat opens a mission chat when mission_id is given and asks a
// question in the open chat otherwise. Answers arrive asynchronously; poll
// the session or follow the websocket.
func (h *SessionHandler) handleChat(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	var req chat.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	var err error
	if req.MissionID != nil {
		err = eng.OpenChat(*req.MissionID)
	} else {
		err = eng.AskChat(req.Question)
		status = http.StatusAccepted
	}

	switch {
	case err == nil:
		writeJSON(w, h.logger, status, eng.Snapshot())
	case errors.Is(err, engine.ErrEmptyQuestion):
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrMissionNotCompleted),
		errors.Is(err, engine.ErrChatClosed),
		errors.Is(err, engine.ErrChatBusy):
		writeError(w, h.logger, http.StatusConflict, err.Error())
	default:
		logger.WithError(h.logger, err).Error("Chat request failed")
		writeError(w, h.logger, http.StatusInternalServerError, "Chat request failed")
	}
}

func (h *SessionHandler) handleCloseChat(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	eng.CloseChat()
	writeJSON(w, h.logger, http.StatusOK, eng.Snapshot())
}

func (h *SessionHandler) handleTitleClick(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	unlocked := eng.ClickTitle()
	writeJSON(w, h.logger, http.StatusOK, ActionResponse{Unlocked: unlocked, Snapshot: eng.Snapshot()})
}
