package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many sessions are live.
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	sessions SessionCounter
	events   Pinger // nil when event broadcast is disabled
	logger   *slog.Logger
}

func NewHealthHandler(sessions SessionCounter, events Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		sessions: sessions,
		events:   events,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]any{
		"sessions": h.sessions.Len(),
	}
	overallStatus := "healthy"

	if h.events == nil {
		components["events"] = "disabled"
	} else if err := h.events.Ping(ctx); err != nil {
		h.logger.Warn("Event broadcast health check failed", "error", err)
		components["events"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["events"] = "healthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "resume-quest",
		Components: components,
	})
}
