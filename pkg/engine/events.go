package engine

import (
	"context"

	"github.com/google/uuid"
)

// EventType names a game event sent to subscribers.
type EventType string

const (
	EventMissionAdvanced  EventType = "mission.advanced"
	EventMissionCompleted EventType = "mission.completed"
	EventMissionUnlocked  EventType = "mission.unlocked"
	EventPlayerLevelUp    EventType = "player.level_up"
	EventItemPickedUp     EventType = "item.picked_up"
	EventItemDelivered    EventType = "item.delivered"
	EventItemPurchased    EventType = "shop.purchased"
	EventDevModeEnabled   EventType = "dev.enabled"
)

// Event is a notable state change in one session.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID uuid.UUID      `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Publisher delivers events to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// emit queues an event; the caller must hold e.mu. Queued events are sent
// by flush once the lock is released.
func (e *Engine) emit(t EventType, data map[string]any) {
	e.pending = append(e.pending, Event{Type: t, SessionID: e.id, Data: data})
}

// flush publishes queued events outside the lock.
func (e *Engine) flush() {
	e.mu.Lock()
	evs := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, ev := range evs {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := e.pub.Publish(ctx, ev); err != nil {
			e.log.Warn("Failed to publish event", "event_type", ev.Type, "error", err)
		}
		cancel()
	}
}
