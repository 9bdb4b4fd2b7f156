// Package events fans game events out over Redis Pub/Sub so clients other
// than the session owner (SSE streams, dashboards) can follow a run.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/resume-quest/pkg/engine"
)

// Channel is the Pub/Sub channel carrying one session's events.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", sessionID.String())
}

// Broadcaster publishes engine events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// NewBroadcasterFromURL connects to the Redis server at url and checks it
// answers.
func NewBroadcasterFromURL(ctx context.Context, url string, logger *slog.Logger) (*Broadcaster, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewBroadcaster(client, logger), nil
}

// Publish sends an event to its session channel.
func (b *Broadcaster) Publish(ctx context.Context, event engine.Event) error {
	channel := Channel(event.SessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)
	return nil
}

// Subscribe listens to one session's events. The caller closes the
// returned PubSub.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(sessionID))
}

// Close releases the Redis connection.
func (b *Broadcaster) Close() error {
	return b.redisClient.Close()
}

// Ping checks the Redis connection.
func (b *Broadcaster) Ping(ctx context.Context) error {
	return b.redisClient.Ping(ctx).Err()
}
