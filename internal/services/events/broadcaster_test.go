package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/resume-quest/internal/logger"
	"github.com/jwebster45206/resume-quest/pkg/engine"
)

var _ engine.Publisher = (*Broadcaster)(nil)

func newTestBroadcaster(t *testing.T) (*Broadcaster, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBroadcaster(client, logger.Discard()), mr
}

func TestBroadcaster_PublishSubscribe(t *testing.T) {
	b, _ := newTestBroadcaster(t)
	ctx := context.Background()
	id := uuid.New()

	sub := b.Subscribe(ctx, id)
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	ev := engine.Event{
		Type:      engine.EventMissionCompleted,
		SessionID: id,
		Data:      map[string]any{"mission_id": 1},
	}
	require.NoError(t, b.Publish(ctx, ev))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, Channel(id), msg.Channel)
		var got engine.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, engine.EventMissionCompleted, got.Type)
		assert.Equal(t, id, got.SessionID)
		assert.EqualValues(t, 1, got.Data["mission_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}
}

func TestBroadcaster_OtherSessionsDoNotReceive(t *testing.T) {
	b, _ := newTestBroadcaster(t)
	ctx := context.Background()

	sub := b.Subscribe(ctx, uuid.New())
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, engine.Event{Type: engine.EventItemPickedUp, SessionID: uuid.New()}))

	select {
	case msg := <-sub.Channel():
		t.Fatalf("unexpected message on %s", msg.Channel)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_PublishFailsWhenServerGone(t *testing.T) {
	b, mr := newTestBroadcaster(t)
	mr.Close()

	err := b.Publish(context.Background(), engine.Event{Type: engine.EventPlayerLevelUp, SessionID: uuid.New()})
	assert.Error(t, err)
}

func TestNewBroadcasterFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	b, err := NewBroadcasterFromURL(context.Background(), "redis://"+mr.Addr()+"/0", logger.Discard())
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, err = NewBroadcasterFromURL(context.Background(), "not-a-url", logger.Discard())
	assert.Error(t, err)
}
