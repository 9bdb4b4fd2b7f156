package sessions

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/resume-quest/internal/logger"
	"github.com/jwebster45206/resume-quest/pkg/input"
	"github.com/jwebster45206/resume-quest/pkg/scenario"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testCampaign(t *testing.T) *scenario.Campaign {
	t.Helper()
	c, err := scenario.Default()
	require.NoError(t, err)
	return c
}

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(testCampaign(t), Options{
		Logger: logger.Discard(),
		TTL:    ttl,
		Now:    c.Now,
	})
	t.Cleanup(m.CloseAll)
	return m, c
}

func TestManager_CreateGetDelete(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)

	eng := m.Create()
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(eng.ID())
	require.NoError(t, err)
	assert.Same(t, eng, got)

	_, err = m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Delete(eng.ID()))
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.Delete(eng.ID()), ErrNotFound)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	a := m.Create()
	b := m.Create()

	startB := b.Snapshot().Player
	a.SetKey(input.KeyRight, true)
	m.TickAll(0.5)

	assert.Greater(t, a.Snapshot().Player.X, startB.X)
	assert.Equal(t, startB.X, b.Snapshot().Player.X)
}

func TestManager_EvictIdle(t *testing.T) {
	m, c := newTestManager(t, time.Minute)
	stale := m.Create()
	fresh := m.Create()

	c.Advance(45 * time.Second)
	_, err := m.Get(fresh.ID())
	require.NoError(t, err)

	c.Advance(30 * time.Second)
	assert.Equal(t, 1, m.EvictIdle())

	_, err = m.Get(stale.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestManager_NoTTLKeepsSessions(t *testing.T) {
	m, c := newTestManager(t, 0)
	m.Create()
	c.Advance(24 * time.Hour)
	assert.Equal(t, 0, m.EvictIdle())
	assert.Equal(t, 1, m.Len())
}

func TestManager_HeldSessionIsNotEvicted(t *testing.T) {
	m, c := newTestManager(t, time.Minute)
	eng := m.Create()

	release, err := m.Hold(eng.ID())
	require.NoError(t, err)

	// A streaming client sends no REST calls for far longer than the TTL.
	for i := 0; i < 5; i++ {
		c.Advance(20 * time.Second)
		assert.Equal(t, 0, m.EvictIdle())
	}
	assert.Equal(t, 1, m.Len())

	release()
	release()
	c.Advance(30 * time.Second)
	assert.Equal(t, 0, m.EvictIdle(), "the TTL restarts when the hold ends")

	c.Advance(31 * time.Second)
	assert.Equal(t, 1, m.EvictIdle())
	assert.Equal(t, 0, m.Len())
}

func TestManager_HoldUnknownSession(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	_, err := m.Hold(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
