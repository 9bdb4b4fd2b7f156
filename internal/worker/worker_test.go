package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/resume-quest/internal/logger"
)

type fakeSessions struct {
	mu     sync.Mutex
	ticks  []float64
	sweeps int
}

func (f *fakeSessions) TickAll(dt float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks = append(f.ticks, dt)
}

func (f *fakeSessions) EvictIdle() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	return 1
}

func (f *fakeSessions) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ticks), f.sweeps
}

func TestWorker_TicksAndSweeps(t *testing.T) {
	s := &fakeSessions{}
	w := New(s, 5*time.Millisecond, logger.Discard(), "test")
	w.sweepInterval = 20 * time.Millisecond

	errc := make(chan error, 1)
	go func() { errc <- w.Start(context.Background()) }()

	assert.Eventually(t, func() bool {
		ticks, sweeps := s.counts()
		return ticks >= 3 && sweeps >= 1
	}, 2*time.Second, 5*time.Millisecond)

	w.Stop()
	require.NoError(t, <-errc)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, dt := range s.ticks {
		assert.Greater(t, dt, 0.0)
	}
}

func TestWorker_StopsWithContext(t *testing.T) {
	w := New(&fakeSessions{}, time.Millisecond, logger.Discard(), "")
	assert.Contains(t, w.id, "worker-")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Start(ctx) }()

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
