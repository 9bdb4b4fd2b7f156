package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const DefaultSweepInterval = time.Minute

// Sessions is the set of games a Worker drives.
type Sessions interface {
	TickAll(dt float64)
	EvictIdle() int
}

// Worker ticks every live session at a fixed frame rate and periodically
// sweeps idle ones.
type Worker struct {
	id            string
	sessions      Sessions
	frame         time.Duration
	sweepInterval time.Duration
	log           *slog.Logger
	now           func() time.Time
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
}

// New creates a new worker instance
func New(sessions Sessions, frame time.Duration, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:            workerID,
		sessions:      sessions,
		frame:         frame,
		sweepInterval: DefaultSweepInterval,
		log:           log,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
}

// Start runs the frame loop until Stop is called or ctx ends. dt passed to
// the sessions is the measured time since the previous frame, so a late
// frame moves players by the time actually elapsed.
func (w *Worker) Start(ctx context.Context) error {
	defer close(w.done)
	w.log.Info("Worker starting", "worker_id", w.id, "frame", w.frame)

	frames := time.NewTicker(w.frame)
	defer frames.Stop()
	sweeps := time.NewTicker(w.sweepInterval)
	defer sweeps.Stop()

	last := w.now()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return ctx.Err()
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		case <-frames.C:
			now := w.now()
			w.sessions.TickAll(now.Sub(last).Seconds())
			last = now
		case <-sweeps.C:
			if n := w.sessions.EvictIdle(); n > 0 {
				w.log.Info("Evicted idle sessions", "worker_id", w.id, "count", n)
			}
		}
	}
}

// Stop gracefully shuts down the worker and waits for the loop to exit.
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
	<-w.done
}
