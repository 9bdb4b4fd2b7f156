// Package sessions keeps the live game sessions of one server process.
package sessions

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/resume-quest/pkg/engine"
	"github.com/jwebster45206/resume-quest/pkg/scenario"
)

var ErrNotFound = errors.New("session not found")

// Options configures the engines a Manager creates.
type Options struct {
	Text      engine.TextGenerator
	Publisher engine.Publisher
	Logger    *slog.Logger
	TTL       time.Duration
	Now       func() time.Time
}

type entry struct {
	eng      *engine.Engine
	lastSeen time.Time
	holds    int // open connections streaming the session
}

// Manager owns every live session. Sessions idle for longer than the TTL
// are closed by EvictIdle unless a connection holds them.
type Manager struct {
	campaign *scenario.Campaign
	opts     Options

	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
}

func NewManager(c *scenario.Campaign, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		campaign: c,
		opts:     opts,
		sessions: make(map[uuid.UUID]*entry),
	}
}

// Create starts a new session on the campaign.
func (m *Manager) Create() *engine.Engine {
	eng := engine.New(m.campaign, engine.Options{
		Logger:    m.opts.Logger,
		Text:      m.opts.Text,
		Publisher: m.opts.Publisher,
	})

	m.mu.Lock()
	m.sessions[eng.ID()] = &entry{eng: eng, lastSeen: m.opts.Now()}
	count := len(m.sessions)
	m.mu.Unlock()

	m.opts.Logger.Info("Session created", "session_id", eng.ID().String(), "sessions", count)
	return eng
}

// Get returns a live session and marks it as recently used.
func (m *Manager) Get(id uuid.UUID) (*engine.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = m.opts.Now()
	return e.eng, nil
}

// Hold pins a session while a long-lived connection uses it. A held
// session is never evicted as idle; release marks it used and lets the TTL
// run again. release is safe to call more than once.
func (m *Manager) Hold(id uuid.UUID) (release func(), err error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	e.holds++
	e.lastSeen = m.opts.Now()
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			e.holds--
			e.lastSeen = m.opts.Now()
		})
	}, nil
}

// Delete ends a session.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	e.eng.Close()
	m.opts.Logger.Info("Session deleted", "session_id", id.String())
	return nil
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// TickAll advances every live session by dt seconds.
func (m *Manager) TickAll(dt float64) {
	for _, eng := range m.engines() {
		eng.Tick(dt)
	}
}

// EvictIdle closes sessions not used within the TTL and returns how many
// were removed. A zero TTL keeps sessions forever.
func (m *Manager) EvictIdle() int {
	if m.opts.TTL <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-m.opts.TTL)

	var idle []*engine.Engine
	m.mu.Lock()
	for id, e := range m.sessions {
		if e.holds == 0 && e.lastSeen.Before(cutoff) {
			idle = append(idle, e.eng)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, eng := range idle {
		eng.Close()
		m.opts.Logger.Info("Session expired", "session_id", eng.ID().String())
	}
	return len(idle)
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[uuid.UUID]*entry)
	m.mu.Unlock()

	for _, e := range all {
		e.eng.Close()
	}
}

func (m *Manager) engines() []*engine.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*engine.Engine, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e.eng)
	}
	return out
}
