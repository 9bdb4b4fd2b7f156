// Package engine runs one play session: the frame loop, mission progress,
// interactions, the shop, modal state and mission chat. All state lives in
// an Engine and every exported method is a single critical section.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/resume-quest/pkg/chat"
	"github.com/jwebster45206/resume-quest/pkg/input"
	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/player"
	"github.com/jwebster45206/resume-quest/pkg/scenario"
	"github.com/jwebster45206/resume-quest/pkg/shop"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

const (
	NotificationDuration = 3 * time.Second
	DefaultTextTimeout   = 30 * time.Second
	publishTimeout       = 2 * time.Second

	DialoguePending = "Generating dialogue..."
)

// TextGenerator writes NPC dialogue and mission chat answers. Both methods
// must always return something showable; failures are the implementation's
// to paper over.
type TextGenerator interface {
	GenerateDialogue(ctx context.Context, npcName, missionTopic string) string
	GenerateChatResponse(ctx context.Context, m mission.Mission, history []chat.Message, question string) chat.Reply
}

// Options configures a new Engine. Zero values pick sensible defaults.
type Options struct {
	ID          uuid.UUID
	Logger      *slog.Logger
	Text        TextGenerator
	Publisher   Publisher
	Now         func() time.Time
	TextTimeout time.Duration
}

// Dialogue is the NPC speech bubble.
type Dialogue struct {
	NPCName        string `json:"npc_name"`
	Text           string `json:"text"`
	MissionContent string `json:"mission_content"`
	Pending        bool   `json:"pending"`

	generation uint64
}

// Notification is a short-lived message for the player.
type Notification struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MenuView selects what the pause menu shows.
type MenuView string

const (
	MenuMain     MenuView = "main"
	MenuMissions MenuView = "missions"
)

// Engine is a single-player game session.
type Engine struct {
	id       uuid.UUID
	vendorID string
	catalog  shop.Catalog

	log         *slog.Logger
	text        TextGenerator
	pub         Publisher
	now         func() time.Time
	textTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	world    world.World
	missions mission.Table
	player   player.State
	keys     input.KeyState

	dialogue     *Dialogue
	notification *Notification
	chat         *ChatSession

	shopOpen      bool
	inventoryOpen bool
	menuOpen      bool
	menuView      MenuView
	hudVisible    bool

	devMode        bool
	titleClicks    int
	lastTitleClick time.Time
	titlePulse     time.Time

	generation uint64
	pending    []Event
}

// New starts a session on a fresh copy of the campaign.
func New(c *scenario.Campaign, opts Options) *Engine {
	if opts.ID == uuid.Nil {
		opts.ID = uuid.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Text == nil {
		opts.Text = staticText{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TextTimeout <= 0 {
		opts.TextTimeout = DefaultTextTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		id:          opts.ID,
		vendorID:    c.VendorID,
		catalog:     c.Shop,
		log:         opts.Logger.With("session_id", opts.ID.String()),
		text:        opts.Text,
		pub:         opts.Publisher,
		now:         opts.Now,
		textTimeout: opts.TextTimeout,
		ctx:         ctx,
		cancel:      cancel,
		world:       c.World(),
		missions:    c.Missions.Clone(),
		player:      c.NewPlayer(),
		keys:        input.KeyState{},
		menuView:    MenuMain,
		hudVisible:  true,
	}
	e.player.TargetID = e.targetFor(e.player)
	return e
}

// ID identifies the session.
func (e *Engine) ID() uuid.UUID { return e.id }

// Wait blocks until every in-flight text generation has settled.
func (e *Engine) Wait() { e.wg.Wait() }

// Close cancels in-flight text generation and waits for it to return. A
// closed engine still answers calls but starts no new generation.
func (e *Engine) Close() {
	e.mu.Lock()
	e.cancel()
	e.mu.Unlock()
	e.wg.Wait()
}

// Done is closed once the engine is closed.
func (e *Engine) Done() <-chan struct{} { return e.ctx.Done() }

// notify replaces the current notification; the caller must hold e.mu.
func (e *Engine) notify(msg string) {
	e.notification = &Notification{Message: msg, ExpiresAt: e.now().Add(NotificationDuration)}
}

// expire drops the notification once its time is up; the caller must hold
// e.mu.
func (e *Engine) expire(now time.Time) {
	if e.notification != nil && !now.Before(e.notification.ExpiresAt) {
		e.notification = nil
	}
}

// goGenerate runs fn in the background with a bounded context. fn must
// re-acquire e.mu itself before touching state. The caller must hold e.mu,
// which orders wg.Add before Close's Wait.
func (e *Engine) goGenerate(fn func(ctx context.Context)) {
	if e.ctx.Err() != nil {
		e.log.Debug("Engine closed, skipping text generation")
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(e.ctx, e.textTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// staticText is used when no generator is configured.
type staticText struct{}

func (staticText) GenerateDialogue(_ context.Context, npcName, topic string) string {
	return npcName + ": " + topic
}

func (staticText) GenerateChatResponse(context.Context, mission.Mission, []chat.Message, string) chat.Reply {
	return chat.Reply{Text: "Chat is not available right now.", Sources: []chat.Source{}}
}
