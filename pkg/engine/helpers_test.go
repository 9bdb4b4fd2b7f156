package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jwebster45206/resume-quest/pkg/chat"
	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/player"
	"github.com/jwebster45206/resume-quest/pkg/scenario"
	"github.com/jwebster45206/resume-quest/pkg/shop"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

// testCampaign is a 500x400 map: a wall, the vendor, Ana, a laptop pickup
// and a desk drop zone. Mission 1 walks through every step type.
func testCampaign() *scenario.Campaign {
	return &scenario.Campaign{
		Name:        "Test",
		WorldWidth:  500,
		WorldHeight: 400,
		VendorID:    "npc_vendor",
		Player:      player.Defaults{Coins: 50, Speed: 100, InteractionRange: 60},
		Objects: []world.GameObject{
			{ID: "wall", Category: world.CategoryObstacle, Rect: world.Rect{X: 200, Y: 0, W: 20, H: 150}},
			{ID: "npc_vendor", Category: world.CategoryNPC, Name: "Vendor", Rect: world.Rect{X: 420, Y: 330, W: 40, H: 40}},
			{ID: "npc_ana", Category: world.CategoryNPC, Name: "Ana", Rect: world.Rect{X: 100, Y: 100, W: 40, H: 40}},
			{ID: "laptop", Category: world.CategoryObject, Name: "Laptop", Rect: world.Rect{X: 100, Y: 250, W: 30, H: 30}},
			{ID: "desk", Category: world.CategoryObject, Name: "Desk", Rect: world.Rect{X: 300, Y: 250, W: 60, H: 60}},
		},
		Missions: mission.Table{
			{
				ID: 1, Title: "Setup", Status: mission.StatusAvailable,
				GemColor: "blue", RewardGems: 1, RewardCoins: 10, RewardXP: 250,
				Content: "Getting a laptop on day one.",
				Steps: []mission.Step{
					{Type: mission.StepInteract, ObjectID: "npc_ana", Description: "Talk to Ana."},
					{Type: mission.StepCollect, ObjectID: "laptop", ItemID: "laptop", Description: "Get the laptop."},
					{Type: mission.StepDeliver, RequiredItem: "laptop", Zone: "desk", Description: "Put it on the desk."},
				},
			},
			{
				ID: 2, Title: "Follow up", Status: mission.StatusLocked,
				RewardCoins: 5, RewardXP: 10,
				Steps: []mission.Step{
					{Type: mission.StepInteract, ObjectID: "npc_ana", Description: "Check in with Ana."},
				},
			},
		},
		Shop: shop.Catalog{
			{ID: "boots", Name: "Boots", Cost: 30, Effect: shop.Effect{Type: shop.EffectSpeedBoost, Value: 2}},
			{ID: "coach", Name: "Coach", Cost: 20, Effect: shop.Effect{Type: shop.EffectXPBoost, Value: 2}},
			{ID: shop.TeleporterModule, Name: "Teleporter", Cost: 40},
		},
	}
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type chatCall struct {
	MissionID int
	History   []chat.Message
	Question  string
}

// fakeText answers immediately unless gate is set, in which case every call
// blocks until the gate is closed.
type fakeText struct {
	mu            sync.Mutex
	gate          chan struct{}
	dialogue      string
	reply         chat.Reply
	dialogueCalls []string
	chatCalls     []chatCall
}

func (f *fakeText) GenerateDialogue(ctx context.Context, npcName, topic string) string {
	f.mu.Lock()
	f.dialogueCalls = append(f.dialogueCalls, npcName)
	gate := f.gate
	text := f.dialogue
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if text == "" {
		text = npcName + " explains: " + topic
	}
	return text
}

func (f *fakeText) GenerateChatResponse(ctx context.Context, m mission.Mission, history []chat.Message, question string) chat.Reply {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, chatCall{MissionID: m.ID, History: history, Question: question})
	gate := f.gate
	reply := f.reply
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return reply
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// data returns the payload of the first event of type t, nil when none was
// published.
func (r *recordingPublisher) data(t EventType) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Type == t {
			return ev.Data
		}
	}
	return nil
}

type harness struct {
	*Engine
	clock *fakeClock
	text  *fakeText
	pub   *recordingPublisher
}

func newHarness(t *testing.T, c *scenario.Campaign) *harness {
	t.Helper()
	if c == nil {
		c = testCampaign()
	}
	h := &harness{clock: newFakeClock(), text: &fakeText{}, pub: &recordingPublisher{}}
	h.Engine = New(c, Options{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Text:      h.text,
		Publisher: h.pub,
		Now:       h.clock.Now,
	})
	t.Cleanup(h.Close)
	return h
}

// place teleports the player for a test and recomputes the target.
func (h *harness) place(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.player.X, h.player.Y = x, y
	h.player.TargetID = h.targetFor(h.player)
}

// placeNear puts the player just below the object's center.
func (h *harness) placeNear(id string) {
	h.mu.Lock()
	obj, _ := h.world.Get(id)
	h.mu.Unlock()
	cx, cy := obj.Rect.Center()
	h.place(cx-player.Width/2, cy-player.Height/2+10)
}

func (h *harness) give(coins int, upgrades ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.player.Coins = coins
	h.player.Upgrades = append(h.player.Upgrades, upgrades...)
}
