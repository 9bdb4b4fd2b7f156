package engine

import (
	"github.com/google/uuid"

	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/player"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

// Snapshot is a read-only copy of everything a presentation layer needs to
// draw one frame. It shares no memory with the engine.
type Snapshot struct {
	SessionID   uuid.UUID          `json:"session_id"`
	WorldWidth  float64            `json:"world_width"`
	WorldHeight float64            `json:"world_height"`
	Player      player.State       `json:"player"`
	XPToLevelUp float64            `json:"xp_to_level_up"`
	Target      *world.GameObject  `json:"target,omitempty"`
	Objects     []world.GameObject `json:"objects"`
	Missions    mission.Table      `json:"missions"`

	// ActiveMissionID is the first available mission, 0 when none.
	ActiveMissionID int `json:"active_mission_id"`
	// MissionTarget is the object the current step points at, for the
	// on-screen direction arrow.
	MissionTarget *world.GameObject `json:"mission_target,omitempty"`

	Dialogue     *Dialogue    `json:"dialogue,omitempty"`
	Notification string       `json:"notification,omitempty"`
	Chat         *ChatSession `json:"chat,omitempty"`

	Paused        bool     `json:"paused"`
	ShopOpen      bool     `json:"shop_open"`
	InventoryOpen bool     `json:"inventory_open"`
	MenuOpen      bool     `json:"menu_open"`
	MenuView      MenuView `json:"menu_view"`
	HUDVisible    bool     `json:"hud_visible"`
	DevMode       bool     `json:"dev_mode"`
	TitlePulse    bool     `json:"title_pulse"`
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.expire(now)

	s := Snapshot{
		SessionID:     e.id,
		WorldWidth:    e.world.Width(),
		WorldHeight:   e.world.Height(),
		Player:        e.player.Clone(),
		XPToLevelUp:   player.XPToLevelUp(e.player.Level),
		Objects:       e.world.Objects(),
		Missions:      e.missions.Clone(),
		Paused:        e.paused(),
		ShopOpen:      e.shopOpen,
		InventoryOpen: e.inventoryOpen,
		MenuOpen:      e.menuOpen,
		MenuView:      e.menuView,
		HUDVisible:    e.hudVisible,
		DevMode:       e.devMode,
		TitlePulse:    now.Before(e.titlePulse),
	}

	if t, ok := e.target(); ok {
		s.Target = &t
	}
	if m, ok := e.missions.Active(); ok {
		s.ActiveMissionID = m.ID
		if step, ok := m.CurrentStep(); ok {
			if t, ok := e.world.Get(step.TargetID()); ok {
				s.MissionTarget = &t
			}
		}
	}
	if e.dialogue != nil {
		d := *e.dialogue
		s.Dialogue = &d
	}
	if e.notification != nil {
		s.Notification = e.notification.Message
	}
	if e.chat != nil {
		s.Chat = e.chat.clone()
	}
	return s
}
