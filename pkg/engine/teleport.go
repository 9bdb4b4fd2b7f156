package engine

import (
	"time"

	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/player"
	"github.com/jwebster45206/resume-quest/pkg/shop"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

const (
	TitleClicksToUnlock = 7
	TitleClickWindow    = 2 * time.Second
	TeleportMargin      = 15.0

	titlePulseDuration = 150 * time.Millisecond
)

// ClickTitle counts a click on the game title. Owners of the teleporter
// module who click it TitleClicksToUnlock times, each click within
// TitleClickWindow of the previous one, turn on developer mode. It reports
// whether developer mode is on.
func (e *Engine) ClickTitle() bool {
	defer e.flush()
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.player.HasUpgrade(shop.TeleporterModule) || e.paused() {
		return e.devMode
	}

	now := e.now()
	e.titlePulse = now.Add(titlePulseDuration)
	if e.titleClicks > 0 && now.Sub(e.lastTitleClick) >= TitleClickWindow {
		e.titleClicks = 0
	}
	e.titleClicks++
	e.lastTitleClick = now

	if e.titleClicks >= TitleClicksToUnlock {
		e.titleClicks = 0
		if !e.devMode {
			e.devMode = true
			e.notify("Developer mode: teleport enabled (key T)")
			e.emit(EventDevModeEnabled, nil)
			e.log.Info("Developer mode enabled")
		}
	}
	return e.devMode
}

// Teleport moves the player next to the next mission target. It only works
// in developer mode and while nothing is paused, and reports whether the
// player moved.
func (e *Engine) Teleport() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.devMode {
		return false
	}
	return e.teleport()
}

func (e *Engine) teleport() bool {
	if e.paused() {
		return false
	}

	m, found := e.missions.Active()
	label := "current mission objective"
	if !found {
		m, found = e.missions.FirstWithStatus(mission.StatusLocked)
		label = "start of the next mission"
	}
	if !found {
		e.notify("Congratulations! You have completed every mission.")
		return false
	}

	step, _ := m.CurrentStep()
	targetID := step.TargetID()
	if targetID == "" {
		e.notify("The next step has no physical target.")
		return false
	}
	target, ok := e.world.Get(targetID)
	if !ok {
		e.notify("Could not find the mission target.")
		return false
	}

	x, y, ok := e.landingSpot(target.Rect)
	if !ok {
		e.notify("Could not find a safe landing spot near the target.")
		return false
	}

	p := e.player
	p.X, p.Y = x, y
	p.TargetID = e.targetFor(p)
	e.player = p
	e.notify("Teleported to " + target.DisplayName("the target") + " (" + label + ").")
	return true
}

// landingSpot tries below, above, right and left of the target, in that
// order, and returns the first clamped spot that is clear of walls.
func (e *Engine) landingSpot(t world.Rect) (float64, float64, bool) {
	spots := [][2]float64{
		{t.X + t.W/2 - player.Width/2, t.Y + t.H + TeleportMargin},
		{t.X + t.W/2 - player.Width/2, t.Y - player.Height - TeleportMargin},
		{t.X + t.W + TeleportMargin, t.Y + t.H/2 - player.Height/2},
		{t.X - player.Width - TeleportMargin, t.Y + t.H/2 - player.Height/2},
	}
	for _, s := range spots {
		x, y := e.world.Clamp(s[0], s[1], player.Width, player.Height)
		if !e.world.Collides(world.Rect{X: x, Y: y, W: player.Width, H: player.Height}) {
			return x, y, true
		}
	}
	return 0, 0, false
}
