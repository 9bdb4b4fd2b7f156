package engine

import (
	"github.com/jwebster45206/resume-quest/pkg/input"
	"github.com/jwebster45206/resume-quest/pkg/player"
)

// Tick advances the simulation by dt seconds. While paused the state is
// left exactly as it is; held keys stay buffered and take effect on the
// first unpaused frame.
func (e *Engine) Tick(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.expire(e.now())
	if e.paused() {
		return
	}
	if dt < 0 {
		dt = 0
	}

	p := e.player
	x, y := p.X, p.Y
	if dx, dy := e.keys.Displacement(p.Speed, dt); dx != 0 || dy != 0 {
		x, y = e.world.ResolveMove(p.X, p.Y, p.X+dx, p.Y+dy, player.Width, player.Height)
	}
	p.X, p.Y = e.world.Clamp(x, y, player.Width, player.Height)
	p.TargetID = e.targetFor(p)

	e.player = p
}

// SetKey records a movement key going down or up. Keys are accepted while
// paused.
func (e *Engine) SetKey(k input.Key, down bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys.Set(k, down)
}

// ReleaseKeys forgets every held key.
func (e *Engine) ReleaseKeys() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = input.KeyState{}
}

// targetFor returns the id of the nearest interactable object in range of p,
// or "".
func (e *Engine) targetFor(p player.State) string {
	obj, ok := e.world.NearestInteractable(p.Box(), p.InteractionRange)
	if !ok {
		return ""
	}
	return obj.ID
}
