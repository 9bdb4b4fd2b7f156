// Package input maps device keys onto the game's logical keys.
package input

import (
	"math"
	"strings"
)

// Key is a logical key name. Device layers translate their own events into
// these values.
type Key string

const (
	KeyUp    Key = "w"
	KeyLeft  Key = "a"
	KeyDown  Key = "s"
	KeyRight Key = "d"

	ArrowUp    Key = "arrowup"
	ArrowLeft  Key = "arrowleft"
	ArrowDown  Key = "arrowdown"
	ArrowRight Key = "arrowright"

	KeyInteract  Key = "e"
	KeyTeleport  Key = "t"
	KeyInventory Key = "i"
	KeyHUD       Key = "h"
	KeyMenu      Key = "m"
	KeyEscape    Key = "escape"
)

// Parse normalizes a raw key name as sent by browsers ("ArrowUp", "E",
// "Escape") or terminals ("up", "esc").
func Parse(raw string) (Key, bool) {
	k := strings.ToLower(strings.TrimSpace(raw))
	switch k {
	case "up":
		k = string(ArrowUp)
	case "down":
		k = string(ArrowDown)
	case "left":
		k = string(ArrowLeft)
	case "right":
		k = string(ArrowRight)
	case "esc":
		k = string(KeyEscape)
	}
	key := Key(k)
	if key.IsMovement() || key.IsAction() {
		return key, true
	}
	return "", false
}

// IsMovement reports whether the key is held to move.
func (k Key) IsMovement() bool {
	switch k {
	case KeyUp, KeyLeft, KeyDown, KeyRight, ArrowUp, ArrowLeft, ArrowDown, ArrowRight:
		return true
	}
	return false
}

// IsAction reports whether the key is edge-triggered.
func (k Key) IsAction() bool {
	switch k {
	case KeyInteract, KeyTeleport, KeyInventory, KeyHUD, KeyMenu, KeyEscape:
		return true
	}
	return false
}

// KeyState is the set of currently held keys.
type KeyState map[Key]bool

// Set records a key transition. Unknown keys are ignored.
func (ks KeyState) Set(k Key, down bool) {
	if !k.IsMovement() {
		return
	}
	if down {
		ks[k] = true
		return
	}
	delete(ks, k)
}

// Clone copies the key state.
func (ks KeyState) Clone() KeyState {
	out := make(KeyState, len(ks))
	for k, v := range ks {
		out[k] = v
	}
	return out
}

// Direction returns the raw direction vector, each axis in {-1, 0, 1}.
// Opposing keys cancel.
func (ks KeyState) Direction() (dx, dy float64) {
	if ks[KeyUp] || ks[ArrowUp] {
		dy--
	}
	if ks[KeyDown] || ks[ArrowDown] {
		dy++
	}
	if ks[KeyLeft] || ks[ArrowLeft] {
		dx--
	}
	if ks[KeyRight] || ks[ArrowRight] {
		dx++
	}
	return dx, dy
}

// Displacement is the movement for one frame: the direction normalized to
// unit length and scaled by speed*dt.
func (ks KeyState) Displacement(speed, dt float64) (dx, dy float64) {
	dx, dy = ks.Direction()
	if dx == 0 && dy == 0 {
		return 0, 0
	}
	l := math.Hypot(dx, dy)
	return dx / l * speed * dt, dy / l * speed * dt
}
