package engine

import "github.com/jwebster45206/resume-quest/pkg/input"

// Paused reports whether any modal is open. It is derived on every call and
// never stored.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused()
}

func (e *Engine) paused() bool {
	return e.dialogue != nil || e.shopOpen || e.inventoryOpen || e.menuOpen || e.chat != nil
}

// Press handles an edge-triggered key. Movement keys are ignored here; use
// SetKey. While the mission chat is open every key is ignored.
func (e *Engine) Press(k input.Key) Outcome {
	defer e.flush()
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chat != nil {
		return OutcomeNone
	}

	switch k {
	case input.KeyInteract:
		return e.interact()
	case input.KeyTeleport:
		if e.devMode {
			e.teleport()
		}
	case input.KeyInventory:
		e.inventoryOpen = !e.inventoryOpen
	case input.KeyHUD:
		e.hudVisible = !e.hudVisible
	case input.KeyMenu:
		e.menuOpen = true
		e.menuView = MenuMissions
	case input.KeyEscape:
		e.closeModals()
	}
	return OutcomeNone
}

// closeModals is the Escape key: it closes the dialogue, the shop, the
// inventory and the menu, whichever are open.
func (e *Engine) closeModals() {
	e.dialogue = nil
	e.shopOpen = false
	e.inventoryOpen = false
	if e.menuOpen {
		e.menuOpen = false
		e.menuView = MenuMain
	}
}

// OpenMenu opens the pause menu on the given view.
func (e *Engine) OpenMenu(view MenuView) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if view != MenuMissions {
		view = MenuMain
	}
	e.menuOpen = true
	e.menuView = view
}

// CloseShop closes the vendor window.
func (e *Engine) CloseShop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shopOpen = false
}
