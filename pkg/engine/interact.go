package engine

import (
	"context"

	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

// Outcome tells the caller which branch an interaction took.
type Outcome string

const (
	OutcomeNone            Outcome = "none"
	OutcomeDialogueClosed  Outcome = "dialogue_closed"
	OutcomeShopOpened      Outcome = "shop_opened"
	OutcomeDialogueStarted Outcome = "dialogue_started"
	OutcomePickedUp        Outcome = "picked_up"
	OutcomeDelivered       Outcome = "delivered"
	OutcomeMissingItem     Outcome = "missing_item"
	OutcomeInteracted      Outcome = "interacted"
)

// Interact performs the single "use" action on whatever the player faces.
func (e *Engine) Interact() Outcome {
	defer e.flush()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interact()
}

func (e *Engine) interact() Outcome {
	if e.dialogue != nil {
		e.dialogue = nil
		return OutcomeDialogueClosed
	}

	target, ok := e.target()
	if !ok {
		return OutcomeNone
	}
	if target.ID == e.vendorID {
		e.shopOpen = true
		return OutcomeShopOpened
	}

	active, ok := e.missions.Active()
	if !ok {
		return OutcomeNone
	}
	step, ok := active.CurrentStep()
	if !ok {
		return OutcomeNone
	}

	var outcome Outcome
	switch {
	case step.Type == mission.StepInteract && step.ObjectID == target.ID:
		outcome = OutcomeInteracted
		if target.Category == world.CategoryNPC {
			e.startDialogue(target.DisplayName(target.ID), active.Content)
			outcome = OutcomeDialogueStarted
		}

	case step.Type == mission.StepCollect && step.ObjectID == target.ID:
		name := target.DisplayName(step.ItemID)
		e.player = e.player.WithItem(step.ItemID, name, 1)
		e.world = e.world.Without(target.ID)
		e.player.TargetID = e.targetFor(e.player)
		e.notify("You picked up " + name + "!")
		e.emit(EventItemPickedUp, map[string]any{"item_id": step.ItemID, "object_id": target.ID})
		outcome = OutcomePickedUp

	case step.Type == mission.StepDeliver:
		zone, inZone := e.inDeliveryZone(step)
		if !inZone {
			return OutcomeNone
		}
		if !e.player.HasItem(step.RequiredItem) {
			e.notify("You need the required item.")
			return OutcomeMissingItem
		}
		e.player = e.player.WithoutItem(step.RequiredItem, 1)
		e.notify("You delivered the item to " + zone.DisplayName("the zone") + ".")
		e.emit(EventItemDelivered, map[string]any{"item_id": step.RequiredItem, "zone": step.Zone})
		outcome = OutcomeDelivered

	default:
		return OutcomeNone
	}

	e.advance(active.ID)
	return outcome
}

// target resolves the player's target id against the world.
func (e *Engine) target() (world.GameObject, bool) {
	if e.player.TargetID == "" {
		return world.GameObject{}, false
	}
	return e.world.Get(e.player.TargetID)
}

// inDeliveryZone reports whether the player is where a deliver step wants
// them. NPC zones are reached by targeting the NPC; any other zone by
// standing on it.
func (e *Engine) inDeliveryZone(step mission.Step) (world.GameObject, bool) {
	zone, exists := e.world.Get(step.Zone)
	if step.ZoneIsNPC() {
		return zone, e.player.TargetID == step.Zone
	}
	return zone, exists && e.player.Box().Overlaps(zone.Rect)
}

// startDialogue shows the placeholder bubble and fills it in when the
// generator returns, unless the bubble was closed or replaced meanwhile.
func (e *Engine) startDialogue(npcName, content string) {
	e.generation++
	gen := e.generation
	e.dialogue = &Dialogue{
		NPCName:        npcName,
		Text:           DialoguePending,
		MissionContent: content,
		Pending:        true,
		generation:     gen,
	}

	e.goGenerate(func(ctx context.Context) {
		text := e.text.GenerateDialogue(ctx, npcName, content)

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.dialogue == nil || e.dialogue.generation != gen {
			e.log.Debug("Discarding stale dialogue", "npc", npcName, "generation", gen)
			return
		}
		e.dialogue = &Dialogue{
			NPCName:        npcName,
			Text:           text,
			MissionContent: content,
			generation:     gen,
		}
	})
}
