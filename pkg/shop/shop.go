package shop

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/resume-quest/pkg/player"
)

// EffectType names what a purchased item does to the player.
type EffectType string

const (
	EffectSpeedBoost            EffectType = "SPEED_BOOST"
	EffectJumpJets              EffectType = "JUMP_JETS"
	EffectInteractionRangeBoost EffectType = "INTERACTION_RANGE_BOOST"
	EffectXPBoost               EffectType = "XP_BOOST"
)

// TeleporterModule is the upgrade that allows unlocking developer teleport.
const TeleporterModule = "teleporter_module"

var (
	ErrUnknownItem       = errors.New("unknown shop item")
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrAlreadyOwned      = errors.New("upgrade already owned")
)

// Effect is a multiplicative modifier.
type Effect struct {
	Type  EffectType `json:"type" yaml:"type"`
	Value float64    `json:"value" yaml:"value"`
}

// Item is something the vendor sells.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Cost        int    `json:"cost" yaml:"cost"`
	Effect      Effect `json:"effect" yaml:"effect"`
}

// Catalog is the vendor's stock, in display order.
type Catalog []Item

// Find looks up an item by id.
func (c Catalog) Find(id string) (Item, bool) {
	for _, item := range c {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Purchase returns the player after buying item. The player is returned
// unchanged with an error when the item is already owned or unaffordable.
func Purchase(p player.State, item Item) (player.State, error) {
	if p.HasUpgrade(item.ID) {
		return p, fmt.Errorf("%w: %s", ErrAlreadyOwned, item.ID)
	}
	if p.Coins < item.Cost {
		return p, fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientCoins, item.ID, item.Cost, p.Coins)
	}

	out := p.Clone()
	out.Coins -= item.Cost
	out.Upgrades = append(out.Upgrades, item.ID)

	switch item.Effect.Type {
	case EffectSpeedBoost:
		out.Speed *= item.Effect.Value
	case EffectInteractionRangeBoost:
		out.InteractionRange *= item.Effect.Value
	case EffectXPBoost:
		out.XPBoost *= item.Effect.Value
	}
	return out, nil
}
