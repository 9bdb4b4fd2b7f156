package player

import (
	"maps"
	"math"
	"slices"

	"github.com/jwebster45206/resume-quest/pkg/world"
)

const (
	Width  = 40.0
	Height = 40.0

	// InitialXPToLevelUp is the threshold from level 1 to level 2. Each
	// following level needs LevelGrowth times more.
	InitialXPToLevelUp = 100.0
	LevelGrowth        = 1.5
)

// InventoryItem is one stack of a collected item.
type InventoryItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// State is the player's full state. Engines replace it as a whole value;
// use Clone before handing it to a reader.
type State struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Level int     `json:"level"`
	XP    float64 `json:"xp"`
	Coins int     `json:"coins"`

	Gems      map[string]int  `json:"gems"`
	Inventory []InventoryItem `json:"inventory"`
	Upgrades  []string        `json:"upgrades"`

	Speed            float64 `json:"speed"`
	InteractionRange float64 `json:"interaction_range"`
	XPBoost          float64 `json:"xp_boost"`

	// TargetID names the current interaction target. It is only an id;
	// resolve it against the world on every read.
	TargetID string `json:"target_id,omitempty"`
}

// Defaults are the starting values for a new player.
type Defaults struct {
	Coins            int     `yaml:"coins"`
	Speed            float64 `yaml:"speed"`
	InteractionRange float64 `yaml:"interaction_range"`
}

// New places a fresh level 1 player at the center of the world.
func New(d Defaults, worldWidth, worldHeight float64) State {
	return State{
		X:                worldWidth / 2,
		Y:                worldHeight / 2,
		Level:            1,
		Coins:            d.Coins,
		Gems:             map[string]int{},
		Inventory:        []InventoryItem{},
		Upgrades:         []string{},
		Speed:            d.Speed,
		InteractionRange: d.InteractionRange,
		XPBoost:          1,
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Gems = maps.Clone(s.Gems)
	if s.Gems == nil {
		s.Gems = map[string]int{}
	}
	s.Inventory = slices.Clone(s.Inventory)
	s.Upgrades = slices.Clone(s.Upgrades)
	return s
}

// Box is the player's bounding rectangle.
func (s State) Box() world.Rect {
	return world.Rect{X: s.X, Y: s.Y, W: Width, H: Height}
}

// HasItem reports whether at least one unit of the item is held.
func (s State) HasItem(itemID string) bool {
	return s.ItemQuantity(itemID) > 0
}

// ItemQuantity returns how many units of the item are held.
func (s State) ItemQuantity(itemID string) int {
	for _, item := range s.Inventory {
		if item.ID == itemID {
			return item.Quantity
		}
	}
	return 0
}

// WithItem returns a copy holding quantity more units of the item. Existing
// stacks are merged; new stacks go to the end.
func (s State) WithItem(itemID, name string, quantity int) State {
	out := s.Clone()
	if quantity <= 0 {
		return out
	}
	for i := range out.Inventory {
		if out.Inventory[i].ID == itemID {
			out.Inventory[i].Quantity += quantity
			return out
		}
	}
	out.Inventory = append(out.Inventory, InventoryItem{ID: itemID, Name: name, Quantity: quantity})
	return out
}

// WithoutItem returns a copy holding quantity fewer units of the item. A
// stack that reaches zero is removed.
func (s State) WithoutItem(itemID string, quantity int) State {
	out := s.Clone()
	i := slices.IndexFunc(out.Inventory, func(item InventoryItem) bool { return item.ID == itemID })
	if i < 0 {
		return out
	}
	out.Inventory[i].Quantity -= quantity
	if out.Inventory[i].Quantity <= 0 {
		out.Inventory = slices.Delete(out.Inventory, i, i+1)
	}
	return out
}

// HasUpgrade reports whether the shop item id has been purchased.
func (s State) HasUpgrade(id string) bool {
	return slices.Contains(s.Upgrades, id)
}

// XPToLevelUp is the xp needed to go from level to level+1.
func XPToLevelUp(level int) float64 {
	if level < 1 {
		level = 1
	}
	return InitialXPToLevelUp * math.Pow(LevelGrowth, float64(level-1))
}

// WithXP adds xp and cascades through every level threshold it crosses,
// carrying the remainder each time. It returns the new state and the levels
// reached, in order.
func (s State) WithXP(xp float64) (State, []int) {
	out := s.Clone()
	if out.Level < 1 {
		out.Level = 1
	}
	out.XP += xp

	var reached []int
	for threshold := XPToLevelUp(out.Level); out.XP >= threshold; threshold = XPToLevelUp(out.Level) {
		out.XP -= threshold
		out.Level++
		reached = append(reached, out.Level)
	}
	return out, reached
}
