package mission

import (
	"slices"
	"strings"
)

// Status is a mission's lifecycle state. It only ever moves forward:
// locked -> available -> completed.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusAvailable Status = "available"
	StatusCompleted Status = "completed"
)

// StepType selects which interaction satisfies a step.
type StepType string

const (
	StepInfo     StepType = "info"
	StepInteract StepType = "interact"
	StepCollect  StepType = "collect"
	StepDeliver  StepType = "deliver"
)

// NPCPrefix marks object ids that belong to NPCs. Delivery zones with this
// prefix are reached by targeting the NPC instead of standing inside a zone.
const NPCPrefix = "npc_"

// Step is one objective of a mission.
type Step struct {
	Description  string   `json:"description" yaml:"description"`
	Type         StepType `json:"type" yaml:"type"`
	ObjectID     string   `json:"object_id,omitempty" yaml:"object_id,omitempty"`
	ItemID       string   `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	RequiredItem string   `json:"required_item,omitempty" yaml:"required_item,omitempty"`
	Zone         string   `json:"zone,omitempty" yaml:"zone,omitempty"`
}

// TargetID is the world object a step points at: the zone for deliveries,
// the object otherwise.
func (s Step) TargetID() string {
	if s.Type == StepDeliver {
		return s.Zone
	}
	return s.ObjectID
}

// ZoneIsNPC reports whether the delivery zone is an NPC.
func (s Step) ZoneIsNPC() bool {
	return strings.HasPrefix(s.Zone, NPCPrefix)
}

// Mission is one entry of the campaign.
type Mission struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Status      Status `json:"status" yaml:"status"`
	Steps       []Step `json:"steps" yaml:"steps"`
	// Step is the index of the current step. It equals len(Steps) once the
	// mission is completed.
	Step int `json:"step" yaml:"-"`

	GemColor    string `json:"gem_color" yaml:"gem_color"`
	RewardGems  int    `json:"reward_gems" yaml:"reward_gems"`
	RewardCoins int    `json:"reward_coins" yaml:"reward_coins"`
	RewardXP    int    `json:"reward_xp" yaml:"reward_xp"`

	Reference string `json:"reference" yaml:"reference"` // URL the chat assistant grounds on
	Content   string `json:"content" yaml:"content"`     // educational text used for NPC dialogue
}

// CurrentStep returns the step at the current index.
func (m Mission) CurrentStep() (Step, bool) {
	if m.Step < 0 || m.Step >= len(m.Steps) {
		return Step{}, false
	}
	return m.Steps[m.Step], true
}

// OnLastStep reports whether completing the current step completes the
// mission.
func (m Mission) OnLastStep() bool {
	return m.Step >= len(m.Steps)-1
}

// Clone returns a copy that shares nothing with m.
func (m Mission) Clone() Mission {
	m.Steps = slices.Clone(m.Steps)
	return m
}

// Table is the ordered list of missions.
type Table []Mission

// Clone deep-copies the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for i, m := range t {
		out[i] = m.Clone()
	}
	return out
}

// Index returns the position of the mission with the given id, or -1.
func (t Table) Index(id int) int {
	return slices.IndexFunc(t, func(m Mission) bool { return m.ID == id })
}

// Find looks up a mission by id.
func (t Table) Find(id int) (Mission, bool) {
	i := t.Index(id)
	if i < 0 {
		return Mission{}, false
	}
	return t[i], true
}

// FirstWithStatus returns the first mission in table order with the given
// status.
func (t Table) FirstWithStatus(status Status) (Mission, bool) {
	for _, m := range t {
		if m.Status == status {
			return m, true
		}
	}
	return Mission{}, false
}

// Active is the mission the player is currently working on.
func (t Table) Active() (Mission, bool) {
	return t.FirstWithStatus(StatusAvailable)
}

// Next is the mission the player should head to: the active one, or the
// first still locked.
func (t Table) Next() (Mission, bool) {
	if m, ok := t.Active(); ok {
		return m, true
	}
	return t.FirstWithStatus(StatusLocked)
}

// CountWithStatus counts missions in the given status.
func (t Table) CountWithStatus(status Status) int {
	n := 0
	for _, m := range t {
		if m.Status == status {
			n++
		}
	}
	return n
}
