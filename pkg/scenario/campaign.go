package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/player"
	"github.com/jwebster45206/resume-quest/pkg/shop"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

//go:embed campaign.yaml
var defaultCampaign []byte

// ErrInvalidCampaign wraps every validation failure.
var ErrInvalidCampaign = errors.New("invalid campaign")

// Campaign is the authored content of a game: the map, the mission chain
// and the vendor's stock.
type Campaign struct {
	Name        string             `yaml:"name"`
	WorldWidth  float64            `yaml:"world_width"`
	WorldHeight float64            `yaml:"world_height"`
	VendorID    string             `yaml:"vendor_id"`
	Player      player.Defaults    `yaml:"player"`
	Objects     []world.GameObject `yaml:"objects"`
	Missions    mission.Table      `yaml:"missions"`
	Shop        shop.Catalog       `yaml:"shop"`
}

// Default returns the campaign compiled into the binary.
func Default() (*Campaign, error) {
	return Parse(defaultCampaign)
}

// Load reads a campaign file. An empty path loads the default campaign.
func Load(path string) (*Campaign, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates campaign YAML. Unknown fields are rejected.
func Parse(data []byte) (*Campaign, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Campaign
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCampaign, err)
	}
	// The step index is runtime state; a mission authored as completed
	// starts past its last step.
	for i := range c.Missions {
		if c.Missions[i].Status == mission.StatusCompleted {
			c.Missions[i].Step = len(c.Missions[i].Steps)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// World builds the initial world value.
func (c *Campaign) World() world.World {
	return world.New(c.WorldWidth, c.WorldHeight, c.Objects)
}

// NewPlayer returns the starting player.
func (c *Campaign) NewPlayer() player.State {
	return player.New(c.Player, c.WorldWidth, c.WorldHeight)
}

// Validate checks the campaign for authoring errors. All problems are
// reported at once.
func (c *Campaign) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.WorldWidth <= player.Width || c.WorldHeight <= player.Height {
		add("world must be larger than the player (%vx%v)", c.WorldWidth, c.WorldHeight)
	}
	if c.Player.Speed <= 0 {
		add("player speed must be positive")
	}
	if c.Player.InteractionRange <= 0 {
		add("player interaction_range must be positive")
	}
	if c.Player.Coins < 0 {
		add("player coins cannot be negative")
	}

	objects := make(map[string]world.GameObject, len(c.Objects))
	for _, o := range c.Objects {
		if o.ID == "" {
			add("object with empty id")
			continue
		}
		if _, dup := objects[o.ID]; dup {
			add("duplicate object id %q", o.ID)
		}
		objects[o.ID] = o
		switch o.Category {
		case world.CategoryBuilding, world.CategoryNPC, world.CategoryObject, world.CategoryObstacle:
		default:
			add("object %q has unknown type %q", o.ID, o.Category)
		}
		if o.Rect.W <= 0 || o.Rect.H <= 0 {
			add("object %q must have a positive size", o.ID)
		}
	}

	if vendor, ok := objects[c.VendorID]; !ok {
		add("vendor %q is not an object", c.VendorID)
	} else if vendor.Category != world.CategoryNPC {
		add("vendor %q must be an npc", c.VendorID)
	}

	c.validateMissions(objects, add)
	c.validateShop(add)

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n%s", ErrInvalidCampaign, strings.Join(problems, "\n"))
	}
	return nil
}

func (c *Campaign) validateMissions(objects map[string]world.GameObject, add func(string, ...any)) {
	if len(c.Missions) == 0 {
		add("campaign has no missions")
	}
	if n := c.Missions.CountWithStatus(mission.StatusAvailable); n > 1 {
		add("%d missions are available, at most one is allowed", n)
	}

	ids := make(map[int]bool, len(c.Missions))
	for _, m := range c.Missions {
		if ids[m.ID] {
			add("duplicate mission id %d", m.ID)
		}
		ids[m.ID] = true

		switch m.Status {
		case mission.StatusLocked, mission.StatusAvailable, mission.StatusCompleted:
		default:
			add("mission %d has unknown status %q", m.ID, m.Status)
		}
		if len(m.Steps) == 0 {
			add("mission %d has no steps", m.ID)
		}
		if m.RewardCoins < 0 || m.RewardGems < 0 || m.RewardXP < 0 {
			add("mission %d has a negative reward", m.ID)
		}
		if m.RewardGems > 0 && m.GemColor == "" {
			add("mission %d rewards gems without a gem_color", m.ID)
		}

		for i, s := range m.Steps {
			where := fmt.Sprintf("mission %d step %d", m.ID, i+1)
			switch s.Type {
			case mission.StepInfo:
			case mission.StepInteract:
				if _, ok := objects[s.ObjectID]; !ok {
					add("%s: unknown object_id %q", where, s.ObjectID)
				}
				if s.ObjectID == c.VendorID {
					add("%s: the vendor cannot be a mission target", where)
				}
			case mission.StepCollect:
				if _, ok := objects[s.ObjectID]; !ok {
					add("%s: unknown object_id %q", where, s.ObjectID)
				}
				if s.ItemID == "" {
					add("%s: collect step needs an item_id", where)
				}
			case mission.StepDeliver:
				if _, ok := objects[s.Zone]; !ok {
					add("%s: unknown zone %q", where, s.Zone)
				}
				if s.RequiredItem == "" {
					add("%s: deliver step needs a required_item", where)
				}
			default:
				add("%s: unknown type %q", where, s.Type)
			}
		}
	}
}

func (c *Campaign) validateShop(add func(string, ...any)) {
	seen := make(map[string]bool, len(c.Shop))
	for _, item := range c.Shop {
		if item.ID == "" {
			add("shop item with empty id")
			continue
		}
		if seen[item.ID] {
			add("duplicate shop item %q", item.ID)
		}
		seen[item.ID] = true
		if item.Cost < 0 {
			add("shop item %q has a negative cost", item.ID)
		}
		switch item.Effect.Type {
		case "":
		case shop.EffectSpeedBoost, shop.EffectJumpJets, shop.EffectInteractionRangeBoost, shop.EffectXPBoost:
			if item.Effect.Value <= 0 {
				add("shop item %q needs a positive effect value", item.ID)
			}
		default:
			add("shop item %q has unknown effect %q", item.ID, item.Effect.Type)
		}
	}
}
