package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/player"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

const minimalCampaign = `
name: Tiny
world_width: 400
world_height: 300
vendor_id: npc_vendor
player: { coins: 10, speed: 100, interaction_range: 60 }
objects:
  - { id: npc_vendor, type: npc, x: 10, y: 10, width: 40, height: 40 }
  - { id: npc_a, type: npc, name: Ana, x: 300, y: 10, width: 40, height: 40 }
  - { id: wall, type: obstacle, x: 150, y: 0, width: 20, height: 100 }
missions:
  - id: 1
    title: Hello
    status: available
    steps:
      - { type: interact, object_id: npc_a, description: Say hi. }
`

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Resume Quest", c.Name)
	assert.Equal(t, "npc_vendor", c.VendorID)
	assert.Len(t, c.Missions, 4)
	assert.Equal(t, 1, c.Missions.CountWithStatus(mission.StatusAvailable))

	w := c.World()
	assert.Equal(t, len(c.Objects), w.Len())

	p := c.NewPlayer()
	assert.Equal(t, 50, p.Coins)
	assert.Equal(t, 1, p.Level)
	assert.False(t, w.Collides(p.Box()), "player must not start inside a wall")

	_, ok := c.Shop.Find("teleporter_module")
	assert.True(t, ok)
}

func TestDefault_PickupsAreReachable(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	w := c.World()

	for _, o := range w.Objects() {
		if !o.Category.Interactable() {
			continue
		}
		assert.False(t, w.Collides(o.Rect), "%s overlaps a building or obstacle", o.ID)
	}
}

func TestParse_Minimal(t *testing.T) {
	c, err := Parse([]byte(minimalCampaign))
	require.NoError(t, err)

	obj, ok := c.World().Get("npc_a")
	require.True(t, ok)
	assert.Equal(t, world.Rect{X: 300, Y: 10, W: 40, H: 40}, obj.Rect)
	assert.Equal(t, world.CategoryNPC, obj.Category)
	assert.Equal(t, player.Defaults{Coins: 10, Speed: 100, InteractionRange: 60}, c.Player)
	assert.Equal(t, 0, c.Missions[0].Step)
}

func TestParse_CompletedMissionStartsPastLastStep(t *testing.T) {
	data := minimalCampaign + `
  - id: 2
    title: Done already
    status: completed
    steps:
      - { type: interact, object_id: npc_a, description: Wave. }
      - { type: interact, object_id: npc_a, description: Wave again. }
`
	c, err := Parse([]byte(data))
	require.NoError(t, err)

	done := c.Missions[1]
	assert.Equal(t, mission.StatusCompleted, done.Status)
	assert.Equal(t, 2, done.Step)
	_, ok := done.CurrentStep()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Missions[0].Step)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(minimalCampaign + "\nbogus: true\n"))
	assert.ErrorIs(t, err, ErrInvalidCampaign)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Campaign)
		wantMsg string
	}{
		{
			name: "two available missions",
			mutate: func(c *Campaign) {
				c.Missions = append(c.Missions, mission.Mission{
					ID: 2, Status: mission.StatusAvailable,
					Steps: []mission.Step{{Type: mission.StepInteract, ObjectID: "npc_a"}},
				})
			},
			wantMsg: "2 missions are available",
		},
		{
			name:    "unknown vendor",
			mutate:  func(c *Campaign) { c.VendorID = "npc_nobody" },
			wantMsg: `vendor "npc_nobody" is not an object`,
		},
		{
			name: "step targets missing object",
			mutate: func(c *Campaign) {
				c.Missions[0].Steps[0].ObjectID = "ghost"
			},
			wantMsg: `unknown object_id "ghost"`,
		},
		{
			name: "deliver without item",
			mutate: func(c *Campaign) {
				c.Missions[0].Steps = append(c.Missions[0].Steps, mission.Step{Type: mission.StepDeliver, Zone: "npc_a"})
			},
			wantMsg: "deliver step needs a required_item",
		},
		{
			name: "duplicate object",
			mutate: func(c *Campaign) {
				c.Objects = append(c.Objects, c.Objects[0])
			},
			wantMsg: `duplicate object id "npc_vendor"`,
		},
		{
			name:    "tiny world",
			mutate:  func(c *Campaign) { c.WorldWidth = 20 },
			wantMsg: "world must be larger than the player",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(minimalCampaign))
			require.NoError(t, err)

			tt.mutate(c)
			err = c.Validate()
			require.ErrorIs(t, err, ErrInvalidCampaign)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path is default", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "Resume Quest", c.Name)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tiny.yaml")
		require.NoError(t, os.WriteFile(path, []byte(minimalCampaign), 0o600))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Tiny", c.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
