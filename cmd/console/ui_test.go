package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/resume-quest/pkg/engine"
	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/player"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

func TestArrow(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   string
	}{
		{10, 0, "→"},
		{0, 10, "↓"},
		{-10, 0, "←"},
		{0, -10, "↑"},
		{10, -10, "↗"},
		{-10, 10, "↙"},
		{0, 0, "•"},
	}
	for _, tt := range tests {
		if got := arrow(tt.dx, tt.dy); got != tt.want {
			t.Errorf("arrow(%v, %v) = %q, want %q", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func TestRenderMap(t *testing.T) {
	snap := engine.Snapshot{
		WorldWidth:  100,
		WorldHeight: 100,
		Player:      player.State{X: 0, Y: 0},
		Objects: []world.GameObject{
			{ID: "hq", Category: world.CategoryBuilding, Rect: world.Rect{X: 90, Y: 90, W: 10, H: 10}},
			{ID: "npc_mentor", Name: "Mentor", Category: world.CategoryNPC, Rect: world.Rect{X: 90, Y: 0, W: 10, H: 10}},
		},
	}

	out := ansi.Strip(renderMap(snap, 10, 10))
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 10)
	// Player box is 40x40, so it spans four cells in each direction.
	assert.Equal(t, "@@@@", string([]rune(lines[0])[:4]))
	assert.Equal(t, 'M', []rune(lines[0])[9])
	assert.Equal(t, '█', []rune(lines[9])[9])
	assert.Equal(t, '·', []rune(lines[5])[5])
}

func TestCompletedMissionAt(t *testing.T) {
	table := mission.Table{
		{ID: 1, Status: mission.StatusCompleted},
		{ID: 2, Status: mission.StatusAvailable},
		{ID: 3, Status: mission.StatusCompleted},
	}

	id, ok := completedMissionAt(table, 2)
	assert.True(t, ok)
	assert.Equal(t, 3, id)

	_, ok = completedMissionAt(table, 3)
	assert.False(t, ok)
}

func TestDigit(t *testing.T) {
	n, ok := digit("3")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	for _, raw := range []string{"0", "a", "12", ""} {
		_, ok := digit(raw)
		assert.False(t, ok, raw)
	}
}
