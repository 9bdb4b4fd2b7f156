package world

import "math"

// Category classifies a game object for collision and targeting.
type Category string

const (
	CategoryBuilding Category = "building" // Blocks movement
	CategoryNPC      Category = "npc"      // Interactable character
	CategoryObject   Category = "object"   // Interactable item or zone
	CategoryObstacle Category = "obstacle" // Blocks movement
)

// Blocking reports whether objects of this category stop the player.
func (c Category) Blocking() bool {
	return c == CategoryBuilding || c == CategoryObstacle
}

// Interactable reports whether objects of this category can become the
// player's interaction target.
func (c Category) Interactable() bool {
	return c == CategoryNPC || c == CategoryObject
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"width" yaml:"width"`
	H float64 `json:"height" yaml:"height"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Overlaps is the strict AABB test: rectangles that only share an edge do
// not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X &&
		r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// CenterDistance is the Euclidean distance between the two centers.
func (r Rect) CenterDistance(o Rect) float64 {
	ax, ay := r.Center()
	bx, by := o.Center()
	return math.Hypot(bx-ax, by-ay)
}

// GameObject is a static entry in the world: buildings, NPCs, pickups,
// delivery zones and obstacles.
type GameObject struct {
	ID        string   `json:"id" yaml:"id"`
	Rect      Rect     `json:"rect" yaml:",inline"`
	Category  Category `json:"type" yaml:"type"`
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	Color     string   `json:"color,omitempty" yaml:"color,omitempty"` // presentation only
	MissionID int      `json:"mission_id,omitempty" yaml:"mission_id,omitempty"`
}

// DisplayName returns the object's name, or fallback when it has none.
func (o GameObject) DisplayName(fallback string) string {
	if o.Name != "" {
		return o.Name
	}
	return fallback
}
