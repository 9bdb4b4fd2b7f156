package world

import "math"

// Collides reports whether box overlaps any blocking object.
func (w World) Collides(box Rect) bool {
	for _, obj := range w.objects {
		if obj.Category.Blocking() && box.Overlaps(obj.Rect) {
			return true
		}
	}
	return false
}

// Clamp keeps a box of the given size inside the world bounds and returns the
// adjusted origin.
func (w World) Clamp(x, y, boxW, boxH float64) (float64, float64) {
	return clamp(x, 0, w.width-boxW), clamp(y, 0, w.height-boxH)
}

// ResolveMove applies axis-separated sliding collision. The full move from
// (fromX, fromY) to (toX, toY) is tried first, then the X-only move, then the
// Y-only move. If all three collide the box stays where it was.
func (w World) ResolveMove(fromX, fromY, toX, toY, boxW, boxH float64) (float64, float64) {
	at := func(x, y float64) Rect { return Rect{X: x, Y: y, W: boxW, H: boxH} }

	if !w.Collides(at(toX, toY)) {
		return toX, toY
	}
	if !w.Collides(at(toX, fromY)) {
		return toX, fromY
	}
	if !w.Collides(at(fromX, toY)) {
		return fromX, toY
	}
	return fromX, fromY
}

// NearestInteractable finds the npc or object whose center is closest to the
// center of box, provided the distance is strictly less than maxRange. On
// equal distances the object that comes first in world order wins.
func (w World) NearestInteractable(box Rect, maxRange float64) (GameObject, bool) {
	var (
		best    GameObject
		found   bool
		minDist = math.Inf(1)
	)
	for _, obj := range w.objects {
		if !obj.Category.Interactable() {
			continue
		}
		dist := box.CenterDistance(obj.Rect)
		if dist < maxRange && dist < minDist {
			minDist = dist
			best = obj
			found = true
		}
	}
	return best, found
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}
