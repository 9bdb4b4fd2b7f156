package world

import "slices"

// World is the registry of game objects for one session. A World value is
// never mutated after construction; removals produce a new World so readers
// holding the previous value keep a consistent view.
type World struct {
	width   float64
	height  float64
	objects []GameObject
	index   map[string]int
}

// New builds a world of the given size. Objects keep their given order,
// which is the iteration order used for tie-breaking in targeting. A later
// object with a duplicate id is dropped.
func New(width, height float64, objects []GameObject) World {
	w := World{
		width:   width,
		height:  height,
		objects: make([]GameObject, 0, len(objects)),
		index:   make(map[string]int, len(objects)),
	}
	for _, obj := range objects {
		if _, dup := w.index[obj.ID]; dup {
			continue
		}
		w.index[obj.ID] = len(w.objects)
		w.objects = append(w.objects, obj)
	}
	return w
}

func (w World) Width() float64  { return w.width }
func (w World) Height() float64 { return w.height }
func (w World) Len() int        { return len(w.objects) }

// Objects returns a copy of the objects in world order.
func (w World) Objects() []GameObject {
	return slices.Clone(w.objects)
}

// Get looks up an object by id.
func (w World) Get(id string) (GameObject, bool) {
	if id == "" {
		return GameObject{}, false
	}
	i, ok := w.index[id]
	if !ok {
		return GameObject{}, false
	}
	return w.objects[i], true
}

// Has reports whether an object with the given id is present.
func (w World) Has(id string) bool {
	_, ok := w.Get(id)
	return ok
}

// Without returns a copy of the world with the object removed. Removing an
// unknown id returns the receiver unchanged.
func (w World) Without(id string) World {
	i, ok := w.index[id]
	if !ok {
		return w
	}
	remaining := make([]GameObject, 0, len(w.objects)-1)
	remaining = append(remaining, w.objects[:i]...)
	remaining = append(remaining, w.objects[i+1:]...)
	return New(w.width, w.height, remaining)
}
