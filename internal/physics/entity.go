package physics

import "github.com/san-kum/organelle/internal/vec"

// Entity is one simulated organelle. Position is relative to the boundary centre.
type Entity struct {
	ID       string
	Position vec.Vec2
	Velocity vec.Vec2
	Radius   float64
	Hovered  bool
	Expanded bool

	// OriginalRadius is the radius saved on expansion; zero when not expanded.
	OriginalRadius float64
}

func (e *Entity) Speed() float64 { return e.Velocity.Len() }

// Position is one entry of a Snapshot.
type Position struct {
	ID string
	X  float64
	Y  float64
}

// Snapshot lists entity positions in insertion order.
type Snapshot []Position

func (s Snapshot) Map() map[string]vec.Vec2 {
	m := make(map[string]vec.Vec2, len(s))
	for _, p := range s {
		m[p.ID] = vec.New(p.X, p.Y)
	}
	return m
}

func (s Snapshot) Lookup(id string) (vec.Vec2, bool) {
	for _, p := range s {
		if p.ID == id {
			return vec.New(p.X, p.Y), true
		}
	}
	return vec.Vec2{}, false
}
