package render

import (
	"sync"

	"github.com/charmbracelet/harmonica"

	"github.com/san-kum/organelle/internal/engine"
	"github.com/san-kum/organelle/internal/interact"
	"github.com/san-kum/organelle/internal/physics"
	"github.com/san-kum/organelle/internal/vec"
)

// snapDistance is how far, in entity radii, a target may jump before the
// displayed position snaps instead of easing.
const snapDistance = 4.0

type tracked struct {
	x, vx float64
	y, vy float64
}

// Bridge is an engine observer that keeps the latest frame for a view.
// With smoothing enabled, displayed positions ease toward the simulated
// ones on a critically damped spring.
type Bridge struct {
	mu        sync.Mutex
	frame     engine.Frame
	ok        bool
	smoothing bool
	spring    harmonica.Spring
	tracked   map[string]*tracked
}

func NewBridge(fps int, smoothing bool) *Bridge {
	if fps <= 0 {
		fps = 60
	}
	return &Bridge{
		smoothing: smoothing,
		spring:    harmonica.NewSpring(harmonica.FPS(fps), 12.0, 1.0),
		tracked:   make(map[string]*tracked),
	}
}

func (b *Bridge) OnFrame(f engine.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.smoothing {
		f = b.smooth(f)
	}
	b.frame = f
	b.ok = true
}

func (b *Bridge) smooth(f engine.Frame) engine.Frame {
	entities := append(f.Entities[:0:0], f.Entities...)
	seen := make(map[string]bool, len(entities))
	for i := range entities {
		e := &entities[i]
		seen[e.ID] = true
		t, ok := b.tracked[e.ID]
		if !ok || e.Expanded || vec.New(t.x, t.y).Dist(e.Position) > snapDistance*e.Radius {
			b.tracked[e.ID] = &tracked{x: e.Position.X, y: e.Position.Y}
			continue
		}
		t.x, t.vx = b.spring.Update(t.x, t.vx, e.Position.X)
		t.y, t.vy = b.spring.Update(t.y, t.vy, e.Position.Y)
		e.Position = vec.New(t.x, t.y)
	}
	for id := range b.tracked {
		if !seen[id] {
			delete(b.tracked, id)
		}
	}
	f.Entities = entities
	return f
}

// Latest returns the most recent frame and whether one has arrived.
func (b *Bridge) Latest() (engine.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame, b.ok
}

// EntityAt hit-tests the displayed positions of the latest frame, topmost
// entity first.
func (b *Bridge) EntityAt(p vec.Vec2) (physics.Entity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.frame.Entities) - 1; i >= 0; i-- {
		e := b.frame.Entities[i]
		if p.Dist(e.Position) <= e.Radius {
			return e, true
		}
	}
	return physics.Entity{}, false
}

func (b *Bridge) Scene(view interact.ViewState, opts Options) (Scene, bool) {
	f, ok := b.Latest()
	if !ok {
		return Scene{}, false
	}
	return Compose(f, view, opts), true
}
