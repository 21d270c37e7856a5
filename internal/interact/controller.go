// Package interact maps pointer and keyboard gestures onto simulation
// state and tracks the resulting visual classes of each entity.
package interact

import (
	"sync"

	"github.com/san-kum/organelle/internal/physics"
	"github.com/san-kum/organelle/internal/vec"
)

// Target is the simulation surface the controller mutates.
type Target interface {
	SetHoverState(id string, hovered bool)
	SetExpandedState(id string, expanded bool, factor float64)
	EntityAt(p vec.Vec2) (physics.Entity, bool)
}

// HitTester resolves a point to the entity drawn under it.
type HitTester interface {
	EntityAt(p vec.Vec2) (physics.Entity, bool)
}

type Class int

const (
	ClassNormal Class = iota
	ClassHovered
	ClassActive
	ClassDimmed
)

func (c Class) String() string {
	switch c {
	case ClassHovered:
		return "hovered"
	case ClassActive:
		return "active"
	case ClassDimmed:
		return "dimmed"
	default:
		return "normal"
	}
}

// ViewState is a pure description of what the view should show.
type ViewState struct {
	Active  string
	Hovered string
	Classes map[string]Class
}

func (v ViewState) Class(id string) Class { return v.Classes[id] }

// ModalOpen reports whether a detail view is open.
func (v ViewState) ModalOpen() bool { return v.Active != "" }

type Controller struct {
	mu      sync.Mutex
	target  Target
	hit     HitTester
	factor  float64
	ids     []string
	known   map[string]bool
	active  string
	hovered string
}

func New(target Target, ids []string, factor float64) *Controller {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &Controller{
		target: target,
		factor: factor,
		ids:    append([]string(nil), ids...),
		known:  known,
	}
}

// SetHitTester routes ClickAt and PointerMove through h instead of the
// target, so pointer gestures match what a view actually draws.
func (c *Controller) SetHitTester(h HitTester) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hit = h
}

func (c *Controller) entityAt(p vec.Vec2) (physics.Entity, bool) {
	c.mu.Lock()
	h := c.hit
	c.mu.Unlock()
	if h == nil {
		h = c.target
	}
	return h.EntityAt(p)
}

// Click expands a non-expanded entity, collapsing the one already open.
// Clicking the active entity does nothing.
func (c *Controller) Click(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.known[id] || id == c.active {
		return
	}
	if c.active != "" {
		c.target.SetExpandedState(c.active, false, 0)
	}
	if c.hovered != "" {
		c.target.SetHoverState(c.hovered, false)
		c.hovered = ""
	}
	c.target.SetExpandedState(id, true, c.factor)
	c.active = id
}

// ClickAt resolves a click in simulation coordinates. A miss counts as a
// click outside. It reports the id that was hit, if any.
func (c *Controller) ClickAt(p vec.Vec2) (string, bool) {
	e, ok := c.entityAt(p)
	if !ok || !c.isKnown(e.ID) {
		c.ClickOutside()
		return "", false
	}
	c.Click(e.ID)
	return e.ID, true
}

// ClickOutside closes the open detail view, if any.
func (c *Controller) ClickOutside() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collapse()
}

// Escape behaves like ClickOutside while a detail view is open.
func (c *Controller) Escape() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collapse()
}

func (c *Controller) collapse() {
	if c.active == "" {
		return
	}
	c.target.SetExpandedState(c.active, false, 0)
	c.active = ""
}

func (c *Controller) PointerEnter(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.known[id] || c.active != "" || id == c.hovered {
		return
	}
	if c.hovered != "" {
		c.target.SetHoverState(c.hovered, false)
	}
	c.target.SetHoverState(id, true)
	c.hovered = id
}

func (c *Controller) PointerLeave(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.hovered {
		return
	}
	c.target.SetHoverState(id, false)
	c.hovered = ""
}

// PointerMove turns a pointer position into enter/leave transitions.
func (c *Controller) PointerMove(p vec.Vec2) {
	e, ok := c.entityAt(p)
	c.mu.Lock()
	prev := c.hovered
	c.mu.Unlock()

	if ok && c.isKnown(e.ID) {
		c.PointerEnter(e.ID)
		return
	}
	if prev != "" {
		c.PointerLeave(prev)
	}
}

func (c *Controller) isKnown(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.known[id]
}

func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := ViewState{
		Active:  c.active,
		Hovered: c.hovered,
		Classes: make(map[string]Class, len(c.ids)),
	}
	for _, id := range c.ids {
		switch {
		case c.active == id:
			v.Classes[id] = ClassActive
		case c.active != "":
			v.Classes[id] = ClassDimmed
		case c.hovered == id:
			v.Classes[id] = ClassHovered
		default:
			v.Classes[id] = ClassNormal
		}
	}
	return v
}

// IDs returns the entity ids in display order.
func (c *Controller) IDs() []string {
	return append([]string(nil), c.ids...)
}
