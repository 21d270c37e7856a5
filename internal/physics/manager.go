package physics

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/organelle/internal/vec"
)

// CollisionEvent is a boundary impact kept briefly for the membrane's visual reaction.
type CollisionEvent struct {
	Position  vec.Vec2
	Timestamp time.Time
	Force     float64
}

type Manager struct {
	params       Params
	boundary     Boundary
	ellipse      *Ellipse
	entityRadius float64
	entities     []*Entity
	index        map[string]*Entity
	collisions   []CollisionEvent
	rng          *rand.Rand
	now          func() time.Time
}

type Option func(*Manager)

func WithParams(p Params) Option { return func(m *Manager) { m.params = p } }

func WithRand(rng *rand.Rand) Option { return func(m *Manager) { m.rng = rng } }

func WithSeed(seed int64) Option {
	return func(m *Manager) { m.rng = rand.New(rand.NewSource(seed)) }
}

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// New creates a manager for a container of the given pixel size. Non-positive
// dimensions are clamped to MinDimension.
func New(width, height float64, shape Shape, entityRadius float64, opts ...Option) *Manager {
	if !(entityRadius > 0) {
		entityRadius = DefaultEntityRadius
	}
	m := &Manager{
		params:       DefaultParams(),
		entityRadius: entityRadius,
		entities:     make([]*Entity, 0),
		index:        make(map[string]*Entity),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	switch shape {
	case ShapeRoundedRect:
		m.boundary = NewRoundedRect(width, height, m.params.CornerFraction)
	default:
		m.ellipse = NewEllipse(width, height)
		m.boundary = m.ellipse
	}
	return m
}

func (m *Manager) Params() Params        { return m.params }
func (m *Manager) Boundary() Boundary    { return m.boundary }
func (m *Manager) EntityRadius() float64 { return m.entityRadius }
func (m *Manager) Len() int              { return len(m.entities) }

// AddEntity places a new entity at a random interior point with a random
// heading. Duplicate ids are rejected and leave the existing entity as is.
func (m *Manager) AddEntity(id string) (*Entity, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if _, ok := m.index[id]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateEntity, id)
	}

	speed := m.params.SpawnSpeedMin + m.rng.Float64()*(m.params.SpawnSpeedMax-m.params.SpawnSpeedMin)
	e := &Entity{
		ID:       id,
		Position: m.boundary.Spawn(m.rng, m.entityRadius, m.params),
		Velocity: m.randomDirection().Scale(speed),
		Radius:   m.entityRadius,
	}
	m.entities = append(m.entities, e)
	m.index[id] = e
	return e, nil
}

func (m *Manager) RemoveEntity(id string) {
	if _, ok := m.index[id]; !ok {
		return
	}
	delete(m.index, id)
	for i, e := range m.entities {
		if e.ID == id {
			m.entities = append(m.entities[:i], m.entities[i+1:]...)
			break
		}
	}
}

// Clear drops every entity and pending collision event.
func (m *Manager) Clear() {
	m.entities = m.entities[:0]
	m.index = make(map[string]*Entity)
	m.collisions = nil
}

// Place overrides the kinematic state of an entity. It reports false for unknown ids.
func (m *Manager) Place(id string, pos, vel vec.Vec2) bool {
	e, ok := m.index[id]
	if !ok {
		return false
	}
	e.Position, e.Velocity = pos, vel
	return true
}

func (m *Manager) SetHoverState(id string, hovered bool) {
	if e, ok := m.index[id]; ok {
		e.Hovered = hovered
	}
}

// SetExpandedState pins and enlarges an entity, or restores it. Enabling an
// already expanded entity is a no-op so the original radius is never lost.
func (m *Manager) SetExpandedState(id string, expanded bool, factor float64) {
	e, ok := m.index[id]
	if !ok || e.Expanded == expanded {
		return
	}

	if !expanded {
		e.Radius = e.OriginalRadius
		e.OriginalRadius = 0
		e.Expanded = false
		return
	}

	if !(factor > 0) {
		factor = DefaultExpansionFactor
	}
	e.OriginalRadius = e.Radius
	e.Radius *= factor
	e.Expanded = true
	e.Velocity = vec.Vec2{}
	m.pushNeighbours(e)
}

// pushNeighbours moves every entity overlapping the freshly expanded one
// out of its way, once.
func (m *Manager) pushNeighbours(e *Entity) {
	for _, o := range m.entities {
		if o == e || o.Expanded {
			continue
		}
		off := o.Position.Sub(e.Position)
		d := off.Len()
		minDist := e.Radius + o.Radius + m.params.ExpandMargin
		if d >= minDist {
			continue
		}
		n := off.Normalize()
		if n.IsZero() {
			n = m.randomDirection()
		}
		o.Position = o.Position.Add(n.Scale(minDist - d))
		o.Velocity = o.Velocity.Add(n.Scale(m.params.ExpandPush))
	}
}

// UpdateBoundary feeds the current normalised breathing radius. It is a
// no-op for the rounded-rect boundary.
func (m *Manager) UpdateBoundary(radius float64) {
	if m.ellipse == nil {
		return
	}
	m.ellipse.SetRadius(radius)
}

func (m *Manager) UpdateDimensions(width, height float64) {
	m.boundary.Resize(width, height)
}

// BreathingVelocity is zero for the rounded-rect boundary.
func (m *Manager) BreathingVelocity() float64 {
	if m.ellipse == nil {
		return 0
	}
	return m.ellipse.Velocity
}

// Update advances the simulation by exactly one frame.
func (m *Manager) Update() {
	m.applyBreathing()
	for _, e := range m.entities {
		m.integrate(e)
	}
	m.resolvePairs()
	for _, e := range m.entities {
		if e.Expanded {
			continue
		}
		if c, hit := m.boundary.Resolve(e, m.params); hit && m.ellipse != nil {
			m.collisions = append(m.collisions, CollisionEvent{
				Position:  c.Point,
				Timestamp: m.now(),
				Force:     c.Force,
			})
		}
		m.clampSpeed(e)
	}
	m.pruneCollisions()
}

func (m *Manager) applyBreathing() {
	v := m.BreathingVelocity()
	if v == 0 {
		return
	}
	f := v * m.params.BreathingForce
	for _, e := range m.entities {
		if e.Expanded {
			continue
		}
		dir := e.Position.Normalize()
		e.Velocity = e.Velocity.Add(dir.Scale(f))
	}
}

func (m *Manager) integrate(e *Entity) {
	if e.Expanded {
		e.Velocity = vec.Vec2{}
		return
	}

	step := 1.0
	if e.Hovered {
		step = m.params.HoverSpeed
	}
	e.Position = e.Position.Add(e.Velocity.Scale(step))
	e.Velocity = e.Velocity.Scale(m.params.Damping)

	if m.rng.Float64() < m.params.PerturbChance {
		s := m.params.PerturbStrength
		e.Velocity = e.Velocity.Add(vec.New((m.rng.Float64()*2-1)*s, (m.rng.Float64()*2-1)*s))
	}
	m.clampSpeed(e)
}

func (m *Manager) clampSpeed(e *Entity) {
	speed := e.Velocity.Len()
	switch {
	case speed < vec.Epsilon || !e.Velocity.IsValid():
		e.Velocity = m.randomDirection().Scale(m.params.MinSpeed)
	case speed < m.params.MinSpeed:
		e.Velocity = e.Velocity.Scale(m.params.MinSpeed / speed)
	case speed > m.params.MaxSpeed:
		e.Velocity = e.Velocity.Scale(m.params.MaxSpeed / speed)
	}
}

func (m *Manager) randomDirection() vec.Vec2 {
	return vec.FromAngle(m.rng.Float64()*2*math.Pi, 1)
}

// RecentCollisions returns boundary impacts younger than the configured TTL.
// Always empty for the rounded-rect boundary.
func (m *Manager) RecentCollisions() []CollisionEvent {
	m.pruneCollisions()
	out := make([]CollisionEvent, len(m.collisions))
	copy(out, m.collisions)
	return out
}

func (m *Manager) pruneCollisions() {
	if len(m.collisions) == 0 {
		return
	}
	cutoff := m.now().Add(-m.params.CollisionTTL)
	keep := m.collisions[:0]
	for _, c := range m.collisions {
		if c.Timestamp.After(cutoff) {
			keep = append(keep, c)
		}
	}
	m.collisions = keep
}

// Snapshot returns entity positions in insertion order.
func (m *Manager) Snapshot() Snapshot {
	s := make(Snapshot, len(m.entities))
	for i, e := range m.entities {
		s[i] = Position{ID: e.ID, X: e.Position.X, Y: e.Position.Y}
	}
	return s
}

// Entity returns a copy of the entity with the given id.
func (m *Manager) Entity(id string) (Entity, bool) {
	e, ok := m.index[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Entities returns copies of all entities in insertion order.
func (m *Manager) Entities() []Entity {
	out := make([]Entity, len(m.entities))
	for i, e := range m.entities {
		out[i] = *e
	}
	return out
}

// EntityAt returns the topmost entity covering p.
func (m *Manager) EntityAt(p vec.Vec2) (Entity, bool) {
	for i := len(m.entities) - 1; i >= 0; i-- {
		e := m.entities[i]
		if p.Dist(e.Position) <= e.Radius {
			return *e, true
		}
	}
	return Entity{}, false
}
