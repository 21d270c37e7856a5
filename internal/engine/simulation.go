package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/organelle/internal/breathing"
	"github.com/san-kum/organelle/internal/physics"
	"github.com/san-kum/organelle/internal/vec"
)

type Simulation struct {
	mu sync.Mutex

	opts      Options
	manager   *physics.Manager
	driver    *breathing.Driver
	width     float64
	height    float64
	now       time.Time
	index     int
	last      Frame
	metrics   []Metric
	observers []Observer

	cancel context.CancelFunc
	done   chan error
	closed bool

	// set while the loop goroutine is inside Step, observers included
	dispatching atomic.Bool
}

// New creates a simulation and adds opts.IDs in order. Zero-valued
// physics or breathing params fall back to their defaults.
func New(opts Options) (*Simulation, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Physics == (physics.Params{}) {
		opts.Physics = physics.DefaultParams()
	}
	if opts.Breathing == (breathing.Params{}) {
		opts.Breathing = breathing.DefaultParams()
	}
	if err := opts.Breathing.Validate(); err != nil {
		return nil, err
	}
	if !(opts.ExpansionFactor > 0) {
		opts.ExpansionFactor = physics.DefaultExpansionFactor
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	shape := physics.ShapeEllipse
	if opts.Compact {
		shape = physics.ShapeRoundedRect
	}

	s := &Simulation{
		opts:   opts,
		width:  opts.Width,
		height: opts.Height,
		now:    opts.Clock(),
	}
	s.driver = breathing.NewDriver(opts.Breathing, s.now)
	s.manager = physics.New(opts.Width, opts.Height, shape, opts.EntityRadius,
		physics.WithParams(opts.Physics),
		physics.WithSeed(opts.Seed),
		physics.WithClock(func() time.Time { return s.now }),
	)

	for _, id := range opts.IDs {
		if _, err := s.manager.AddEntity(id); err != nil {
			return nil, fmt.Errorf("add entity: %w", err)
		}
	}
	s.last = s.buildFrame()
	return s, nil
}

func (s *Simulation) AddMetric(m Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
}

func (s *Simulation) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Simulation) AddEntity(id string) (physics.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return physics.Entity{}, ErrClosed
	}
	e, err := s.manager.AddEntity(id)
	if err != nil {
		return physics.Entity{}, err
	}
	return *e, nil
}

func (s *Simulation) RemoveEntity(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.RemoveEntity(id)
}

func (s *Simulation) SetHoverState(id string, hovered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.SetHoverState(id, hovered)
}

// SetExpandedState pins or releases an entity. A non-positive factor uses
// the configured expansion factor.
func (s *Simulation) SetExpandedState(id string, expanded bool, factor float64) {
	if !(factor > 0) {
		factor = s.opts.ExpansionFactor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.SetExpandedState(id, expanded, factor)
}

func (s *Simulation) UpdateDimensions(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.manager.UpdateDimensions(width, height)
}

// UpdateBoundaryRadius sets the normalised ellipse radius. Unless breathing
// is disabled the next frame overrides it.
func (s *Simulation) UpdateBoundaryRadius(radius float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.UpdateBoundary(radius)
}

// Place overrides the position and velocity of one entity.
func (s *Simulation) Place(id string, pos, vel vec.Vec2) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Place(id, pos, vel)
}

func (s *Simulation) Snapshot() physics.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Snapshot()
}

func (s *Simulation) RecentCollisions() []physics.CollisionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.RecentCollisions()
}

func (s *Simulation) Entity(id string) (physics.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Entity(id)
}

func (s *Simulation) Entities() []physics.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Entities()
}

func (s *Simulation) EntityAt(p vec.Vec2) (physics.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.EntityAt(p)
}

func (s *Simulation) Shape() physics.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Boundary().Shape()
}

func (s *Simulation) ExpansionFactor() float64 { return s.opts.ExpansionFactor }

// Seed returns the seed the entities were placed with. When Options.Seed
// was zero it is the time based seed New picked.
func (s *Simulation) Seed() int64 { return s.opts.Seed }

// Frame returns the most recent frame record.
func (s *Simulation) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Simulation) Metrics() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Step advances the simulation by one frame stamped now.
func (s *Simulation) Step(now time.Time) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.now = now
	if s.manager.Boundary().Shape() == physics.ShapeEllipse && !s.opts.DisableBreathing {
		s.manager.UpdateBoundary(s.driver.Radius(now))
	}
	s.manager.Update()
	s.index++

	f := s.buildFrame()
	s.last = f
	for _, e := range f.Entities {
		if !e.Position.IsValid() || !e.Velocity.IsValid() {
			s.mu.Unlock()
			return &FrameError{Index: f.Index, Time: now, Entity: e.ID, Wrapped: ErrInvalidState}
		}
	}
	for _, m := range s.metrics {
		m.Observe(f)
	}
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.OnFrame(f)
	}
	return nil
}

// RunFrames steps n frames spaced by interval, starting one interval after
// the current frame time, checking ctx between frames.
func (s *Simulation) RunFrames(ctx context.Context, n int, interval time.Duration) error {
	s.mu.Lock()
	t := s.now
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		t = t.Add(interval)
		if err := s.Step(t); err != nil {
			return err
		}
	}
	return nil
}

// Start runs the frame source in its own goroutine until Stop, Close or
// ctx cancellation.
func (s *Simulation) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return ErrClosed
	case s.cancel != nil:
		return ErrAlreadyRunning
	case s.opts.Source == nil:
		return ErrNoSource
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	s.cancel, s.done = cancel, done
	src := s.opts.Source

	go func() {
		var stepErr error
		err := src.Run(ctx, func(now time.Time) {
			if stepErr != nil || ctx.Err() != nil {
				return
			}
			s.dispatching.Store(true)
			err := s.Step(now)
			s.dispatching.Store(false)
			if err != nil {
				stepErr = err
				cancel()
			}
		})
		if stepErr != nil {
			err = stepErr
		} else if errors.Is(err, context.Canceled) {
			err = nil
		}
		done <- err
	}()
	return nil
}

// Stop halts the frame loop and waits for it to exit. It is a no-op when
// the loop is not running and returns the error that ended the loop.
//
// Observers may call Stop or Close from OnFrame. While the loop is
// delivering a frame Stop only cancels it: no further frame is stepped and
// the goroutine exits once the current observers return.
func (s *Simulation) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	if s.dispatching.Load() {
		return nil
	}
	return <-done
}

func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Close stops the loop and clears all entities. Further calls to Step,
// Start and AddEntity return ErrClosed.
func (s *Simulation) Close() error {
	err := s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.manager.Clear()
	s.last = s.buildFrame()
	return err
}

func (s *Simulation) buildFrame() Frame {
	f := Frame{
		Index:      s.index,
		Time:       s.now,
		Elapsed:    s.driver.Elapsed(s.now),
		Geometry:   s.geometry(),
		WavePhase:  s.driver.WavePhase(s.now),
		Entities:   s.manager.Entities(),
		Snapshot:   s.manager.Snapshot(),
		Collisions: s.manager.RecentCollisions(),
		Overlaps:   s.manager.Overlaps(),
	}
	if el, ok := s.manager.Boundary().(*physics.Ellipse); ok {
		f.Radius = el.Radius()
	}
	return f
}

func (s *Simulation) geometry() Geometry {
	g := Geometry{Width: s.width, Height: s.height}
	switch b := s.manager.Boundary().(type) {
	case *physics.Ellipse:
		g.Shape = physics.ShapeEllipse
		g.RadiusX, g.RadiusY = b.RadiusX, b.RadiusY
	case *physics.RoundedRect:
		g.Shape = physics.ShapeRoundedRect
		g.Left, g.Right, g.Top, g.Bottom = b.Left, b.Right, b.Top, b.Bottom
		g.CornerRadius = b.CornerRadius
	}
	return g
}
