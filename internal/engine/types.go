package engine

import (
	"time"

	"github.com/san-kum/organelle/internal/breathing"
	"github.com/san-kum/organelle/internal/frame"
	"github.com/san-kum/organelle/internal/physics"
)

type Options struct {
	Width, Height   float64
	Compact         bool
	EntityRadius    float64
	ExpansionFactor float64
	IDs             []string

	Physics   physics.Params
	Breathing breathing.Params

	// DisableBreathing stops the frame loop from driving the ellipse
	// radius; UpdateBoundaryRadius becomes the only way to change it.
	DisableBreathing bool

	Seed   int64
	Clock  func() time.Time
	Source frame.Source
}

// Geometry is the current boundary in simulation coordinates.
type Geometry struct {
	Shape         physics.Shape
	Width, Height float64

	RadiusX, RadiusY float64

	Left, Right, Top, Bottom float64
	CornerRadius             float64
}

// Frame is an immutable record of one simulation step.
type Frame struct {
	Index      int
	Time       time.Time
	Elapsed    time.Duration
	Geometry   Geometry
	Radius     float64 // normalised breathing radius, ellipse only
	WavePhase  float64
	Entities   []physics.Entity
	Snapshot   physics.Snapshot
	Collisions []physics.CollisionEvent
	Overlaps   int
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}
