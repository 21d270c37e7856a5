// Package render turns engine frames into screen-space scenes and
// rasterises them for the terminal.
//
// Simulation coordinates are centred on the container; scenes use a
// top-left origin so they can be handed to any pixel surface unchanged.
package render

import (
	"math"
	"time"

	"github.com/san-kum/organelle/internal/engine"
	"github.com/san-kum/organelle/internal/interact"
	"github.com/san-kum/organelle/internal/physics"
	"github.com/san-kum/organelle/internal/vec"
)

const (
	DefaultOutlineSegments = 96
	DefaultWaveAmplitude   = 3.0
	DefaultWaveLobes       = 5
	DefaultRippleTTL       = 600 * time.Millisecond
	DefaultRippleSpread    = 24.0
)

type Options struct {
	OutlineSegments int
	WaveAmplitude   float64
	WaveLobes       int
	RippleTTL       time.Duration
	RippleSpread    float64
}

func DefaultOptions() Options {
	return Options{
		OutlineSegments: DefaultOutlineSegments,
		WaveAmplitude:   DefaultWaveAmplitude,
		WaveLobes:       DefaultWaveLobes,
		RippleTTL:       DefaultRippleTTL,
		RippleSpread:    DefaultRippleSpread,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.OutlineSegments < 8 {
		o.OutlineSegments = d.OutlineSegments
	}
	if o.WaveLobes <= 0 {
		o.WaveLobes = d.WaveLobes
	}
	if o.RippleTTL <= 0 {
		o.RippleTTL = d.RippleTTL
	}
	if o.RippleSpread <= 0 {
		o.RippleSpread = d.RippleSpread
	}
	return o
}

type Sprite struct {
	ID     string
	X, Y   float64
	Radius float64
	Speed  float64
	Class  interact.Class
}

// Ripple is a fading ring left by a membrane impact.
type Ripple struct {
	X, Y   float64
	Radius float64
	Alpha  float64
}

type Scene struct {
	Width, Height float64
	Shape         physics.Shape
	Outline       []vec.Vec2
	Sprites       []Sprite
	Ripples       []Ripple
	Active        string
	Hovered       string
}

// ToScreen converts a simulation point to top-left screen coordinates.
func ToScreen(p vec.Vec2, width, height float64) vec.Vec2 {
	return vec.New(p.X+width/2, p.Y+height/2)
}

// ToWorld is the inverse of ToScreen.
func ToWorld(p vec.Vec2, width, height float64) vec.Vec2 {
	return vec.New(p.X-width/2, p.Y-height/2)
}

// Compose maps a frame and view state to a scene. It holds no state.
// The active sprite is placed last so it draws on top.
func Compose(f engine.Frame, view interact.ViewState, opts Options) Scene {
	opts = opts.withDefaults()
	g := f.Geometry
	sc := Scene{
		Width:   g.Width,
		Height:  g.Height,
		Shape:   g.Shape,
		Active:  view.Active,
		Hovered: view.Hovered,
	}

	switch g.Shape {
	case physics.ShapeEllipse:
		sc.Outline = ellipseOutline(g, f.WavePhase, opts)
	case physics.ShapeRoundedRect:
		sc.Outline = roundedRectOutline(g, opts.OutlineSegments)
	}

	var active *Sprite
	sc.Sprites = make([]Sprite, 0, len(f.Entities))
	for _, e := range f.Entities {
		p := ToScreen(e.Position, g.Width, g.Height)
		s := Sprite{
			ID:     e.ID,
			X:      p.X,
			Y:      p.Y,
			Radius: e.Radius,
			Speed:  e.Speed(),
			Class:  view.Class(e.ID),
		}
		if e.ID == view.Active {
			active = &s
			continue
		}
		sc.Sprites = append(sc.Sprites, s)
	}
	if active != nil {
		sc.Sprites = append(sc.Sprites, *active)
	}

	for _, c := range f.Collisions {
		age := f.Time.Sub(c.Timestamp)
		if age < 0 || age >= opts.RippleTTL {
			continue
		}
		progress := float64(age) / float64(opts.RippleTTL)
		p := ToScreen(c.Position, g.Width, g.Height)
		sc.Ripples = append(sc.Ripples, Ripple{
			X:      p.X,
			Y:      p.Y,
			Radius: 2 + progress*opts.RippleSpread*math.Max(1, c.Force/5),
			Alpha:  1 - progress,
		})
	}
	return sc
}

func ellipseOutline(g engine.Geometry, phase float64, opts Options) []vec.Vec2 {
	n := opts.OutlineSegments
	cx, cy := g.Width/2, g.Height/2
	pts := make([]vec.Vec2, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		wobble := opts.WaveAmplitude * math.Sin(float64(opts.WaveLobes)*theta+phase)
		pts[i] = vec.New(
			cx+(g.RadiusX+wobble)*math.Cos(theta),
			cy+(g.RadiusY+wobble)*math.Sin(theta),
		)
	}
	return pts
}

func roundedRectOutline(g engine.Geometry, segments int) []vec.Vec2 {
	perCorner := segments / 4
	if perCorner < 2 {
		perCorner = 2
	}
	cr := g.CornerRadius
	left, right := g.Left+g.Width/2, g.Right+g.Width/2
	top, bottom := g.Top+g.Height/2, g.Bottom+g.Height/2

	// Arc centres clockwise from the top-right, each sweeping a quarter turn.
	corners := []struct {
		c     vec.Vec2
		start float64
	}{
		{vec.New(right-cr, top+cr), -math.Pi / 2},
		{vec.New(right-cr, bottom-cr), 0},
		{vec.New(left+cr, bottom-cr), math.Pi / 2},
		{vec.New(left+cr, top+cr), math.Pi},
	}
	pts := make([]vec.Vec2, 0, 4*perCorner)
	for _, k := range corners {
		for i := 0; i < perCorner; i++ {
			a := k.start + (math.Pi/2)*float64(i)/float64(perCorner-1)
			pts = append(pts, k.c.Add(vec.FromAngle(a, cr)))
		}
	}
	return pts
}
