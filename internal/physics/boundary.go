package physics

import (
	"math"
	"math/rand"

	"github.com/san-kum/organelle/internal/vec"
)

type Shape int

const (
	ShapeEllipse Shape = iota
	ShapeRoundedRect
)

func (s Shape) String() string {
	switch s {
	case ShapeEllipse:
		return "ellipse"
	case ShapeRoundedRect:
		return "rounded-rect"
	default:
		return "unknown"
	}
}

// Contact describes one boundary reflection.
type Contact struct {
	Point vec.Vec2 // point on the membrane
	Force float64
}

// Boundary confines entities. Implementations are selected at construction.
type Boundary interface {
	Shape() Shape
	Resize(width, height float64)
	Spawn(rng *rand.Rand, radius float64, p Params) vec.Vec2
	Contains(pos vec.Vec2, radius float64) bool
	// Resolve pulls an escaped entity back inside. It reports a contact
	// only when the outward velocity was reflected.
	Resolve(e *Entity, p Params) (Contact, bool)
}

func clampDimension(v float64) float64 {
	if math.IsNaN(v) || v < MinDimension {
		return MinDimension
	}
	return v
}

// Ellipse is the breathing desktop membrane. Radii are in pixels; the
// breathing radius is on a normalised 0-100 scale of the container.
type Ellipse struct {
	RadiusX, RadiusY float64

	// Velocity is the change of the normalised radius over the last frame.
	Velocity float64

	width, height float64
	radius        float64
	breathing     bool
}

func NewEllipse(width, height float64) *Ellipse {
	e := &Ellipse{radius: InitialRadius}
	e.Resize(width, height)
	return e
}

func (e *Ellipse) Shape() Shape { return ShapeEllipse }

// Radius returns the current normalised radius.
func (e *Ellipse) Radius() float64 { return e.radius }

func (e *Ellipse) Resize(width, height float64) {
	e.width, e.height = clampDimension(width), clampDimension(height)
	if !e.breathing {
		r := math.Min(e.width, e.height) * e.radius / 100
		e.RadiusX, e.RadiusY = r, r
		return
	}
	e.recompute()
}

// SetRadius records a new normalised radius and derives the breathing velocity.
// The first call yields zero velocity.
func (e *Ellipse) SetRadius(r float64) {
	if e.breathing {
		e.Velocity = r - e.radius
	} else {
		e.Velocity = 0
	}
	e.radius = r
	e.breathing = true
	e.recompute()
}

func (e *Ellipse) recompute() {
	e.RadiusX = e.width * e.radius / 100
	e.RadiusY = e.height * e.radius / 100
}

func (e *Ellipse) inset(radius float64) (float64, float64) {
	return math.Max(e.RadiusX-radius, MinDimension), math.Max(e.RadiusY-radius, MinDimension)
}

func (e *Ellipse) Spawn(rng *rand.Rand, radius float64, p Params) vec.Vec2 {
	ax, ay := e.inset(radius)
	theta := rng.Float64() * 2 * math.Pi
	frac := p.SpawnInner + rng.Float64()*(p.SpawnOuter-p.SpawnInner)
	return vec.New(math.Cos(theta)*ax*frac, math.Sin(theta)*ay*frac)
}

func (e *Ellipse) Contains(pos vec.Vec2, radius float64) bool {
	ax, ay := e.inset(radius)
	return math.Hypot(pos.X/ax, pos.Y/ay) <= 1+1e-9
}

func (e *Ellipse) Resolve(ent *Entity, p Params) (Contact, bool) {
	ax, ay := e.inset(ent.Radius)
	nx, ny := ent.Position.X/ax, ent.Position.Y/ay
	d := math.Hypot(nx, ny)
	if d < 1 {
		return Contact{}, false
	}

	ent.Position = ent.Position.Scale(p.PushBack / d)

	// gradient of x²/a² + y²/b²
	normal := vec.New(ent.Position.X/(ax*ax), ent.Position.Y/(ay*ay)).Normalize()
	if normal.IsZero() {
		normal = ent.Position.Normalize()
	}

	vn := ent.Velocity.Dot(normal)
	if vn <= 0 {
		return Contact{}, false
	}
	ent.Velocity = ent.Velocity.Reflect(normal).Scale(p.BounceStrength)

	return Contact{
		Point: vec.New(nx/d*e.RadiusX, ny/d*e.RadiusY),
		Force: vn * p.ImpactGain,
	}, true
}

// RoundedRect is the static compact-layout membrane: a rounded square of
// side min(width, height) centred on the origin. Y grows downwards.
type RoundedRect struct {
	Left, Right, Top, Bottom float64
	CornerRadius             float64

	cornerFraction float64
}

func NewRoundedRect(width, height, cornerFraction float64) *RoundedRect {
	if cornerFraction < 0 || cornerFraction > 0.5 {
		cornerFraction = DefaultCornerFraction
	}
	r := &RoundedRect{cornerFraction: cornerFraction}
	r.Resize(width, height)
	return r
}

func (r *RoundedRect) Shape() Shape { return ShapeRoundedRect }

func (r *RoundedRect) Resize(width, height float64) {
	side := math.Min(clampDimension(width), clampDimension(height))
	half := side / 2
	r.Left, r.Right = -half, half
	r.Top, r.Bottom = -half, half
	r.CornerRadius = side * r.cornerFraction
}

func (r *RoundedRect) inset(radius float64) (minX, maxX, minY, maxY float64) {
	minX, maxX = r.Left+radius, r.Right-radius
	if minX > maxX {
		minX = (r.Left + r.Right) / 2
		maxX = minX
	}
	minY, maxY = r.Top+radius, r.Bottom-radius
	if minY > maxY {
		minY = (r.Top + r.Bottom) / 2
		maxY = minY
	}
	return minX, maxX, minY, maxY
}

// corner returns the arc centre of the corner region containing pos.
func (r *RoundedRect) corner(pos vec.Vec2) (vec.Vec2, bool) {
	cx0, cx1 := r.Left+r.CornerRadius, r.Right-r.CornerRadius
	cy0, cy1 := r.Top+r.CornerRadius, r.Bottom-r.CornerRadius
	switch {
	case pos.X < cx0 && pos.Y < cy0:
		return vec.New(cx0, cy0), true
	case pos.X > cx1 && pos.Y < cy0:
		return vec.New(cx1, cy0), true
	case pos.X < cx0 && pos.Y > cy1:
		return vec.New(cx0, cy1), true
	case pos.X > cx1 && pos.Y > cy1:
		return vec.New(cx1, cy1), true
	}
	return vec.Vec2{}, false
}

func (r *RoundedRect) Spawn(rng *rand.Rand, radius float64, p Params) vec.Vec2 {
	minX, maxX, minY, maxY := r.inset(radius)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	hw, hh := (maxX-minX)/2*p.SafeZone, (maxY-minY)/2*p.SafeZone
	return vec.New(cx+(rng.Float64()*2-1)*hw, cy+(rng.Float64()*2-1)*hh)
}

func (r *RoundedRect) Contains(pos vec.Vec2, radius float64) bool {
	const tol = 1e-9
	minX, maxX, minY, maxY := r.inset(radius)
	if pos.X < minX-tol || pos.X > maxX+tol || pos.Y < minY-tol || pos.Y > maxY+tol {
		return false
	}
	arc := r.CornerRadius - radius
	if arc <= 0 {
		return true
	}
	if c, ok := r.corner(pos); ok {
		return pos.Dist(c) <= arc+tol
	}
	return true
}

func (r *RoundedRect) Resolve(ent *Entity, p Params) (Contact, bool) {
	if arc := r.CornerRadius - ent.Radius; arc > 0 {
		if c, ok := r.corner(ent.Position); ok {
			off := ent.Position.Sub(c)
			d := off.Len()
			if d <= arc {
				return Contact{}, false
			}
			n := off.Scale(1 / d)
			ent.Position = c.Add(n.Scale(arc * p.PushBack))
			vn := ent.Velocity.Dot(n)
			if vn <= 0 {
				return Contact{}, false
			}
			ent.Velocity = ent.Velocity.Reflect(n).Scale(p.BounceStrength)
			return Contact{Point: c.Add(n.Scale(r.CornerRadius)), Force: vn * p.ImpactGain}, true
		}
	}

	minX, maxX, minY, maxY := r.inset(ent.Radius)
	var (
		hit   bool
		force float64
		point = ent.Position
	)
	if ent.Position.X < minX {
		ent.Position.X, point.X = minX, r.Left
		if ent.Velocity.X < 0 {
			force = math.Max(force, -ent.Velocity.X)
			ent.Velocity.X = -ent.Velocity.X * p.BounceStrength
			hit = true
		}
	} else if ent.Position.X > maxX {
		ent.Position.X, point.X = maxX, r.Right
		if ent.Velocity.X > 0 {
			force = math.Max(force, ent.Velocity.X)
			ent.Velocity.X = -ent.Velocity.X * p.BounceStrength
			hit = true
		}
	}
	if ent.Position.Y < minY {
		ent.Position.Y, point.Y = minY, r.Top
		if ent.Velocity.Y < 0 {
			force = math.Max(force, -ent.Velocity.Y)
			ent.Velocity.Y = -ent.Velocity.Y * p.BounceStrength
			hit = true
		}
	} else if ent.Position.Y > maxY {
		ent.Position.Y, point.Y = maxY, r.Bottom
		if ent.Velocity.Y > 0 {
			force = math.Max(force, ent.Velocity.Y)
			ent.Velocity.Y = -ent.Velocity.Y * p.BounceStrength
			hit = true
		}
	}
	return Contact{Point: point, Force: force * p.ImpactGain}, hit
}
