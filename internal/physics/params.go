package physics

import "time"

const (
	DefaultEntityRadius    = 40.0
	DefaultExpansionFactor = 2.2
	DefaultCornerFraction  = 0.15

	// InitialRadius is the normalised (0-100) ellipse radius before the
	// first UpdateBoundary call.
	InitialRadius = 40.0

	// MinDimension is the smallest container size accepted, in pixels.
	MinDimension = 1.0
)

// Params holds the tunables of one simulation. All speeds are in pixels per frame.
type Params struct {
	MinSpeed      float64
	MaxSpeed      float64
	SpawnSpeedMin float64
	SpawnSpeedMax float64

	Damping         float64
	PerturbChance   float64
	PerturbStrength float64
	HoverSpeed      float64

	Restitution        float64
	MinSeparationSpeed float64
	SeparationPadding  float64

	ExpandMargin float64
	ExpandPush   float64

	BounceStrength float64
	BreathingForce float64
	ImpactGain     float64
	PushBack       float64

	SafeZone       float64
	SpawnInner     float64
	SpawnOuter     float64
	CornerFraction float64

	CollisionTTL time.Duration
}

func DefaultParams() Params {
	return Params{
		MinSpeed:           2.0,
		MaxSpeed:           3.5,
		SpawnSpeedMin:      1.5,
		SpawnSpeedMax:      2.5,
		Damping:            0.995,
		PerturbChance:      0.02,
		PerturbStrength:    0.5,
		HoverSpeed:         0.1,
		Restitution:        0.9,
		MinSeparationSpeed: 1.0,
		SeparationPadding:  5,
		ExpandMargin:       10,
		ExpandPush:         5.0,
		BounceStrength:     0.8,
		BreathingForce:     0.15,
		ImpactGain:         2.5,
		PushBack:           0.95,
		SafeZone:           0.7,
		SpawnInner:         0.2,
		SpawnOuter:         0.6,
		CornerFraction:     DefaultCornerFraction,
		CollisionTTL:       600 * time.Millisecond,
	}
}
