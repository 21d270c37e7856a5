// Package breathing drives the oscillating radius of the desktop membrane.
//
// One cycle spends InhaleFraction of the period easing the radius out to
// MaxRadius and the rest easing it back to MinRadius. Radii are on the
// normalised 0-100 scale consumed by physics.Manager.UpdateBoundary.
package breathing

import (
	"fmt"
	"math"
	"time"
)

type Params struct {
	Period         time.Duration
	InhaleFraction float64
	MinRadius      float64
	MaxRadius      float64
	WavePeriod     time.Duration
}

func DefaultParams() Params {
	return Params{
		Period:         10 * time.Second,
		InhaleFraction: 0.4,
		MinRadius:      37,
		MaxRadius:      43,
		WavePeriod:     8 * time.Second,
	}
}

func (p Params) Validate() error {
	if p.Period <= 0 {
		return fmt.Errorf("breathing period must be positive, got %s", p.Period)
	}
	if p.WavePeriod <= 0 {
		return fmt.Errorf("wave period must be positive, got %s", p.WavePeriod)
	}
	if p.InhaleFraction <= 0 || p.InhaleFraction >= 1 {
		return fmt.Errorf("inhale fraction must be in (0, 1), got %f", p.InhaleFraction)
	}
	if p.MinRadius <= 0 || p.MaxRadius < p.MinRadius {
		return fmt.Errorf("invalid radius range [%f, %f]", p.MinRadius, p.MaxRadius)
	}
	return nil
}

// EaseInOutSine maps [0, 1] onto [0, 1] with zero slope at both ends.
func EaseInOutSine(x float64) float64 {
	return -(math.Cos(math.Pi*x) - 1) / 2
}

// Phase returns the normalised breathing phase in [0, 1] at elapsed time t.
// Negative t is treated as zero.
func (p Params) Phase(t time.Duration) float64 {
	if t < 0 {
		t = 0
	}
	c := float64(t%p.Period) / float64(p.Period)
	if c < p.InhaleFraction {
		return EaseInOutSine(c / p.InhaleFraction)
	}
	return 1 - EaseInOutSine((c-p.InhaleFraction)/(1-p.InhaleFraction))
}

func (p Params) Radius(t time.Duration) float64 {
	return p.MinRadius + p.Phase(t)*(p.MaxRadius-p.MinRadius)
}

// WavePhase returns the decorative silhouette phase in radians, one full
// turn per WavePeriod. It does not affect physics.
func (p Params) WavePhase(t time.Duration) float64 {
	if t < 0 {
		t = 0
	}
	return float64(t%p.WavePeriod) / float64(p.WavePeriod) * 2 * math.Pi
}

// Driver binds Params to a start time.
type Driver struct {
	params Params
	start  time.Time
}

func NewDriver(p Params, start time.Time) *Driver {
	return &Driver{params: p, start: start}
}

func (d *Driver) Params() Params { return d.params }

func (d *Driver) Elapsed(now time.Time) time.Duration { return now.Sub(d.start) }

func (d *Driver) Radius(now time.Time) float64 { return d.params.Radius(d.Elapsed(now)) }

func (d *Driver) WavePhase(now time.Time) float64 { return d.params.WavePhase(d.Elapsed(now)) }

// Reset moves the start of the cycle to now.
func (d *Driver) Reset(now time.Time) { d.start = now }

// Sample returns n evenly spaced radii over one period.
func (p Params) Sample(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = p.Radius(time.Duration(float64(p.Period) * float64(i) / float64(n)))
	}
	return out
}
