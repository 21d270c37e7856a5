package metrics

import (
	"github.com/san-kum/organelle/internal/engine"
)

// MeanSpeed averages the speed of free (non-expanded) entities over all frames.
type MeanSpeed struct {
	name    string
	samples int
	total   float64
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(f engine.Frame) {
	for _, e := range f.Entities {
		if e.Expanded {
			continue
		}
		m.total += e.Speed()
		m.samples++
	}
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.total = 0
	m.samples = 0
}

// BoundaryHits counts membrane impacts recorded during observed frames.
type BoundaryHits struct {
	name  string
	count int
	force float64
}

func NewBoundaryHits() *BoundaryHits {
	return &BoundaryHits{name: "boundary_hits"}
}

func (b *BoundaryHits) Name() string { return b.name }

func (b *BoundaryHits) Observe(f engine.Frame) {
	for _, c := range f.Collisions {
		if c.Timestamp.Equal(f.Time) {
			b.count++
			b.force += c.Force
		}
	}
}

func (b *BoundaryHits) Value() float64 { return float64(b.count) }

// MeanForce is the average impact force of the counted hits.
func (b *BoundaryHits) MeanForce() float64 {
	if b.count == 0 {
		return 0
	}
	return b.force / float64(b.count)
}

func (b *BoundaryHits) Reset() {
	b.count = 0
	b.force = 0
}

// OverlapRate is the mean number of intersecting pairs per frame.
type OverlapRate struct {
	name   string
	frames int
	pairs  int
	peak   int
}

func NewOverlapRate() *OverlapRate {
	return &OverlapRate{name: "overlap_rate"}
}

func (o *OverlapRate) Name() string { return o.name }

func (o *OverlapRate) Observe(f engine.Frame) {
	o.frames++
	o.pairs += f.Overlaps
	o.peak = max(o.peak, f.Overlaps)
}

func (o *OverlapRate) Value() float64 {
	if o.frames == 0 {
		return 0
	}
	return float64(o.pairs) / float64(o.frames)
}

func (o *OverlapRate) Peak() int { return o.peak }

func (o *OverlapRate) Reset() {
	o.frames = 0
	o.pairs = 0
	o.peak = 0
}

// Default returns the metric set attached to every run.
func Default() []engine.Metric {
	return []engine.Metric{NewMeanSpeed(), NewBoundaryHits(), NewOverlapRate()}
}
