package storage

import (
	"sync"

	"github.com/san-kum/organelle/internal/engine"
)

// Row is one entity position in one recorded frame.
type Row struct {
	Frame int     `json:"frame"`
	Time  float64 `json:"time"`
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Recorder is an engine observer that keeps entity positions every
// Stride frames.
type Recorder struct {
	mu     sync.Mutex
	stride int
	rows   []Row
	frames int
}

func NewRecorder(stride int) *Recorder {
	if stride < 1 {
		stride = 1
	}
	return &Recorder{stride: stride}
}

func (r *Recorder) OnFrame(f engine.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.Index%r.stride != 0 {
		return
	}
	r.frames++
	t := f.Elapsed.Seconds()
	for _, p := range f.Snapshot {
		r.rows = append(r.rows, Row{Frame: f.Index, Time: t, ID: p.ID, X: p.X, Y: p.Y})
	}
}

// Rows returns a copy of everything recorded so far.
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Row(nil), r.rows...)
}

// Frames reports how many frames were kept.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	r.frames = 0
}
