package engine

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/san-kum/organelle/internal/frame"
	"github.com/san-kum/organelle/internal/physics"
	"github.com/san-kum/organelle/internal/vec"
)

var epoch = time.Unix(1_700_000_000, 0)

func testOptions(compact bool) Options {
	return Options{
		Width:        900,
		Height:       700,
		Compact:      compact,
		EntityRadius: 30,
		IDs:          []string{"atlas", "helix", "lumen", "nexus"},
		Seed:         42,
		Clock:        func() time.Time { return epoch },
	}
}

func TestNew_AddsEntities(t *testing.T) {
	s, err := New(testOptions(false))
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	snap := s.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 entities, got %d", len(snap))
	}
	if snap[0].ID != "atlas" || snap[3].ID != "nexus" {
		t.Errorf("unexpected order: %v", snap)
	}
	if s.Shape() != physics.ShapeEllipse {
		t.Errorf("expected ellipse, got %s", s.Shape())
	}
	if s.ExpansionFactor() != physics.DefaultExpansionFactor {
		t.Errorf("expected default factor, got %f", s.ExpansionFactor())
	}
}

func TestNew_Compact(t *testing.T) {
	s, err := New(testOptions(true))
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if s.Shape() != physics.ShapeRoundedRect {
		t.Errorf("expected rounded rect, got %s", s.Shape())
	}
	g := s.Frame().Geometry
	if g.Right-g.Left != 700 {
		t.Errorf("expected 700px square, got %f", g.Right-g.Left)
	}
}

func TestNew_DuplicateIDs(t *testing.T) {
	opts := testOptions(false)
	opts.IDs = []string{"a", "b", "a"}
	if _, err := New(opts); !errors.Is(err, physics.ErrDuplicateEntity) {
		t.Errorf("expected ErrDuplicateEntity, got %v", err)
	}
}

func TestNew_InvalidBreathing(t *testing.T) {
	opts := testOptions(false)
	opts.Breathing.Period = -time.Second
	opts.Breathing.WavePeriod = time.Second
	if _, err := New(opts); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestStep_DrivesBreathing(t *testing.T) {
	s, _ := New(testOptions(false))
	if err := s.Step(epoch.Add(4 * time.Second)); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	f := s.Frame()
	if math.Abs(f.Radius-43) > 1e-9 {
		t.Errorf("expected radius 43 at peak, got %f", f.Radius)
	}
	if math.Abs(f.Geometry.RadiusX-900*0.43) > 1e-9 || math.Abs(f.Geometry.RadiusY-700*0.43) > 1e-9 {
		t.Errorf("unexpected radii %fx%f", f.Geometry.RadiusX, f.Geometry.RadiusY)
	}
	if f.Index != 1 {
		t.Errorf("expected frame index 1, got %d", f.Index)
	}
}

func TestStep_DisableBreathing(t *testing.T) {
	opts := testOptions(false)
	opts.DisableBreathing = true
	s, _ := New(opts)
	s.UpdateBoundaryRadius(39)
	s.Step(epoch.Add(4 * time.Second))
	if r := s.Frame().Radius; r != 39 {
		t.Errorf("expected manual radius 39, got %f", r)
	}
}

func TestRunFrames(t *testing.T) {
	s, _ := New(testOptions(false))
	var seen int
	s.AddObserver(ObserverFunc(func(Frame) { seen++ }))

	if err := s.RunFrames(context.Background(), 120, 25*time.Millisecond); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if seen != 120 {
		t.Errorf("expected 120 observed frames, got %d", seen)
	}
	f := s.Frame()
	if f.Index != 120 {
		t.Errorf("expected index 120, got %d", f.Index)
	}
	if f.Elapsed != 3*time.Second {
		t.Errorf("expected 3s elapsed, got %s", f.Elapsed)
	}
}

func TestRunFrames_Cancelled(t *testing.T) {
	s, _ := New(testOptions(false))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.RunFrames(ctx, 10, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled, got %v", err)
	}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string   { return "count" }
func (c *countMetric) Observe(Frame)  { c.n++ }
func (c *countMetric) Value() float64 { return float64(c.n) }
func (c *countMetric) Reset()         { c.n = 0 }

func TestMetrics(t *testing.T) {
	s, _ := New(testOptions(true))
	s.AddMetric(&countMetric{})
	s.RunFrames(context.Background(), 7, time.Millisecond)
	if got := s.Metrics()["count"]; got != 7 {
		t.Errorf("expected 7 observations, got %f", got)
	}
}

func TestStartStop_Ticker(t *testing.T) {
	opts := testOptions(false)
	tk, _ := frame.NewTicker(240)
	opts.Source = tk
	opts.Clock = time.Now
	s, _ := New(opts)

	var frames atomic.Int64
	s.AddObserver(ObserverFunc(func(Frame) { frames.Add(1) }))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if err := s.Stop(); err != nil {
		t.Errorf("stop failed: %v", err)
	}
	if frames.Load() == 0 {
		t.Error("expected frames while running")
	}

	stopped := frames.Load()
	time.Sleep(30 * time.Millisecond)
	if frames.Load() != stopped {
		t.Error("frames delivered after stop")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second stop should be a no-op, got %v", err)
	}
}

func TestStart_NoSource(t *testing.T) {
	s, _ := New(testOptions(false))
	if err := s.Start(context.Background()); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

func TestClose(t *testing.T) {
	opts := testOptions(false)
	m := frame.NewManual(epoch, time.Second/60)
	opts.Source = m
	s, _ := New(opts)
	s.Start(context.Background())

	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if s.Running() {
		t.Error("still running after close")
	}
	if len(s.Snapshot()) != 0 {
		t.Error("entities not cleared on close")
	}
	if err := s.Step(epoch); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Step, got %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Start, got %v", err)
	}
	if _, err := s.AddEntity("late"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from AddEntity, got %v", err)
	}
}

func TestUpdateDimensions_DuringRun(t *testing.T) {
	opts := testOptions(false)
	tk, _ := frame.NewTicker(500)
	opts.Source = tk
	opts.Clock = time.Now
	s, _ := New(opts)
	s.Start(context.Background())
	defer s.Close()

	for i := 0; i < 50; i++ {
		s.UpdateDimensions(float64(400+i*10), float64(300+i*5))
		s.SetHoverState("atlas", i%2 == 0)
	}
	s.Stop()

	s.Step(time.Now())
	for _, e := range s.Entities() {
		if !e.Position.IsValid() {
			t.Errorf("entity %s has invalid position", e.ID)
		}
	}
	if g := s.Frame().Geometry; g.Width != 890 || g.Height != 545 {
		t.Errorf("expected last dimensions 890x545, got %fx%f", g.Width, g.Height)
	}
}

func TestFrameError(t *testing.T) {
	err := &FrameError{Index: 3, Entity: "atlas", Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("FrameError does not unwrap")
	}
	want := "frame 3 (entity atlas): engine: invalid entity state (NaN or Inf detected)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStep_InvalidStateStopsLoop(t *testing.T) {
	opts := testOptions(true)
	m := frame.NewManual(epoch, time.Second/60)
	opts.Source = m
	s, _ := New(opts)
	s.Place("atlas", vec.New(math.NaN(), 0), vec.New(2, 0))

	s.Start(context.Background())
	m.Advance(context.Background(), 1)

	var fe *FrameError
	if err := s.Stop(); !errors.As(err, &fe) || fe.Entity != "atlas" {
		t.Errorf("expected FrameError for atlas, got %v", err)
	}
}

func TestStop_FromObserver(t *testing.T) {
	opts := testOptions(false)
	tk, _ := frame.NewTicker(240)
	opts.Source = tk
	opts.Clock = time.Now
	s, _ := New(opts)

	var frames atomic.Int64
	returned := make(chan error, 1)
	s.AddObserver(ObserverFunc(func(f Frame) {
		if frames.Add(1) == 3 {
			returned <- s.Stop()
		}
	}))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	select {
	case err := <-returned:
		if err != nil {
			t.Errorf("stop from observer returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stop called from an observer did not return")
	}

	time.Sleep(30 * time.Millisecond)
	if s.Running() {
		t.Error("still running after stop from observer")
	}
	if got := frames.Load(); got != 3 {
		t.Errorf("expected 3 frames, got %d", got)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Errorf("restart after observer stop failed: %v", err)
	}
	s.Stop()
}

func TestClose_FromObserver(t *testing.T) {
	opts := testOptions(false)
	m := frame.NewManual(epoch, time.Second/60)
	opts.Source = m
	s, _ := New(opts)

	returned := make(chan error, 1)
	s.AddObserver(ObserverFunc(func(Frame) { returned <- s.Close() }))
	s.Start(context.Background())
	go m.Advance(context.Background(), 1)

	select {
	case err := <-returned:
		if err != nil {
			t.Errorf("close from observer returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("close called from an observer did not return")
	}
	if len(s.Snapshot()) != 0 {
		t.Error("entities not cleared on close")
	}
}

func TestSeed_ZeroPicksReproducibleSeed(t *testing.T) {
	opts := testOptions(false)
	opts.Seed = 0
	a, _ := New(opts)
	if a.Seed() == 0 {
		t.Fatal("expected a picked seed")
	}

	opts.Seed = a.Seed()
	b, _ := New(opts)
	want, got := a.Snapshot(), b.Snapshot()
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("entity %s: placed at %+v with recorded seed, want %+v", want[i].ID, got[i], want[i])
		}
	}
}
