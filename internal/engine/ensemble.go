package engine

import (
	"context"
	"sync"
	"time"
)

// Ensemble runs independent simulations that differ only in seed. Run i
// uses base.Seed+i.
type Ensemble struct {
	base    Options
	numRuns int
	metrics func() []Metric
}

// NewEnsemble prepares numRuns copies of base. The metrics function is
// called once per run so each simulation gets fresh instances.
func NewEnsemble(base Options, numRuns int, metrics func() []Metric) *Ensemble {
	if base.Seed == 0 {
		base.Seed = 1
	}
	base.Source = nil
	return &Ensemble{base: base, numRuns: numRuns, metrics: metrics}
}

type RunResult struct {
	Seed    int64
	Frames  int
	Metrics map[string]float64
}

// Run steps every simulation for frames frames in parallel. The first
// error aborts the whole ensemble.
func (e *Ensemble) Run(ctx context.Context, frames int, interval time.Duration) ([]RunResult, error) {
	results := make([]RunResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			opts := e.base
			opts.Seed = e.base.Seed + int64(idx)
			results[idx], errs[idx] = runOne(ctx, opts, e.metrics, frames, interval)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func runOne(ctx context.Context, opts Options, metrics func() []Metric, frames int, interval time.Duration) (RunResult, error) {
	sim, err := New(opts)
	if err != nil {
		return RunResult{}, err
	}
	defer sim.Close()

	if metrics != nil {
		for _, m := range metrics() {
			sim.AddMetric(m)
		}
	}
	if err := sim.RunFrames(ctx, frames, interval); err != nil {
		return RunResult{}, err
	}
	return RunResult{Seed: opts.Seed, Frames: sim.Frame().Index, Metrics: sim.Metrics()}, nil
}

// Mean averages each metric across results.
func Mean(results []RunResult) map[string]float64 {
	out := make(map[string]float64)
	if len(results) == 0 {
		return out
	}
	for _, r := range results {
		for k, v := range r.Metrics {
			out[k] += v
		}
	}
	for k := range out {
		out[k] /= float64(len(results))
	}
	return out
}
