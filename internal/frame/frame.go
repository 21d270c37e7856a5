// Package frame provides the per-frame schedulers that drive a simulation.
//
// A [Source] invokes a callback once per frame until its context is
// cancelled. [Ticker] follows the wall clock; [Manual] lets tests decide
// exactly when each frame happens and what time it reports.
package frame

import (
	"context"
	"errors"
	"time"
)

const DefaultFPS = 60

var ErrInvalidFPS = errors.New("frame: fps must be positive")

// Func is invoked once per frame with the frame's timestamp.
type Func func(now time.Time)

type Source interface {
	// Run blocks, calling fn once per frame, until ctx is done.
	Run(ctx context.Context, fn Func) error
}

// Interval returns the frame duration for fps, falling back to DefaultFPS.
func Interval(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

type Ticker struct {
	interval time.Duration
}

func NewTicker(fps int) (*Ticker, error) {
	if fps <= 0 {
		return nil, ErrInvalidFPS
	}
	return &Ticker{interval: Interval(fps)}, nil
}

func (t *Ticker) Interval() time.Duration { return t.interval }

func (t *Ticker) Run(ctx context.Context, fn Func) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-tk.C:
			fn(now)
		}
	}
}

// Manual emits frames only when Advance is called. Each frame reports a
// simulated time that moves forward by a fixed interval.
type Manual struct {
	interval time.Duration
	now      time.Time
	steps    chan int
	done     chan struct{}
}

func NewManual(start time.Time, interval time.Duration) *Manual {
	if interval <= 0 {
		interval = Interval(DefaultFPS)
	}
	return &Manual{
		interval: interval,
		now:      start,
		steps:    make(chan int),
		done:     make(chan struct{}),
	}
}

// Now returns the timestamp of the last emitted frame.
func (m *Manual) Now() time.Time { return m.now }

func (m *Manual) Run(ctx context.Context, fn Func) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-m.steps:
			for i := 0; i < n; i++ {
				m.now = m.now.Add(m.interval)
				fn(m.now)
			}
			m.done <- struct{}{}
		}
	}
}

// Advance emits n frames and waits for them to finish. It returns ctx's
// error if the source is not running before ctx is done.
func (m *Manual) Advance(ctx context.Context, n int) error {
	select {
	case m.steps <- n:
	case <-ctx.Done():
		return ctx.Err()
	}
	<-m.done
	return nil
}
