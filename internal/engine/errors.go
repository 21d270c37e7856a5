package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAlreadyRunning indicates Start was called on a running simulation.
	ErrAlreadyRunning = errors.New("engine: simulation already running")

	// ErrClosed indicates the simulation was torn down.
	ErrClosed = errors.New("engine: simulation closed")

	// ErrNoSource indicates Start was called without a frame source.
	ErrNoSource = errors.New("engine: no frame source")

	// ErrInvalidState indicates an entity ended a frame with NaN or Inf state.
	ErrInvalidState = errors.New("engine: invalid entity state (NaN or Inf detected)")
)

// FrameError wraps an error with the frame it happened in.
type FrameError struct {
	Index   int
	Time    time.Time
	Entity  string
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (entity %s): %v", e.Index, e.Entity, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
