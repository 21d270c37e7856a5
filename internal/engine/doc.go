// Package engine mounts one membrane simulation.
//
// A [Simulation] owns a physics.Manager, the breathing driver of the
// desktop membrane and the frame loop. Every frame it feeds the current
// breathing radius into the manager, advances it once, feeds metrics and
// hands a [Frame] to each registered [Observer].
//
// # Example
//
//	s, _ := engine.New(engine.Options{Width: 800, Height: 600, IDs: ids})
//	s.AddObserver(bridge)
//	s.Start(ctx)
//	defer s.Close()
//
// # Thread Safety
//
// All methods are safe for concurrent use. Frames, resizes and
// interaction calls are serialised by a single mutex, so readers never
// observe a partially applied frame. Observers run outside the lock.
package engine
