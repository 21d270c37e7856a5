// Package physics owns the kinematic state of the membrane simulation.
//
// A [Manager] holds a fixed set of round entities confined to a [Boundary]
// and advances them by exactly one visual frame per [Manager.Update] call:
//
//   - breathing force (ellipse boundaries only)
//   - displacement, damping, perturbation and speed clamping
//   - entity-entity collision response
//   - entity-boundary reflection
//
// Two boundary shapes are provided: a breathing [Ellipse] for wide layouts
// and a static [RoundedRect] for compact ones.
//
// # Example
//
//	m := physics.New(800, 600, physics.ShapeEllipse, 40)
//	m.AddEntity("atlas")
//	m.UpdateBoundary(41.5)
//	m.Update()
//	snap := m.Snapshot()
//
// # Thread Safety
//
// Manager instances are NOT safe for concurrent use. The engine package
// serialises frame stepping with resize and interaction calls.
package physics
