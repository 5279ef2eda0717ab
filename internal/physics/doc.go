// Package physics defines the contract between creature morphology and the
// mechanics engine that moves it.
//
// A [Space] owns every [Node] and [Link]. Handles returned by a space are
// pointers into its storage, so a link referenced by a section, its tentacle
// and a muscle group is one object: a stiffness change through any owner is
// seen by all of them. Handles stay valid for the lifetime of the space.
//
// One call to [Space.Step] runs, in order:
//
//   - the registered update functions,
//   - the engine's integration of gravity, links and collisions,
//   - the sensor hub,
//   - every entity's Update(t).
//
// Engines live in their own packages (impulse, integrated) and share the
// sensor and callback bookkeeping through [Hooks]. Nothing here is safe for
// concurrent use; independent spaces may run on separate goroutines.
package physics
