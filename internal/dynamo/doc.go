// Package dynamo provides the core primitives shared by the springs packages.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [State]: flat vector of node positions and velocities, or of observations
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface used by the integrated engine
//   - [Controller]: maps an observation vector to a muscle signal
//   - [Metric] and [Observer]: hooks driven by the simulator
//
// It also holds the error taxonomy of the morphology layer. Construction errors
// ([ErrConstruction], [ErrShapeMismatch], [ErrUnknownRole]) are raised while a
// creature is assembled; [ErrSignalLength] is raised by actuation calls;
// [ErrUnsupported] flags configurations that are recognised but not available.
// None of them are retried.
//
// # Thread Safety
//
// Nothing in this package or built on top of a single space is thread-safe.
// Independent spaces may be driven from different goroutines.
package dynamo
