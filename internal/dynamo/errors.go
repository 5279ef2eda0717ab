package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for morphology, actuation and simulation.
var (
	// ErrConstruction indicates a creature part could not be assembled
	// (non-positive base distance, negative dimension, zero separation).
	ErrConstruction = errors.New("dynamo: construction failed")

	// ErrShapeMismatch indicates mismatched cardinalities, e.g. a base that does
	// not match the section kind, or heights and widths of incompatible lengths.
	ErrShapeMismatch = errors.New("dynamo: shape mismatch")

	// ErrSignalLength indicates an actuation vector of the wrong length.
	ErrSignalLength = errors.New("dynamo: signal length mismatch")

	// ErrUnsupported indicates a recognised but unavailable configuration.
	ErrUnsupported = errors.New("dynamo: unsupported configuration")

	// ErrUnknownRole indicates a material role that no part declares.
	ErrUnknownRole = errors.New("dynamo: unknown material role")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// ShapeError reports a cardinality mismatch with the operation that found it.
type ShapeError struct {
	Op      string
	Want    int
	Got     int
	Wrapped error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d: %v", e.Op, e.Want, e.Got, e.Wrapped)
}

func (e *ShapeError) Unwrap() error {
	return e.Wrapped
}

// Shape returns a ShapeError wrapping ErrShapeMismatch.
func Shape(op string, want, got int) error {
	return &ShapeError{Op: op, Want: want, Got: got, Wrapped: ErrShapeMismatch}
}

// SignalLength returns a ShapeError wrapping ErrSignalLength.
func SignalLength(op string, want, got int) error {
	return &ShapeError{Op: op, Want: want, Got: got, Wrapped: ErrSignalLength}
}

// SimError wraps an error raised during a simulation step.
type SimError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e SimError) Unwrap() error {
	return e.Wrapped
}
