package sim

import (
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/motors"
)

// Body is a creature driven by a simulator.
type Body interface {
	CenterXY() (float64, float64)
	// Actuator may return nil for a passive body.
	Actuator() motors.Actuator
}

type Config struct {
	Duration float64
	// RecordEvery keeps one sample every n steps. Zero records nothing but
	// the first and last sample.
	RecordEvery int
	Seed        uint64
}

// Sample is the state of a body at one recorded step.
type Sample struct {
	Step    int            `json:"step"`
	T       float64        `json:"t"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Sensors dynamo.State   `json:"sensors,omitempty"`
	Control dynamo.Control `json:"control,omitempty"`
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
}

// Centers returns the recorded body center trajectory.
func (r *Result) Centers() (xs, ys []float64) {
	xs = make([]float64, len(r.Samples))
	ys = make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		xs[i], ys[i] = s.X, s.Y
	}
	return xs, ys
}

func (r *Result) Times() []float64 {
	ts := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		ts[i] = s.T
	}
	return ts
}
