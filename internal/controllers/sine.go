package controllers

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/springs/internal/dynamo"
)

// Sine drives each muscle group with its own sine wave. Speeds are drawn once,
// uniformly in [min, max], from a seeded generator.
type Sine struct {
	Amplitude  float64
	SpeedScale float64
	speeds     []float64
}

func NewSine(dim int, minSpeed, maxSpeed, amplitude float64, seed uint64) *Sine {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	speeds := make([]float64, dim)
	for i := range speeds {
		speeds[i] = minSpeed + (maxSpeed-minSpeed)*rng.Float64()
	}
	return &Sine{Amplitude: amplitude, SpeedScale: 1, speeds: speeds}
}

// NewSineSpeeds uses the given speeds as is.
func NewSineSpeeds(speeds []float64, amplitude float64) *Sine {
	return &Sine{Amplitude: amplitude, SpeedScale: 1, speeds: append([]float64(nil), speeds...)}
}

func (s *Sine) Speeds() []float64 { return s.speeds }

func (s *Sine) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, len(s.speeds))
	for i, w := range s.speeds {
		u[i] = s.Amplitude * math.Sin(s.SpeedScale*w*t)
	}
	return u
}

func (s *Sine) GetParams() map[string]float64 {
	return map[string]float64{
		"amplitude":   s.Amplitude,
		"speed_scale": s.SpeedScale,
	}
}

func (s *Sine) SetParam(name string, value float64) error {
	switch name {
	case "amplitude":
		s.Amplitude = value
	case "speed_scale":
		s.SpeedScale = value
	default:
		return fmt.Errorf("sine parameter %q: %w", name, dynamo.ErrUnsupported)
	}
	return nil
}
