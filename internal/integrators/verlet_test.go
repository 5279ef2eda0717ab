package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/springs/internal/dynamo"
)

// twoOscillators is a pair of unit oscillators laid out as [x0 x1 v0 v1].
type twoOscillators struct{}

func (twoOscillators) StateDim() int   { return 4 }
func (twoOscillators) ControlDim() int { return 0 }
func (twoOscillators) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	return dynamo.State{x[2], x[3], -x[0], -x[1]}
}

func energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1] + x[2]*x[2] + x[3]*x[3])
}

func TestSymplecticEnergyBounded(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
	}{
		{"verlet", NewVerlet()},
		{"leapfrog", NewLeapfrog()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := dynamo.State{1, 0, 0, 0.5}
			e0 := energy(x)
			dt := 0.05
			for i := 0; i < 10000; i++ {
				x = tt.integ.Step(twoOscillators{}, x, nil, float64(i)*dt, dt)
			}
			if drift := math.Abs(energy(x)-e0) / e0; drift > 1e-2 {
				t.Errorf("energy drift %e", drift)
			}
		})
	}
}

func TestEulerSingleStep(t *testing.T) {
	x := dynamo.State{1, 2, 3, 4}
	got := NewEuler().Step(twoOscillators{}, x, nil, 0, 0.5)
	want := dynamo.State{2.5, 4, 2.5, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("x[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if x[0] != 1 {
		t.Error("input modified")
	}
}
