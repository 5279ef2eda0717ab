package integrators

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springs/internal/dynamo"
)

// Dormand-Prince 5(4) tableau
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// fifth minus fourth order weights
	dpE = [7]float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

// RK45 advances by exactly dt per Step, splitting it into embedded
// Dormand-Prince steps small enough to meet Tol. The last accepted step size
// carries over to the next call.
type RK45 struct {
	Tol float64
	// MinFraction is the smallest internal step as a fraction of dt. Steps
	// this small are accepted whatever their error.
	MinFraction float64

	safety   float64
	minScale float64
	maxScale float64

	h   float64
	k   [7]dynamo.State
	tmp dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		Tol:         1e-6,
		MinFraction: 1.0 / 1024,
		safety:      0.9,
		minScale:    0.2,
		maxScale:    10.0,
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	cur := x.Clone()
	remaining := dt
	h := dt
	if r.h > 0 && r.h < dt {
		h = r.h
	}
	minH := dt * r.MinFraction

	for remaining > dt*1e-12 {
		h = math.Min(h, remaining)
		next, hNew, ratio := r.StepAdaptive(dyn, cur, u, t, h, r.Tol)
		if ratio <= 1 || h <= minH {
			cur = next
			t += h
			remaining -= h
		}
		h = math.Max(math.Min(hNew, dt), minH)
		r.h = h
	}
	return cur
}

// StepAdaptive takes one Dormand-Prince step of size dt. It returns the fifth
// order solution, a suggested next step size and the error relative to tol;
// a ratio above 1 means the step should be retried with the suggested size.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, float64) {
	n := len(x)
	r.tmp = resize(r.tmp, n)

	r.k[0] = keep(r.k[0], dyn.Derive(x, u, t))
	for s := 1; s < 7; s++ {
		copy(r.tmp, x)
		for j := 0; j < s; j++ {
			if a := dpA[s][j]; a != 0 {
				floats.AddScaled(r.tmp, dt*a, r.k[j])
			}
		}
		if s == 6 {
			break
		}
		r.k[s] = keep(r.k[s], dyn.Derive(r.tmp, u, t+dpC[s]*dt))
	}
	out := r.tmp.Clone()
	r.k[6] = keep(r.k[6], dyn.Derive(out, u, t+dt))

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := 0.0
		for s := 0; s < 7; s++ {
			est += dpE[s] * r.k[s][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*r.k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(dt*est)/scale)
	}
	ratio := errMax / tol

	var factor float64
	switch {
	case ratio > 1:
		factor = math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
	case ratio > 0:
		factor = math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
	default:
		factor = r.maxScale
	}
	return out, dt * factor, ratio
}
