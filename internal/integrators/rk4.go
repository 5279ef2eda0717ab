package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springs/internal/dynamo"
)

// RK4 is the classic fourth order Runge-Kutta scheme. Stage buffers are kept
// between calls, so an RK4 must not be shared between goroutines.
type RK4 struct {
	k   [4]dynamo.State
	tmp dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.tmp = resize(r.tmp, len(x))

	r.k[0] = keep(r.k[0], dyn.Derive(x, u, t))
	floats.AddScaledTo(r.tmp, x, dt/2, r.k[0])
	r.k[1] = keep(r.k[1], dyn.Derive(r.tmp, u, t+dt/2))
	floats.AddScaledTo(r.tmp, x, dt/2, r.k[1])
	r.k[2] = keep(r.k[2], dyn.Derive(r.tmp, u, t+dt/2))
	floats.AddScaledTo(r.tmp, x, dt, r.k[2])
	r.k[3] = keep(r.k[3], dyn.Derive(r.tmp, u, t+dt))

	out := x.Clone()
	floats.AddScaled(out, dt/6, r.k[0])
	floats.AddScaled(out, dt/3, r.k[1])
	floats.AddScaled(out, dt/3, r.k[2])
	floats.AddScaled(out, dt/6, r.k[3])
	return out
}
