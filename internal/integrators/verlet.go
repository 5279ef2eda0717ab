package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springs/internal/dynamo"
)

// Verlet is velocity Verlet. Link damping sees the old velocities when the
// new accelerations are evaluated.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := len(x) / 2
	a0 := dyn.Derive(x, u, t)[half:]

	out := x.Clone()
	pos, vel := out[:half], out[half:]
	floats.AddScaled(pos, dt, x[half:])
	floats.AddScaled(pos, dt*dt/2, a0)

	a1 := dyn.Derive(out, u, t+dt)[half:]
	floats.AddScaled(vel, dt/2, a0)
	floats.AddScaled(vel, dt/2, a1)
	return out
}

// Leapfrog is the kick-drift-kick scheme.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := len(x) / 2

	out := x.Clone()
	pos, vel := out[:half], out[half:]
	floats.AddScaled(vel, dt/2, dyn.Derive(x, u, t)[half:])
	floats.AddScaled(pos, dt, vel)
	floats.AddScaled(vel, dt/2, dyn.Derive(out, u, t+dt)[half:])
	return out
}
