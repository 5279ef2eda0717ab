package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springs/internal/dynamo"
)

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	out := make(dynamo.State, len(x))
	floats.AddScaledTo(out, x, dt, dyn.Derive(x, u, t))
	return out
}

// resize returns b with length n, reusing its storage when it is large enough.
func resize(b dynamo.State, n int) dynamo.State {
	if cap(b) < n {
		return make(dynamo.State, n)
	}
	return b[:n]
}

// keep copies src into b.
func keep(b, src dynamo.State) dynamo.State {
	b = resize(b, len(src))
	copy(b, src)
	return b
}
