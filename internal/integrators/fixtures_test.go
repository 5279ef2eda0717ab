package integrators

import (
	"math"

	"github.com/san-kum/springs/internal/dynamo"
)

// tether is one node hanging from a fixed anchor at the origin by a
// spring-damper, in the integrated engine's layout: x, y, vx, vy.
type tether struct {
	mass, stiffness, damping, relax float64
	gravityY                        float64
}

func (tether) StateDim() int   { return 4 }
func (tether) ControlDim() int { return 0 }

func (s tether) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	dx := dynamo.State{x[2], x[3], 0, s.gravityY}
	d := math.Hypot(x[0], x[1])
	if d == 0 {
		return dx
	}
	ux, uy := x[0]/d, x[1]/d
	vr := ux*x[2] + uy*x[3]
	f := s.stiffness*(d-s.relax) + s.damping*vr
	dx[2] -= f * ux / s.mass
	dx[3] -= f * uy / s.mass
	return dx
}

func (s tether) omega() float64 { return math.Sqrt(s.stiffness / s.mass) }

// chain is n nodes joined in a line by identical springs, node 0 pinned.
type chain struct {
	n                 int
	stiffness, relax  float64
	damping, gravityY float64
}

func newChainState(n int, spacing float64) dynamo.State {
	x := make(dynamo.State, 4*n)
	for i := 0; i < n; i++ {
		x[2*i] = float64(i) * spacing
	}
	return x
}

func (c chain) StateDim() int   { return 4 * c.n }
func (c chain) ControlDim() int { return 0 }

func (c chain) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	n := c.n
	dx := make(dynamo.State, 4*n)
	for i := 1; i < n; i++ {
		dx[2*i], dx[2*i+1] = x[2*n+2*i], x[2*n+2*i+1]
		dx[2*n+2*i+1] = c.gravityY
	}
	for i := 0; i+1 < n; i++ {
		j := i + 1
		ex, ey := x[2*j]-x[2*i], x[2*j+1]-x[2*i+1]
		d := math.Hypot(ex, ey)
		if d == 0 {
			continue
		}
		ux, uy := ex/d, ey/d
		vr := ux*(x[2*n+2*j]-x[2*n+2*i]) + uy*(x[2*n+2*j+1]-x[2*n+2*i+1])
		f := c.stiffness*(d-c.relax) + c.damping*vr
		if i > 0 {
			dx[2*n+2*i] += f * ux
			dx[2*n+2*i+1] += f * uy
		}
		dx[2*n+2*j] -= f * ux
		dx[2*n+2*j+1] -= f * uy
	}
	return dx
}
