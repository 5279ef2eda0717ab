package integrated

import (
	"math"

	"github.com/san-kum/springs/internal/dynamo"
)

// system is the node and link network seen as a dynamo.System.
type system struct {
	nodes    []*Node
	links    []*Link
	index    map[*Node]int
	gravityX float64
	gravityY float64
}

func (s *system) StateDim() int   { return 4 * len(s.nodes) }
func (s *system) ControlDim() int { return 0 }

func (s *system) pack() dynamo.State {
	n := len(s.nodes)
	x := make(dynamo.State, 4*n)
	for i, node := range s.nodes {
		x[2*i], x[2*i+1] = node.x, node.y
		x[2*n+2*i], x[2*n+2*i+1] = node.vx, node.vy
	}
	return x
}

func (s *system) unpack(x dynamo.State) {
	n := len(s.nodes)
	for i, node := range s.nodes {
		if node.fixed {
			node.vx, node.vy = 0, 0
			continue
		}
		node.x, node.y = x[2*i], x[2*i+1]
		node.vx, node.vy = x[2*n+2*i], x[2*n+2*i+1]
	}
}

func (s *system) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	n := len(s.nodes)
	dx := make(dynamo.State, 4*n)

	// position derivatives, and gravity
	for i, node := range s.nodes {
		if node.fixed {
			continue
		}
		dx[2*i], dx[2*i+1] = x[2*n+2*i], x[2*n+2*i+1]
		dx[2*n+2*i] = s.gravityX
		dx[2*n+2*i+1] = s.gravityY
	}

	for _, l := range s.links {
		i, j := s.index[l.a], s.index[l.b]
		ex, ey := x[2*j]-x[2*i], x[2*j+1]-x[2*i+1]
		d := math.Hypot(ex, ey)
		if d == 0 {
			continue
		}
		ux, uy := ex/d, ey/d
		vr := ux*(x[2*n+2*j]-x[2*n+2*i]) + uy*(x[2*n+2*j+1]-x[2*n+2*i+1])

		// positive pulls the nodes together
		f := l.stiffness*(d-l.expandFactor*l.relaxLength) + l.damping()*vr

		dx[2*n+2*i] += f * ux * l.a.invMass
		dx[2*n+2*i+1] += f * uy * l.a.invMass
		dx[2*n+2*j] -= f * ux * l.b.invMass
		dx[2*n+2*j+1] -= f * uy * l.b.invMass
	}
	return dx
}
