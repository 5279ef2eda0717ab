package impulse

import "math"

// maxTranslation bounds how far a node may move in one step.
const maxTranslation = 2.0

type Node struct {
	dt        float64
	x, y      float64
	vx, vy    float64
	mass      float64
	invMass   float64
	friction  float64
	fixed     bool
	colliding bool

	// links refresh their precomputed terms when the mass changes
	links []*Link
}

func newNode(dt, x, y, mass, friction float64, fixed bool) *Node {
	n := &Node{dt: dt, x: x, y: y, friction: friction, fixed: fixed}
	n.SetMass(mass)
	return n
}

func (n *Node) X() float64  { return n.x }
func (n *Node) Y() float64  { return n.y }
func (n *Node) VX() float64 { return n.vx }
func (n *Node) VY() float64 { return n.vy }

func (n *Node) SetVelocity(vx, vy float64) {
	n.vx, n.vy = vx, vy
}

func (n *Node) Mass() float64     { return n.mass }
func (n *Node) InvMass() float64  { return n.invMass }
func (n *Node) Fixed() bool       { return n.fixed }
func (n *Node) Friction() float64 { return n.friction }
func (n *Node) Colliding() bool   { return n.colliding }

func (n *Node) SetMass(m float64) {
	n.mass = m
	if n.fixed || m <= 0 {
		n.invMass = 0
	} else {
		n.invMass = 1 / m
	}
	for _, l := range n.links {
		l.refresh()
	}
}

func (n *Node) SetFixed(fixed bool) {
	n.fixed = fixed
	n.SetMass(n.mass)
}

func (n *Node) Translate(dx, dy float64) {
	n.x += dx
	n.y += dy
}

func (n *Node) updatePosition() {
	if n.fixed {
		n.vx, n.vy = 0, 0
		return
	}
	sq := n.dt * n.dt * (n.vx*n.vx + n.vy*n.vy)
	if sq > maxTranslation*maxTranslation {
		scale := maxTranslation / math.Sqrt(sq)
		n.vx *= scale
		n.vy *= scale
	}
	n.x += n.dt * n.vx
	n.y += n.dt * n.vy
}
