package integrated

import (
	"math"

	"github.com/san-kum/springs/internal/physics"
)

type Node struct {
	x, y      float64
	vx, vy    float64
	mass      float64
	invMass   float64
	friction  float64
	fixed     bool
	colliding bool
}

func (n *Node) X() float64  { return n.x }
func (n *Node) Y() float64  { return n.y }
func (n *Node) VX() float64 { return n.vx }
func (n *Node) VY() float64 { return n.vy }

func (n *Node) SetVelocity(vx, vy float64) {
	n.vx, n.vy = vx, vy
}

func (n *Node) Mass() float64 { return n.mass }

func (n *Node) SetMass(m float64) {
	n.mass = m
	if n.fixed || m <= 0 {
		n.invMass = 0
	} else {
		n.invMass = 1 / m
	}
}

func (n *Node) Fixed() bool       { return n.fixed }
func (n *Node) Friction() float64 { return n.friction }
func (n *Node) Colliding() bool   { return n.colliding }

func (n *Node) Translate(dx, dy float64) {
	n.x += dx
	n.y += dy
}

type Link struct {
	a, b         *Node
	actuated     bool
	expandFactor float64
	relaxLength  float64
	stiffness    float64
	dampingRatio float64
}

func (l *Link) NodeA() physics.Node { return l.a }
func (l *Link) NodeB() physics.Node { return l.b }

func (l *Link) RelaxLength() float64          { return l.relaxLength }
func (l *Link) SetRelaxLength(length float64) { l.relaxLength = length }
func (l *Link) Stiffness() float64            { return l.stiffness }
func (l *Link) SetStiffness(k float64)        { l.stiffness = k }
func (l *Link) DampingRatio() float64         { return l.dampingRatio }
func (l *Link) SetDampingRatio(zeta float64)  { l.dampingRatio = zeta }
func (l *Link) Actuated() bool                { return l.actuated }
func (l *Link) ExpandFactor() float64         { return l.expandFactor }
func (l *Link) Contract(f float64)            { l.expandFactor = f }
func (l *Link) Relax()                        { l.expandFactor = 1 }

func (l *Link) Length() float64 {
	return math.Hypot(l.b.x-l.a.x, l.b.y-l.a.y)
}

// damping is the viscous coefficient giving the link its damping ratio for
// the reduced mass of its two nodes.
func (l *Link) damping() float64 {
	inv := l.a.invMass + l.b.invMass
	if inv == 0 {
		return 0
	}
	omega := math.Sqrt(l.stiffness * inv)
	return 2 * l.dampingRatio * omega / inv
}
