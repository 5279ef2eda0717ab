package impulse

import (
	"math"

	"github.com/san-kum/springs/internal/physics"
)

type Link struct {
	a, b   *Node
	kind   physics.LinkType
	dt     float64
	active bool

	actuated     bool
	expandFactor float64
	relaxLength  float64

	stiffness    float64
	dampingRatio float64

	// unit vector from a to b, refreshed in prestep
	ux, uy float64

	mass, invMass float64
	damping       float64
	gamma, bias   float64
	impulse       float64
	vSubstep      float64
}

func newLink(dt float64, a, b *Node, m physics.LinkMaterial) *Link {
	l := &Link{
		a:            a,
		b:            b,
		kind:         m.Kind(),
		dt:           dt,
		actuated:     m.Actuated,
		expandFactor: 1,
		stiffness:    m.Stiffness,
		dampingRatio: m.DampingRatio,
	}
	a.links = append(a.links, l)
	b.links = append(b.links, l)

	l.relaxLength = l.distance()
	l.refresh()
	return l
}

func (l *Link) NodeA() physics.Node { return l.a }
func (l *Link) NodeB() physics.Node { return l.b }

func (l *Link) RelaxLength() float64 { return l.relaxLength }

func (l *Link) SetRelaxLength(length float64) {
	l.relaxLength = length
}

func (l *Link) Stiffness() float64 { return l.stiffness }

func (l *Link) SetStiffness(k float64) {
	l.stiffness = k
	l.refresh()
}

func (l *Link) DampingRatio() float64 { return l.dampingRatio }

func (l *Link) SetDampingRatio(zeta float64) {
	l.dampingRatio = zeta
	l.refresh()
}

func (l *Link) Actuated() bool        { return l.actuated }
func (l *Link) ExpandFactor() float64 { return l.expandFactor }
func (l *Link) Contract(f float64)    { l.expandFactor = f }
func (l *Link) Relax()                { l.expandFactor = 1 }

func (l *Link) Length() float64 {
	return math.Hypot(l.b.x-l.a.x, l.b.y-l.a.y)
}

// refresh recomputes the terms that depend on masses, stiffness and damping.
func (l *Link) refresh() {
	inv := l.a.invMass + l.b.invMass
	l.active = inv > 0
	l.impulse = 0
	if !l.active {
		return
	}
	mass := 1 / inv
	omega := math.Sqrt(l.stiffness * inv)
	l.damping = 2 * mass * l.dampingRatio * omega

	if l.kind == physics.LinkTypeSpring {
		l.invMass, l.mass = inv, mass
		return
	}

	denom := l.dt * (l.damping + l.dt*l.stiffness)
	if denom == 0 {
		// no stiffness and no damping: the constraint does nothing
		l.active = false
		return
	}
	l.gamma = 1 / denom
	l.invMass = inv + l.gamma
	l.mass = 1 / l.invMass
}

func (l *Link) distance() float64 {
	dx, dy := l.b.x-l.a.x, l.b.y-l.a.y
	d := math.Hypot(dx, dy)
	if d > 0 {
		l.ux, l.uy = dx/d, dy/d
	}
	return d
}

func (l *Link) relativeVelocity() float64 {
	return l.ux*(l.b.vx-l.a.vx) + l.uy*(l.b.vy-l.a.vy)
}

func (l *Link) apply(impulse float64) {
	if impulse == 0 {
		return
	}
	px, py := impulse*l.ux, impulse*l.uy
	if !l.a.fixed {
		l.a.vx -= px * l.a.invMass
		l.a.vy -= py * l.a.invMass
	}
	if !l.b.fixed {
		l.b.vx += px * l.b.invMass
		l.b.vy += py * l.b.invMass
	}
}

func (l *Link) prestep() {
	if !l.active {
		return
	}
	d := l.distance()
	if d == 0 {
		return
	}

	if l.kind == physics.LinkTypeSpring {
		l.vSubstep = 0
		l.bias = (l.expandFactor*l.relaxLength - d) * l.stiffness * l.dt
		l.impulse = l.bias
		l.apply(l.impulse)
		return
	}

	l.bias = (d - l.expandFactor*l.relaxLength) * l.dt * l.stiffness * l.gamma
	// warm start
	l.apply(l.impulse)
}

func (l *Link) substep() {
	if !l.active {
		return
	}

	var impulse float64
	if l.kind == physics.LinkTypeSpring {
		vr := l.relativeVelocity()
		drag := l.dt * l.damping * (l.vSubstep - vr)
		l.vSubstep = vr + drag
		impulse = drag
	} else {
		impulse = -l.mass * (l.relativeVelocity() + l.bias + l.gamma*l.impulse)
	}
	l.impulse += impulse
	l.apply(impulse)
}
