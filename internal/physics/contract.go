package physics

import "github.com/san-kum/springs/internal/sensors"

type Node interface {
	X() float64
	Y() float64
	VX() float64
	VY() float64
	SetVelocity(vx, vy float64)
	Mass() float64
	SetMass(m float64)
	Fixed() bool
	Friction() float64
	// Colliding reports whether a collision was detected during the last step.
	Colliding() bool
	// Translate moves the node without touching its velocity.
	Translate(dx, dy float64)
}

type Link interface {
	NodeA() Node
	NodeB() Node

	RelaxLength() float64
	SetRelaxLength(l float64)
	Stiffness() float64
	SetStiffness(k float64)
	DampingRatio() float64
	SetDampingRatio(zeta float64)

	Actuated() bool
	ExpandFactor() float64
	// Contract sets the expand factor: the link targets RelaxLength()*f.
	Contract(f float64)
	// Relax resets the expand factor to 1.
	Relax()

	// Length is the current distance between the two nodes.
	Length() float64
}

// Entity is anything updated once per step after the sensors.
type Entity interface {
	Update(t float64)
}

// UpdateFunc runs at the start of every step, before integration.
type UpdateFunc func(s Space)

type Space interface {
	Dt() float64
	T() float64
	Ticks() int

	AddNode(x, y float64, m NodeMaterial) Node
	AddLink(a, b Node, m LinkMaterial) (Link, error)
	AddRect(r Rect) error
	AddTriangle(t *Triangle)

	AddTouchSensor(nodes ...Node) *sensors.Touch
	AddAngleSensor(origin, satellite Node, ref *sensors.Angle) *sensors.Angle
	AddAngularVelocitySensor(angle *sensors.Angle) *sensors.AngularVelocity
	SensorValues() []float64

	AddEntity(e Entity)
	AddUpdateFunc(fn UpdateFunc)

	// Step advances the space by Dt. It fails only when the state is no
	// longer finite.
	Step() error

	Nodes() []Node
	Links() []Link
}

// Bodies converts nodes for the sensor layer.
func Bodies(nodes []Node) []sensors.Body {
	bodies := make([]sensors.Body, len(nodes))
	for i, n := range nodes {
		bodies[i] = n
	}
	return bodies
}
