// Package sensors derives scalar observations from the mechanical state of a
// body: contact, segment angles and angular velocities.
//
// Sensors are registered in a Hub. The order of registration is the order of
// the flat vector returned by Hub.Values, which controllers consume as is.
package sensors

import "math"

// Body is the part of a mass point a sensor reads.
type Body interface {
	X() float64
	Y() float64
	Colliding() bool
}

type Sensor interface {
	// Update recomputes the sensor from the current state and returns the new value.
	Update() float64
	Value() float64
}

// Hub holds sensors in registration order.
type Hub struct {
	sensors []Sensor
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Add(s Sensor) {
	h.sensors = append(h.sensors, s)
}

func (h *Hub) Len() int {
	return len(h.sensors)
}

func (h *Hub) Sensors() []Sensor {
	return h.sensors
}

// Update refreshes every sensor, in registration order, so chained sensors
// see the current value of the sensor they reference.
func (h *Hub) Update() {
	for _, s := range h.sensors {
		s.Update()
	}
}

func (h *Hub) Values() []float64 {
	values := make([]float64, len(h.sensors))
	for i, s := range h.sensors {
		values[i] = s.Value()
	}
	return values
}

// Touch reads 1.0 while any of its nodes is in contact with a collider.
type Touch struct {
	nodes []Body
	value float64
}

func NewTouch(nodes ...Body) *Touch {
	t := &Touch{nodes: nodes}
	t.Update()
	return t
}

func (t *Touch) Update() float64 {
	t.value = 0
	for _, n := range t.nodes {
		if n.Colliding() {
			t.value = 1
			break
		}
	}
	return t.value
}

func (t *Touch) Value() float64 { return t.value }

func (t *Touch) Nodes() []Body { return t.nodes }

// Angle tracks the rotation of the segment from origin to satellite since the
// sensor was created. Counterclockwise is positive and the value is unwrapped,
// so it keeps growing past ±π. When chained to a reference sensor, the
// reference's current value is subtracted, which turns absolute segment
// rotations into joint angles along a limb.
type Angle struct {
	origin, satellite Body
	ref               *Angle

	initial  float64
	rotation float64
	value    float64
}

func NewAngle(origin, satellite Body, ref *Angle) *Angle {
	a := &Angle{origin: origin, satellite: satellite, ref: ref}
	a.initial = a.raw()
	if ref != nil {
		// a chained sensor reads zero on the geometry it was built on
		a.rotation = ref.Value()
		a.initial -= a.rotation
	}
	return a
}

func (a *Angle) raw() float64 {
	return math.Atan2(a.satellite.Y()-a.origin.Y(), a.satellite.X()-a.origin.X())
}

func (a *Angle) Update() float64 {
	rotation := a.raw() - a.initial
	rotation += math.Round((a.rotation-rotation)/(2*math.Pi)) * 2 * math.Pi
	a.rotation = rotation

	a.value = a.rotation
	if a.ref != nil {
		a.value -= a.ref.Value()
	}
	return a.value
}

func (a *Angle) Value() float64 { return a.value }

func (a *Angle) Ref() *Angle { return a.ref }

// AngularVelocity is the backward difference of an angle sensor over one step.
// Smoothing in [0, 1) blends in the previous reading; zero disables it.
type AngularVelocity struct {
	Smoothing float64

	angle    *Angle
	dt       float64
	previous float64
	value    float64
}

func NewAngularVelocity(angle *Angle, dt float64) *AngularVelocity {
	return &AngularVelocity{angle: angle, dt: dt, previous: angle.Value()}
}

func (v *AngularVelocity) Update() float64 {
	current := v.angle.Value()
	rate := (current - v.previous) / v.dt
	v.value = v.Smoothing*v.value + (1-v.Smoothing)*rate
	v.previous = current
	return v.value
}

func (v *AngularVelocity) Value() float64 { return v.value }
