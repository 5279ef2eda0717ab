package physics

import "github.com/san-kum/springs/internal/sensors"

// Hooks is the bookkeeping every engine shares: sensors, entities and update
// functions. Engines embed it and call RunUpdates and AfterStep around their
// own integration.
type Hooks struct {
	hub      *sensors.Hub
	entities []Entity
	updates  []UpdateFunc
	dt       float64
}

func NewHooks(dt float64) *Hooks {
	return &Hooks{hub: sensors.NewHub(), dt: dt}
}

func (h *Hooks) Sensors() *sensors.Hub { return h.hub }

func (h *Hooks) AddTouchSensor(nodes ...Node) *sensors.Touch {
	s := sensors.NewTouch(Bodies(nodes)...)
	h.hub.Add(s)
	return s
}

func (h *Hooks) AddAngleSensor(origin, satellite Node, ref *sensors.Angle) *sensors.Angle {
	s := sensors.NewAngle(origin, satellite, ref)
	h.hub.Add(s)
	return s
}

func (h *Hooks) AddAngularVelocitySensor(angle *sensors.Angle) *sensors.AngularVelocity {
	s := sensors.NewAngularVelocity(angle, h.dt)
	h.hub.Add(s)
	return s
}

func (h *Hooks) SensorValues() []float64 {
	return h.hub.Values()
}

func (h *Hooks) AddEntity(e Entity) {
	h.entities = append(h.entities, e)
}

func (h *Hooks) AddUpdateFunc(fn UpdateFunc) {
	h.updates = append(h.updates, fn)
}

func (h *Hooks) RunUpdates(s Space) {
	for _, fn := range h.updates {
		fn(s)
	}
}

// AfterStep updates the sensors, then the entities.
func (h *Hooks) AfterStep(t float64) {
	h.hub.Update()
	for _, e := range h.entities {
		e.Update(t)
	}
}
