package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
)

// Simulator steps a space, feeding the space's sensor vector to a controller
// and the controller's output to the body's muscles.
type Simulator struct {
	space      physics.Space
	body       Body
	controller dynamo.Controller
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(space physics.Space, body Body, controller dynamo.Controller) *Simulator {
	return &Simulator{
		space:      space,
		body:       body,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// errorer is implemented by bodies whose own controllers may fail.
type errorer interface {
	Err() error
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/s.space.Dt() + 0.5)
	result := &Result{
		Samples: make([]Sample, 0, s.capacity(steps, cfg.RecordEvery)),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	actuator := s.body.Actuator()
	var u dynamo.Control
	var last Sample

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, last)
			return result, ctx.Err()
		default:
		}

		t := s.space.T()
		obs := dynamo.State(s.space.SensorValues())
		if s.controller != nil {
			u = s.controller.Compute(obs, t)
		}
		if actuator != nil && len(u) > 0 {
			if err := actuator.Actuate(u); err != nil {
				return result, dynamo.SimError{Time: t, Step: i, Wrapped: fmt.Errorf("actuate: %w", err)}
			}
		}

		cx, cy := s.body.CenterXY()
		center := dynamo.State{cx, cy}
		for _, m := range s.metrics {
			m.Observe(center, u, t)
		}
		for _, o := range s.observers {
			o.OnStep(center, u, t)
		}

		last = Sample{Step: i, T: t, X: cx, Y: cy, Sensors: obs, Control: u}
		if i == 0 || (cfg.RecordEvery > 0 && i%cfg.RecordEvery == 0) {
			result.Samples = append(result.Samples, last)
		}

		if err := s.space.Step(); err != nil {
			s.finish(result, last)
			return result, err
		}
		if b, ok := s.body.(errorer); ok && b.Err() != nil {
			s.finish(result, last)
			return result, dynamo.SimError{Time: s.space.T(), Step: i, Wrapped: b.Err()}
		}
		result.StepsTaken++
	}

	cx, cy := s.body.CenterXY()
	final := Sample{
		Step:    steps,
		T:       s.space.T(),
		X:       cx,
		Y:       cy,
		Sensors: dynamo.State(s.space.SensorValues()),
		Control: u,
	}
	for _, m := range s.metrics {
		m.Observe(dynamo.State{cx, cy}, u, final.T)
	}
	s.finish(result, final)

	slog.Debug("simulation finished", "steps", result.StepsTaken, "t", s.space.T(), "samples", len(result.Samples))
	return result, nil
}

// finish appends the last sample unless already recorded and collects the
// metric values.
func (s *Simulator) finish(result *Result, last Sample) {
	if n := len(result.Samples); n > 0 && result.Samples[n-1].Step != last.Step {
		result.Samples = append(result.Samples, last)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) capacity(steps, every int) int {
	if every <= 0 {
		return 2
	}
	return steps/every + 2
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record_every must not be negative, got %d", cfg.RecordEvery)
	}
	if s.body == nil {
		return fmt.Errorf("simulator without a body: %w", dynamo.ErrConstruction)
	}
	return nil
}
