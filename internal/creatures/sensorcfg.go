package creatures

import (
	"fmt"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
	"github.com/san-kum/springs/internal/sensors"
)

const (
	TouchMuscleGroupSides = "muscle_group_sides"
	TouchAllNodes         = "all_nodes"
	AngleMuscleGroup      = "muscle_group"
	AngleAllNodes         = "all_nodes"
)

// SensorConfig selects the sensors a starfish registers on its space.
// Empty strings disable a sensor family.
type SensorConfig struct {
	Touch       string `yaml:"touch" json:"touch"`
	CenterAngle bool   `yaml:"center_angle" json:"center_angle"`
	// Angle forces CenterAngle on.
	Angle           string  `yaml:"angle" json:"angle"`
	AngularVelocity bool    `yaml:"angular_velocity" json:"angular_velocity"`
	Smoothing       float64 `yaml:"smoothing,omitempty" json:"smoothing,omitempty"`
}

// DefaultSensorConfig has side touch sensors and chained angle sensors with
// their angular velocities.
func DefaultSensorConfig() SensorConfig {
	return SensorConfig{
		Touch:           TouchMuscleGroupSides,
		CenterAngle:     true,
		Angle:           AngleMuscleGroup,
		AngularVelocity: true,
	}
}

func (c SensorConfig) Validate() error {
	switch c.Touch {
	case "", TouchMuscleGroupSides, TouchAllNodes:
	default:
		return fmt.Errorf("touch sensors %q: %w", c.Touch, dynamo.ErrUnsupported)
	}
	switch c.Angle {
	case "", AngleMuscleGroup:
	case AngleAllNodes:
		return fmt.Errorf("angle sensors %q not implemented: %w", c.Angle, dynamo.ErrUnsupported)
	default:
		return fmt.Errorf("angle sensors %q: %w", c.Angle, dynamo.ErrUnsupported)
	}
	if c.Smoothing < 0 || c.Smoothing >= 1 {
		return fmt.Errorf("angular velocity smoothing %v outside [0, 1): %w", c.Smoothing, dynamo.ErrConstruction)
	}
	return nil
}

func (s *Starfish) createSensors(cfg SensorConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if s.needsGroups(cfg) && s.muscleInterface == nil {
		return fmt.Errorf("muscle group sensors without muscle groups: %w", dynamo.ErrUnsupported)
	}

	switch cfg.Touch {
	case TouchMuscleGroupSides:
		for _, t := range s.tentacles {
			var left, right []physics.Node
			for _, group := range t.SectionGroups() {
				for _, section := range group {
					left = append(left, section.Node("top_left"))
					right = append(right, section.Node("top_right"))
				}
			}
			s.addSensor(s.space.AddTouchSensor(left...))
			s.addSensor(s.space.AddTouchSensor(right...))
		}
	case TouchAllNodes:
		for _, n := range s.nodes {
			s.addSensor(s.space.AddTouchSensor(n))
		}
	}

	if cfg.Angle != "" {
		cfg.CenterAngle = true
	}
	if !cfg.CenterAngle {
		return nil
	}

	center := s.space.AddAngleSensor(s.center[0], s.center[len(s.center)/2], nil)
	s.addSensor(center)
	s.addVelocity(center, cfg)

	if cfg.Angle == AngleMuscleGroup {
		for _, t := range s.tentacles {
			prev := center
			for _, group := range t.SectionGroups() {
				last := group[len(group)-1]
				prev = s.space.AddAngleSensor(last.Node("base_left"), last.Node("top_left"), prev)
				s.addSensor(prev)
				s.addVelocity(prev, cfg)
			}
		}
	}
	return nil
}

func (s *Starfish) needsGroups(cfg SensorConfig) bool {
	return cfg.Touch == TouchMuscleGroupSides || cfg.Angle == AngleMuscleGroup
}

func (s *Starfish) addVelocity(a *sensors.Angle, cfg SensorConfig) {
	if !cfg.AngularVelocity {
		return
	}
	v := s.space.AddAngularVelocitySensor(a)
	v.Smoothing = cfg.Smoothing
	s.addSensor(v)
}

func (s *Starfish) addSensor(sensor sensors.Sensor) {
	s.sensors = append(s.sensors, sensor)
}
