package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springs/internal/backend"
	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/motors"
)

const (
	DefaultDt           = 0.005
	DefaultDuration     = 10.0
	DefaultSubsteps     = 5
	DefaultGravityY     = -100.0
	DefaultRecordEvery  = 20
	DefaultArms         = 5
	DefaultSections     = 8
	DefaultHeight       = 40.0
	DefaultWidth        = 30.0
	DefaultCenterRadius = 30.0
	DefaultMuscleGroups = 2
	DefaultNodeMass     = 0.1
	DefaultAmplitude    = 0.1
)

type Config struct {
	Creature    string  `yaml:"creature"`
	Engine      string  `yaml:"engine"`
	Integrator  string  `yaml:"integrator"`
	Controller  string  `yaml:"controller"`
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	Substeps    int     `yaml:"substeps"`
	Seed        uint64  `yaml:"seed"`
	RecordEvery int     `yaml:"record_every"`

	World            WorldConfig             `yaml:"world"`
	Body             BodyConfig              `yaml:"body"`
	Squares          SquaresConfig           `yaml:"squares"`
	Materials        creatures.Materials     `yaml:"materials,omitempty"`
	Sensors          *creatures.SensorConfig `yaml:"sensors,omitempty"`
	ControllerParams ControllerConfig        `yaml:"controller_params"`
}

type WorldConfig struct {
	GravityX             float64 `yaml:"gravity_x"`
	GravityY             float64 `yaml:"gravity_y"`
	RestitutionThreshold float64 `yaml:"restitution_threshold"`
	Floor                bool    `yaml:"floor"`
	// FloorY is the top of the floor.
	FloorY           float64 `yaml:"floor_y"`
	FloorRestitution float64 `yaml:"floor_restitution"`
}

type BodyConfig struct {
	Arms     int     `yaml:"arms"`
	Sections int     `yaml:"sections"`
	Height   float64 `yaml:"height"`
	Width    float64 `yaml:"width"`
	Tip      bool    `yaml:"tip"`
	// ArmDims replaces Arms, Sections, Height, Width and Tip when set.
	ArmDims [][]creatures.Dim `yaml:"arm_dims,omitempty"`

	CenterX      float64 `yaml:"center_x"`
	CenterY      float64 `yaml:"center_y"`
	CenterRadius float64 `yaml:"center_radius"`
	Section      string  `yaml:"section"`
	MuscleGroups int     `yaml:"muscle_groups"`
	Muscle       string  `yaml:"muscle"`
	// NodeMass overrides the mass of every node material when positive.
	NodeMass float64              `yaml:"node_mass"`
	Dev      creatures.DevFactors `yaml:"dev,omitempty"`
}

type SquaresConfig struct {
	Rows      int     `yaml:"rows"`
	Cols      int     `yaml:"cols"`
	Size      float64 `yaml:"size"`
	Stiffness float64 `yaml:"stiffness"`

	Options creatures.SquaresOptions `yaml:"options"`
}

type ControllerConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	MinSpeed  float64 `yaml:"min_speed"`
	MaxSpeed  float64 `yaml:"max_speed"`
	Hidden    []int   `yaml:"hidden,omitempty"`
	Scale     float64 `yaml:"scale"`

	Growth GrowthConfig `yaml:"growth"`
}

type GrowthConfig struct {
	Enabled bool    `yaml:"enabled"`
	Birth   float64 `yaml:"birth"`
	Rate    float64 `yaml:"rate"`
	Delay   float64 `yaml:"delay"`
}

func DefaultConfig() *Config {
	return &Config{
		Creature:    "starfish",
		Engine:      backend.Impulse,
		Integrator:  "rk4",
		Controller:  "sine",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Substeps:    DefaultSubsteps,
		RecordEvery: DefaultRecordEvery,
		World: WorldConfig{
			GravityY:             DefaultGravityY,
			RestitutionThreshold: 1,
			Floor:                true,
			FloorY:               100,
			FloorRestitution:     0.5,
		},
		Body: BodyConfig{
			Arms:         DefaultArms,
			Sections:     DefaultSections,
			Height:       DefaultHeight,
			Width:        DefaultWidth,
			Tip:          true,
			CenterY:      500,
			CenterRadius: DefaultCenterRadius,
			Section:      creatures.Standard{}.Name(),
			MuscleGroups: DefaultMuscleGroups,
			Muscle:       motors.KindSectionOne,
			NodeMass:     DefaultNodeMass,
		},
		Squares: SquaresConfig{
			Rows:      4,
			Cols:      2,
			Size:      10,
			Stiffness: 0.5,
			Options:   creatures.DefaultSquaresOptions(),
		},
		ControllerParams: ControllerConfig{
			Amplitude: DefaultAmplitude,
			MinSpeed:  -1,
			MaxSpeed:  1,
			Hidden:    []int{16},
			Scale:     1,
			Growth: GrowthConfig{
				Birth: 1,
				Rate:  0.005,
			},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every value that does not need a registry lookup.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrConstruction)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", c.Duration, dynamo.ErrConstruction)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("substeps must be at least 1, got %d: %w", c.Substeps, dynamo.ErrConstruction)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("record_every must not be negative, got %d: %w", c.RecordEvery, dynamo.ErrConstruction)
	}
	if !contains(backend.Names(), c.Engine) {
		return fmt.Errorf("engine %q: %w", c.Engine, dynamo.ErrUnsupported)
	}
	if _, err := creatures.SectionKindFor(c.Body.Section); err != nil {
		return err
	}
	if _, err := motors.FactoryFor(c.Body.Muscle); err != nil {
		return err
	}
	if err := c.Materials.Validate(); err != nil {
		return err
	}
	if c.Sensors != nil {
		if err := c.Sensors.Validate(); err != nil {
			return err
		}
	}
	if c.World.Floor && !(c.World.FloorRestitution >= 0) {
		return fmt.Errorf("floor restitution %v: %w", c.World.FloorRestitution, dynamo.ErrConstruction)
	}
	return nil
}

// ArmDims returns the explicit arm dimensions or builds them from the
// uniform arm description.
func (c *Config) ArmDims() [][]creatures.Dim {
	if len(c.Body.ArmDims) > 0 {
		return c.Body.ArmDims
	}
	arms := make([][]creatures.Dim, c.Body.Arms)
	for i := range arms {
		for j := 0; j < c.Body.Sections; j++ {
			arms[i] = append(arms[i], creatures.Dim{Height: c.Body.Height, Width: c.Body.Width})
		}
		if c.Body.Tip {
			arms[i] = append(arms[i], creatures.Dim{Height: c.Body.Height})
		}
	}
	return arms
}

// BodyMaterials merges the configured materials onto the defaults and applies
// NodeMass.
func (c *Config) BodyMaterials() creatures.Materials {
	m := creatures.DefaultMaterials().Merge(c.Materials)
	if c.Body.NodeMass > 0 {
		for role, n := range m.Nodes {
			n.Mass = c.Body.NodeMass
			m.Nodes[role] = n
		}
	}
	return m
}

func (c *Config) GetControllerParams(controlDim, sensorDim int) map[string]float64 {
	return map[string]float64{
		"dim":       float64(controlDim),
		"inputs":    float64(sensorDim),
		"amplitude": c.ControllerParams.Amplitude,
		"min_speed": c.ControllerParams.MinSpeed,
		"max_speed": c.ControllerParams.MaxSpeed,
		"scale":     c.ControllerParams.Scale,
		"seed":      float64(c.Seed),
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
