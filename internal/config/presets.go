package config

import (
	"sort"

	"github.com/san-kum/springs/internal/backend"
	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/motors"
)

func preset(fn func(c *Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"starfish": {
		"walker": preset(func(c *Config) {}),
		"small": preset(func(c *Config) {
			c.Body.Arms, c.Body.Sections = 3, 4
			c.Duration = 5
		}),
		"central_bone": preset(func(c *Config) {
			c.Body.Section = creatures.CentralBone{}.Name()
			c.Body.Arms, c.Body.Sections = 4, 6
		}),
		"two_muscles": preset(func(c *Config) {
			c.Body.Muscle = motors.KindSectionTwo
			c.ControllerParams.Amplitude = 0.2
		}),
		"sensing": preset(func(c *Config) {
			c.Controller = "network"
			sensors := creatures.DefaultSensorConfig()
			c.Sensors = &sensors
		}),
		"integrated": preset(func(c *Config) {
			c.Engine = backend.Integrated
			c.Integrator = "rk4"
			c.Body.Arms, c.Body.Sections = 3, 3
			c.Dt = 0.001
			c.Duration = 2
		}),
	},
	"dev_starfish": {
		"growing": preset(func(c *Config) {
			c.Creature = "dev_starfish"
			c.Body.Dev.Height = []float64{0.5}
			c.ControllerParams.Growth = GrowthConfig{Enabled: true, Birth: 0.5, Rate: 0.01, Delay: 1}
			c.Duration = 60
		}),
	},
	"centipede": {
		"crawler": preset(func(c *Config) {
			c.Creature = "centipede"
			c.Body.Arms, c.Body.Sections = 6, 4
			c.Body.CenterRadius = 40
			c.Body.CenterX = -200
		}),
	},
	"squares": {
		"blob": preset(func(c *Config) {
			c.Creature = "squares"
			c.Squares.Options.OriginY = 100
		}),
		"long": preset(func(c *Config) {
			c.Creature = "squares"
			c.Squares.Rows, c.Squares.Cols = 8, 2
			c.Squares.Options.OriginY = 100
		}),
	},
}

// GetPreset returns a copy of a registered preset, or nil.
func GetPreset(creature, name string) *Config {
	creaturePresets, ok := Presets[creature]
	if !ok {
		return nil
	}
	cfg, ok := creaturePresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(creature string) []string {
	creaturePresets, ok := Presets[creature]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(creaturePresets))
	for name := range creaturePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListCreatures() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
