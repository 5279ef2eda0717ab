// Package backend selects a physics engine by name.
package backend

import (
	"fmt"
	"sort"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/impulse"
	"github.com/san-kum/springs/internal/integrated"
	"github.com/san-kum/springs/internal/physics"
)

const (
	Impulse    = "impulse"
	Integrated = "integrated"
)

type Config struct {
	Engine               string
	Dt                   float64
	Substeps             int
	GravityX             float64
	GravityY             float64
	RestitutionThreshold float64
	// Integrator is only used by the integrated engine.
	Integrator dynamo.Integrator
}

type factory func(Config) (physics.Space, error)

var engines = map[string]factory{
	Impulse: func(c Config) (physics.Space, error) {
		return impulse.New(impulse.Config{
			Dt:                   c.Dt,
			Substeps:             c.Substeps,
			GravityX:             c.GravityX,
			GravityY:             c.GravityY,
			RestitutionThreshold: c.RestitutionThreshold,
		})
	},
	Integrated: func(c Config) (physics.Space, error) {
		return integrated.New(integrated.Config{
			Dt:                   c.Dt,
			Substeps:             c.Substeps,
			GravityX:             c.GravityX,
			GravityY:             c.GravityY,
			RestitutionThreshold: c.RestitutionThreshold,
			Integrator:           c.Integrator,
		})
	},
}

func New(cfg Config) (physics.Space, error) {
	fn, ok := engines[cfg.Engine]
	if !ok {
		return nil, fmt.Errorf("engine %q: %w", cfg.Engine, dynamo.ErrUnsupported)
	}
	return fn(cfg)
}

func Names() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
