package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/springs/internal/backend"
	"github.com/san-kum/springs/internal/config"
	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
	"github.com/san-kum/springs/internal/sim"
)

// Body is a built creature together with its concrete type.
type Body struct {
	sim.Body

	Starfish *creatures.Starfish
	Dev      *creatures.DevStarfish
	Squares  *creatures.FusedSquares
}

// Nodes returns every node of the body.
func (b *Body) Nodes() []physics.Node {
	switch {
	case b.Starfish != nil:
		return b.Starfish.Nodes()
	case b.Squares != nil:
		return b.Squares.Nodes()
	}
	return nil
}

// World is everything one run needs.
type World struct {
	Space      physics.Space
	Body       *Body
	Controller dynamo.Controller
}

// Build creates the space, the body and the controller described by cfg.
func (r *Registry) Build(cfg *config.Config) (*World, error) {
	if err := r.Validate(cfg); err != nil {
		return nil, err
	}

	bcfg := backend.Config{
		Engine:               cfg.Engine,
		Dt:                   cfg.Dt,
		Substeps:             cfg.Substeps,
		GravityX:             cfg.World.GravityX,
		GravityY:             cfg.World.GravityY,
		RestitutionThreshold: cfg.World.RestitutionThreshold,
	}
	if cfg.Engine == backend.Integrated {
		integ, err := r.GetIntegrator(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		bcfg.Integrator = integ
	}
	space, err := backend.New(bcfg)
	if err != nil {
		return nil, err
	}

	if cfg.World.Floor {
		floor := physics.Rect{
			XL:          -1e5,
			XR:          1e5,
			YB:          cfg.World.FloorY - 1e3,
			YT:          cfg.World.FloorY,
			Restitution: cfg.World.FloorRestitution,
		}
		if err := space.AddRect(floor); err != nil {
			return nil, err
		}
	}

	build, err := r.GetCreature(cfg.Creature)
	if err != nil {
		return nil, err
	}
	body, err := build(space, cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Creature, err)
	}

	dim := 0
	if a := body.Actuator(); a != nil {
		dim = a.Len()
	}
	params := cfg.GetControllerParams(dim, len(space.SensorValues()))
	ctrl, err := r.GetController(cfg.Controller, params, cfg)
	if err != nil {
		return nil, err
	}

	return &World{Space: space, Body: body, Controller: ctrl}, nil
}

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	world     *World
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: registry,
	}
}

// Setup builds the world and a simulator recording the default metrics.
func (e *Experiment) Setup() error {
	w, err := e.registry.Build(e.cfg)
	if err != nil {
		return err
	}
	e.world = w
	e.simulator = sim.New(w.Space, w.Body.Body, w.Controller)
	for _, m := range e.registry.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.simConfig())
}

func (e *Experiment) simConfig() sim.Config {
	return sim.Config{
		Duration:    e.cfg.Duration,
		RecordEvery: e.cfg.RecordEvery,
		Seed:        e.cfg.Seed,
	}
}

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) World() *World { return e.world }

// RunEnsemble runs n copies of cfg with seeds cfg.Seed, cfg.Seed+1, ...,
// at most limit at a time.
func RunEnsemble(ctx context.Context, registry *Registry, cfg *config.Config, n, limit int) ([]*sim.Result, error) {
	build := func(seed uint64) (*sim.Simulator, error) {
		c := *cfg
		c.Seed = seed
		exp := New(&c, registry)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp.GetSimulator(), nil
	}
	e := sim.NewEnsemble(build, n, cfg.Seed)
	e.SetLimit(limit)
	return e.Run(ctx, sim.Config{Duration: cfg.Duration, RecordEvery: cfg.RecordEvery})
}
