package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/springs/internal/backend"
	"github.com/san-kum/springs/internal/config"
	"github.com/san-kum/springs/internal/controllers"
	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/integrators"
	"github.com/san-kum/springs/internal/metrics"
	"github.com/san-kum/springs/internal/motors"
	"github.com/san-kum/springs/internal/physics"
)

// CreatureBuilder builds a body in space from a config.
type CreatureBuilder func(space physics.Space, cfg *config.Config) (*Body, error)

type ControllerBuilder func(params map[string]float64, cfg *config.Config) (dynamo.Controller, error)

type Registry struct {
	creatures   map[string]CreatureBuilder
	integrators map[string]func() dynamo.Integrator
	controllers map[string]ControllerBuilder
}

func NewRegistry() *Registry {
	r := &Registry{
		creatures:   make(map[string]CreatureBuilder),
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]ControllerBuilder),
	}

	r.creatures["starfish"] = buildStarfish
	r.creatures["dev_starfish"] = buildDevStarfish
	r.creatures["centipede"] = buildCentipede
	r.creatures["squares"] = buildSquares

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() dynamo.Integrator { return integrators.NewLeapfrog() }

	r.controllers["none"] = func(params map[string]float64, _ *config.Config) (dynamo.Controller, error) {
		return controllers.NewNone(int(params["dim"])), nil
	}
	r.controllers["sine"] = func(params map[string]float64, cfg *config.Config) (dynamo.Controller, error) {
		return controllers.NewSine(int(params["dim"]), params["min_speed"], params["max_speed"],
			params["amplitude"], cfg.Seed), nil
	}
	r.controllers["network"] = func(params map[string]float64, cfg *config.Config) (dynamo.Controller, error) {
		n, err := controllers.NewNetwork(int(params["inputs"]), cfg.ControllerParams.Hidden, int(params["dim"]),
			params["scale"], cfg.Seed)
		if err != nil {
			return nil, err
		}
		n.Amplitude = params["amplitude"]
		return n, nil
	}

	return r
}

func (r *Registry) GetCreature(name string) (CreatureBuilder, error) {
	fn, ok := r.creatures[name]
	if !ok {
		return nil, fmt.Errorf("creature %q: %w", name, dynamo.ErrUnsupported)
	}
	return fn, nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("integrator %q: %w", name, dynamo.ErrUnsupported)
	}
	return fn(), nil
}

func (r *Registry) GetController(name string, params map[string]float64, cfg *config.Config) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("controller %q: %w", name, dynamo.ErrUnsupported)
	}
	return fn(params, cfg)
}

func (r *Registry) ListCreatures() []string   { return sortedKeys(r.creatures) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListControllers() []string { return sortedKeys(r.controllers) }
func (r *Registry) ListEngines() []string     { return backend.Names() }
func (r *Registry) ListSections() []string    { return creatures.SectionKinds() }
func (r *Registry) ListMuscles() []string     { return motors.Kinds() }

// Validate checks cfg and every name it refers to.
func (r *Registry) Validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := r.GetCreature(cfg.Creature); err != nil {
		return err
	}
	if _, ok := r.controllers[cfg.Controller]; !ok {
		return fmt.Errorf("controller %q: %w", cfg.Controller, dynamo.ErrUnsupported)
	}
	if cfg.Engine == backend.Integrated {
		if _, err := r.GetIntegrator(cfg.Integrator); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Standard()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func starfishOptions(cfg *config.Config) (creatures.StarfishOptions, error) {
	kind, err := creatures.SectionKindFor(cfg.Body.Section)
	if err != nil {
		return creatures.StarfishOptions{}, err
	}
	factory, err := motors.FactoryFor(cfg.Body.Muscle)
	if err != nil {
		return creatures.StarfishOptions{}, err
	}
	return creatures.StarfishOptions{
		CenterX:      cfg.Body.CenterX,
		CenterY:      cfg.Body.CenterY,
		CenterRadius: cfg.Body.CenterRadius,
		Section:      kind,
		Materials:    cfg.BodyMaterials(),
		MuscleGroups: cfg.Body.MuscleGroups,
		Muscle:       factory,
		Sensors:      cfg.Sensors,
	}, nil
}

// restOnFloor moves nodes so that the lowest one touches the floor.
func restOnFloor(cfg *config.Config, nodes []physics.Node, translate func(dx, dy float64)) {
	if !cfg.World.Floor || len(nodes) == 0 {
		return
	}
	minY := math.Inf(1)
	for _, n := range nodes {
		minY = math.Min(minY, n.Y())
	}
	translate(0, cfg.World.FloorY-minY)
}

func buildStarfish(space physics.Space, cfg *config.Config) (*Body, error) {
	opts, err := starfishOptions(cfg)
	if err != nil {
		return nil, err
	}
	s, err := creatures.NewStarfish(space, cfg.ArmDims(), opts)
	if err != nil {
		return nil, err
	}
	restOnFloor(cfg, s.Nodes(), s.Translate)
	return &Body{Body: s, Starfish: s}, nil
}

func buildDevStarfish(space physics.Space, cfg *config.Config) (*Body, error) {
	opts, err := starfishOptions(cfg)
	if err != nil {
		return nil, err
	}
	d, err := creatures.NewDevStarfish(space, cfg.ArmDims(), cfg.Body.Dev, opts)
	if err != nil {
		return nil, err
	}
	if g := cfg.ControllerParams.Growth; g.Enabled {
		d.AddController(controllers.Growth{Birth: g.Birth, Rate: g.Rate, Delay: g.Delay}.Controller(d))
	}
	restOnFloor(cfg, d.Nodes(), d.Translate)
	return &Body{Body: d.Starfish, Starfish: d.Starfish, Dev: d}, nil
}

func buildCentipede(space physics.Space, cfg *config.Config) (*Body, error) {
	opts, err := starfishOptions(cfg)
	if err != nil {
		return nil, err
	}
	c, err := creatures.NewCentipede(space, cfg.ArmDims(), opts)
	if err != nil {
		return nil, err
	}
	restOnFloor(cfg, c.Nodes(), c.Translate)
	return &Body{Body: c, Starfish: c}, nil
}

func buildSquares(space physics.Space, cfg *config.Config) (*Body, error) {
	sq := cfg.Squares
	if sq.Rows < 1 || sq.Cols < 1 {
		return nil, fmt.Errorf("squares %dx%d: %w", sq.Rows, sq.Cols, dynamo.ErrConstruction)
	}
	sizes := make([][]float64, sq.Rows)
	stiffness := make([][]float64, sq.Rows)
	for i := range sizes {
		sizes[i] = make([]float64, sq.Cols)
		stiffness[i] = make([]float64, sq.Cols)
		for j := range sizes[i] {
			sizes[i][j] = sq.Size
			stiffness[i][j] = sq.Stiffness
		}
	}
	fs, err := creatures.NewFusedSquares(space, sizes, stiffness, sq.Options)
	if err != nil {
		return nil, err
	}
	restOnFloor(cfg, fs.Nodes(), fs.Translate)
	return &Body{Body: fs, Squares: fs}, nil
}
