package creatures

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/geom"
	"github.com/san-kum/springs/internal/motors"
	"github.com/san-kum/springs/internal/physics"
	"github.com/san-kum/springs/internal/sensors"
)

// Dim is the height and width of one section of an arm. A trailing Dim with
// zero width is a tip.
type Dim struct {
	Height float64 `yaml:"height" json:"height"`
	Width  float64 `yaml:"width" json:"width"`
}

// Controller drives a body once per step, after the sensors are updated.
type Controller func(s *Starfish, space physics.Space) error

type StarfishOptions struct {
	CenterX, CenterY float64
	// CenterRadius is the hub side length. For centipedes it is the rung size.
	CenterRadius float64

	// Section defaults to Standard.
	Section SectionKind
	// Materials default to DefaultMaterials.
	Materials Materials

	// MuscleGroups > 0 creates the muscle interface at construction.
	MuscleGroups int
	// Muscle defaults to motors.NewSectionOneMuscle.
	Muscle motors.Factory

	Sensors *SensorConfig
}

// Starfish is a set of tentacles attached to a central hub.
type Starfish struct {
	space     physics.Space
	materials Materials
	kind      SectionKind
	opts      StarfishOptions

	center    []physics.Node
	tentacles []*Tentacle

	nodes   []physics.Node
	links   []physics.Link
	springs []physics.Link
	muscles []physics.Link

	muscleInterface *motors.Interface
	sensors         []sensors.Sensor
	controllers     []Controller
	err             error
}

// hubFunc creates the hub nodes and links and returns one base per arm.
type hubFunc func(s *Starfish, nBase int) ([][]physics.Node, error)

type limbFunc func(base []physics.Node, heights, widths []float64, opts TentacleOptions) (*Tentacle, error)

func NewStarfish(space physics.Space, arms [][]Dim, opts StarfishOptions) (*Starfish, error) {
	limb := func(base []physics.Node, heights, widths []float64, topts TentacleOptions) (*Tentacle, error) {
		return NewTentacle(space, base, heights, widths, topts)
	}
	return assemble(space, arms, opts, radialHub, limb)
}

func newStarfish(space physics.Space, opts StarfishOptions) *Starfish {
	s := &Starfish{
		space: space,
		opts:  opts,
		kind:  opts.Section,
	}
	if s.kind == nil {
		s.kind = Standard{}
	}
	s.materials = opts.Materials
	if s.materials.Nodes == nil && s.materials.Links == nil {
		s.materials = DefaultMaterials()
	}
	return s
}

func assemble(space physics.Space, arms [][]Dim, opts StarfishOptions, hub hubFunc, limb limbFunc) (*Starfish, error) {
	if len(arms) == 0 {
		return nil, fmt.Errorf("body without arms: %w", dynamo.ErrConstruction)
	}
	if opts.CenterRadius <= 0 {
		return nil, fmt.Errorf("center radius %v: %w", opts.CenterRadius, dynamo.ErrConstruction)
	}
	s := newStarfish(space, opts)
	if err := s.materials.Validate(); err != nil {
		return nil, err
	}

	bases, err := hub(s, len(arms))
	if err != nil {
		return nil, err
	}
	s.nodes = append(s.nodes, s.center...)

	topts := TentacleOptions{Section: s.kind, Materials: s.materials}
	for i, arm := range arms {
		heights, widths := splitDims(arm)
		t, err := limb(bases[i], heights, widths, topts)
		if err != nil {
			return nil, fmt.Errorf("arm %d: %w", i, err)
		}
		s.tentacles = append(s.tentacles, t)
		s.nodes = append(s.nodes, t.NewNodes()...)
		s.links = append(s.links, t.Links()...)
		s.springs = append(s.springs, t.Springs()...)
		s.muscles = append(s.muscles, t.Muscles()...)
	}

	if opts.MuscleGroups > 0 {
		factory := opts.Muscle
		if factory == nil {
			factory = func(p motors.Pair) motors.Actuator { return motors.NewSectionOneMuscle(p) }
		}
		if _, err := s.CreateMuscleInterface(opts.MuscleGroups, factory); err != nil {
			return nil, err
		}
	}
	if opts.Sensors != nil {
		if err := s.createSensors(*opts.Sensors); err != nil {
			return nil, err
		}
	}
	space.AddEntity(s)

	slog.Debug("body built",
		"arms", len(s.tentacles),
		"section", s.kind.Name(),
		"nodes", len(s.nodes),
		"links", len(s.links),
		"muscles", len(s.muscles),
		"sensors", len(s.sensors),
	)
	return s, nil
}

func splitDims(arm []Dim) (heights, widths []float64) {
	for _, d := range arm {
		heights = append(heights, d.Height)
		widths = append(widths, d.Width)
	}
	if n := len(widths); n > 0 && widths[n-1] == 0 {
		widths = widths[:n-1]
	}
	return heights, widths
}

func (s *Starfish) addHubLink(a, b physics.Node) error {
	mat, err := s.materials.link(LinkCenter)
	if err != nil {
		return err
	}
	l, err := s.space.AddLink(a, b, mat)
	if err != nil {
		return fmt.Errorf("hub link: %w", err)
	}
	s.links = append(s.links, l)
	if l.Actuated() {
		s.muscles = append(s.muscles, l)
	} else {
		s.springs = append(s.springs, l)
	}
	return nil
}

func (s *Starfish) addHubNode(x, y float64) (physics.Node, error) {
	mat, err := s.materials.node(NodeCenter)
	if err != nil {
		return nil, err
	}
	n := s.space.AddNode(x, y, mat)
	s.center = append(s.center, n)
	return n, nil
}

func radialHub(s *Starfish, nBase int) ([][]physics.Node, error) {
	size := s.kind.BaseSize()
	cx, cy, r := s.opts.CenterX, s.opts.CenterY, s.opts.CenterRadius

	switch {
	case nBase == 1:
		n, err := s.addHubNode(cx+r, cy)
		if err != nil {
			return nil, err
		}
		base := make([]physics.Node, size)
		for i := range base {
			base[i] = n
		}
		return [][]physics.Node{base}, nil

	case nBase == 2:
		ends := geom.Polygon(2, cx, cy, r)
		line := make([]physics.Node, size)
		for i := range line {
			f := float64(i) / float64(size-1)
			x := ends[0].PX + f*(ends[1].PX-ends[0].PX)
			y := ends[0].PY + f*(ends[1].PY-ends[0].PY)
			n, err := s.addHubNode(x, y)
			if err != nil {
				return nil, err
			}
			line[i] = n
		}
		for i := 0; i+1 < len(line); i++ {
			if err := s.addHubLink(line[i], line[i+1]); err != nil {
				return nil, err
			}
		}
		reversed := make([]physics.Node, size)
		for i, n := range line {
			reversed[size-1-i] = n
		}
		return [][]physics.Node{line, reversed}, nil
	}

	for _, v := range geom.Polygon(nBase*(size-1), cx, cy, r) {
		if _, err := s.addHubNode(v.PX, v.PY); err != nil {
			return nil, err
		}
	}
	n := len(s.center)
	for i, node := range s.center {
		for _, off := range []int{1, 2, n / 3} {
			if err := s.addHubLink(s.center[(i+off)%n], node); err != nil {
				return nil, err
			}
		}
	}

	bases := make([][]physics.Node, nBase)
	for j := range bases {
		base := make([]physics.Node, size)
		for i := range base {
			base[i] = s.center[mod((size-1)*j-i, n)]
		}
		bases[j] = base
	}
	return bases, nil
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// CreateMuscleInterface groups each tentacle's sections proximodistally and
// merges the tentacle interfaces, in tentacle order.
func (s *Starfish) CreateMuscleInterface(nGroup int, factory motors.Factory) (*motors.Interface, error) {
	mi := motors.NewInterface()
	for i, t := range s.tentacles {
		ti, err := t.MusclesProximodistal(nGroup, factory)
		if err != nil {
			return nil, fmt.Errorf("arm %d: %w", i, err)
		}
		mi.AddGroup(ti)
	}
	s.muscleInterface = mi
	return mi, nil
}

func (s *Starfish) MuscleInterface() *motors.Interface { return s.muscleInterface }

// Actuator returns the muscle interface, or nil before it is created.
func (s *Starfish) Actuator() motors.Actuator {
	if s.muscleInterface == nil {
		return nil
	}
	return s.muscleInterface
}

func (s *Starfish) Space() physics.Space      { return s.space }
func (s *Starfish) Center() []physics.Node    { return s.center }
func (s *Starfish) Tentacles() []*Tentacle    { return s.tentacles }
func (s *Starfish) Nodes() []physics.Node     { return s.nodes }
func (s *Starfish) Links() []physics.Link     { return s.links }
func (s *Starfish) Springs() []physics.Link   { return s.springs }
func (s *Starfish) Muscles() []physics.Link   { return s.muscles }
func (s *Starfish) Sensors() []sensors.Sensor { return s.sensors }

// SensorValues returns the values of the sensors the body registered, in
// registration order.
func (s *Starfish) SensorValues() []float64 {
	values := make([]float64, len(s.sensors))
	for i, sensor := range s.sensors {
		values[i] = sensor.Value()
	}
	return values
}

func (s *Starfish) AddController(c Controller) {
	s.controllers = append(s.controllers, c)
}

// Update runs the controllers in registration order. The first error is kept
// and stops every later update.
func (s *Starfish) Update(float64) {
	if s.err != nil {
		return
	}
	for _, c := range s.controllers {
		if err := c(s, s.space); err != nil {
			s.err = err
			return
		}
	}
}

func (s *Starfish) Err() error { return s.err }

// Translate moves every node of the body without any physics.
func (s *Starfish) Translate(dx, dy float64) {
	for _, n := range s.nodes {
		n.Translate(dx, dy)
	}
}

// CenterXY is the mean position of the hub nodes.
func (s *Starfish) CenterXY() (float64, float64) {
	return meanXY(s.center)
}

func (s *Starfish) AvgNodesXY() (float64, float64) {
	return meanXY(s.nodes)
}

func meanXY(nodes []physics.Node) (float64, float64) {
	xs := make([]float64, len(nodes))
	ys := make([]float64, len(nodes))
	for i, n := range nodes {
		xs[i], ys[i] = n.X(), n.Y()
	}
	return stat.Mean(xs, nil), stat.Mean(ys, nil)
}

// DevStarfish is a starfish made of developmental tentacles.
type DevStarfish struct {
	*Starfish
	dev []*DevTentacle
}

func NewDevStarfish(space physics.Space, arms [][]Dim, dev DevFactors, opts StarfishOptions) (*DevStarfish, error) {
	ds := &DevStarfish{}
	limb := func(base []physics.Node, heights, widths []float64, topts TentacleOptions) (*Tentacle, error) {
		t, err := NewDevTentacle(space, base, heights, widths, dev, topts)
		if err != nil {
			return nil, err
		}
		ds.dev = append(ds.dev, t)
		return t.Tentacle, nil
	}
	s, err := assemble(space, arms, opts, radialHub, limb)
	if err != nil {
		return nil, err
	}
	ds.Starfish = s
	return ds, nil
}

func (d *DevStarfish) DevTentacles() []*DevTentacle { return d.dev }

func (d *DevStarfish) ChangeHeightDevFactor(f ...float64) error {
	for i, t := range d.dev {
		if err := t.SetHeightDevFactor(f...); err != nil {
			return fmt.Errorf("arm %d: %w", i, err)
		}
	}
	return nil
}

func (d *DevStarfish) ChangeWidthDevFactor(f ...float64) error {
	for i, t := range d.dev {
		if err := t.SetWidthDevFactor(f...); err != nil {
			return fmt.Errorf("arm %d: %w", i, err)
		}
	}
	return nil
}

// ChangeMass sets the mass of every node of the body.
func (d *DevStarfish) ChangeMass(m float64) {
	for _, n := range d.nodes {
		n.SetMass(m)
	}
}
