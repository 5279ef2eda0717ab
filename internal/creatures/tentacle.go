package creatures

import (
	"fmt"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/geom"
	"github.com/san-kum/springs/internal/motors"
	"github.com/san-kum/springs/internal/physics"
)

type TentacleOptions struct {
	// Section defaults to Standard.
	Section   SectionKind
	Materials Materials
}

// Tentacle chains sections base to base, optionally capped by a tip.
type Tentacle struct {
	base     []physics.Node
	sections []*Section
	tip      *Tip

	nodes        []physics.Node
	newNodes     []physics.Node
	links        []physics.Link
	muscles      []physics.Link
	springs      []physics.Link
	leftMuscles  []physics.Link
	rightMuscles []physics.Link

	sectionGroups   [][]*Section
	muscleInterface *motors.Interface
}

// NewTentacle builds one section per width. A trailing extra height builds
// a tip on the last forward base.
func NewTentacle(space physics.Space, base []physics.Node, heights, widths []float64, opts TentacleOptions) (*Tentacle, error) {
	kind := opts.Section
	if kind == nil {
		kind = Standard{}
	}
	if len(heights) != len(widths) && len(heights) != len(widths)+1 {
		return nil, fmt.Errorf("tentacle: %d heights for %d widths: %w",
			len(heights), len(widths), dynamo.ErrShapeMismatch)
	}
	if len(base) != kind.BaseSize() {
		return nil, fmt.Errorf("tentacle: %w", dynamo.Shape(kind.Name()+" base", kind.BaseSize(), len(base)))
	}

	t := &Tentacle{
		base:  base,
		nodes: append([]physics.Node(nil), base...),
	}

	current := base
	for i := range widths {
		s, err := kind.Build(space, current, heights[i], widths[i], opts.Materials)
		if err != nil {
			return nil, fmt.Errorf("tentacle section %d: %w", i, err)
		}
		t.sections = append(t.sections, s)
		t.populate(s.NewNodes(), s.Links(), s.Muscles(), s.Springs())
		current = s.ForwardBase()

		left, right := s.SideLinks()
		if left.Actuated() {
			t.leftMuscles = append(t.leftMuscles, left)
		}
		if right.Actuated() {
			t.rightMuscles = append(t.rightMuscles, right)
		}
	}

	if len(heights) == len(widths)+1 {
		tip, err := NewTip(space, current, heights[len(heights)-1], opts.Materials)
		if err != nil {
			return nil, fmt.Errorf("tentacle: %w", err)
		}
		t.tip = tip
		t.populate(tip.NewNodes(), tip.Links(), tip.Muscles(), tip.Springs())
	}
	return t, nil
}

func (t *Tentacle) populate(nodes []physics.Node, links, muscles, springs []physics.Link) {
	t.nodes = append(t.nodes, nodes...)
	t.newNodes = append(t.newNodes, nodes...)
	t.links = append(t.links, links...)
	t.muscles = append(t.muscles, muscles...)
	t.springs = append(t.springs, springs...)
}

func (t *Tentacle) Base() []physics.Node         { return t.base }
func (t *Tentacle) Sections() []*Section         { return t.sections }
func (t *Tentacle) Tip() *Tip                    { return t.tip }
func (t *Tentacle) Nodes() []physics.Node        { return t.nodes }
func (t *Tentacle) NewNodes() []physics.Node     { return t.newNodes }
func (t *Tentacle) Links() []physics.Link        { return t.links }
func (t *Tentacle) Muscles() []physics.Link      { return t.muscles }
func (t *Tentacle) Springs() []physics.Link      { return t.springs }
func (t *Tentacle) LeftMuscles() []physics.Link  { return t.leftMuscles }
func (t *Tentacle) RightMuscles() []physics.Link { return t.rightMuscles }

// Heights returns the section heights, followed by the tip height if any.
func (t *Tentacle) Heights() []float64 {
	heights := make([]float64, 0, len(t.sections)+1)
	for _, s := range t.sections {
		heights = append(heights, s.Height())
	}
	if t.tip != nil {
		heights = append(heights, t.tip.Height())
	}
	return heights
}

func (t *Tentacle) Widths() []float64 {
	widths := make([]float64, len(t.sections))
	for i, s := range t.sections {
		widths[i] = s.Width()
	}
	return widths
}

// SetStiffness sets a material's stiffness section by section. A single value
// applies to every section.
func (t *Tentacle) SetStiffness(role Role, values ...float64) error {
	values, err := geom.Listify(values, len(t.sections))
	if err != nil {
		return fmt.Errorf("tentacle stiffness: %w", err)
	}
	for i, s := range t.sections {
		if err := s.SetStiffness(role, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tentacle) SetDamping(role Role, values ...float64) error {
	values, err := geom.Listify(values, len(t.sections))
	if err != nil {
		return fmt.Errorf("tentacle damping: %w", err)
	}
	for i, s := range t.sections {
		if err := s.SetDamping(role, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tentacle) Relax() {
	for _, m := range t.muscles {
		m.Relax()
	}
}

// Update implements physics.Entity.
func (t *Tentacle) Update(float64) {}

// MusclesProximodistal splits the sections into nGroup contiguous groups,
// from base to tip. Each group receives one signal, broadcast to an actuator
// built by factory for each of its sections.
func (t *Tentacle) MusclesProximodistal(nGroup int, factory motors.Factory) (*motors.Interface, error) {
	if nGroup < 1 {
		return nil, fmt.Errorf("tentacle: %d muscle groups: %w", nGroup, dynamo.ErrConstruction)
	}
	groups := EvenDivide(t.sections, nGroup)

	mi := motors.NewInterface()
	for _, group := range groups {
		actuators := make([]motors.Actuator, len(group))
		for i, s := range group {
			actuators[i] = factory(s)
		}
		b, err := motors.NewBroadcast(actuators...)
		if err != nil {
			return nil, fmt.Errorf("tentacle muscle group: %w", err)
		}
		mi.AddGroup(b)
	}

	t.sectionGroups = groups
	t.muscleInterface = mi
	return mi, nil
}

func (t *Tentacle) MuscleInterface() *motors.Interface { return t.muscleInterface }
func (t *Tentacle) SectionGroups() [][]*Section        { return t.sectionGroups }

// EvenDivide splits values into k contiguous groups whose sizes differ by at
// most one, larger groups first. With fewer values than groups only the
// non-empty groups are returned. k < 1 gives no groups.
func EvenDivide[T any](values []T, k int) [][]T {
	if k < 1 {
		return nil
	}
	n := len(values)
	base := n / k
	rest := n - base*k

	var groups [][]T
	offset := 0
	for i := 0; i < rest; i++ {
		groups = append(groups, values[offset:offset+base+1])
		offset += base + 1
	}
	if base > 0 {
		for i := 0; i < k-rest; i++ {
			groups = append(groups, values[offset:offset+base])
			offset += base
		}
	}
	return groups
}
