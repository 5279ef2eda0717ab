package creatures

import (
	"fmt"
	"math"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/geom"
	"github.com/san-kum/springs/internal/physics"
)

// Default minimum distance between a section's base and its new top nodes.
const (
	StandardFloor    = 0.01
	CentralBoneFloor = 0.1
)

// SectionKind is a section variant. Kinds differ in how many nodes their base
// has and in the links they create.
type SectionKind interface {
	Name() string
	BaseSize() int
	// Roles lists the materials the kind needs.
	Roles() []Role
	Build(space physics.Space, base []physics.Node, height, width float64, materials Materials) (*Section, error)

	floor() float64
	create(s *Section, y float64) error
	recompute(s *Section)
}

// Standard sections sit on two base nodes and create two top nodes and five
// links: two diagonals, two sides and the width.
type Standard struct {
	// Floor overrides StandardFloor when positive.
	Floor float64
}

// CentralBone sections sit on three base nodes and create three top nodes and
// eleven links, with a central bone between the middle nodes.
type CentralBone struct {
	// Floor overrides CentralBoneFloor when positive.
	Floor float64
}

func (Standard) Name() string  { return "section" }
func (Standard) BaseSize() int { return 2 }

func (Standard) Roles() []Role {
	return []Role{NodeSection, LinkSecDiag, LinkSecSide, LinkSecWidth}
}

func (k Standard) floor() float64 {
	if k.Floor > 0 {
		return k.Floor
	}
	return StandardFloor
}

func (k Standard) Build(space physics.Space, base []physics.Node, height, width float64, materials Materials) (*Section, error) {
	return buildSection(k, space, base, height, width, materials)
}

func (CentralBone) Name() string  { return "central_bone" }
func (CentralBone) BaseSize() int { return 3 }

func (CentralBone) Roles() []Role {
	return []Role{NodeSection, LinkSecDiag, LinkSecBigDiag, LinkSecSide, LinkSecCenter, LinkSecWidth}
}

func (k CentralBone) floor() float64 {
	if k.Floor > 0 {
		return k.Floor
	}
	return CentralBoneFloor
}

func (k CentralBone) Build(space physics.Space, base []physics.Node, height, width float64, materials Materials) (*Section, error) {
	return buildSection(k, space, base, height, width, materials)
}

// SectionKindFor returns the kind registered under name.
func SectionKindFor(name string) (SectionKind, error) {
	switch name {
	case "", Standard{}.Name():
		return Standard{}, nil
	case CentralBone{}.Name():
		return CentralBone{}, nil
	default:
		return nil, fmt.Errorf("section kind %q: %w", name, dynamo.ErrUnsupported)
	}
}

func SectionKinds() []string {
	return []string{Standard{}.Name(), CentralBone{}.Name()}
}

// Section is one braced segment of a limb.
type Section struct {
	kind      SectionKind
	space     physics.Space
	materials Materials

	base          []physics.Node
	height, width float64

	nodes    []physics.Node
	newNodes []physics.Node
	nodeMap  map[string]physics.Node

	links   []physics.Link
	linkMap map[string]physics.Link
	byRole  map[Role][]physics.Link
	muscles []physics.Link
	springs []physics.Link
}

func buildSection(kind SectionKind, space physics.Space, base []physics.Node, height, width float64, materials Materials) (*Section, error) {
	if len(base) != kind.BaseSize() {
		return nil, fmt.Errorf("%s base: %w", kind.Name(), dynamo.Shape("section base", kind.BaseSize(), len(base)))
	}
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("%s: height %v and width %v must be non-negative: %w",
			kind.Name(), height, width, dynamo.ErrConstruction)
	}
	if err := materials.Require(kind.Roles()...); err != nil {
		return nil, fmt.Errorf("%s: %w", kind.Name(), err)
	}

	d := geom.Distance(base[0], base[len(base)-1])
	if !(d > 0) {
		return nil, fmt.Errorf("%s: base nodes coincide: %w", kind.Name(), dynamo.ErrConstruction)
	}

	s := &Section{
		kind:      kind,
		space:     space,
		materials: materials,
		base:      base,
		height:    height,
		width:     width,
		nodes:     append([]physics.Node(nil), base...),
		nodeMap: map[string]physics.Node{
			"base_left":  base[0],
			"base_right": base[len(base)-1],
		},
		linkMap: make(map[string]physics.Link),
		byRole:  make(map[Role][]physics.Link),
	}

	y := math.Sqrt(math.Max(height*height-math.Pow((d-width)/2, 2), 0))
	y = math.Max(y, kind.floor())
	if err := kind.create(s, y); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Section) addNode(name string, x, y float64) (physics.Node, error) {
	mat, err := s.materials.node(NodeSection)
	if err != nil {
		return nil, err
	}
	n := s.space.AddNode(x, y, mat)
	s.nodes = append(s.nodes, n)
	s.newNodes = append(s.newNodes, n)
	s.nodeMap[name] = n
	return n, nil
}

func (s *Section) addLink(a, b physics.Node, role Role, name string) error {
	mat, err := s.materials.link(role)
	if err != nil {
		return err
	}
	l, err := s.space.AddLink(a, b, mat)
	if err != nil {
		return fmt.Errorf("%s link %s: %w", s.kind.Name(), name, err)
	}
	s.links = append(s.links, l)
	s.linkMap[name] = l
	s.byRole[role] = append(s.byRole[role], l)
	if l.Actuated() {
		s.muscles = append(s.muscles, l)
	} else {
		s.springs = append(s.springs, l)
	}
	return nil
}

func (Standard) create(s *Section, y float64) error {
	a, b := s.base[0], s.base[1]
	xl, yl := geom.PosRel(-s.width/2, y, a, b)
	xr, yr := geom.PosRel(s.width/2, y, a, b)

	left, err := s.addNode("top_left", xl, yl)
	if err != nil {
		return err
	}
	right, err := s.addNode("top_right", xr, yr)
	if err != nil {
		return err
	}

	links := []struct {
		a, b physics.Node
		role Role
		name string
	}{
		{a, right, LinkSecDiag, "diag_LR"},
		{b, left, LinkSecDiag, "diag_RL"},
		{a, left, LinkSecSide, "left"},
		{b, right, LinkSecSide, "right"},
		{left, right, LinkSecWidth, "width"},
	}
	for _, l := range links {
		if err := s.addLink(l.a, l.b, l.role, l.name); err != nil {
			return err
		}
	}
	return nil
}

func (CentralBone) create(s *Section, y float64) error {
	bl, bm, br := s.base[0], s.base[1], s.base[2]
	xl, yl := geom.PosRel(-s.width/2, y, bl, br)
	xr, yr := geom.PosRel(s.width/2, y, bl, br)
	xm, ym := geom.PosRel(0, s.height, bl, br)

	left, err := s.addNode("top_left", xl, yl)
	if err != nil {
		return err
	}
	middle, err := s.addNode("top_middle", xm, ym)
	if err != nil {
		return err
	}
	right, err := s.addNode("top_right", xr, yr)
	if err != nil {
		return err
	}

	links := []struct {
		a, b physics.Node
		role Role
		name string
	}{
		{bl, middle, LinkSecDiag, "diag_LM"},
		{bm, left, LinkSecDiag, "diag_ML"},
		{bm, right, LinkSecDiag, "diag_MR"},
		{br, middle, LinkSecDiag, "diag_RM"},
		{bl, right, LinkSecBigDiag, "diag_LR"},
		{br, left, LinkSecBigDiag, "diag_RL"},
		{bl, left, LinkSecSide, "left"},
		{bm, middle, LinkSecCenter, "middle"},
		{br, right, LinkSecSide, "right"},
		{left, middle, LinkSecWidth, "widthL"},
		{middle, right, LinkSecWidth, "widthR"},
	}
	for _, l := range links {
		if err := s.addLink(l.a, l.b, l.role, l.name); err != nil {
			return err
		}
	}
	return nil
}

// DiagLength is the rest length of the long diagonals of a section with base
// separation d: sqrt(avg² + h² - hd²) with avg = (d+w)/2 and hd = d-avg.
func DiagLength(d, height, width float64) float64 {
	avg := (d + width) / 2
	hd := d - avg
	return math.Sqrt(avg*avg + height*height - hd*hd)
}

func (Standard) recompute(s *Section) {
	diag := DiagLength(s.BaseDistance(), s.height, s.width)
	s.linkMap["left"].SetRelaxLength(s.height)
	s.linkMap["right"].SetRelaxLength(s.height)
	s.linkMap["width"].SetRelaxLength(s.width)
	s.linkMap["diag_LR"].SetRelaxLength(diag)
	s.linkMap["diag_RL"].SetRelaxLength(diag)
}

func (CentralBone) recompute(s *Section) {
	d, h, w := s.BaseDistance(), s.height, s.width
	small1 := math.Sqrt(d*d/4 + h*h)
	small2 := math.Sqrt(w*w/4 + h*h)
	big := DiagLength(d, h, w)

	for _, name := range []string{"left", "middle", "right"} {
		s.linkMap[name].SetRelaxLength(h)
	}
	s.linkMap["widthL"].SetRelaxLength(w / 2)
	s.linkMap["widthR"].SetRelaxLength(w / 2)
	s.linkMap["diag_LM"].SetRelaxLength(small1)
	s.linkMap["diag_RM"].SetRelaxLength(small1)
	s.linkMap["diag_ML"].SetRelaxLength(small2)
	s.linkMap["diag_MR"].SetRelaxLength(small2)
	s.linkMap["diag_LR"].SetRelaxLength(big)
	s.linkMap["diag_RL"].SetRelaxLength(big)
}

func (s *Section) Kind() SectionKind { return s.kind }

func (s *Section) Base() []physics.Node { return s.base }

// ForwardBase is the base of the next section of the limb.
func (s *Section) ForwardBase() []physics.Node {
	if _, ok := s.nodeMap["top_middle"]; ok {
		return []physics.Node{s.nodeMap["top_left"], s.nodeMap["top_middle"], s.nodeMap["top_right"]}
	}
	return []physics.Node{s.nodeMap["top_left"], s.nodeMap["top_right"]}
}

// BaseDistance is the current distance between the outer base nodes.
func (s *Section) BaseDistance() float64 {
	return geom.Distance(s.base[0], s.base[len(s.base)-1])
}

func (s *Section) Height() float64 { return s.height }
func (s *Section) Width() float64  { return s.width }

func (s *Section) SetHeight(h float64) error {
	if h < 0 {
		return fmt.Errorf("section height %v: %w", h, dynamo.ErrConstruction)
	}
	s.height = h
	s.recomputeDerived()
	return nil
}

func (s *Section) SetWidth(w float64) error {
	if w < 0 {
		return fmt.Errorf("section width %v: %w", w, dynamo.ErrConstruction)
	}
	s.width = w
	s.recomputeDerived()
	return nil
}

// recomputeDerived assigns every rest length from the current height and width.
func (s *Section) recomputeDerived() {
	s.kind.recompute(s)
}

func (s *Section) Nodes() []physics.Node    { return s.nodes }
func (s *Section) NewNodes() []physics.Node { return s.newNodes }
func (s *Section) Links() []physics.Link    { return s.links }
func (s *Section) Muscles() []physics.Link  { return s.muscles }
func (s *Section) Springs() []physics.Link  { return s.springs }

// Node returns a node by role: base_left, base_right, top_left, top_right or
// top_middle. It returns nil for unknown names.
func (s *Section) Node(name string) physics.Node { return s.nodeMap[name] }

// Link returns a link by name, or nil.
func (s *Section) Link(name string) physics.Link { return s.linkMap[name] }

func (s *Section) LinksByMaterial(role Role) []physics.Link { return s.byRole[role] }

// SideLinks returns the left and right side links, the section's muscles.
func (s *Section) SideLinks() (left, right physics.Link) {
	return s.linkMap["left"], s.linkMap["right"]
}

func (s *Section) hasRole(role Role) bool {
	for _, r := range s.kind.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// SetStiffness sets the stiffness of every link of a material.
func (s *Section) SetStiffness(role Role, v float64) error {
	if !s.hasRole(role) || !isLinkRole(role) {
		return fmt.Errorf("%s stiffness %q: %w", s.kind.Name(), role, dynamo.ErrUnknownRole)
	}
	if v < 0 {
		return fmt.Errorf("%s stiffness %v: %w", s.kind.Name(), v, dynamo.ErrConstruction)
	}
	for _, l := range s.byRole[role] {
		l.SetStiffness(v)
	}
	return nil
}

// SetDamping sets the damping ratio of every link of a material.
func (s *Section) SetDamping(role Role, v float64) error {
	if !s.hasRole(role) || !isLinkRole(role) {
		return fmt.Errorf("%s damping %q: %w", s.kind.Name(), role, dynamo.ErrUnknownRole)
	}
	if v < 0 {
		return fmt.Errorf("%s damping %v: %w", s.kind.Name(), v, dynamo.ErrConstruction)
	}
	for _, l := range s.byRole[role] {
		l.SetDampingRatio(v)
	}
	return nil
}

func (s *Section) Relax() {
	for _, m := range s.muscles {
		m.Relax()
	}
}
