package creatures

import (
	"fmt"
	"math"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/geom"
	"github.com/san-kum/springs/internal/physics"
)

// Tip closes a limb with one apex node linked to every base node.
type Tip struct {
	base   []physics.Node
	apex   physics.Node
	height float64

	nodes   []physics.Node
	links   []physics.Link
	linkMap map[string]physics.Link
	muscles []physics.Link
	springs []physics.Link
}

func NewTip(space physics.Space, base []physics.Node, height float64, materials Materials) (*Tip, error) {
	if len(base) == 0 {
		return nil, fmt.Errorf("tip: %w", dynamo.Shape("tip base", 1, 0))
	}
	if height < 0 {
		return nil, fmt.Errorf("tip height %v: %w", height, dynamo.ErrConstruction)
	}
	nodeMat, err := materials.node(NodeTip)
	if err != nil {
		return nil, fmt.Errorf("tip: %w", err)
	}
	linkMat, err := materials.link(LinkTip)
	if err != nil {
		return nil, fmt.Errorf("tip: %w", err)
	}

	t := &Tip{
		base:    base,
		height:  height,
		nodes:   append([]physics.Node(nil), base...),
		linkMap: make(map[string]physics.Link, len(base)),
	}

	x, y := geom.PosRel(0, height, base[0], base[len(base)-1])
	t.apex = space.AddNode(x, y, nodeMat)
	t.nodes = append(t.nodes, t.apex)

	for i, n := range base {
		l, err := space.AddLink(n, t.apex, linkMat)
		if err != nil {
			return nil, fmt.Errorf("tip link %d: %w", i, err)
		}
		t.links = append(t.links, l)
		t.linkMap[fmt.Sprintf("tiplink_%d", i)] = l
		if l.Actuated() {
			t.muscles = append(t.muscles, l)
		} else {
			t.springs = append(t.springs, l)
		}
	}
	return t, nil
}

func (t *Tip) Apex() physics.Node       { return t.apex }
func (t *Tip) Base() []physics.Node     { return t.base }
func (t *Tip) Nodes() []physics.Node    { return t.nodes }
func (t *Tip) NewNodes() []physics.Node { return []physics.Node{t.apex} }
func (t *Tip) Links() []physics.Link    { return t.links }
func (t *Tip) Muscles() []physics.Link  { return t.muscles }
func (t *Tip) Springs() []physics.Link  { return t.springs }
func (t *Tip) Height() float64          { return t.height }

func (t *Tip) Link(name string) physics.Link { return t.linkMap[name] }

// SetHeight sets every fan link to sqrt((d/2)² + h²), d being the distance
// between the first two base nodes.
func (t *Tip) SetHeight(h float64) error {
	if h < 0 {
		return fmt.Errorf("tip height %v: %w", h, dynamo.ErrConstruction)
	}
	var half float64
	if len(t.base) > 1 {
		half = geom.Distance(t.base[0], t.base[1]) / 2
	}
	length := math.Sqrt(half*half + h*h)
	for _, l := range t.links {
		l.SetRelaxLength(length)
	}
	t.height = h
	return nil
}
