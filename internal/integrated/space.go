package integrated

import (
	"fmt"
	"math"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/integrators"
	"github.com/san-kum/springs/internal/physics"
)

type Config struct {
	Dt                   float64
	Substeps             int
	GravityX             float64
	GravityY             float64
	RestitutionThreshold float64
	// Integrator defaults to RK4.
	Integrator dynamo.Integrator
}

type Space struct {
	*physics.Hooks

	cfg   Config
	sys   *system
	t     float64
	ticks int

	rects     []physics.Rect
	triangles []*physics.Triangle
}

var _ physics.Space = (*Space)(nil)

func New(cfg Config) (*Space, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("integrated: dt %v must be positive: %w", cfg.Dt, dynamo.ErrConstruction)
	}
	if cfg.Substeps < 1 {
		return nil, fmt.Errorf("integrated: substeps %d must be at least 1: %w", cfg.Substeps, dynamo.ErrConstruction)
	}
	if cfg.Integrator == nil {
		cfg.Integrator = integrators.NewRK4()
	}
	return &Space{
		Hooks: physics.NewHooks(cfg.Dt),
		cfg:   cfg,
		sys: &system{
			index:    make(map[*Node]int),
			gravityX: cfg.GravityX,
			gravityY: cfg.GravityY,
		},
	}, nil
}

func (s *Space) Dt() float64 { return s.cfg.Dt }
func (s *Space) T() float64  { return s.t }
func (s *Space) Ticks() int  { return s.ticks }

func (s *Space) AddNode(x, y float64, m physics.NodeMaterial) physics.Node {
	n := &Node{x: x, y: y, friction: m.Friction, fixed: m.Fixed}
	n.SetMass(m.Mass)
	s.sys.index[n] = len(s.sys.nodes)
	s.sys.nodes = append(s.sys.nodes, n)
	return n
}

func (s *Space) AddLink(a, b physics.Node, m physics.LinkMaterial) (physics.Link, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	na, okA := a.(*Node)
	nb, okB := b.(*Node)
	if !okA || !okB {
		return nil, fmt.Errorf("integrated: nodes of type %T, %T: %w", a, b, dynamo.ErrUnsupported)
	}
	if _, ok := s.sys.index[na]; !ok {
		return nil, fmt.Errorf("integrated: node not in this space: %w", dynamo.ErrUnsupported)
	}
	if _, ok := s.sys.index[nb]; !ok {
		return nil, fmt.Errorf("integrated: node not in this space: %w", dynamo.ErrUnsupported)
	}

	l := &Link{
		a:            na,
		b:            nb,
		actuated:     m.Actuated,
		expandFactor: 1,
		stiffness:    m.Stiffness,
		dampingRatio: m.DampingRatio,
	}
	l.relaxLength = l.Length()
	s.sys.links = append(s.sys.links, l)
	return l, nil
}

func (s *Space) AddRect(r physics.Rect) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.rects = append(s.rects, r)
	return nil
}

func (s *Space) AddTriangle(t *physics.Triangle) {
	s.triangles = append(s.triangles, t)
}

func (s *Space) Nodes() []physics.Node {
	nodes := make([]physics.Node, len(s.sys.nodes))
	for i, n := range s.sys.nodes {
		nodes[i] = n
	}
	return nodes
}

func (s *Space) Links() []physics.Link {
	links := make([]physics.Link, len(s.sys.links))
	for i, l := range s.sys.links {
		links[i] = l
	}
	return links
}

func (s *Space) Step() error {
	s.RunUpdates(s)

	for _, n := range s.sys.nodes {
		n.colliding = false
	}

	h := s.cfg.Dt / float64(s.cfg.Substeps)
	for k := 0; k < s.cfg.Substeps; k++ {
		x := s.cfg.Integrator.Step(s.sys, s.sys.pack(), nil, s.t+float64(k)*h, h)
		if !x.IsValid() {
			return dynamo.SimError{Time: s.t, Step: s.ticks, Wrapped: dynamo.ErrInvalidState}
		}
		s.sys.unpack(x)
		s.collide()
	}

	s.t += s.cfg.Dt
	s.ticks++
	s.AfterStep(s.t)
	return nil
}

func (s *Space) collide() {
	for _, n := range s.sys.nodes {
		if n.fixed {
			continue
		}
		for _, r := range s.rects {
			if !r.Contains(n.x, n.y) {
				continue
			}
			alongX, boundary, outward := r.Exit(n.x, n.y)
			if alongX {
				n.x = boundary
				n.vx, n.vy = s.bounce(n, n.vx*outward, n.vy, r.Restitution)
				n.vx *= outward
			} else {
				n.y = boundary
				n.vy, n.vx = s.bounce(n, n.vy*outward, n.vx, r.Restitution)
				n.vy *= outward
			}
			n.colliding = true
		}
		for _, t := range s.triangles {
			seg, depth, ok := t.Penetration(n.x, n.y)
			if !ok {
				continue
			}
			n.x -= depth * seg.NX
			n.y -= depth * seg.NY
			vn := n.vx*seg.NX + n.vy*seg.NY
			vt := n.vx*seg.TX + n.vy*seg.TY
			vn, vt = s.bounce(n, vn, vt, t.Restitution)
			n.vx = vn*seg.NX + vt*seg.TX
			n.vy = vn*seg.NY + vt*seg.TY
			n.colliding = true
		}
	}
}

// bounce takes the outward normal and the tangential velocity of a node in
// contact and returns them after restitution and friction.
func (s *Space) bounce(n *Node, vn, vt, restitution float64) (float64, float64) {
	if vn >= 0 {
		return vn, vt
	}
	next := 0.0
	if -vn >= s.cfg.RestitutionThreshold {
		next = -vn * restitution
	}

	maxFriction := n.friction * (next - vn)
	if math.Abs(vt) > 1 {
		maxFriction /= 2
	}
	if math.Abs(vt) <= maxFriction {
		vt = 0
	} else {
		vt -= math.Copysign(maxFriction, vt)
	}
	return next, vt
}
