package impulse

import (
	"fmt"
	"math"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
)

type Config struct {
	Dt       float64
	Substeps int
	GravityX float64
	GravityY float64
	// RestitutionThreshold is the impact speed below which rect collisions
	// do not bounce.
	RestitutionThreshold float64
}

func DefaultConfig() Config {
	return Config{
		Dt:                   0.1,
		Substeps:             5,
		GravityY:             -0.1,
		RestitutionThreshold: 1.0,
	}
}

type Space struct {
	*physics.Hooks

	cfg   Config
	t     float64
	ticks int

	nodes     []*Node
	links     []*Link
	rects     []physics.Rect
	triangles []*physics.Triangle
}

var _ physics.Space = (*Space)(nil)

func New(cfg Config) (*Space, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("impulse: dt %v must be positive: %w", cfg.Dt, dynamo.ErrConstruction)
	}
	if cfg.Substeps < 1 {
		return nil, fmt.Errorf("impulse: substeps %d must be at least 1: %w", cfg.Substeps, dynamo.ErrConstruction)
	}
	return &Space{Hooks: physics.NewHooks(cfg.Dt), cfg: cfg}, nil
}

func (s *Space) Dt() float64 { return s.cfg.Dt }
func (s *Space) T() float64  { return s.t }
func (s *Space) Ticks() int  { return s.ticks }

func (s *Space) AddNode(x, y float64, m physics.NodeMaterial) physics.Node {
	n := newNode(s.cfg.Dt, x, y, m.Mass, m.Friction, m.Fixed)
	s.nodes = append(s.nodes, n)
	return n
}

func (s *Space) own(n physics.Node) (*Node, error) {
	node, ok := n.(*Node)
	if !ok {
		return nil, fmt.Errorf("impulse: node of type %T: %w", n, dynamo.ErrUnsupported)
	}
	return node, nil
}

func (s *Space) AddLink(a, b physics.Node, m physics.LinkMaterial) (physics.Link, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	na, err := s.own(a)
	if err != nil {
		return nil, err
	}
	nb, err := s.own(b)
	if err != nil {
		return nil, err
	}
	l := newLink(s.cfg.Dt, na, nb, m)
	s.links = append(s.links, l)
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
	nodes := make([]physics.Node, len(s.nodes))
	for i, n := range s.nodes {
		nodes[i] = n
	}
	return nodes
}

func (s *Space) Links() []physics.Link {
	links := make([]physics.Link, len(s.links))
	for i, l := range s.links {
		links[i] = l
	}
	return links
}

func (s *Space) Step() error {
	s.RunUpdates(s)

	dt := s.cfg.Dt
	for _, n := range s.nodes {
		n.colliding = false
		if !n.fixed {
			n.vx += s.cfg.GravityX * dt
			n.vy += s.cfg.GravityY * dt
		}
	}

	for _, l := range s.links {
		l.prestep()
	}

	var collisions []*rectCollision
	var contacts []*contact
	for _, n := range s.nodes {
		for _, r := range s.rects {
			if r.Contains(n.x, n.y) {
				collisions = append(collisions, newRectCollision(r, n, s.cfg.RestitutionThreshold))
				n.colliding = true
			}
		}
		for _, t := range s.triangles {
			if c, ok := newContact(t, n); ok {
				contacts = append(contacts, c)
				n.colliding = true
			}
		}
	}

	for k := 0; k < s.cfg.Substeps; k++ {
		for _, c := range collisions {
			c.substep()
		}
		for _, c := range contacts {
			c.substep()
		}
		for _, l := range s.links {
			l.substep()
		}
	}

	for _, n := range s.nodes {
		n.updatePosition()
	}

	s.t += dt
	s.ticks++

	for i, n := range s.nodes {
		if math.IsNaN(n.x) || math.IsNaN(n.y) || math.IsInf(n.x, 0) || math.IsInf(n.y, 0) {
			return dynamo.SimError{
				Time:    s.t,
				Step:    s.ticks,
				Wrapped: fmt.Errorf("node %d at (%v, %v): %w", i, n.x, n.y, dynamo.ErrInvalidState),
			}
		}
	}

	s.AfterStep(s.t)
	return nil
}
