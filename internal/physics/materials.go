package physics

import (
	"fmt"

	"github.com/san-kum/springs/internal/dynamo"
)

type NodeMaterial struct {
	Mass     float64 `yaml:"mass" json:"mass"`
	Friction float64 `yaml:"friction" json:"friction"`
	Fixed    bool    `yaml:"fixed,omitempty" json:"fixed,omitempty"`
}

type LinkType string

const (
	// LinkTypeLink is a soft constraint solved implicitly.
	LinkTypeLink LinkType = "link"
	// LinkTypeSpring applies an explicit spring impulse with iterative drag.
	LinkTypeSpring LinkType = "spring"
)

type LinkMaterial struct {
	Stiffness    float64  `yaml:"stiffness" json:"stiffness"`
	DampingRatio float64  `yaml:"damping_ratio" json:"damping_ratio"`
	Actuated     bool     `yaml:"actuated,omitempty" json:"actuated,omitempty"`
	Type         LinkType `yaml:"type,omitempty" json:"type,omitempty"`
}

func (m NodeMaterial) Validate() error {
	if m.Mass <= 0 && !m.Fixed {
		return fmt.Errorf("node material: mass %v must be positive: %w", m.Mass, dynamo.ErrConstruction)
	}
	if m.Friction < 0 {
		return fmt.Errorf("node material: friction %v must be non-negative: %w", m.Friction, dynamo.ErrConstruction)
	}
	return nil
}

func (m LinkMaterial) Validate() error {
	if m.Stiffness < 0 || m.DampingRatio < 0 {
		return fmt.Errorf("link material: stiffness %v and damping %v must be non-negative: %w",
			m.Stiffness, m.DampingRatio, dynamo.ErrConstruction)
	}
	switch m.Type {
	case "", LinkTypeLink, LinkTypeSpring:
	default:
		return fmt.Errorf("link material: type %q: %w", m.Type, dynamo.ErrUnsupported)
	}
	return nil
}

// Kind returns the link type, defaulting to LinkTypeLink.
func (m LinkMaterial) Kind() LinkType {
	if m.Type == "" {
		return LinkTypeLink
	}
	return m.Type
}
