package creatures

import (
	"fmt"
	"sort"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
)

// Role names the function of a node or link within a part. Materials are
// looked up by role.
type Role string

const (
	NodeCenter  Role = "node_center"
	NodeSection Role = "node_section"
	NodeTip     Role = "node_tip"

	LinkSecDiag    Role = "link_sec_diag"
	LinkSecBigDiag Role = "link_sec_big_diag"
	LinkSecCenter  Role = "link_sec_center"
	LinkSecWidth   Role = "link_sec_width"
	LinkSecSide    Role = "link_sec_side"
	LinkCenter     Role = "link_center"
	LinkTip        Role = "link_tip"
)

var nodeRoles = []Role{NodeCenter, NodeSection, NodeTip}

var linkRoles = []Role{
	LinkSecDiag, LinkSecBigDiag, LinkSecCenter, LinkSecWidth, LinkSecSide, LinkCenter, LinkTip,
}

func NodeRoles() []Role { return append([]Role(nil), nodeRoles...) }
func LinkRoles() []Role { return append([]Role(nil), linkRoles...) }

func isNodeRole(r Role) bool {
	for _, role := range nodeRoles {
		if role == r {
			return true
		}
	}
	return false
}

func isLinkRole(r Role) bool {
	for _, role := range linkRoles {
		if role == r {
			return true
		}
	}
	return false
}

type Materials struct {
	Nodes map[Role]physics.NodeMaterial `yaml:"nodes" json:"nodes"`
	Links map[Role]physics.LinkMaterial `yaml:"links" json:"links"`
}

func DefaultMaterials() Materials {
	node := physics.NodeMaterial{Mass: 1, Friction: 0.5}
	return Materials{
		Nodes: map[Role]physics.NodeMaterial{
			NodeCenter:  node,
			NodeSection: node,
			NodeTip:     node,
		},
		Links: map[Role]physics.LinkMaterial{
			LinkSecDiag:    {Stiffness: 100000, DampingRatio: 1},
			LinkSecBigDiag: {Stiffness: 50000, DampingRatio: 1},
			LinkSecCenter:  {Stiffness: 50000, DampingRatio: 1},
			LinkSecWidth:   {Stiffness: 12000, DampingRatio: 1},
			LinkSecSide:    {Stiffness: 3000, DampingRatio: 1, Actuated: true},
			LinkCenter:     {Stiffness: 500000, DampingRatio: 1},
			LinkTip:        {Stiffness: 500000, DampingRatio: 1},
		},
	}
}

// Merge returns m with every role set in over replaced.
func (m Materials) Merge(over Materials) Materials {
	out := Materials{
		Nodes: make(map[Role]physics.NodeMaterial, len(m.Nodes)),
		Links: make(map[Role]physics.LinkMaterial, len(m.Links)),
	}
	for r, v := range m.Nodes {
		out.Nodes[r] = v
	}
	for r, v := range m.Links {
		out.Links[r] = v
	}
	for r, v := range over.Nodes {
		out.Nodes[r] = v
	}
	for r, v := range over.Links {
		out.Links[r] = v
	}
	return out
}

// Validate rejects unknown roles and invalid materials.
func (m Materials) Validate() error {
	for _, r := range sortedRoles(m.Nodes) {
		if !isNodeRole(r) {
			return fmt.Errorf("node material %q: %w", r, dynamo.ErrUnknownRole)
		}
		if err := m.Nodes[r].Validate(); err != nil {
			return fmt.Errorf("node material %q: %w", r, err)
		}
	}
	for _, r := range sortedRoles(m.Links) {
		if !isLinkRole(r) {
			return fmt.Errorf("link material %q: %w", r, dynamo.ErrUnknownRole)
		}
		if err := m.Links[r].Validate(); err != nil {
			return fmt.Errorf("link material %q: %w", r, err)
		}
	}
	return nil
}

// Require checks that every role is defined.
func (m Materials) Require(roles ...Role) error {
	for _, r := range roles {
		_, node := m.Nodes[r]
		_, link := m.Links[r]
		if !node && !link {
			return fmt.Errorf("material %q is not defined: %w", r, dynamo.ErrUnknownRole)
		}
	}
	return nil
}

func (m Materials) node(r Role) (physics.NodeMaterial, error) {
	mat, ok := m.Nodes[r]
	if !ok {
		return mat, fmt.Errorf("node material %q: %w", r, dynamo.ErrUnknownRole)
	}
	return mat, nil
}

func (m Materials) link(r Role) (physics.LinkMaterial, error) {
	mat, ok := m.Links[r]
	if !ok {
		return mat, fmt.Errorf("link material %q: %w", r, dynamo.ErrUnknownRole)
	}
	return mat, nil
}

func sortedRoles[V any](m map[Role]V) []Role {
	roles := make([]Role, 0, len(m))
	for r := range m {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
