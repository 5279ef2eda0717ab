package creatures

import (
	"fmt"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
)

// NewCentipede builds a body whose hub is a braced ladder running along x
// from (CenterX, CenterY), one rung of size CenterRadius per arm. Arms hang
// below the ladder.
func NewCentipede(space physics.Space, arms [][]Dim, opts StarfishOptions) (*Starfish, error) {
	limb := func(base []physics.Node, heights, widths []float64, topts TentacleOptions) (*Tentacle, error) {
		return NewTentacle(space, base, heights, widths, topts)
	}
	return assemble(space, arms, opts, ladderHub, limb)
}

func ladderHub(s *Starfish, nBase int) ([][]physics.Node, error) {
	if size := s.kind.BaseSize(); size != 2 {
		return nil, fmt.Errorf("ladder hub: %w", dynamo.Shape("ladder base", 2, size))
	}
	size := s.opts.CenterRadius

	a, err := s.addHubNode(s.opts.CenterX, s.opts.CenterY)
	if err != nil {
		return nil, err
	}
	b, err := s.addHubNode(s.opts.CenterX, s.opts.CenterY+size)
	if err != nil {
		return nil, err
	}
	if err := s.addHubLink(a, b); err != nil {
		return nil, err
	}

	bases := make([][]physics.Node, 0, nBase)
	for i := 0; i < nBase; i++ {
		na, err := s.addHubNode(a.X()+size, a.Y())
		if err != nil {
			return nil, err
		}
		nb, err := s.addHubNode(b.X()+size, b.Y())
		if err != nil {
			return nil, err
		}
		for _, pair := range [][2]physics.Node{{a, na}, {b, nb}, {b, na}, {a, nb}, {na, nb}} {
			if err := s.addHubLink(pair[0], pair[1]); err != nil {
				return nil, err
			}
		}
		bases = append(bases, []physics.Node{na, a})
		a, b = na, nb
	}
	return bases, nil
}
