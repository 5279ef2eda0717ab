package controllers

import (
	"math"

	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/physics"
)

// Growth raises the height development factor of a body from Birth to 1 at
// Rate per unit of time, starting after Delay.
type Growth struct {
	Birth float64
	Rate  float64
	Delay float64
}

func (g Growth) Factor(t float64) float64 {
	grown := g.Birth + g.Rate*math.Max(0, t-g.Delay)
	return math.Min(1, grown)
}

// Controller returns a body controller applying the factor every step. It
// stops touching the body once fully grown.
func (g Growth) Controller(ds *creatures.DevStarfish) creatures.Controller {
	done := false
	return func(_ *creatures.Starfish, space physics.Space) error {
		if done {
			return nil
		}
		f := g.Factor(space.T())
		done = f >= 1
		return ds.ChangeHeightDevFactor(f)
	}
}
