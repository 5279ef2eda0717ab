package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springs/internal/dynamo"
)

// ControlEffort is the mean absolute muscle signal per muscle input, averaged
// over steps. Bodies with more muscles are not penalised for their size.
type ControlEffort struct {
	sum     float64
	peak    float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(_ dynamo.State, u dynamo.Control, _ float64) {
	if len(u) == 0 {
		return
	}
	c.sum += floats.Norm(u, 1) / float64(len(u))
	c.peak = math.Max(c.peak, floats.Norm(u, math.Inf(1)))
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

// Peak is the largest single signal seen.
func (c *ControlEffort) Peak() float64 { return c.peak }

func (c *ControlEffort) Reset() {
	c.sum, c.peak, c.samples = 0, 0, 0
}
