package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/springs/internal/dynamo"
)

// Displacement is the signed x distance covered by the body center between
// the first and last observation.
type Displacement struct {
	name         string
	x0, x        float64
	observations int
}

func NewDisplacement() *Displacement {
	return &Displacement{name: "displacement"}
}

func (d *Displacement) Name() string { return d.name }

func (d *Displacement) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 1 {
		return
	}
	if d.observations == 0 {
		d.x0 = x[0]
	}
	d.x = x[0]
	d.observations++
}

func (d *Displacement) Value() float64 {
	if d.observations == 0 {
		return 0
	}
	return d.x - d.x0
}

func (d *Displacement) Reset() {
	d.x0, d.x = 0, 0
	d.observations = 0
}

// PathLength is the length of the polyline traced by the body center.
type PathLength struct {
	name       string
	prevX      float64
	prevY      float64
	length     float64
	hasHistory bool
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 2 {
		return
	}
	if p.hasHistory {
		p.length += math.Hypot(x[0]-p.prevX, x[1]-p.prevY)
	}
	p.prevX, p.prevY = x[0], x[1]
	p.hasHistory = true
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.length = 0
	p.hasHistory = false
}

// MeanHeight is the mean y of the body center.
type MeanHeight struct {
	name string
	ys   []float64
}

func NewMeanHeight() *MeanHeight {
	return &MeanHeight{name: "mean_height"}
}

func (m *MeanHeight) Name() string { return m.name }

func (m *MeanHeight) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 2 {
		return
	}
	m.ys = append(m.ys, x[1])
}

func (m *MeanHeight) Value() float64 {
	if len(m.ys) == 0 {
		return 0
	}
	return stat.Mean(m.ys, nil)
}

func (m *MeanHeight) Reset() { m.ys = m.ys[:0] }

// Standard returns the metrics recorded for every run.
func Standard() []dynamo.Metric {
	return []dynamo.Metric{
		NewDisplacement(),
		NewPathLength(),
		NewControlEffort(),
		NewMeanHeight(),
	}
}
