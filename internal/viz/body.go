package viz

import (
	"math"

	"github.com/san-kum/springs/internal/physics"
)

// DrawBody draws every link on a w x h canvas. The body's bounding box is
// scaled uniformly to fit, with world y pointing up.
func DrawBody(links []physics.Link, w, h int) *Canvas {
	c := NewCanvas(w, h)
	if len(links) == 0 {
		return c
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, l := range links {
		for _, n := range []physics.Node{l.NodeA(), l.NodeB()} {
			minX, maxX = math.Min(minX, n.X()), math.Max(maxX, n.X())
			minY, maxY = math.Min(minY, n.Y()), math.Max(maxY, n.Y())
		}
	}

	pw, ph := float64(c.PixelWidth()-1), float64(c.PixelHeight()-1)
	scale := math.Min(pw/math.Max(maxX-minX, 1e-9), ph/math.Max(maxY-minY, 1e-9))
	toPixel := func(n physics.Node) (int, int) {
		px := (n.X() - minX) * scale
		py := ph - (n.Y()-minY)*scale
		return int(math.Round(px)), int(math.Round(py))
	}

	for _, l := range links {
		x0, y0 := toPixel(l.NodeA())
		x1, y1 := toPixel(l.NodeB())
		c.DrawLine(x0, y0, x1, y1)
	}
	return c
}
