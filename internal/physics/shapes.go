package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/springs/internal/dynamo"
)

// Rect is an axis-aligned static collider.
type Rect struct {
	XL, XR, YB, YT float64
	Restitution    float64
}

func (r Rect) Validate() error {
	if !(r.XL < r.XR) || !(r.YB < r.YT) {
		return fmt.Errorf("rect [%v, %v]x[%v, %v]: %w", r.XL, r.XR, r.YB, r.YT, dynamo.ErrConstruction)
	}
	return nil
}

func (r Rect) Contains(x, y float64) bool {
	return r.XL < x && x <= r.XR && r.YB < y && y <= r.YT
}

// Exit returns where a point inside the rect leaves it by the shortest path:
// the axis (true for x), the boundary coordinate on that axis and the outward
// direction (+1 or -1).
func (r Rect) Exit(x, y float64) (alongX bool, boundary, outward float64) {
	dxL, dxR := x-r.XL, r.XR-x
	dyB, dyT := y-r.YB, r.YT-y

	if math.Min(dxL, dxR) < math.Min(dyB, dyT) {
		if dxL < dxR {
			return true, r.XL, -1
		}
		return true, r.XR, 1
	}
	if dyB < dyT {
		return false, r.YB, -1
	}
	return false, r.YT, 1
}

// Segment is a triangle edge with its outward normal.
type Segment struct {
	X1, Y1, X2, Y2 float64
	Length         float64
	NX, NY         float64
	TX, TY         float64
}

func newSegment(x1, y1, x2, y2 float64) Segment {
	s := Segment{X1: x1, Y1: y1, X2: x2, Y2: y2}
	dx, dy := x2-x1, y2-y1
	s.Length = math.Hypot(dx, dy)
	s.TX, s.TY = dx/s.Length, dy/s.Length
	s.NX, s.NY = -s.TY, s.TX
	return s
}

func (s *Segment) flip() {
	s.NX, s.NY = -s.NX, -s.NY
	s.TX, s.TY = -s.TX, -s.TY
}

// DotNormal is the signed distance of (x, y) from the segment's line,
// positive outside.
func (s *Segment) DotNormal(x, y float64) float64 {
	return (x-s.X1)*s.NX + (y-s.Y1)*s.NY
}

// Triangle is a static collider with outward-facing edge normals.
type Triangle struct {
	Restitution float64
	Segments    [3]Segment

	xMin, xMax, yMin, yMax float64
}

func NewTriangle(xA, yA, xB, yB, xC, yC, restitution float64) (*Triangle, error) {
	if area := (xB-xA)*(yC-yA) - (xC-xA)*(yB-yA); area == 0 {
		return nil, fmt.Errorf("triangle (%v,%v) (%v,%v) (%v,%v) is degenerate: %w",
			xA, yA, xB, yB, xC, yC, dynamo.ErrConstruction)
	}

	t := &Triangle{
		Restitution: restitution,
		Segments: [3]Segment{
			newSegment(xA, yA, xB, yB),
			newSegment(xB, yB, xC, yC),
			newSegment(xC, yC, xA, yA),
		},
		xMin: math.Min(xA, math.Min(xB, xC)),
		xMax: math.Max(xA, math.Max(xB, xC)),
		yMin: math.Min(yA, math.Min(yB, yC)),
		yMax: math.Max(yA, math.Max(yB, yC)),
	}

	// the opposite vertex must lie on the inner side of each edge
	opposite := [3][2]float64{{xC, yC}, {xA, yA}, {xB, yB}}
	for i := range t.Segments {
		s := &t.Segments[i]
		if s.DotNormal(opposite[i][0], opposite[i][1]) >= 0 {
			s.flip()
		}
	}
	return t, nil
}

// Penetration reports the edge closest to a point inside the triangle and the
// (non-positive) signed distance to it. ok is false when the point is outside.
func (t *Triangle) Penetration(x, y float64) (seg *Segment, depth float64, ok bool) {
	if !(t.xMin < x && x <= t.xMax && t.yMin < y && y <= t.yMax) {
		return nil, 0, false
	}

	depth = math.Inf(-1)
	for i := range t.Segments {
		d := t.Segments[i].DotNormal(x, y)
		if d > 0 {
			return nil, 0, false
		}
		if d > depth {
			depth = d
			seg = &t.Segments[i]
		}
	}
	return seg, depth, true
}
