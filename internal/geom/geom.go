// Package geom holds the planar helpers used to lay out creature parts.
package geom

import (
	"fmt"
	"math"

	"github.com/san-kum/springs/internal/dynamo"
)

// Point is anything with a planar position.
type Point interface {
	X() float64
	Y() float64
}

// Vec is a plain planar coordinate.
type Vec struct{ PX, PY float64 }

func (v Vec) X() float64 { return v.PX }
func (v Vec) Y() float64 { return v.PY }

func Distance(a, b Point) float64 {
	dx, dy := a.X()-b.X(), a.Y()-b.Y()
	return math.Sqrt(dx*dx + dy*dy)
}

// PosRel maps (x, y) from the frame centered on the midpoint of a and b, with
// its x axis pointing from a to b, back to world coordinates.
func PosRel(x, y float64, a, b Point) (float64, float64) {
	angle := math.Atan2(b.Y()-a.Y(), b.X()-a.X())
	ox := (a.X() + b.X()) / 2
	oy := (a.Y() + b.Y()) / 2
	cos, sin := math.Cos(angle), math.Sin(angle)
	return x*cos - y*sin + ox, x*sin + y*cos + oy
}

// Polygon returns the vertices of a regular n-gon with sides of length size.
func Polygon(n int, cx, cy, size float64) []Vec {
	radius := size / math.Sqrt(2*(1-math.Cos(2*math.Pi/float64(n))))

	x, y := 0.0, radius
	cos, sin := math.Cos(2*math.Pi/float64(n)), math.Sin(2*math.Pi/float64(n))
	vertices := make([]Vec, 0, n)
	for i := 0; i < n; i++ {
		x, y = x*cos-y*sin, x*sin+y*cos
		vertices = append(vertices, Vec{x + cx, y + cy})
	}
	return vertices
}

// Angle returns the angle at vertex b from c to a, counterclockwise positive.
// The result lies in [-2π, 2π]; callers that need (-π, π] use Wrap.
func Angle(a, b, c Point) float64 {
	return math.Atan2(a.Y()-b.Y(), a.X()-b.X()) - math.Atan2(c.Y()-b.Y(), c.X()-b.X())
}

// Wrap maps an angle to (-π, π].
func Wrap(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// Listify broadcasts a single value to n entries. n values are returned as is.
func Listify(values []float64, n int) ([]float64, error) {
	switch len(values) {
	case n:
		return values, nil
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = values[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("listify: %w", dynamo.Shape("listify", n, len(values)))
	}
}
