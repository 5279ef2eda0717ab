package impulse

import (
	"math"

	"github.com/san-kum/springs/internal/physics"
)

func clamp(lower, v, upper float64) float64 {
	return math.Max(lower, math.Min(v, upper))
}

// rectCollision resolves one node inside one rect along the shortest exit axis.
type rectCollision struct {
	node     *Node
	rect     physics.Rect
	alongX   bool
	disabled bool
	bias     float64

	diffVX, diffVY float64
}

func newRectCollision(r physics.Rect, n *Node, threshold float64) *rectCollision {
	c := &rectCollision{node: n, rect: r}
	alongX, boundary, outward := r.Exit(n.x, n.y)
	c.alongX = alongX

	// velocity along the axis, positive into the rect
	v := n.vy
	if alongX {
		n.x = boundary
		v = n.vx
	} else {
		n.y = boundary
	}
	v = -v * outward

	switch {
	case v < 0:
		// already leaving
		c.disabled = true
	case v < threshold:
		c.bias = 0
	default:
		c.bias = v * r.Restitution * outward
	}
	return c
}

func (c *rectCollision) substep() {
	if c.disabled {
		return
	}
	n := c.node

	if c.alongX {
		maxFriction := n.friction * math.Abs(c.diffVX)
		if math.Abs(n.vy) > 1 {
			maxFriction /= 2
		}
		diffVY := clamp(-maxFriction, c.diffVY-n.vy, maxFriction)
		n.vy += diffVY - c.diffVY
		c.diffVY = diffVY

		diffVX := c.diffVX + c.bias - n.vx
		n.vx += diffVX - c.diffVX
		c.diffVX = diffVX
		return
	}

	maxFriction := n.friction * math.Abs(c.diffVY)
	if math.Abs(n.vx) > 1 {
		maxFriction /= 2
	}
	diffVX := clamp(-maxFriction, c.diffVX-n.vx, maxFriction)
	n.vx += diffVX - c.diffVX
	c.diffVX = diffVX

	diffVY := c.diffVY + c.bias - n.vy
	n.vy += diffVY - c.diffVY
	c.diffVY = diffVY
}

// contact pushes a node out of a triangle along the closest edge normal.
type contact struct {
	node    *Node
	segment *physics.Segment
	bias    float64

	diffVN, diffVT float64
}

func newContact(t *physics.Triangle, n *Node) (*contact, bool) {
	seg, depth, ok := t.Penetration(n.x, n.y)
	if !ok {
		return nil, false
	}
	n.x -= depth * seg.NX
	n.y -= depth * seg.NY

	vn := n.vx*seg.NX + n.vy*seg.NY
	return &contact{node: n, segment: seg, bias: vn * t.Restitution}, true
}

func (c *contact) substep() {
	n, s := c.node, c.segment

	vt := n.vx*s.TX + n.vy*s.TY
	maxFriction := n.friction * math.Abs(c.diffVN)
	if math.Abs(vt) > 1 {
		maxFriction /= 2
	}
	diffVT := clamp(-maxFriction, c.diffVT-vt, maxFriction)
	n.vx += (diffVT - c.diffVT) * s.TX
	n.vy += (diffVT - c.diffVT) * s.TY
	c.diffVT = diffVT

	vn := n.vx*s.NX + n.vy*s.NY
	diffVN := c.diffVN - vn - c.bias
	n.vx += (diffVN - c.diffVN) * s.NX
	n.vy += (diffVN - c.diffVN) * s.NY
	c.diffVN = diffVN
}
