// Package geom holds the 2D vector maths shared by shapes and the editor core.
package geom

import (
	"math"

	"pkt.systems/tweenly/schema"
)

// Clamp limits v to [lower, upper].
func Clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b schema.Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b schema.Vec2) schema.Vec2 {
	return schema.Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Dot returns the dot product of a and b.
func Dot(a, b schema.Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// RotateAbout rotates p by angle radians about centre.
func RotateAbout(p schema.Vec2, angle float64, centre schema.Vec2) schema.Vec2 {
	if angle == 0 {
		return p
	}
	sin, cos := math.Sincos(angle)
	d := p.Sub(centre)
	return schema.Vec2{
		X: cos*d.X - sin*d.Y + centre.X,
		Y: sin*d.X + cos*d.Y + centre.Y,
	}
}

// ScaleAbout scales p by factor about centre.
func ScaleAbout(p schema.Vec2, factor float64, centre schema.Vec2) schema.Vec2 {
	if factor == 1 {
		return p
	}
	return p.Sub(centre).Mul(factor).Add(centre)
}

// BoundsOf returns the axis-aligned box around points. It returns a zero box for no points.
func BoundsOf(points ...schema.Vec2) schema.Bounds {
	if len(points) == 0 {
		return schema.Bounds{}
	}
	b := schema.Bounds{Left: points[0].X, Right: points[0].X, Top: points[0].Y, Bottom: points[0].Y}
	for _, p := range points[1:] {
		b.Left = math.Min(b.Left, p.X)
		b.Right = math.Max(b.Right, p.X)
		b.Top = math.Min(b.Top, p.Y)
		b.Bottom = math.Max(b.Bottom, p.Y)
	}
	return b
}

// RotatedRectBounds returns the bounding box of a w×h rectangle anchored at
// origin and rotated by angle about the same origin.
func RotatedRectBounds(origin schema.Vec2, w, h, angle float64) schema.Bounds {
	corners := []schema.Vec2{
		origin,
		{X: origin.X + w, Y: origin.Y},
		{X: origin.X, Y: origin.Y + h},
		{X: origin.X + w, Y: origin.Y + h},
	}
	for i := range corners {
		corners[i] = RotateAbout(corners[i], angle, origin)
	}
	return BoundsOf(corners...)
}

// RotatedEllipseBounds returns the bounding box of an ellipse with the given
// axes rotated by angle about its centre.
func RotatedEllipseBounds(centre schema.Vec2, width, height, angle float64) schema.Bounds {
	a := width / 2
	b := height / 2
	sin, cos := math.Sincos(angle)
	halfW := math.Sqrt(a*a*cos*cos + b*b*sin*sin)
	halfH := math.Sqrt(a*a*sin*sin + b*b*cos*cos)
	return schema.Bounds{
		Left:   centre.X - halfW,
		Right:  centre.X + halfW,
		Top:    centre.Y - halfH,
		Bottom: centre.Y + halfH,
	}
}

// AngleBetween returns the angle ABC in [0, 2π), measured so that a drag
// around B accumulates in one direction.
func AngleBetween(a, b, c schema.Vec2) float64 {
	ba := a.Sub(b)
	bc := c.Sub(b)
	denom := math.Hypot(ba.X, ba.Y) * math.Hypot(bc.X, bc.Y)
	if denom == 0 {
		return 0
	}
	nonReflex := math.Acos(Clamp(Dot(ba, bc)/denom, -1, 1))
	det := (c.X-a.X)*(b.Y-a.Y) - (c.Y-a.Y)*(b.X-a.X)
	if det >= 0 {
		return nonReflex
	}
	return 2*math.Pi - nonReflex
}

// AngleTracker accumulates the angle swept around a centre, counting full turns.
type AngleTracker struct {
	initial  schema.Vec2
	centre   schema.Vec2
	previous float64
	defect   float64
}

// NewAngleTracker starts tracking from initial around centre.
func NewAngleTracker(initial, centre schema.Vec2) *AngleTracker {
	return &AngleTracker{initial: initial, centre: centre}
}

// Next returns the cumulative angle for the current pointer position.
func (t *AngleTracker) Next(current schema.Vec2) float64 {
	angle := AngleBetween(t.initial, t.centre, current)
	if angle-t.previous > math.Pi {
		t.defect -= 2 * math.Pi
	} else if t.previous-angle > math.Pi {
		t.defect += 2 * math.Pi
	}
	t.previous = angle
	return t.defect + angle
}
