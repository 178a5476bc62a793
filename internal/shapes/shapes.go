// Package shapes provides the drawables placed on the timeline: ellipses,
// graphics, text and freehand drawings. Each one reports a reference point
// that moves rigidly with the shape, which is what tweens pivot against.
package shapes

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"pkt.systems/tweenly/internal/geom"
	"pkt.systems/tweenly/schema"
)

// Kind identifies a shape variant.
type Kind string

// Supported kinds.
const (
	KindEllipse Kind = "ellipse"
	KindGraphic Kind = "graphic"
	KindText    Kind = "text"
	KindDrawing Kind = "drawing"
)

const (
	// DefaultFontSize is used for text without an explicit size.
	DefaultFontSize = 16.0
	// DrawingTolerance is the decimation epsilon for freehand lines.
	DrawingTolerance = 1.0
	// glyphAspect approximates the advance width of a glyph relative to the font size.
	glyphAspect = 0.6
)

// Shape is a tagged variant over the supported kinds.
type Shape struct {
	kind Kind
	// anchor is the ellipse centre, graphic top-left or text bottom-left.
	anchor    schema.Vec2
	width     float64
	height    float64
	rotation  float64
	thickness float64
	points    []schema.Vec2
	text      string
	fontSize  float64
	bounds    schema.Bounds
}

// NewEllipse returns an ellipse centred at centre.
func NewEllipse(centre schema.Vec2, width, height, thickness float64) *Shape {
	s := &Shape{kind: KindEllipse, anchor: centre, width: width, height: height, thickness: thickness}
	s.UpdateGeometry()
	return s
}

// NewGraphic returns an image placeholder of the given size at topLeft.
func NewGraphic(topLeft schema.Vec2, width, height float64) *Shape {
	s := &Shape{kind: KindGraphic, anchor: topLeft, width: width, height: height}
	s.UpdateGeometry()
	return s
}

// NewText returns a text label whose baseline starts at bottomLeft.
func NewText(bottomLeft schema.Vec2, text string, fontSize float64) *Shape {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	s := &Shape{kind: KindText, anchor: bottomLeft, text: text, fontSize: fontSize}
	s.measure()
	s.UpdateGeometry()
	return s
}

// NewDrawing returns a freehand line, simplified with DrawingTolerance.
func NewDrawing(points []schema.Vec2, thickness float64) *Shape {
	s := &Shape{kind: KindDrawing, points: geom.Decimate(points, DrawingTolerance), thickness: thickness}
	s.UpdateGeometry()
	return s
}

// New builds a shape from a kind name and generic parameters.
func New(kind Kind, at schema.Vec2, width, height float64, text string, points []schema.Vec2) (*Shape, error) {
	switch kind {
	case KindEllipse:
		return NewEllipse(at, width, height, 0), nil
	case KindGraphic:
		return NewGraphic(at, width, height), nil
	case KindText:
		return NewText(at, text, height), nil
	case KindDrawing:
		if len(points) == 0 {
			return nil, fmt.Errorf("drawing needs at least one point")
		}
		return NewDrawing(points, 0), nil
	}
	return nil, fmt.Errorf("unknown shape kind %q", kind)
}

// Kind returns the variant.
func (s *Shape) Kind() Kind { return s.kind }

// KindName returns the variant name used for generated shape names.
func (s *Shape) KindName() string { return string(s.kind) }

// Rotation returns the accumulated rotation in radians.
func (s *Shape) Rotation() float64 { return s.rotation }

// Size returns the unrotated width and height.
func (s *Shape) Size() (float64, float64) { return s.width, s.height }

// Bounds returns the axis-aligned box computed by the last UpdateGeometry.
func (s *Shape) Bounds() schema.Bounds { return s.bounds }

// Text returns the label of a text shape.
func (s *Shape) Text() string { return s.text }

// Points returns a copy of a drawing's points.
func (s *Shape) Points() []schema.Vec2 { return slices.Clone(s.points) }

// SetText replaces the label and re-measures it.
func (s *Shape) SetText(text string) {
	s.text = text
	s.measure()
	s.UpdateGeometry()
}

// Position returns the shape's centre.
func (s *Shape) Position() schema.Vec2 {
	switch s.kind {
	case KindGraphic:
		return s.anchor.Add(geom.RotateAbout(schema.Vec2{X: s.width / 2, Y: s.height / 2}, s.rotation, schema.Vec2{}))
	case KindText:
		return s.anchor.Add(geom.RotateAbout(schema.Vec2{X: s.width / 2, Y: -s.height / 2}, s.rotation, schema.Vec2{}))
	case KindDrawing:
		if len(s.points) == 0 {
			return schema.Vec2{}
		}
		var sum schema.Vec2
		for _, p := range s.points {
			sum = sum.Add(p)
		}
		return sum.Mul(1 / float64(len(s.points)))
	}
	return s.anchor
}

// Translate moves the shape by v.
func (s *Shape) Translate(v schema.Vec2) {
	s.anchor = s.anchor.Add(v)
	for i := range s.points {
		s.points[i] = s.points[i].Add(v)
	}
}

// Rotate turns the shape by angle radians about centre.
func (s *Shape) Rotate(angle float64, centre schema.Vec2) {
	s.anchor = geom.RotateAbout(s.anchor, angle, centre)
	for i := range s.points {
		s.points[i] = geom.RotateAbout(s.points[i], angle, centre)
	}
	s.rotation += angle
}

// Scale resizes the shape by factor about centre. A negative factor is a
// half turn followed by the positive scale.
func (s *Shape) Scale(factor float64, centre schema.Vec2) {
	if factor < 0 {
		s.Rotate(math.Pi, centre)
		factor = -factor
	}
	s.anchor = geom.ScaleAbout(s.anchor, factor, centre)
	for i := range s.points {
		s.points[i] = geom.ScaleAbout(s.points[i], factor, centre)
	}
	s.width *= factor
	s.height *= factor
	s.thickness *= factor
	s.fontSize *= factor
}

// UpdateGeometry recomputes the bounding box.
func (s *Shape) UpdateGeometry() {
	switch s.kind {
	case KindEllipse:
		s.bounds = geom.RotatedEllipseBounds(s.anchor, s.width+s.thickness, s.height+s.thickness, s.rotation)
	case KindGraphic:
		s.bounds = geom.RotatedRectBounds(s.anchor, s.width, s.height, s.rotation)
	case KindText:
		topLeft := s.anchor.Add(geom.RotateAbout(schema.Vec2{Y: -s.height}, s.rotation, schema.Vec2{}))
		s.bounds = geom.RotatedRectBounds(topLeft, s.width, s.height, s.rotation)
	case KindDrawing:
		b := geom.BoundsOf(s.points...)
		pad := s.thickness / 2
		s.bounds = schema.Bounds{Left: b.Left - pad, Top: b.Top - pad, Right: b.Right + pad, Bottom: b.Bottom + pad}
	}
}

// Copy returns an independent copy.
func (s *Shape) Copy() *Shape {
	out := *s
	out.points = slices.Clone(s.points)
	return &out
}

func (s *Shape) String() string {
	return fmt.Sprintf("%s at %s", s.kind, s.Position())
}

func (s *Shape) measure() {
	s.width = float64(utf8.RuneCountInString(s.text)) * s.fontSize * glyphAspect
	s.height = s.fontSize
}
