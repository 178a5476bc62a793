package schema

import "fmt"

// Vec2 is a point or displacement in canvas coordinates.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul returns v scaled by f.
func (v Vec2) Mul(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

// Neg returns -v.
func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%.4g, %.4g)", v.X, v.Y)
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Centre returns the midpoint of the box.
func (b Bounds) Centre() Vec2 {
	return Vec2{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// TweenKind identifies the transform a tween applies.
type TweenKind string

const (
	// TweenRotation rotates a shape about a centre.
	TweenRotation TweenKind = "rotation"
	// TweenScale scales a shape about a centre.
	TweenScale TweenKind = "scale"
	// TweenTranslation moves a shape by a vector.
	TweenTranslation TweenKind = "translation"
)

// TweenState is the position of the clock relative to a tween's interval.
type TweenState int

const (
	// TweenNotStarted means the clock is before the tween start.
	TweenNotStarted TweenState = iota
	// TweenInProgress means the clock is inside [start, end].
	TweenInProgress
	// TweenFinished means the clock is past the tween end.
	TweenFinished
)

func (s TweenState) String() string {
	switch s {
	case TweenNotStarted:
		return "not_started"
	case TweenInProgress:
		return "in_progress"
	case TweenFinished:
		return "finished"
	default:
		return fmt.Sprintf("tween_state(%d)", int(s))
	}
}

// TweenSpec describes a tween to create.
type TweenSpec struct {
	Kind       TweenKind `yaml:"kind"`
	StartTime  float64   `yaml:"start"`
	TimeLength float64   `yaml:"length"`
	// Angle is the total rotation in radians for rotation tweens.
	Angle float64 `yaml:"angle"`
	// Factor is the total scale factor for scale tweens.
	Factor float64 `yaml:"factor"`
	// Vector is the total displacement for translation tweens.
	Vector Vec2 `yaml:"vector"`
	// Centre is the absolute pivot for rotation and scale tweens.
	Centre Vec2 `yaml:"centre"`
}

// EndTime returns StartTime+TimeLength.
func (s TweenSpec) EndTime() float64 {
	return s.StartTime + s.TimeLength
}

// ChangeKind identifies a discrete change applied at a point in time.
type ChangeKind string

const (
	// ChangeTranslate moves the shape by Vector.
	ChangeTranslate ChangeKind = "translate"
	// ChangeRotate rotates the shape by Angle about Centre.
	ChangeRotate ChangeKind = "rotate"
	// ChangeScale scales the shape by Factor about Centre.
	ChangeScale ChangeKind = "scale"
)

// Change is a reversible discrete edit carried by a change event.
type Change struct {
	Kind   ChangeKind `yaml:"kind"`
	Vector Vec2       `yaml:"vector"`
	Angle  float64    `yaml:"angle"`
	Factor float64    `yaml:"factor"`
	Centre Vec2       `yaml:"centre"`
}

// Inverse returns the change that undoes c.
func (c Change) Inverse() Change {
	out := c
	switch c.Kind {
	case ChangeTranslate:
		out.Vector = c.Vector.Neg()
	case ChangeRotate:
		out.Angle = -c.Angle
	case ChangeScale:
		out.Factor = 1 / c.Factor
	}
	return out
}

// ClockState is the single item of the clock model.
type ClockState struct {
	Time    float64
	End     float64
	Playing bool
}
