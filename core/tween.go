package core

import (
	"cmp"
	"fmt"
	"slices"

	"pkt.systems/tweenly/schema"
)

// motion is the kind-specific part of a tween. Implementations track the
// amount already applied so that each step only applies the remaining delta.
type motion interface {
	// goTo moves the geometry to fraction f of the total transform.
	goTo(g Geometry, f float64) bool
	// finish applies the exact total transform.
	finish(g Geometry) bool
	// rewind returns to the identity transform and clears tracking.
	rewind(g Geometry) bool
}

// Tween is a time-bounded continuous transform of a shape.
type Tween struct {
	kind       schema.TweenKind
	shape      *Shape
	startTime  float64
	timeLength float64
	state      schema.TweenState
	seq        uint64

	start  *Event
	end    *Event
	motion motion
}

func newTween(shape *Shape, spec schema.TweenSpec) (*Tween, error) {
	if shape == nil {
		return nil, schema.ErrUnknownShape
	}
	if err := schema.ValidateTweenSpec(spec); err != nil {
		return nil, err
	}
	if err := schema.ValidateTweenBounds(spec.StartTime, spec.TimeLength, shape.AppearanceTime(), shape.DisappearanceTime()); err != nil {
		return nil, err
	}
	pos := shape.geometry.Position()
	tw := &Tween{
		kind:       spec.Kind,
		shape:      shape,
		startTime:  spec.StartTime,
		timeLength: spec.TimeLength,
	}
	switch spec.Kind {
	case schema.TweenRotation:
		tw.motion = &rotationMotion{total: spec.Angle, relativeCentre: spec.Centre.Sub(pos)}
	case schema.TweenScale:
		tw.motion = &scaleMotion{total: spec.Factor, applied: 1, relativeCentre: spec.Centre.Sub(pos)}
	case schema.TweenTranslation:
		tw.motion = &translationMotion{total: spec.Vector}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", schema.ErrInvalidTween, spec.Kind)
	}
	tw.start = &Event{typ: schema.EventTweenStart, shape: shape, time: tw.startTime, tween: tw}
	tw.end = &Event{typ: schema.EventTweenEnd, shape: shape, time: tw.EndTime(), tween: tw}
	return tw, nil
}

// Kind returns the tween kind.
func (tw *Tween) Kind() schema.TweenKind { return tw.kind }

// Shape returns the animated shape.
func (tw *Tween) Shape() *Shape { return tw.shape }

// StartTime returns the time the tween begins.
func (tw *Tween) StartTime() float64 { return tw.startTime }

// TimeLength returns the tween duration.
func (tw *Tween) TimeLength() float64 { return tw.timeLength }

// EndTime returns StartTime+TimeLength.
func (tw *Tween) EndTime() float64 { return tw.startTime + tw.timeLength }

// State returns where the tween was last evaluated.
func (tw *Tween) State() schema.TweenState { return tw.state }

// StartEvent returns the tweenStart timeline event.
func (tw *Tween) StartEvent() *Event { return tw.start }

// EndEvent returns the tweenEnd timeline event.
func (tw *Tween) EndEvent() *Event { return tw.end }

// GoToTime moves the shape to the transform the tween has at time t.
// Calling it twice with the same t changes nothing the second time.
func (tw *Tween) GoToTime(t float64) {
	tw.goToTime(t)
}

// Finish applies the remaining transform up to the exact total.
func (tw *Tween) Finish() {
	tw.finish()
}

// BeforeStart undoes everything the tween has applied.
func (tw *Tween) BeforeStart() {
	tw.beforeStart()
}

func (tw *Tween) goToTime(t float64) bool {
	switch {
	case t >= tw.EndTime():
		return tw.finish()
	case t <= tw.startTime:
		return tw.beforeStart()
	}
	tw.state = schema.TweenInProgress
	return tw.motion.goTo(tw.shape.geometry, (t-tw.startTime)/tw.timeLength)
}

func (tw *Tween) finish() bool {
	tw.state = schema.TweenFinished
	return tw.motion.finish(tw.shape.geometry)
}

func (tw *Tween) beforeStart() bool {
	tw.state = schema.TweenNotStarted
	return tw.motion.rewind(tw.shape.geometry)
}

// advance applies the state transition for clock time t and reports whether
// the geometry moved.
func (tw *Tween) advance(t float64) bool {
	switch {
	case t < tw.startTime:
		if tw.state != schema.TweenNotStarted {
			return tw.beforeStart()
		}
		return false
	case t > tw.EndTime():
		if tw.state != schema.TweenFinished {
			return tw.finish()
		}
		return false
	}
	return tw.goToTime(t)
}

// setBounds changes the interval and keeps the timeline events in step.
// Geometry is not touched; the caller resynchronises the clock.
func (tw *Tween) setBounds(start, length float64) {
	tw.startTime = start
	tw.timeLength = length
	tw.start.time = start
	tw.end.time = start + length
}

func (tw *Tween) String() string {
	return fmt.Sprintf("%s %s [%g, %g]", tw.shape.Name(), tw.kind, tw.startTime, tw.EndTime())
}

func compareTweens(a, b *Tween) int {
	if c := cmp.Compare(a.startTime, b.startTime); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

func sortTweens(tweens []*Tween) {
	slices.SortFunc(tweens, compareTweens)
}
