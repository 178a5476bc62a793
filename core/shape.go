package core

import (
	"slices"

	"pkt.systems/tweenly/schema"
)

// Geometry is the capability set the controller needs from a drawable.
// Translate, Scale and Rotate are relative to the current state.
type Geometry interface {
	Position() schema.Vec2
	Translate(v schema.Vec2)
	Scale(factor float64, centre schema.Vec2)
	Rotate(angle float64, centre schema.Vec2)
	UpdateGeometry()
}

// Kinded is implemented by geometries that name their kind; it is used for
// generated shape names.
type Kinded interface {
	KindName() string
}

// Shape is a drawable placed in time.
type Shape struct {
	name     string
	zIndex   int
	geometry Geometry

	appearance    *Event
	disappearance *Event
	events        []*Event
	tweens        []*Tween

	visible    bool
	registered bool
	syncedAt   float64
}

// Name returns the unique shape name.
func (s *Shape) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// ZIndex returns the stacking order; higher draws on top.
func (s *Shape) ZIndex() int {
	if s == nil {
		return 0
	}
	return s.zIndex
}

// Geometry returns the wrapped drawable.
func (s *Shape) Geometry() Geometry {
	if s == nil {
		return nil
	}
	return s.geometry
}

// AppearanceTime returns the time the shape becomes visible.
func (s *Shape) AppearanceTime() float64 {
	return s.appearance.time
}

// DisappearanceTime returns the time the shape is hidden.
func (s *Shape) DisappearanceTime() float64 {
	return s.disappearance.time
}

// AppearanceEvent returns the shape's appearance event.
func (s *Shape) AppearanceEvent() *Event {
	return s.appearance
}

// DisappearanceEvent returns the shape's disappearance event.
func (s *Shape) DisappearanceEvent() *Event {
	return s.disappearance
}

// LiveAt reports whether t lies in [appearance, disappearance).
func (s *Shape) LiveAt(t float64) bool {
	return s.AppearanceTime() <= t && t < s.DisappearanceTime()
}

// Visible reports whether the shape is in the display model.
func (s *Shape) Visible() bool {
	return s != nil && s.visible
}

// Registered reports whether the shape is part of the document.
func (s *Shape) Registered() bool {
	return s != nil && s.registered
}

// Events returns the shape's events ordered by time, then insertion.
func (s *Shape) Events() []*Event {
	if s == nil {
		return nil
	}
	return slices.Clone(s.events)
}

// Tweens returns the shape's tweens ordered by start time.
func (s *Shape) Tweens() []*Tween {
	if s == nil {
		return nil
	}
	return slices.Clone(s.tweens)
}

func (s *Shape) addTween(tw *Tween) {
	if slices.Contains(s.tweens, tw) {
		return
	}
	s.tweens = append(s.tweens, tw)
	sortTweens(s.tweens)
}

func (s *Shape) removeTween(tw *Tween) bool {
	idx := slices.Index(s.tweens, tw)
	if idx < 0 {
		return false
	}
	s.tweens = slices.Delete(s.tweens, idx, idx+1)
	return true
}

// fitsTweens reports whether every tween still overlaps [app, dis].
func (s *Shape) fitsTweens(app, dis float64) error {
	for _, tw := range s.tweens {
		if err := schema.ValidateTweenBounds(tw.startTime, tw.timeLength, app, dis); err != nil {
			return err
		}
	}
	return nil
}
