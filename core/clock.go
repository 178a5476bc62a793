package core

import (
	"math"
	"slices"
	"time"

	"pkt.systems/tweenly/internal/modelhub"
	"pkt.systems/tweenly/schema"
)

// Clock returns the current animation time in seconds.
func (c *Controller) Clock() float64 {
	return c.time
}

// Playing reports whether the animation is running.
func (c *Controller) Playing() bool {
	return c.playing
}

// End returns the end of the timeline: the configured end, extended to the
// latest disappearance or tween end of any shape in the document.
func (c *Controller) End() float64 {
	end := c.cfg.AnimationEnd
	for _, s := range c.shapes {
		end = max(end, s.DisappearanceTime())
		for _, tw := range s.tweens {
			end = max(end, tw.EndTime())
		}
	}
	return end
}

// NewClockTime moves the clock to t. Events between the old and new time
// fire in order, then every tween of a shape live at t is brought to t.
// Negative times clamp to zero.
func (c *Controller) NewClockTime(t float64) {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		c.log.Warn("clock time rejected", "time", t, "err", schema.ErrInvalidTime)
		return
	}
	if t < 0 {
		t = 0
	}
	c.batch(func() {
		from := c.time
		c.time = t
		c.scrub(c.shapes, from, t)
		c.publishClock()
	})
}

// PlayAnimation starts ticking the clock on the host's frame scheduler.
// Playing from the end restarts at zero.
func (c *Controller) PlayAnimation() {
	if c.playing {
		return
	}
	if c.scheduler == nil {
		c.log.Warn("clock play skipped", "reason", "no frame scheduler")
		return
	}
	c.batch(func() {
		if c.time >= c.End() {
			c.NewClockTime(0)
		}
		c.playing = true
		c.frameGen++
		c.lastFrame = c.now()
		c.requestFrame()
		c.publishClock()
	})
	c.log.Debug("clock play", "time", c.time)
}

// PauseAnimation stops ticking. Frames already requested are ignored.
func (c *Controller) PauseAnimation() {
	if !c.playing {
		return
	}
	c.playing = false
	c.frameGen++
	c.batch(c.publishClock)
	c.log.Debug("clock pause", "time", c.time)
}

func (c *Controller) requestFrame() {
	gen := c.frameGen
	c.scheduler.RequestFrame(func(now time.Time) {
		c.frame(gen, now)
	})
}

func (c *Controller) frame(gen uint64, now time.Time) {
	if !c.playing || gen != c.frameGen {
		return
	}
	elapsed := max(now.Sub(c.lastFrame).Seconds(), 0)
	c.lastFrame = now
	next := c.time + elapsed
	end := c.End()
	c.batch(func() {
		if next >= end {
			c.NewClockTime(end)
			c.PauseAnimation()
			return
		}
		c.NewClockTime(next)
		c.requestFrame()
	})
}

// scrub replays the move from one time to another for the given shapes.
// Tweens are brought to each crossed event's time before the event fires,
// so discrete changes land on the same geometry they would during playback.
func (c *Controller) scrub(shapes []*Shape, from, to float64) {
	forward := to >= from
	var touched []*Shape
	events := crossed(shapes, from, to)
	for _, e := range events {
		touched = c.advanceTweens(shapes, e.time, forward, true, touched)
		if c.fire(e, forward) {
			touched = touch(touched, e.shape)
		}
	}
	touched = c.advanceTweens(shapes, to, forward, false, touched)
	c.publishShapes(touched)
	c.log.Trace("clock scrub", "from", from, "to", to, "events", len(events), "moved", len(touched))
}

// travel moves the geometry of s from one time to another without touching
// its visibility or the clock. Change events crossed on the way fire at their
// own time; skip never fires. The destination is evaluated like a crossed
// event when closed is set.
func (c *Controller) travel(s *Shape, from, to float64, skip *Event, closed bool) {
	shapes := []*Shape{s}
	forward := to >= from
	for _, e := range crossed(shapes, from, to) {
		if e == skip {
			continue
		}
		c.advanceTweens(shapes, e.time, forward, true, nil)
		if e.typ == schema.EventChange {
			c.fire(e, forward)
		}
	}
	c.advanceTweens(shapes, to, forward, closed, nil)
}

// applyAt runs fn against s with the shape's timeline at t, then brings s
// back to the clock. Edits made this way match what a scrub from zero
// would produce. skip is left out of both trips.
func (c *Controller) applyAt(s *Shape, t float64, skip *Event, fn func()) {
	c.travel(s, c.time, t, skip, true)
	fn()
	c.travel(s, t, c.time, skip, false)
}

// advanceTweens evaluates the tweens of shapes live at t. Forward moves apply
// tweens by ascending start, backward moves in reverse. With closed set the
// disappearance time itself counts as live; crossed events use it so a shape
// reaches its final pose before it is hidden.
func (c *Controller) advanceTweens(shapes []*Shape, t float64, forward, closed bool, touched []*Shape) []*Shape {
	var tweens []*Tween
	for _, s := range shapes {
		if s.AppearanceTime() > t || t > s.DisappearanceTime() || (!closed && t == s.DisappearanceTime()) {
			continue
		}
		tweens = append(tweens, s.tweens...)
	}
	slices.SortFunc(tweens, compareTweens)
	if !forward {
		slices.Reverse(tweens)
	}
	for _, tw := range tweens {
		if tw.advance(t) {
			touched = touch(touched, tw.shape)
		}
	}
	return touched
}

// fire runs the effect of e in the given direction and reports whether the
// shape's geometry changed.
func (c *Controller) fire(e *Event, forward bool) bool {
	switch e.typ {
	case schema.EventAppearance:
		c.setVisible(e.shape, forward)
	case schema.EventDisappearance:
		c.setVisible(e.shape, !forward)
	case schema.EventChange:
		change := e.change
		if !forward {
			change = change.Inverse()
		}
		applyChange(e.shape.geometry, change)
		return true
	}
	return false
}

func (c *Controller) clockState() schema.ClockState {
	return schema.ClockState{Time: c.time, End: c.End(), Playing: c.playing}
}

func (c *Controller) publishClock() {
	c.hub.NewAggregateModel(schema.ModelClock, []modelhub.Item{c.clockState()})
}

func touch(shapes []*Shape, s *Shape) []*Shape {
	if slices.Contains(shapes, s) {
		return shapes
	}
	return append(shapes, s)
}

func applyChange(g Geometry, change schema.Change) {
	switch change.Kind {
	case schema.ChangeTranslate:
		g.Translate(change.Vector)
	case schema.ChangeRotate:
		g.Rotate(change.Angle, change.Centre)
	case schema.ChangeScale:
		g.Scale(change.Factor, change.Centre)
	}
	g.UpdateGeometry()
}
