package core

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/internal/logx"
	"pkt.systems/tweenly/internal/modelhub"
	"pkt.systems/tweenly/schema"
)

// Controller is the animation document: shapes placed in time, their events
// and tweens, the clock, the undo history and the models views render from.
// It is built once by the host and is not safe for concurrent use.
type Controller struct {
	cfg       schema.ControllerConfig
	log       pslog.Logger
	hub       *modelhub.Hub
	store     *EventStore
	actions   *ActionStack
	scheduler FrameScheduler
	now       func() time.Time

	time      float64
	playing   bool
	lastFrame time.Time
	frameGen  uint64

	shapes   []*Shape
	selected []*Shape
	counters map[string]int
	zIndex   int
	tweenSeq uint64
}

// NewController builds a controller and creates the core models.
func NewController(cfg schema.ControllerConfig, deps ControllerDeps) (*Controller, error) {
	cfg, err := schema.NormalizeControllerConfig(cfg)
	if err != nil {
		return nil, err
	}
	log := logx.Or(deps.Logger)
	hub := deps.Hub
	if hub == nil {
		hub = modelhub.New(log)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		cfg:       cfg,
		log:       log,
		hub:       hub,
		store:     newEventStore(hub, log),
		actions:   newActionStack(cfg.MaxActions, log),
		scheduler: deps.Scheduler,
		now:       now,
		counters:  make(map[string]int),
	}
	hub.Batch(func() {
		hub.NewAggregateModel(schema.ModelDisplayShapes, nil)
		hub.NewAggregateModel(schema.ModelSelectedShapes, nil)
		hub.NewAggregateModel(schema.ModelTimelineEvents, nil)
		c.publishClock()
	})
	log.Debug("controller init", "end", cfg.AnimationEnd, "max_actions", cfg.MaxActions)
	return c, nil
}

// Hub returns the model hub views subscribe to.
func (c *Controller) Hub() *modelhub.Hub { return c.hub }

// Store returns the timeline event store.
func (c *Controller) Store() *EventStore { return c.store }

// Actions returns the undo history.
func (c *Controller) Actions() *ActionStack { return c.actions }

// Shapes returns the shapes in the document ordered by z-index.
func (c *Controller) Shapes() []*Shape { return slices.Clone(c.shapes) }

// Selection returns the selected shapes in selection order.
func (c *Controller) Selection() []*Shape { return slices.Clone(c.selected) }

// Shape looks up a shape by name.
func (c *Controller) Shape(name string) (*Shape, bool) {
	for _, s := range c.shapes {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

func (c *Controller) batch(fn func()) {
	c.hub.Batch(fn)
}

func (c *Controller) known(s *Shape) bool {
	return s != nil && s.registered && slices.Contains(c.shapes, s)
}

func (c *Controller) requireShape(s *Shape, op string) error {
	if c.known(s) {
		return nil
	}
	logx.WithShape(c.log, s.Name()).Warn("controller "+op+" rejected", "err", schema.ErrUnknownShape)
	return schema.ErrUnknownShape
}

// SubscribeTo registers view on a model and replays its content.
func (c *Controller) SubscribeTo(view any, name schema.ModelName) error {
	var err error
	c.batch(func() { err = c.hub.Subscribe(view, name) })
	return err
}

// UnsubscribeTo removes view from a model.
func (c *Controller) UnsubscribeTo(view any, name schema.ModelName) {
	c.hub.Unsubscribe(view, name)
}

// UpdateModel tells the model's subscribers that item changed in place.
func (c *Controller) UpdateModel(name schema.ModelName, item modelhub.Item) {
	c.batch(func() { c.hub.UpdateModel(name, item) })
}

// NewAggregateModel replaces a model's content. Replacing selectedShapes
// changes the selection; the other core models are maintained by the
// controller and cannot be replaced.
func (c *Controller) NewAggregateModel(name schema.ModelName, content []modelhub.Item) error {
	switch name {
	case schema.ModelSelectedShapes:
		shapes := make([]*Shape, 0, len(content))
		for _, item := range content {
			s, ok := item.(*Shape)
			if !ok || !c.known(s) {
				c.log.Warn("selection item skipped", "item", fmt.Sprint(item), "err", schema.ErrUnknownShape)
				continue
			}
			shapes = append(shapes, s)
		}
		return c.SetSelection(shapes)
	case schema.ModelDisplayShapes, schema.ModelTimelineEvents, schema.ModelClock:
		return fmt.Errorf("%w: %s", schema.ErrOwnedModel, name)
	}
	c.batch(func() { c.hub.NewAggregateModel(name, content) })
	return nil
}

// NewAction runs forward (after each sub-action's forward) and records the
// pair on the undo history.
func (c *Controller) NewAction(name string, forward, backward func(), subs ...*Action) error {
	return c.Do(ActionFunc(name, forward, backward, subs...))
}

// Do runs a prebuilt action and records it.
func (c *Controller) Do(a *Action) error {
	var err error
	c.batch(func() { err = c.actions.Push(a) })
	return err
}

// UndoAction reverts the latest action. It reports false when the history is
// empty.
func (c *Controller) UndoAction() bool {
	var ok bool
	c.batch(func() { ok = c.actions.Undo() })
	return ok
}

// RedoAction re-applies the latest undone action. It reports false when
// there is nothing to redo.
func (c *Controller) RedoAction() bool {
	var ok bool
	c.batch(func() { ok = c.actions.Redo() })
	return ok
}

// NewShape places g in the document between appearance and disappearance.
// The shape gets a generated name and the next z-index. The insertion is
// undoable.
func (c *Controller) NewShape(g Geometry, appearance, disappearance float64) (*Shape, error) {
	if g == nil {
		return nil, schema.ErrNilGeometry
	}
	if err := schema.ValidateLifetime(appearance, disappearance); err != nil {
		return nil, err
	}
	kind := "shape"
	if k, ok := g.(Kinded); ok && k.KindName() != "" {
		kind = k.KindName()
	}
	s := &Shape{
		name:     fmt.Sprintf("%s %d", kind, c.counters[kind]+1),
		zIndex:   c.zIndex + 1,
		geometry: g,
		syncedAt: c.time,
	}
	s.appearance = &Event{typ: schema.EventAppearance, shape: s, time: appearance}
	s.disappearance = &Event{typ: schema.EventDisappearance, shape: s, time: disappearance}
	s.visible = s.LiveAt(c.time)
	for _, e := range []*Event{s.appearance, s.disappearance} {
		if err := c.store.Add(e); err != nil {
			return nil, err
		}
	}
	g.UpdateGeometry()
	if err := c.Do(NewCommandAction("new shape", &shapeInsertCommand{c: c, shape: s})); err != nil {
		return nil, err
	}
	c.counters[kind]++
	c.zIndex++
	logx.WithShape(c.log, s.name).Info("shape add ok", "appearance", appearance, "disappearance", disappearance)
	return s, nil
}

// DeleteShape removes s with its events and tweens. Undo restores it and
// catches it up with any clock movement since.
func (c *Controller) DeleteShape(s *Shape) error {
	if err := c.requireShape(s, "delete shape"); err != nil {
		return err
	}
	cmd := &shapeDeleteCommand{c: c, shape: s, selected: slices.Contains(c.selected, s)}
	if err := c.Do(NewCommandAction("delete shape", cmd)); err != nil {
		return err
	}
	logx.WithShape(c.log, s.name).Info("shape delete ok")
	return nil
}

func (c *Controller) insertShape(s *Shape) {
	if s.registered {
		return
	}
	c.store.attach(s)
	c.shapes = append(c.shapes, s)
	slices.SortFunc(c.shapes, func(a, b *Shape) int { return cmp.Compare(a.zIndex, b.zIndex) })
	if s.visible {
		c.hub.AddModel(schema.ModelDisplayShapes, s)
	}
	c.scrub([]*Shape{s}, s.syncedAt, c.time)
	c.publishClock()
}

func (c *Controller) removeShape(s *Shape) {
	if !s.registered {
		return
	}
	c.deselectShape(s)
	if s.visible {
		c.hub.RemoveModel(schema.ModelDisplayShapes, s)
	}
	c.store.detach(s)
	if idx := slices.Index(c.shapes, s); idx >= 0 {
		c.shapes = slices.Delete(c.shapes, idx, idx+1)
	}
	s.syncedAt = c.time
	c.publishClock()
}

// ShowShape adds s to the display model. Showing a visible shape is a no-op.
func (c *Controller) ShowShape(s *Shape) {
	if c.requireShape(s, "show shape") != nil {
		return
	}
	c.batch(func() { c.setVisible(s, true) })
}

// HideShape removes s from the display model. Hiding a hidden shape is a
// no-op.
func (c *Controller) HideShape(s *Shape) {
	if c.requireShape(s, "hide shape") != nil {
		return
	}
	c.batch(func() { c.setVisible(s, false) })
}

func (c *Controller) setVisible(s *Shape, visible bool) {
	if s.visible == visible {
		return
	}
	s.visible = visible
	if !s.registered {
		return
	}
	if visible {
		c.hub.AddModel(schema.ModelDisplayShapes, s)
	} else {
		c.hub.RemoveModel(schema.ModelDisplayShapes, s)
	}
}

// SelectShape adds s to the selection.
func (c *Controller) SelectShape(s *Shape) error {
	if err := c.requireShape(s, "select shape"); err != nil {
		return err
	}
	c.batch(func() { c.selectShape(s) })
	return nil
}

// DeselectShape removes s from the selection. Deselecting a shape that is not
// selected is a no-op.
func (c *Controller) DeselectShape(s *Shape) {
	c.batch(func() { c.deselectShape(s) })
}

// SetSelection replaces the selection.
func (c *Controller) SetSelection(shapes []*Shape) error {
	next := make([]*Shape, 0, len(shapes))
	for _, s := range shapes {
		if err := c.requireShape(s, "set selection"); err != nil {
			return err
		}
		next = touch(next, s)
	}
	c.selected = next
	items := make([]modelhub.Item, len(next))
	for i, s := range next {
		items[i] = s
	}
	c.batch(func() { c.hub.NewAggregateModel(schema.ModelSelectedShapes, items) })
	return nil
}

func (c *Controller) selectShape(s *Shape) {
	if slices.Contains(c.selected, s) {
		return
	}
	c.selected = append(c.selected, s)
	c.hub.AddModel(schema.ModelSelectedShapes, s)
}

func (c *Controller) deselectShape(s *Shape) {
	idx := slices.Index(c.selected, s)
	if idx < 0 {
		return
	}
	c.selected = slices.Delete(c.selected, idx, idx+1)
	c.hub.RemoveModel(schema.ModelSelectedShapes, s)
}

func (c *Controller) publishShapes(shapes []*Shape) {
	for _, s := range shapes {
		if !s.registered {
			continue
		}
		if s.visible {
			c.hub.UpdateModel(schema.ModelDisplayShapes, s)
		}
		if slices.Contains(c.selected, s) {
			c.hub.UpdateModel(schema.ModelSelectedShapes, s)
		}
	}
}

// SetAppearanceTime moves the shape's appearance as an undoable edit.
func (c *Controller) SetAppearanceTime(s *Shape, t float64) error {
	if err := c.requireShape(s, "set appearance"); err != nil {
		return err
	}
	return c.MoveEvent(s.appearance, t)
}

// SetDisappearanceTime moves the shape's disappearance as an undoable edit.
func (c *Controller) SetDisappearanceTime(s *Shape, t float64) error {
	if err := c.requireShape(s, "set disappearance"); err != nil {
		return err
	}
	return c.MoveEvent(s.disappearance, t)
}

// MoveEvent is the undoable form of ChangeTimeOfEvent.
func (c *Controller) MoveEvent(e *Event, t float64) error {
	if err := c.validateEventTime(e, t); err != nil {
		return err
	}
	if e.time == t {
		return nil
	}
	cmd := &eventTimeCommand{c: c, event: e, from: e.time, to: t}
	return c.Do(NewCommandAction("move "+string(e.typ), cmd))
}

// ChangeTimeOfEvent moves e to t. Moving a lifetime event may not invert the
// lifetime or leave a tween entirely outside it. Moving a tween boundary
// changes the tween's interval. An event moved across the clock takes or
// loses effect immediately.
func (c *Controller) ChangeTimeOfEvent(e *Event, t float64) error {
	if err := c.validateEventTime(e, t); err != nil {
		return err
	}
	c.batch(func() { c.setEventTime(e, t) })
	return nil
}

func (c *Controller) validateEventTime(e *Event, t float64) error {
	if e == nil || e.shape == nil || !slices.Contains(e.shape.events, e) {
		c.log.Warn("event move rejected", "err", schema.ErrUnknownEvent)
		return schema.ErrUnknownEvent
	}
	if err := c.requireShape(e.shape, "move event"); err != nil {
		return err
	}
	if err := schema.ValidateTime(t); err != nil {
		return err
	}
	s := e.shape
	var err error
	switch e.typ {
	case schema.EventAppearance:
		if err = schema.ValidateLifetime(t, s.DisappearanceTime()); err == nil {
			err = s.fitsTweens(t, s.DisappearanceTime())
		}
	case schema.EventDisappearance:
		if err = schema.ValidateLifetime(s.AppearanceTime(), t); err == nil {
			err = s.fitsTweens(s.AppearanceTime(), t)
		}
	case schema.EventTweenStart:
		tw := e.tween
		err = schema.ValidateTweenBounds(t, tw.EndTime()-t, s.AppearanceTime(), s.DisappearanceTime())
	case schema.EventTweenEnd:
		tw := e.tween
		err = schema.ValidateTweenBounds(tw.startTime, t-tw.startTime, s.AppearanceTime(), s.DisappearanceTime())
	}
	if err != nil {
		logx.WithEvent(logx.WithShape(c.log, s.name), e.typ, e.time).Warn("event move rejected", "to", t, "err", err)
	}
	return err
}

// setEventTime applies an already validated move.
func (c *Controller) setEventTime(e *Event, t float64) {
	switch e.typ {
	case schema.EventTweenStart:
		c.setTweenBounds(e.tween, t, e.tween.EndTime()-t)
		return
	case schema.EventTweenEnd:
		c.setTweenBounds(e.tween, e.tween.startTime, t-e.tween.startTime)
		return
	}
	registered := e.shape.registered
	wasApplied := e.time <= c.time
	nowApplied := t <= c.time
	if e.typ == schema.EventChange {
		if registered && wasApplied {
			c.fireAt(e, false)
		}
		if err := c.store.ChangeTime(e, t); err != nil {
			logx.WithEvent(c.log, e.typ, e.time).Warn("event move failed", "to", t, "err", err)
			if registered && wasApplied {
				c.fireAt(e, true)
			}
			return
		}
		if registered && nowApplied {
			c.fireAt(e, true)
		}
		return
	}
	if err := c.store.ChangeTime(e, t); err != nil {
		logx.WithEvent(c.log, e.typ, e.time).Warn("event move failed", "to", t, "err", err)
		return
	}
	if registered && wasApplied != nowApplied {
		c.fireAt(e, nowApplied)
	}
	c.NewClockTime(c.time)
}

// AddTimelineEvent inserts e. Adding a tween boundary event registers the
// whole tween again; adding a change event applies it if the clock is
// already past it.
func (c *Controller) AddTimelineEvent(e *Event) error {
	if e == nil || e.shape == nil {
		return schema.ErrUnknownEvent
	}
	if err := c.requireShape(e.shape, "add event"); err != nil {
		return err
	}
	switch e.typ {
	case schema.EventAppearance, schema.EventDisappearance:
		if slices.Contains(e.shape.events, e) {
			return nil
		}
		return fmt.Errorf("%w: %s", schema.ErrFixedEvent, e)
	case schema.EventTweenStart, schema.EventTweenEnd:
		tw := e.tween
		if err := schema.ValidateTweenBounds(tw.startTime, tw.timeLength, e.shape.AppearanceTime(), e.shape.DisappearanceTime()); err != nil {
			return err
		}
	case schema.EventChange:
		if err := schema.ValidateChange(e.change); err != nil {
			return err
		}
	}
	c.batch(func() { c.insertEvent(e) })
	return nil
}

// RemoveTimelineEvent removes e. Removing a tween boundary removes the whole
// tween. Lifetime events cannot be removed.
func (c *Controller) RemoveTimelineEvent(e *Event) error {
	if e == nil || e.shape == nil {
		return nil
	}
	if e.typ.Lifetime() {
		return fmt.Errorf("%w: %s", schema.ErrFixedEvent, e)
	}
	c.batch(func() { c.removeEvent(e) })
	return nil
}

func (c *Controller) insertEvent(e *Event) {
	switch e.typ {
	case schema.EventTweenStart, schema.EventTweenEnd:
		c.insertTween(e.tween)
		return
	}
	if slices.Contains(e.shape.events, e) {
		return
	}
	if err := c.store.Add(e); err != nil {
		logx.WithEvent(c.log, e.typ, e.time).Warn("event add failed", "err", err)
		return
	}
	if e.shape.registered && e.time <= c.time {
		c.fireAt(e, true)
	}
}

func (c *Controller) removeEvent(e *Event) {
	switch e.typ {
	case schema.EventTweenStart, schema.EventTweenEnd:
		c.removeTween(e.tween)
		return
	}
	if !slices.Contains(e.shape.events, e) {
		logx.WithEvent(c.log, e.typ, e.time).Debug("event remove skipped", "reason", "absent")
		return
	}
	if e.shape.registered && e.time <= c.time {
		c.fireAt(e, false)
	}
	c.store.drop(e)
}

// fireAt runs e at its own time. Change events are applied with the shape's
// tweens at e's time; lifetime events only toggle visibility.
func (c *Controller) fireAt(e *Event, forward bool) {
	if e.typ != schema.EventChange {
		if c.fire(e, forward) {
			c.publishShapes([]*Shape{e.shape})
		}
		return
	}
	c.applyAt(e.shape, e.time, e, func() { c.fire(e, forward) })
	c.publishShapes([]*Shape{e.shape})
}

// AddChange schedules a discrete change of s at time t as an undoable edit.
func (c *Controller) AddChange(s *Shape, t float64, change schema.Change) (*Event, error) {
	if err := c.requireShape(s, "add change"); err != nil {
		return nil, err
	}
	e, err := NewChangeEvent(s, t, change)
	if err != nil {
		return nil, err
	}
	if err := c.Do(NewCommandAction("add change", &eventInsertCommand{c: c, event: e})); err != nil {
		return nil, err
	}
	return e, nil
}

// RemoveChange removes a change event as an undoable edit.
func (c *Controller) RemoveChange(e *Event) error {
	if e == nil || e.typ != schema.EventChange || !slices.Contains(e.shape.events, e) {
		return schema.ErrUnknownEvent
	}
	if err := c.requireShape(e.shape, "remove change"); err != nil {
		return err
	}
	return c.Do(NewCommandAction("remove change", inverted{&eventInsertCommand{c: c, event: e}}))
}

// AddTween attaches a tween described by spec to s as an undoable edit. The
// tween's centre is absolute at the time of the call and follows the shape
// afterwards.
func (c *Controller) AddTween(s *Shape, spec schema.TweenSpec) (*Tween, error) {
	if err := c.requireShape(s, "add tween"); err != nil {
		return nil, err
	}
	tw, err := newTween(s, spec)
	if err != nil {
		logx.WithTween(logx.WithShape(c.log, s.name), spec.Kind, spec.StartTime, spec.EndTime()).Warn("tween add rejected", "err", err)
		return nil, err
	}
	c.tweenSeq++
	tw.seq = c.tweenSeq
	if err := c.Do(NewCommandAction("add tween", &tweenInsertCommand{c: c, tween: tw})); err != nil {
		return nil, err
	}
	logx.WithTween(logx.WithShape(c.log, s.name), tw.kind, tw.startTime, tw.EndTime()).Debug("tween add ok")
	return tw, nil
}

// DeleteTween removes tw as an undoable edit.
func (c *Controller) DeleteTween(tw *Tween) error {
	if tw == nil || !slices.Contains(tw.shape.tweens, tw) {
		return schema.ErrUnknownTween
	}
	if err := c.requireShape(tw.shape, "delete tween"); err != nil {
		return err
	}
	return c.Do(NewCommandAction("delete tween", inverted{&tweenInsertCommand{c: c, tween: tw}}))
}

// RemoveTween rewinds tw, detaches it from its shape and removes its two
// events. Removing an unknown tween is a no-op.
func (c *Controller) RemoveTween(tw *Tween) {
	if tw == nil {
		return
	}
	c.batch(func() { c.removeTween(tw) })
}

// SetTweenBounds changes a tween's interval as an undoable edit.
func (c *Controller) SetTweenBounds(tw *Tween, start, length float64) error {
	if tw == nil || !slices.Contains(tw.shape.tweens, tw) {
		return schema.ErrUnknownTween
	}
	s := tw.shape
	if err := c.requireShape(s, "set tween bounds"); err != nil {
		return err
	}
	if err := schema.ValidateTweenBounds(start, length, s.AppearanceTime(), s.DisappearanceTime()); err != nil {
		logx.WithTween(c.log, tw.kind, start, start+length).Warn("tween bounds rejected", "err", err)
		return err
	}
	cmd := &tweenBoundsCommand{
		c:     c,
		tween: tw,
		from:  tweenBounds{start: tw.startTime, length: tw.timeLength},
		to:    tweenBounds{start: start, length: length},
	}
	return c.Do(NewCommandAction("set tween bounds", cmd))
}

func (c *Controller) insertTween(tw *Tween) {
	s := tw.shape
	if slices.Contains(s.tweens, tw) {
		return
	}
	s.addTween(tw)
	for _, e := range []*Event{tw.start, tw.end} {
		if err := c.store.Add(e); err != nil {
			logx.WithTween(c.log, tw.kind, tw.startTime, tw.EndTime()).Warn("tween event add failed", "err", err)
		}
	}
	c.NewClockTime(c.time)
}

func (c *Controller) removeTween(tw *Tween) {
	s := tw.shape
	if !s.removeTween(tw) {
		logx.WithTween(c.log, tw.kind, tw.startTime, tw.EndTime()).Debug("tween remove skipped", "reason", "absent")
		return
	}
	moved := tw.beforeStart()
	c.store.drop(tw.start)
	c.store.drop(tw.end)
	if moved {
		c.publishShapes([]*Shape{s})
	}
	c.publishClock()
}

func (c *Controller) setTweenBounds(tw *Tween, start, length float64) {
	tw.setBounds(start, length)
	sortTweens(tw.shape.tweens)
	c.store.resort(tw.start, tw.end)
	c.NewClockTime(c.time)
}

// TranslateShapes moves shapes by v as one undoable edit.
func (c *Controller) TranslateShapes(shapes []*Shape, v schema.Vec2) error {
	return c.transform("translate shapes", shapes, schema.Change{Kind: schema.ChangeTranslate, Vector: v})
}

// ScaleShapes scales shapes about centre as one undoable edit.
func (c *Controller) ScaleShapes(shapes []*Shape, factor float64, centre schema.Vec2) error {
	return c.transform("scale shapes", shapes, schema.Change{Kind: schema.ChangeScale, Factor: factor, Centre: centre})
}

// RotateShapes rotates shapes about centre as one undoable edit.
func (c *Controller) RotateShapes(shapes []*Shape, angle float64, centre schema.Vec2) error {
	return c.transform("rotate shapes", shapes, schema.Change{Kind: schema.ChangeRotate, Angle: angle, Centre: centre})
}

func (c *Controller) transform(name string, shapes []*Shape, change schema.Change) error {
	if len(shapes) == 0 {
		return nil
	}
	if err := schema.ValidateChange(change); err != nil {
		return err
	}
	if change.Kind == schema.ChangeScale && change.Factor <= 0 {
		return fmt.Errorf("%w: scale factor must be positive", schema.ErrInvalidChange)
	}
	targets := make([]*Shape, 0, len(shapes))
	for _, s := range shapes {
		if err := c.requireShape(s, name); err != nil {
			return err
		}
		targets = touch(targets, s)
	}
	return c.Do(NewCommandAction(name, &transformCommand{c: c, shapes: targets, change: change, at: c.time}))
}

// IsInvariantViolation reports whether err rejected an edit that would break
// a lifetime or tween invariant.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, schema.ErrInvalidLifetime) ||
		errors.Is(err, schema.ErrTweenOutsideLifetime) ||
		errors.Is(err, schema.ErrInvalidTween) ||
		errors.Is(err, schema.ErrInvalidTime)
}
