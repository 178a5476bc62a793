package core

import (
	"cmp"
	"fmt"
	"slices"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/internal/logx"
	"pkt.systems/tweenly/internal/modelhub"
	"pkt.systems/tweenly/schema"
)

// Event is a point-in-time marker owned by a shape.
type Event struct {
	seq    uint64
	typ    schema.EventType
	shape  *Shape
	time   float64
	tween  *Tween
	change schema.Change
}

// NewChangeEvent builds a change event for shape at time t. The event takes
// effect once added with AddTimelineEvent.
func NewChangeEvent(shape *Shape, t float64, change schema.Change) (*Event, error) {
	if shape == nil {
		return nil, schema.ErrUnknownShape
	}
	if err := schema.ValidateTime(t); err != nil {
		return nil, err
	}
	if err := schema.ValidateChange(change); err != nil {
		return nil, err
	}
	return &Event{typ: schema.EventChange, shape: shape, time: t, change: change}, nil
}

// Type returns the event type.
func (e *Event) Type() schema.EventType { return e.typ }

// Shape returns the owning shape.
func (e *Event) Shape() *Shape { return e.shape }

// Time returns the event time in seconds.
func (e *Event) Time() float64 { return e.time }

// Tween returns the tween for tweenStart and tweenEnd events.
func (e *Event) Tween() *Tween { return e.tween }

// Change returns the change carried by a change event.
func (e *Event) Change() schema.Change { return e.change }

func (e *Event) String() string {
	return fmt.Sprintf("%s %s@%g", e.shape.Name(), e.typ, e.time)
}

func compareEvents(a, b *Event) int {
	if c := cmp.Compare(a.time, b.time); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// EventStore keeps every shape's events in time order and publishes them on
// the timelineEvents model.
type EventStore struct {
	hub    *modelhub.Hub
	log    pslog.Logger
	seq    uint64
	shapes []*Shape
}

func newEventStore(hub *modelhub.Hub, log pslog.Logger) *EventStore {
	return &EventStore{hub: hub, log: log}
}

// Add inserts e into its shape's ordered events. An event re-added after
// removal keeps its original tie-break position.
func (s *EventStore) Add(e *Event) error {
	if e == nil || e.shape == nil {
		return schema.ErrUnknownEvent
	}
	if err := schema.ValidateTime(e.time); err != nil {
		return err
	}
	sh := e.shape
	if slices.Contains(sh.events, e) {
		logx.WithEvent(logx.WithShape(s.log, sh.name), e.typ, e.time).Debug("event add skipped", "reason", "present")
		return nil
	}
	if e.seq == 0 {
		s.seq++
		e.seq = s.seq
	}
	idx, _ := slices.BinarySearchFunc(sh.events, e, compareEvents)
	sh.events = slices.Insert(sh.events, idx, e)
	if sh.registered {
		s.hub.AddModel(schema.ModelTimelineEvents, e)
	}
	return nil
}

// ChangeTime moves e to t and re-sorts it. Subscribers see an update, not a
// remove and add. Lifetime events may not cross each other.
func (s *EventStore) ChangeTime(e *Event, t float64) error {
	if e == nil || e.shape == nil || !slices.Contains(e.shape.events, e) {
		return schema.ErrUnknownEvent
	}
	if err := schema.ValidateTime(t); err != nil {
		return err
	}
	sh := e.shape
	switch e.typ {
	case schema.EventAppearance:
		if err := schema.ValidateLifetime(t, sh.disappearance.time); err != nil {
			return err
		}
	case schema.EventDisappearance:
		if err := schema.ValidateLifetime(sh.appearance.time, t); err != nil {
			return err
		}
	}
	e.time = t
	slices.SortFunc(sh.events, compareEvents)
	if sh.registered {
		s.hub.UpdateModel(schema.ModelTimelineEvents, e)
	}
	return nil
}

// Remove deletes e. Lifetime events are rejected; removing an event that is
// not stored is a no-op.
func (s *EventStore) Remove(e *Event) error {
	if e == nil {
		return nil
	}
	if e.typ.Lifetime() {
		return fmt.Errorf("%w: %s", schema.ErrFixedEvent, e)
	}
	if !s.drop(e) {
		s.log.Debug("event remove skipped", "reason", "absent", "type", string(e.typ))
	}
	return nil
}

func (s *EventStore) drop(e *Event) bool {
	if e == nil || e.shape == nil {
		return false
	}
	sh := e.shape
	idx := slices.Index(sh.events, e)
	if idx < 0 {
		return false
	}
	sh.events = slices.Delete(sh.events, idx, idx+1)
	if sh.registered {
		s.hub.RemoveModel(schema.ModelTimelineEvents, e)
	}
	return true
}

// attach registers sh and publishes its events.
func (s *EventStore) attach(sh *Shape) {
	if sh.registered {
		return
	}
	sh.registered = true
	s.shapes = append(s.shapes, sh)
	for _, e := range sh.events {
		s.hub.AddModel(schema.ModelTimelineEvents, e)
	}
}

// detach unpublishes sh's events; they stay on the shape for a later attach.
func (s *EventStore) detach(sh *Shape) {
	idx := slices.Index(s.shapes, sh)
	if idx < 0 {
		return
	}
	for _, e := range sh.events {
		s.hub.RemoveModel(schema.ModelTimelineEvents, e)
	}
	s.shapes = slices.Delete(s.shapes, idx, idx+1)
	sh.registered = false
}

// Events returns every stored event ordered by time, then insertion.
func (s *EventStore) Events() []*Event {
	var out []*Event
	for _, sh := range s.shapes {
		out = append(out, sh.events...)
	}
	slices.SortFunc(out, compareEvents)
	return out
}

// Crossed returns the events passed when the clock moves from one time to
// another. Moving forward yields events in (from, to] ascending; moving
// backward yields events in (to, from] descending.
func (s *EventStore) Crossed(from, to float64) []*Event {
	return crossed(s.shapes, from, to)
}

func crossed(shapes []*Shape, from, to float64) []*Event {
	if from == to {
		return nil
	}
	lo, hi := min(from, to), max(from, to)
	var out []*Event
	for _, sh := range shapes {
		for _, e := range sh.events {
			if e.time > lo && e.time <= hi {
				out = append(out, e)
			}
		}
	}
	slices.SortFunc(out, compareEvents)
	if to < from {
		slices.Reverse(out)
	}
	return out
}

// resort restores the time order of the given events' shapes and notifies an
// update for each event.
func (s *EventStore) resort(events ...*Event) {
	for _, e := range events {
		sh := e.shape
		if !slices.Contains(sh.events, e) {
			continue
		}
		slices.SortFunc(sh.events, compareEvents)
		if sh.registered {
			s.hub.UpdateModel(schema.ModelTimelineEvents, e)
		}
	}
}
