// Package modelhub keeps named aggregate models and notifies the views
// subscribed to them.
//
// Dispatch is synchronous and single-threaded. Mutations issued by a view
// while it is being notified are queued behind the notifications already in
// flight instead of recursing, so every view observes a fully applied change.
package modelhub

import (
	"errors"
	"reflect"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/internal/logx"
	"pkt.systems/tweenly/schema"
)

// Item is a member of an aggregate model.
type Item = any

// Adder receives single-item additions.
type Adder interface {
	AddModel(name schema.ModelName, item Item)
}

// Remover receives single-item removals.
type Remover interface {
	RemoveModel(name schema.ModelName, item Item)
}

// Updater receives in-place item changes.
type Updater interface {
	UpdateModel(name schema.ModelName, item Item)
}

// Replacer receives whole-model replacements and the replay on subscribe.
type Replacer interface {
	UpdateAggregateModel(name schema.ModelName, content []Item)
}

// ErrInvalidItem indicates an item that cannot be compared for membership.
var ErrInvalidItem = errors.New("model item must be comparable")

// ErrInvalidView indicates a view that cannot be used as a subscription key.
var ErrInvalidView = errors.New("view must be a comparable value such as a pointer")

type aggregate struct {
	items []Item
	subs  []any
}

// Hub maps model names to aggregate models and their subscribers.
// A Hub is not safe for concurrent use.
type Hub struct {
	models   map[schema.ModelName]*aggregate
	queue    []func()
	draining bool
	log      pslog.Logger
}

// New constructs a Hub.
func New(logger pslog.Logger) *Hub {
	return &Hub{
		models: make(map[schema.ModelName]*aggregate),
		log:    logx.Or(logger),
	}
}

// NewAggregateModel replaces the model content wholesale, creating the model
// if needed, and notifies every subscriber through UpdateAggregateModel.
// Duplicate items in content are kept once.
func (h *Hub) NewAggregateModel(name schema.ModelName, content []Item) {
	if h == nil {
		return
	}
	m := h.models[name]
	if m == nil {
		m = &aggregate{}
		h.models[name] = m
	}
	items := dedupe(content)
	h.run(func() {
		m.items = items
		h.fanout(name, m, func(view any) {
			if r, ok := view.(Replacer); ok {
				r.UpdateAggregateModel(name, cloneItems(items))
			}
		})
	})
}

// AddModel adds item to a set-valued model and notifies AddModel.
// Adding an item already present is a no-op.
func (h *Hub) AddModel(name schema.ModelName, item Item) {
	if h == nil {
		return
	}
	h.run(func() {
		m := h.lookup(name, "add")
		if m == nil {
			return
		}
		if !isComparable(item) {
			logx.WithModel(h.log, name).Warn("hub dispatch skipped", "op", "add", "err", ErrInvalidItem)
			return
		}
		if indexOf(m.items, item) >= 0 {
			return
		}
		m.items = append(m.items, item)
		h.fanout(name, m, func(view any) {
			if a, ok := view.(Adder); ok {
				a.AddModel(name, item)
			}
		})
	})
}

// RemoveModel removes item from the model and notifies RemoveModel.
// Removing an absent item is a no-op.
func (h *Hub) RemoveModel(name schema.ModelName, item Item) {
	if h == nil {
		return
	}
	h.run(func() {
		m := h.lookup(name, "remove")
		if m == nil {
			return
		}
		if !isComparable(item) {
			logx.WithModel(h.log, name).Warn("hub dispatch skipped", "op", "remove", "err", ErrInvalidItem)
			return
		}
		idx := indexOf(m.items, item)
		if idx < 0 {
			return
		}
		m.items = append(m.items[:idx:idx], m.items[idx+1:]...)
		h.fanout(name, m, func(view any) {
			if r, ok := view.(Remover); ok {
				r.RemoveModel(name, item)
			}
		})
	})
}

// UpdateModel notifies subscribers that item changed in place.
// Membership is not checked; views decide what an unknown item means.
func (h *Hub) UpdateModel(name schema.ModelName, item Item) {
	if h == nil {
		return
	}
	h.run(func() {
		m := h.lookup(name, "update")
		if m == nil {
			return
		}
		h.fanout(name, m, func(view any) {
			if u, ok := view.(Updater); ok {
				u.UpdateModel(name, item)
			}
		})
	})
}

// Subscribe registers view on the named model and replays the current content
// through UpdateAggregateModel. Subscribing twice is a no-op. Registration is
// ordered with pending notifications, so the replay is the first thing the view
// receives for this model.
func (h *Hub) Subscribe(view any, name schema.ModelName) error {
	if h == nil {
		return schema.ErrUnknownModel
	}
	if !isComparable(view) {
		return ErrInvalidView
	}
	m := h.models[name]
	if m == nil {
		logx.WithModel(h.log, name).Warn("hub subscribe failed", "err", schema.ErrUnknownModel)
		return schema.ErrUnknownModel
	}
	h.run(func() {
		if indexOf(m.subs, view) >= 0 {
			return
		}
		m.subs = append(m.subs, view)
		logx.WithModel(h.log, name).Debug("hub subscribe", "subs", len(m.subs))
		if r, ok := view.(Replacer); ok {
			r.UpdateAggregateModel(name, cloneItems(m.items))
		}
	})
	return nil
}

// Unsubscribe removes view from the named model. Notifications already queued
// for the view are dropped.
func (h *Hub) Unsubscribe(view any, name schema.ModelName) {
	if h == nil || !isComparable(view) {
		return
	}
	m := h.models[name]
	if m == nil {
		return
	}
	idx := indexOf(m.subs, view)
	if idx < 0 {
		return
	}
	m.subs = append(m.subs[:idx:idx], m.subs[idx+1:]...)
	logx.WithModel(h.log, name).Debug("hub unsubscribe", "subs", len(m.subs))
}

// Has reports whether a model with this name exists.
func (h *Hub) Has(name schema.ModelName) bool {
	if h == nil {
		return false
	}
	_, ok := h.models[name]
	return ok
}

// Content returns a copy of the model content.
func (h *Hub) Content(name schema.ModelName) []Item {
	if h == nil {
		return nil
	}
	m := h.models[name]
	if m == nil {
		return nil
	}
	return cloneItems(m.items)
}

// Contains reports whether item is a member of the model.
func (h *Hub) Contains(name schema.ModelName, item Item) bool {
	if h == nil {
		return false
	}
	m := h.models[name]
	return m != nil && indexOf(m.items, item) >= 0
}

// Subscribers returns the number of views subscribed to the model.
func (h *Hub) Subscribers(name schema.ModelName) int {
	if h == nil {
		return 0
	}
	if m := h.models[name]; m != nil {
		return len(m.subs)
	}
	return 0
}

// Dispatching reports whether notifications are being held or delivered.
func (h *Hub) Dispatching() bool {
	return h != nil && h.draining
}

func (h *Hub) lookup(name schema.ModelName, op string) *aggregate {
	m := h.models[name]
	if m == nil {
		logx.WithModel(h.log, name).Warn("hub dispatch skipped", "op", op, "err", schema.ErrUnknownModel)
	}
	return m
}

// fanout queues one delivery per current subscriber.
func (h *Hub) fanout(name schema.ModelName, m *aggregate, call func(view any)) {
	for _, view := range m.subs {
		h.deliver(name, m, view, call)
	}
}

// deliver queues a single delivery; it is skipped if the view unsubscribes first.
func (h *Hub) deliver(name schema.ModelName, m *aggregate, view any, call func(view any)) {
	h.queue = append(h.queue, func() {
		if indexOf(m.subs, view) < 0 {
			logx.WithModel(h.log, name).Trace("hub delivery dropped")
			return
		}
		call(view)
	})
}

// Batch runs fn and holds every notification it causes until fn returns.
// Inside a dispatch fn runs immediately and its notifications join the queue.
func (h *Hub) Batch(fn func()) {
	if h == nil {
		fn()
		return
	}
	if h.draining {
		fn()
		return
	}
	h.draining = true
	defer func() { h.draining = false }()
	fn()
	h.drain()
}

func (h *Hub) run(op func()) {
	h.queue = append(h.queue, op)
	if h.draining {
		return
	}
	h.draining = true
	defer func() { h.draining = false }()
	h.drain()
}

func (h *Hub) drain() {
	for len(h.queue) > 0 {
		next := h.queue[0]
		h.queue[0] = nil
		h.queue = h.queue[1:]
		next()
	}
}

func indexOf(items []any, item any) int {
	for i, existing := range items {
		if existing == item {
			return i
		}
	}
	return -1
}

func dedupe(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !isComparable(item) {
			continue
		}
		if indexOf(out, item) >= 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

func cloneItems(items []Item) []Item {
	return append([]Item(nil), items...)
}

func isComparable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}
