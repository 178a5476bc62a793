package core

import (
	"pkt.systems/pslog"
	"pkt.systems/tweenly/schema"
)

// Command is a reversible edit. Implementations capture every value they
// need when they are built, so Apply and Revert can run any number of times.
type Command interface {
	Apply()
	Revert()
}

type funcCommand struct {
	forward  func()
	backward func()
}

func (c funcCommand) Apply() {
	if c.forward != nil {
		c.forward()
	}
}

func (c funcCommand) Revert() {
	if c.backward != nil {
		c.backward()
	}
}

// Action is one entry in the undo history, optionally composed of
// sub-actions.
type Action struct {
	name string
	cmd  Command
	subs []*Action
}

// ActionFunc builds an action from a forward/backward pair.
func ActionFunc(name string, forward, backward func(), subs ...*Action) *Action {
	return &Action{name: name, cmd: funcCommand{forward: forward, backward: backward}, subs: subs}
}

// NewCommandAction builds an action around cmd.
func NewCommandAction(name string, cmd Command, subs ...*Action) *Action {
	return &Action{name: name, cmd: cmd, subs: subs}
}

// Name returns the action label.
func (a *Action) Name() string {
	if a == nil {
		return ""
	}
	return a.name
}

// forward runs the sub-actions in order, then the action's own command.
func (a *Action) forward() {
	for _, sub := range a.subs {
		sub.forward()
	}
	if a.cmd != nil {
		a.cmd.Apply()
	}
}

// backward runs the action's own revert, then the sub-actions in reverse.
func (a *Action) backward() {
	if a.cmd != nil {
		a.cmd.Revert()
	}
	for i := len(a.subs) - 1; i >= 0; i-- {
		a.subs[i].backward()
	}
}

// ActionStack is a bounded undo/redo history. When full, the oldest action
// is dropped.
type ActionStack struct {
	undo    []*Action
	redo    []*Action
	max     int
	running bool
	log     pslog.Logger
}

func newActionStack(max int, log pslog.Logger) *ActionStack {
	if max <= 0 {
		max = schema.DefaultMaxActions
	}
	return &ActionStack{max: max, log: log}
}

// Push runs a forward and records it. The redo history is cleared.
func (s *ActionStack) Push(a *Action) error {
	if a == nil {
		return nil
	}
	if s.running {
		s.log.Warn("action push rejected", "action", a.name, "err", schema.ErrActionInProgress)
		return schema.ErrActionInProgress
	}
	s.running = true
	defer func() { s.running = false }()
	a.forward()
	s.undo = append(s.undo, a)
	if len(s.undo) > s.max {
		dropped := len(s.undo) - s.max
		clear(s.undo[:dropped])
		s.undo = s.undo[dropped:]
		s.log.Debug("action history trimmed", "dropped", dropped)
	}
	clear(s.redo)
	s.redo = s.redo[:0]
	s.log.Debug("action push ok", "action", a.name, "depth", len(s.undo))
	return nil
}

// Undo reverts the most recent action. It reports false when there is
// nothing to undo.
func (s *ActionStack) Undo() bool {
	if s.running || len(s.undo) == 0 {
		return false
	}
	a := s.undo[len(s.undo)-1]
	s.undo[len(s.undo)-1] = nil
	s.undo = s.undo[:len(s.undo)-1]
	s.running = true
	defer func() { s.running = false }()
	a.backward()
	s.redo = append(s.redo, a)
	s.log.Debug("action undo ok", "action", a.name, "depth", len(s.undo))
	return true
}

// Redo re-applies the most recently undone action. It reports false when
// there is nothing to redo.
func (s *ActionStack) Redo() bool {
	if s.running || len(s.redo) == 0 {
		return false
	}
	a := s.redo[len(s.redo)-1]
	s.redo[len(s.redo)-1] = nil
	s.redo = s.redo[:len(s.redo)-1]
	s.running = true
	defer func() { s.running = false }()
	a.forward()
	s.undo = append(s.undo, a)
	s.log.Debug("action redo ok", "action", a.name, "depth", len(s.undo))
	return true
}

// Depth returns the number of undoable and redoable actions.
func (s *ActionStack) Depth() (undo, redo int) {
	return len(s.undo), len(s.redo)
}

// Running reports whether an action is being applied or reverted.
func (s *ActionStack) Running() bool {
	return s.running
}
