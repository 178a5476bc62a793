package core

import "pkt.systems/tweenly/schema"

// The commands below snapshot every value they touch when they are built.
// None of them read live shape fields to decide what to restore.

type shapeInsertCommand struct {
	c     *Controller
	shape *Shape
}

func (cmd *shapeInsertCommand) Apply()  { cmd.c.insertShape(cmd.shape) }
func (cmd *shapeInsertCommand) Revert() { cmd.c.removeShape(cmd.shape) }

type shapeDeleteCommand struct {
	c        *Controller
	shape    *Shape
	selected bool
}

func (cmd *shapeDeleteCommand) Apply() {
	cmd.c.removeShape(cmd.shape)
}

func (cmd *shapeDeleteCommand) Revert() {
	cmd.c.insertShape(cmd.shape)
	if cmd.selected {
		cmd.c.selectShape(cmd.shape)
	}
}

type tweenInsertCommand struct {
	c     *Controller
	tween *Tween
}

func (cmd *tweenInsertCommand) Apply()  { cmd.c.insertTween(cmd.tween) }
func (cmd *tweenInsertCommand) Revert() { cmd.c.removeTween(cmd.tween) }

type eventInsertCommand struct {
	c     *Controller
	event *Event
}

func (cmd *eventInsertCommand) Apply()  { cmd.c.insertEvent(cmd.event) }
func (cmd *eventInsertCommand) Revert() { cmd.c.removeEvent(cmd.event) }

// eventTimeCommand moves an event between two snapshotted times.
type eventTimeCommand struct {
	c     *Controller
	event *Event
	from  float64
	to    float64
}

func (cmd *eventTimeCommand) Apply()  { cmd.c.setEventTime(cmd.event, cmd.to) }
func (cmd *eventTimeCommand) Revert() { cmd.c.setEventTime(cmd.event, cmd.from) }

type tweenBounds struct {
	start  float64
	length float64
}

type tweenBoundsCommand struct {
	c     *Controller
	tween *Tween
	from  tweenBounds
	to    tweenBounds
}

func (cmd *tweenBoundsCommand) Apply() {
	cmd.c.setTweenBounds(cmd.tween, cmd.to.start, cmd.to.length)
}

func (cmd *tweenBoundsCommand) Revert() {
	cmd.c.setTweenBounds(cmd.tween, cmd.from.start, cmd.from.length)
}

// transformCommand applies one change to several shapes; Revert applies the
// inverse in reverse order. Both run with the targets at the time the edit
// was made, whatever the clock reads when undo or redo happens.
type transformCommand struct {
	c      *Controller
	shapes []*Shape
	change schema.Change
	at     float64
}

func (cmd *transformCommand) Apply() {
	for _, s := range cmd.shapes {
		cmd.c.applyAt(s, cmd.at, nil, func() { applyChange(s.geometry, cmd.change) })
	}
	cmd.c.publishShapes(cmd.shapes)
}

func (cmd *transformCommand) Revert() {
	inverse := cmd.change.Inverse()
	for i := len(cmd.shapes) - 1; i >= 0; i-- {
		s := cmd.shapes[i]
		cmd.c.applyAt(s, cmd.at, nil, func() { applyChange(s.geometry, inverse) })
	}
	cmd.c.publishShapes(cmd.shapes)
}

// inverted swaps Apply and Revert.
type inverted struct {
	Command
}

func (cmd inverted) Apply()  { cmd.Command.Revert() }
func (cmd inverted) Revert() { cmd.Command.Apply() }
