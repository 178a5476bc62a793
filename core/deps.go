package core

import (
	"time"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/internal/modelhub"
)

// FrameScheduler runs fn on the host's next animation frame.
// Hosts call fn from the same loop that drives every other controller call.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time))
}

// FrameSchedulerFunc adapts a function to FrameScheduler.
type FrameSchedulerFunc func(fn func(now time.Time))

// RequestFrame calls f(fn).
func (f FrameSchedulerFunc) RequestFrame(fn func(now time.Time)) {
	f(fn)
}

// ControllerDeps captures optional dependencies for the controller.
type ControllerDeps struct {
	Logger    pslog.Logger
	Scheduler FrameScheduler
	Hub       *modelhub.Hub
	Now       func() time.Time
}
