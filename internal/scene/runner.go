package scene

import (
	"context"
	"fmt"
	"slices"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/core"
	"pkt.systems/tweenly/internal/logx"
	"pkt.systems/tweenly/internal/modelhub"
	"pkt.systems/tweenly/internal/shapes"
	"pkt.systems/tweenly/schema"
)

// ShapeState is the observable state of one shape.
type ShapeState struct {
	ID       string
	Name     string
	Kind     string
	Visible  bool
	Position schema.Vec2
	Rotation float64
	Bounds   schema.Bounds
}

// Snapshot captures the document after a step.
type Snapshot struct {
	Label   string
	Step    int
	Time    float64
	Playing bool
	Shapes  []ShapeState
}

// Runner owns a controller built from a script and a manual frame clock.
type Runner struct {
	script *Script
	ctrl   *core.Controller
	log    pslog.Logger
	ids    map[string]*core.Shape
	order  []string
	view   *displayView

	now      time.Time
	frames   []func(time.Time)
	external core.FrameScheduler
	clock    func() time.Time
}

// Option customises a Runner.
type Option func(*Runner)

// WithScheduler hands playback frames to s and reads time from now instead
// of the script's manual clock. Play steps are rejected.
func WithScheduler(s core.FrameScheduler, now func() time.Time) Option {
	return func(r *Runner) {
		r.external = s
		r.clock = now
	}
}

// NewRunner builds the document described by script.
func NewRunner(ctx context.Context, script *Script, cfg schema.ControllerConfig, opts ...Option) (*Runner, error) {
	if script == nil {
		return nil, fmt.Errorf("%w: nil script", ErrInvalidScript)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	if script.End > 0 {
		cfg.AnimationEnd = script.End
	}
	log := logx.WithScene(logx.ContextWithScene(ctx, script.Name))
	r := &Runner{
		script: script,
		log:    log,
		ids:    make(map[string]*core.Shape, len(script.Shapes)),
		now:    time.Unix(0, 0),
		view:   newDisplayView(),
	}
	for _, opt := range opts {
		opt(r)
	}
	deps := core.ControllerDeps{
		Logger:    log,
		Scheduler: core.FrameSchedulerFunc(r.requestFrame),
		Now:       func() time.Time { return r.now },
	}
	if r.external != nil {
		deps.Scheduler = r.external
		deps.Now = r.clock
	}
	ctrl, err := core.NewController(cfg, deps)
	if err != nil {
		return nil, err
	}
	r.ctrl = ctrl
	if err := ctrl.SubscribeTo(r.view, schema.ModelDisplayShapes); err != nil {
		return nil, err
	}
	for _, spec := range script.Shapes {
		if err := r.place(spec); err != nil {
			return nil, fmt.Errorf("shape %q: %w", spec.ID, err)
		}
	}
	log.Debug("scene build ok", "shapes", len(r.order))
	return r, nil
}

// Controller exposes the underlying controller.
func (r *Runner) Controller() *core.Controller { return r.ctrl }

// Shape returns the controller shape placed for id.
func (r *Runner) Shape(id string) (*core.Shape, bool) {
	s, ok := r.ids[id]
	return s, ok
}

func (r *Runner) place(spec ShapeSpec) error {
	g, err := shapes.New(spec.Kind, spec.At, spec.Width, spec.Height, spec.Text, spec.Points)
	if err != nil {
		return err
	}
	s, err := r.ctrl.NewShape(g, spec.Appear, spec.Disappear)
	if err != nil {
		return err
	}
	r.ids[spec.ID] = s
	r.order = append(r.order, spec.ID)
	for _, tw := range spec.Tweens {
		if _, err := r.ctrl.AddTween(s, tw); err != nil {
			return err
		}
	}
	for _, ch := range spec.Changes {
		if _, err := r.ctrl.AddChange(s, ch.At, ch.Change); err != nil {
			return err
		}
	}
	return nil
}

// Run executes every step and returns the snapshots they produced. A final
// snapshot labelled "final" is always appended.
func (r *Runner) Run(ctx context.Context) ([]Snapshot, error) {
	var out []Snapshot
	for i, step := range r.script.Steps {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if step.Snapshot != "" {
			out = append(out, r.Snapshot(step.Snapshot, i+1))
			continue
		}
		if err := r.apply(step); err != nil {
			r.log.Warn("scene step failed", "step", i+1, "op", step.op(), "err", err)
			return out, fmt.Errorf("step %d (%s): %w", i+1, step.op(), err)
		}
		r.log.Trace("scene step ok", "step", i+1, "op", step.op(), "time", r.ctrl.Clock())
	}
	out = append(out, r.Snapshot("final", len(r.script.Steps)))
	return out, nil
}

func (r *Runner) apply(step Step) error {
	switch {
	case step.Clock != nil:
		r.ctrl.NewClockTime(*step.Clock)
	case step.Play != nil:
		if r.external != nil {
			return fmt.Errorf("play steps need the script clock")
		}
		r.play(step.Play.Frames, time.Duration(step.Play.Interval*float64(time.Second)))
	case step.Undo > 0:
		for range step.Undo {
			if !r.ctrl.UndoAction() {
				return fmt.Errorf("nothing to undo")
			}
		}
	case step.Redo > 0:
		for range step.Redo {
			if !r.ctrl.RedoAction() {
				return fmt.Errorf("nothing to redo")
			}
		}
	case step.Select != nil:
		sel := make([]*core.Shape, 0, len(step.Select))
		for _, id := range step.Select {
			sel = append(sel, r.ids[id])
		}
		return r.ctrl.SetSelection(sel)
	case step.Translate != nil:
		return r.ctrl.TranslateShapes(r.ctrl.Selection(), *step.Translate)
	case step.Rotate != nil:
		return r.ctrl.RotateShapes(r.ctrl.Selection(), step.Rotate.Angle, step.Rotate.Centre)
	case step.Scale != nil:
		return r.ctrl.ScaleShapes(r.ctrl.Selection(), step.Scale.Factor, step.Scale.Centre)
	case step.Lifetime != nil:
		s := r.ids[step.Lifetime.Shape]
		if step.Lifetime.Appear != nil {
			if err := r.ctrl.SetAppearanceTime(s, *step.Lifetime.Appear); err != nil {
				return err
			}
		}
		if step.Lifetime.Disappear != nil {
			return r.ctrl.SetDisappearanceTime(s, *step.Lifetime.Disappear)
		}
	case step.Delete != "":
		return r.ctrl.DeleteShape(r.ids[step.Delete])
	}
	return nil
}

// play starts playback and delivers frames spaced by interval. Playback that
// is still running afterwards is paused.
func (r *Runner) play(frames int, interval time.Duration) {
	r.ctrl.PlayAnimation()
	for range frames {
		if len(r.frames) == 0 {
			break
		}
		r.now = r.now.Add(interval)
		pending := r.frames
		r.frames = nil
		for _, fn := range pending {
			fn(r.now)
		}
	}
	r.ctrl.PauseAnimation()
	r.frames = nil
}

func (r *Runner) requestFrame(fn func(time.Time)) {
	r.frames = append(r.frames, fn)
}

// Snapshot records the state of every placed shape in script order. Deleted
// shapes are reported as not visible.
func (r *Runner) Snapshot(label string, step int) Snapshot {
	snap := Snapshot{Label: label, Step: step, Time: r.ctrl.Clock(), Playing: r.ctrl.Playing()}
	for _, id := range r.order {
		s := r.ids[id]
		st := ShapeState{
			ID:       id,
			Name:     s.Name(),
			Visible:  r.view.has(s),
			Position: s.Geometry().Position(),
		}
		if g, ok := s.Geometry().(*shapes.Shape); ok {
			st.Kind = g.KindName()
			st.Rotation = g.Rotation()
			st.Bounds = g.Bounds()
		}
		snap.Shapes = append(snap.Shapes, st)
	}
	return snap
}

// displayView mirrors the displayShapes model.
type displayView struct {
	shapes  []*core.Shape
	updates int
}

func newDisplayView() *displayView { return &displayView{} }

func (v *displayView) has(s *core.Shape) bool { return slices.Contains(v.shapes, s) }

func (v *displayView) UpdateAggregateModel(_ schema.ModelName, content []modelhub.Item) {
	v.shapes = v.shapes[:0]
	for _, item := range content {
		if s, ok := item.(*core.Shape); ok {
			v.shapes = append(v.shapes, s)
		}
	}
}

func (v *displayView) AddModel(_ schema.ModelName, item modelhub.Item) {
	if s, ok := item.(*core.Shape); ok && !v.has(s) {
		v.shapes = append(v.shapes, s)
	}
}

func (v *displayView) RemoveModel(_ schema.ModelName, item modelhub.Item) {
	if s, ok := item.(*core.Shape); ok {
		v.shapes = slices.DeleteFunc(v.shapes, func(x *core.Shape) bool { return x == s })
	}
}

func (v *displayView) UpdateModel(schema.ModelName, modelhub.Item) {
	v.updates++
}
