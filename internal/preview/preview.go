// Package preview renders the display model in a terminal and drives
// playback from its own frame ticker.
package preview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"
	"pkt.systems/pslog"
	"pkt.systems/tweenly/core"
	"pkt.systems/tweenly/internal/logx"
	"pkt.systems/tweenly/internal/modelhub"
	"pkt.systems/tweenly/schema"
)

// ScrubStep is the clock change for one arrow key press.
const ScrubStep = 0.1

// Options configures a Preview.
type Options struct {
	// FrameRate is the ticker frequency in frames per second.
	FrameRate int
	// Width and Height are the scene extent mapped onto the terminal.
	Width  float64
	Height float64
	Logger pslog.Logger
	Now    func() time.Time
}

// Preview is a view over displayShapes and clock that draws to a tcell
// screen. It is also the controller's frame scheduler: frames requested by
// playback run on the next tick of the preview loop.
type Preview struct {
	screen tcell.Screen
	ctrl   *core.Controller
	log    pslog.Logger
	now    func() time.Time

	interval time.Duration
	width    float64
	height   float64

	shapes  []*core.Shape
	clock   schema.ClockState
	pending []func(time.Time)
	dirty   bool
}

// New returns a preview drawing to screen. Attach must be called before Run.
func New(screen tcell.Screen, opts Options) (*Preview, error) {
	if screen == nil {
		return nil, errors.New("preview screen is required")
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("preview extent must be positive, got %vx%v", opts.Width, opts.Height)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Preview{
		screen:   screen,
		log:      logx.Or(opts.Logger),
		now:      now,
		interval: time.Second / time.Duration(opts.FrameRate),
		width:    opts.Width,
		height:   opts.Height,
		dirty:    true,
	}, nil
}

// RequestFrame queues fn for the next tick.
func (p *Preview) RequestFrame(fn func(now time.Time)) {
	p.pending = append(p.pending, fn)
}

// Attach subscribes the preview to ctrl's display and clock models.
func (p *Preview) Attach(ctrl *core.Controller) error {
	p.ctrl = ctrl
	for _, name := range []schema.ModelName{schema.ModelDisplayShapes, schema.ModelClock} {
		if err := ctrl.SubscribeTo(p, name); err != nil {
			return err
		}
	}
	return nil
}

// Detach removes the preview's subscriptions.
func (p *Preview) Detach() {
	if p.ctrl == nil {
		return
	}
	p.ctrl.UnsubscribeTo(p, schema.ModelDisplayShapes)
	p.ctrl.UnsubscribeTo(p, schema.ModelClock)
}

// UpdateAggregateModel implements modelhub.Replacer.
func (p *Preview) UpdateAggregateModel(name schema.ModelName, content []modelhub.Item) {
	switch name {
	case schema.ModelDisplayShapes:
		p.shapes = p.shapes[:0]
		for _, item := range content {
			if s, ok := item.(*core.Shape); ok {
				p.shapes = append(p.shapes, s)
			}
		}
	case schema.ModelClock:
		if len(content) > 0 {
			if st, ok := content[0].(schema.ClockState); ok {
				p.clock = st
			}
		}
	}
	p.dirty = true
}

// AddModel implements modelhub.Adder.
func (p *Preview) AddModel(name schema.ModelName, item modelhub.Item) {
	if s, ok := item.(*core.Shape); ok && name == schema.ModelDisplayShapes && !slices.Contains(p.shapes, s) {
		p.shapes = append(p.shapes, s)
		p.dirty = true
	}
}

// RemoveModel implements modelhub.Remover.
func (p *Preview) RemoveModel(name schema.ModelName, item modelhub.Item) {
	if s, ok := item.(*core.Shape); ok && name == schema.ModelDisplayShapes {
		p.shapes = slices.DeleteFunc(p.shapes, func(x *core.Shape) bool { return x == s })
		p.dirty = true
	}
}

// UpdateModel implements modelhub.Updater.
func (p *Preview) UpdateModel(schema.ModelName, modelhub.Item) {
	p.dirty = true
}

// Run polls input and ticks frames until the user quits or ctx ends. The
// screen is finalised when Run returns.
func (p *Preview) Run(ctx context.Context) error {
	if p.ctrl == nil {
		return errors.New("preview is not attached to a controller")
	}
	g, gctx := errgroup.WithContext(ctx)
	events := make(chan tcell.Event, 16)
	g.Go(func() error {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		defer p.screen.Fini()
		return p.loop(gctx, events)
	})
	err := g.Wait()
	p.log.Debug("preview stop", "time", p.clock.Time)
	return err
}

func (p *Preview) loop(ctx context.Context, events <-chan tcell.Event) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !p.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			p.Tick(p.now())
		}
	}
}

// Tick runs requested frames and redraws when anything changed.
func (p *Preview) Tick(now time.Time) {
	frames := p.pending
	p.pending = nil
	for _, fn := range frames {
		fn(now)
	}
	if p.dirty {
		p.Draw()
	}
}

// HandleEvent applies one input event and reports whether the loop should
// keep running.
func (p *Preview) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			p.ctrl.PauseAnimation()
			p.ctrl.NewClockTime(p.ctrl.Clock() - ScrubStep)
		case tcell.KeyRight:
			p.ctrl.PauseAnimation()
			p.ctrl.NewClockTime(min(p.ctrl.Clock()+ScrubStep, p.ctrl.End()))
		case tcell.KeyHome:
			p.ctrl.PauseAnimation()
			p.ctrl.NewClockTime(0)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				if p.ctrl.Playing() {
					p.ctrl.PauseAnimation()
				} else {
					p.ctrl.PlayAnimation()
				}
			case 'u':
				if !p.ctrl.UndoAction() {
					p.log.Debug("preview undo skipped", "reason", "empty")
				}
			case 'r':
				if !p.ctrl.RedoAction() {
					p.log.Debug("preview redo skipped", "reason", "empty")
				}
			}
		}
	case *tcell.EventResize:
		p.screen.Sync()
		p.dirty = true
	}
	if p.dirty {
		p.Draw()
	}
	return true
}

// Draw renders shapes and the timeline bar.
func (p *Preview) Draw() {
	p.screen.Clear()
	w, h := p.screen.Size()
	if w <= 0 || h <= 1 {
		p.screen.Show()
		return
	}
	canvasH := h - 1
	shapes := slices.Clone(p.shapes)
	slices.SortFunc(shapes, func(a, b *core.Shape) int { return a.ZIndex() - b.ZIndex() })
	for _, s := range shapes {
		p.drawShape(s, w, canvasH)
	}
	p.drawTimeline(w, h-1)
	p.screen.Show()
	p.dirty = false
}

type bounded interface {
	Bounds() schema.Bounds
}

func (p *Preview) drawShape(s *core.Shape, w, h int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	var b schema.Bounds
	if g, ok := s.Geometry().(bounded); ok {
		b = g.Bounds()
	} else {
		pos := s.Geometry().Position()
		b = schema.Bounds{Left: pos.X, Top: pos.Y, Right: pos.X, Bottom: pos.Y}
	}
	x0, y0 := p.cell(b.Left, b.Top, w, h)
	x1, y1 := p.cell(b.Right, b.Bottom, w, h)
	// Edges are only walked across the visible cells.
	for x := max(x0, 0); x <= min(x1, w-1); x++ {
		p.put(x, y0, tcell.RuneHLine, style, w, h)
		p.put(x, y1, tcell.RuneHLine, style, w, h)
	}
	for y := max(y0, 0); y <= min(y1, h-1); y++ {
		p.put(x0, y, tcell.RuneVLine, style, w, h)
		p.put(x1, y, tcell.RuneVLine, style, w, h)
	}
	p.put(x0, y0, tcell.RuneULCorner, style, w, h)
	p.put(x1, y0, tcell.RuneURCorner, style, w, h)
	p.put(x0, y1, tcell.RuneLLCorner, style, w, h)
	p.put(x1, y1, tcell.RuneLRCorner, style, w, h)
	cx, cy := p.cell(s.Geometry().Position().X, s.Geometry().Position().Y, w, h)
	if name := s.Name(); name != "" {
		p.put(cx, cy, []rune(name)[0], style.Bold(true), w, h)
	}
}

func (p *Preview) drawTimeline(w, row int) {
	style := tcell.StyleDefault
	state := "||"
	if p.clock.Playing {
		state = "> "
	}
	label := fmt.Sprintf("%s %6.2f/%.2f ", state, p.clock.Time, p.clock.End)
	x := 0
	for _, r := range label {
		if x >= w {
			return
		}
		p.screen.SetContent(x, row, r, nil, style)
		x++
	}
	bar := w - x
	if bar <= 0 {
		return
	}
	filled := 0
	if p.clock.End > 0 {
		filled = int(math.Round(p.clock.Time / p.clock.End * float64(bar)))
	}
	filled = max(0, min(filled, bar))
	line := strings.Repeat("=", filled) + strings.Repeat("-", bar-filled)
	for _, r := range line {
		p.screen.SetContent(x, row, r, nil, style.Foreground(tcell.ColorYellow))
		x++
	}
}

// cell maps a scene coordinate to a terminal cell.
// cell maps world coordinates to a screen cell. Points off screen land one
// cell outside it, so huge or non-finite coordinates never overflow an int.
func (p *Preview) cell(x, y float64, w, h int) (int, int) {
	return toCell(x/p.width*float64(w), w), toCell(y/p.height*float64(h), h)
}

func toCell(v float64, n int) int {
	switch {
	case math.IsNaN(v) || v < 0:
		return -1
	case v >= float64(n):
		return n
	}
	return int(math.Floor(v))
}

func (p *Preview) put(x, y int, r rune, style tcell.Style, w, h int) {
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	p.screen.SetContent(x, y, r, nil, style)
}
