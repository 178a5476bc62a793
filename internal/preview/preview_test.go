package preview

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"pkt.systems/tweenly/core"
	"pkt.systems/tweenly/internal/shapes"
	"pkt.systems/tweenly/schema"
)

var base = time.Unix(100, 0)

func newTestPreview(t *testing.T) (*Preview, *core.Controller, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(40, 11)
	p, err := New(screen, Options{FrameRate: 50, Width: 40, Height: 10, Now: func() time.Time { return base }})
	if err != nil {
		t.Fatalf("new preview: %v", err)
	}
	ctrl, err := core.NewController(schema.ControllerConfig{AnimationEnd: 10}, core.ControllerDeps{
		Scheduler: p,
		Now:       func() time.Time { return base },
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := p.Attach(ctrl); err != nil {
		t.Fatalf("attach: %v", err)
	}
	return p, ctrl, screen
}

func runeAt(screen tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestDrawShapeBoundsAndTimeline(t *testing.T) {
	p, ctrl, screen := newTestPreview(t)
	defer screen.Fini()
	if _, err := ctrl.NewShape(shapes.NewGraphic(schema.Vec2{X: 2, Y: 2}, 4, 4), 0, 5); err != nil {
		t.Fatalf("new shape: %v", err)
	}
	if len(p.shapes) != 1 {
		t.Fatalf("expected one displayed shape, got %d", len(p.shapes))
	}
	p.Draw()
	if r := runeAt(screen, 2, 2); r != tcell.RuneULCorner {
		t.Fatalf("expected upper left corner, got %q", r)
	}
	if r := runeAt(screen, 6, 6); r != tcell.RuneLRCorner {
		t.Fatalf("expected lower right corner, got %q", r)
	}
	if r := runeAt(screen, 4, 4); r != 'g' {
		t.Fatalf("expected shape initial at centre, got %q", r)
	}
	if r := runeAt(screen, 0, 10); r != '|' {
		t.Fatalf("expected paused marker on timeline row, got %q", r)
	}
	if r := runeAt(screen, 39, 10); r != '-' {
		t.Fatalf("expected empty bar end at clock 0, got %q", r)
	}

	ctrl.NewClockTime(10)
	if !p.dirty {
		t.Fatalf("expected clock change to mark preview dirty")
	}
	p.Draw()
	if r := runeAt(screen, 39, 10); r != '=' {
		t.Fatalf("expected full bar at end, got %q", r)
	}
	if r := runeAt(screen, 2, 2); r == tcell.RuneULCorner {
		t.Fatalf("expected hidden shape not drawn")
	}
}

func TestDrawClipsHugeShapes(t *testing.T) {
	p, ctrl, screen := newTestPreview(t)
	defer screen.Fini()
	if _, err := ctrl.NewShape(shapes.NewGraphic(schema.Vec2{X: -1e12, Y: 3}, 2e12, 4), 0, 5); err != nil {
		t.Fatalf("new shape: %v", err)
	}
	done := make(chan struct{})
	go func() {
		p.Draw()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("draw did not finish")
	}
	for _, x := range []int{0, 20, 39} {
		if r := runeAt(screen, x, 3); r != tcell.RuneHLine {
			t.Fatalf("expected top edge at %d, got %q", x, r)
		}
		if r := runeAt(screen, x, 7); r != tcell.RuneHLine {
			t.Fatalf("expected bottom edge at %d, got %q", x, r)
		}
	}
	if r := runeAt(screen, 0, 5); r != 'g' {
		t.Fatalf("expected shape initial at centre, got %q", r)
	}
}

func TestKeysDrivePlaybackAndScrub(t *testing.T) {
	p, ctrl, screen := newTestPreview(t)
	defer screen.Fini()

	if !p.HandleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)) {
		t.Fatalf("expected loop to continue")
	}
	if math.Abs(ctrl.Clock()-ScrubStep) > 1e-9 {
		t.Fatalf("expected clock at %v, got %v", ScrubStep, ctrl.Clock())
	}
	p.HandleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	p.HandleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	if ctrl.Clock() != 0 {
		t.Fatalf("expected clock clamped at 0, got %v", ctrl.Clock())
	}

	p.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if !ctrl.Playing() {
		t.Fatalf("expected playback to start")
	}
	if len(p.pending) != 1 {
		t.Fatalf("expected one requested frame, got %d", len(p.pending))
	}
	p.Tick(base.Add(500 * time.Millisecond))
	if math.Abs(ctrl.Clock()-0.5) > 1e-9 {
		t.Fatalf("expected clock 0.5 after one frame, got %v", ctrl.Clock())
	}
	if !p.clock.Playing || math.Abs(p.clock.Time-0.5) > 1e-9 {
		t.Fatalf("expected clock model mirrored, got %+v", p.clock)
	}
	p.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if ctrl.Playing() {
		t.Fatalf("expected playback paused")
	}
	p.Tick(base.Add(time.Second))
	if math.Abs(ctrl.Clock()-0.5) > 1e-9 {
		t.Fatalf("expected stale frame ignored, got %v", ctrl.Clock())
	}
}

func TestUndoRedoKeys(t *testing.T) {
	p, ctrl, screen := newTestPreview(t)
	defer screen.Fini()
	if _, err := ctrl.NewShape(shapes.NewEllipse(schema.Vec2{X: 5, Y: 5}, 2, 2, 0), 0, 5); err != nil {
		t.Fatalf("new shape: %v", err)
	}
	p.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'u', tcell.ModNone))
	if len(ctrl.Shapes()) != 0 || len(p.shapes) != 0 {
		t.Fatalf("expected undo to remove the shape")
	}
	p.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if len(ctrl.Shapes()) != 1 || len(p.shapes) != 1 {
		t.Fatalf("expected redo to restore the shape")
	}
	if p.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatalf("expected q to stop the loop")
	}
	if p.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatalf("expected escape to stop the loop")
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	p, _, screen := newTestPreview(t)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("expected quit before timeout")
	}
}

func TestRunRequiresAttach(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	p, err := New(screen, Options{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("new preview: %v", err)
	}
	if err := p.Run(context.Background()); err == nil {
		t.Fatalf("expected error without controller")
	}
	if _, err := New(screen, Options{}); err == nil {
		t.Fatalf("expected error for empty extent")
	}
}

func TestDetachStopsUpdates(t *testing.T) {
	p, ctrl, screen := newTestPreview(t)
	defer screen.Fini()
	p.Detach()
	p.dirty = false
	ctrl.NewClockTime(3)
	if p.dirty {
		t.Fatalf("expected no updates after detach")
	}
}
