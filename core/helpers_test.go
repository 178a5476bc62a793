package core

import (
	"bytes"
	"math"
	"testing"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/internal/geom"
	"pkt.systems/tweenly/internal/modelhub"
	"pkt.systems/tweenly/schema"
)

const tolerance = 1e-9

// fakeGeometry is a rigid body reduced to a reference point, an accumulated
// rotation and an accumulated scale.
type fakeGeometry struct {
	pos      schema.Vec2
	rotation float64
	scale    float64
	updates  int
}

func newFakeGeometry(x, y float64) *fakeGeometry {
	return &fakeGeometry{pos: schema.Vec2{X: x, Y: y}, scale: 1}
}

func (g *fakeGeometry) Position() schema.Vec2 { return g.pos }
func (g *fakeGeometry) Translate(v schema.Vec2) {
	g.pos = g.pos.Add(v)
}
func (g *fakeGeometry) Scale(factor float64, centre schema.Vec2) {
	g.pos = geom.ScaleAbout(g.pos, factor, centre)
	g.scale *= factor
}
func (g *fakeGeometry) Rotate(angle float64, centre schema.Vec2) {
	g.pos = geom.RotateAbout(g.pos, angle, centre)
	g.rotation += angle
}
func (g *fakeGeometry) UpdateGeometry() { g.updates++ }
func (g *fakeGeometry) KindName() string { return "fake" }

type geometryState struct {
	pos      schema.Vec2
	rotation float64
	scale    float64
}

func (g *fakeGeometry) state() geometryState {
	return geometryState{pos: g.pos, rotation: g.rotation, scale: g.scale}
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func nearVec(a, b schema.Vec2) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

func assertState(t *testing.T, g *fakeGeometry, want geometryState) {
	t.Helper()
	if !nearVec(g.pos, want.pos) || !near(g.rotation, want.rotation) || !near(g.scale, want.scale) {
		t.Fatalf("expected %+v, got %+v", want, g.state())
	}
}

// frameQueue collects requested frames; tests run them explicitly.
type frameQueue struct {
	pending []func(time.Time)
}

func (q *frameQueue) RequestFrame(fn func(time.Time)) {
	q.pending = append(q.pending, fn)
}

func (q *frameQueue) run(now time.Time) int {
	frames := q.pending
	q.pending = nil
	for _, fn := range frames {
		fn(now)
	}
	return len(frames)
}

type notification struct {
	op    string
	model schema.ModelName
	item  modelhub.Item
	all   []modelhub.Item
}

type recordingView struct {
	seen     []notification
	onUpdate func(name schema.ModelName, item modelhub.Item)
}

func (v *recordingView) AddModel(name schema.ModelName, item modelhub.Item) {
	v.seen = append(v.seen, notification{op: "add", model: name, item: item})
}

func (v *recordingView) RemoveModel(name schema.ModelName, item modelhub.Item) {
	v.seen = append(v.seen, notification{op: "remove", model: name, item: item})
}

func (v *recordingView) UpdateModel(name schema.ModelName, item modelhub.Item) {
	v.seen = append(v.seen, notification{op: "update", model: name, item: item})
	if v.onUpdate != nil {
		v.onUpdate(name, item)
	}
}

func (v *recordingView) UpdateAggregateModel(name schema.ModelName, content []modelhub.Item) {
	v.seen = append(v.seen, notification{op: "replace", model: name, all: content})
}

func (v *recordingView) count(op string, model schema.ModelName) int {
	n := 0
	for _, s := range v.seen {
		if s.op == op && s.model == model {
			n++
		}
	}
	return n
}

func newTestController(t *testing.T) (*Controller, *frameQueue) {
	t.Helper()
	frames := &frameQueue{}
	c, err := NewController(schema.ControllerConfig{AnimationEnd: 10}, ControllerDeps{Scheduler: frames})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, frames
}

func newLoggedController(t *testing.T, buf *bytes.Buffer) *Controller {
	t.Helper()
	logger := pslog.NewWithOptions(buf, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.DebugLevel,
		VerboseFields: true,
	})
	c, err := NewController(schema.ControllerConfig{}, ControllerDeps{Logger: logger})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func mustShape(t *testing.T, c *Controller, g Geometry, appearance, disappearance float64) *Shape {
	t.Helper()
	s, err := c.NewShape(g, appearance, disappearance)
	if err != nil {
		t.Fatalf("new shape: %v", err)
	}
	return s
}

func mustTween(t *testing.T, c *Controller, s *Shape, spec schema.TweenSpec) *Tween {
	t.Helper()
	tw, err := c.AddTween(s, spec)
	if err != nil {
		t.Fatalf("add tween: %v", err)
	}
	return tw
}
