package shapes

import (
	"math"
	"testing"

	"pkt.systems/tweenly/internal/geom"
	"pkt.systems/tweenly/schema"
)

func nearVec(a, b schema.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func allKinds() map[Kind]*Shape {
	return map[Kind]*Shape{
		KindEllipse: NewEllipse(schema.Vec2{X: 4, Y: 2}, 6, 2, 1),
		KindGraphic: NewGraphic(schema.Vec2{X: 1, Y: 1}, 4, 2),
		KindText:    NewText(schema.Vec2{X: 0, Y: 10}, "hello", 10),
		KindDrawing: NewDrawing([]schema.Vec2{{X: 0, Y: 0}, {X: 2, Y: 3}, {X: 5, Y: 1}}, 2),
	}
}

func TestPositionMovesRigidly(t *testing.T) {
	centre := schema.Vec2{X: -3, Y: 7}
	for kind, s := range allKinds() {
		t.Run(string(kind), func(t *testing.T) {
			start := s.Position()

			s.Rotate(0.7, centre)
			if want := geom.RotateAbout(start, 0.7, centre); !nearVec(s.Position(), want) {
				t.Fatalf("rotate: expected %v, got %v", want, s.Position())
			}
			rotated := s.Position()

			s.Scale(2.5, centre)
			if want := geom.ScaleAbout(rotated, 2.5, centre); !nearVec(s.Position(), want) {
				t.Fatalf("scale: expected %v, got %v", want, s.Position())
			}
			scaled := s.Position()

			s.Translate(schema.Vec2{X: 1, Y: -1})
			if want := scaled.Add(schema.Vec2{X: 1, Y: -1}); !nearVec(s.Position(), want) {
				t.Fatalf("translate: expected %v, got %v", want, s.Position())
			}
		})
	}
}

func TestNegativeScaleIsHalfTurn(t *testing.T) {
	s := NewGraphic(schema.Vec2{X: 2, Y: 0}, 2, 2)
	before := s.Position()
	s.Scale(-1, schema.Vec2{})
	if !nearVec(s.Position(), before.Neg()) {
		t.Fatalf("expected %v, got %v", before.Neg(), s.Position())
	}
	if math.Abs(s.Rotation()-math.Pi) > 1e-12 {
		t.Fatalf("expected half turn, got %v", s.Rotation())
	}
	if w, h := s.Size(); w != 2 || h != 2 {
		t.Fatalf("expected size kept, got %vx%v", w, h)
	}
}

func TestUpdateGeometryBounds(t *testing.T) {
	e := NewEllipse(schema.Vec2{X: 0, Y: 0}, 4, 2, 0)
	if b := e.Bounds(); b.Left != -2 || b.Right != 2 || b.Top != -1 || b.Bottom != 1 {
		t.Fatalf("unexpected ellipse bounds %+v", b)
	}
	e.Rotate(math.Pi/2, schema.Vec2{})
	e.UpdateGeometry()
	if b := e.Bounds(); math.Abs(b.Right-1) > 1e-9 || math.Abs(b.Bottom-2) > 1e-9 {
		t.Fatalf("unexpected rotated ellipse bounds %+v", b)
	}

	txt := NewText(schema.Vec2{X: 0, Y: 10}, "ab", 10)
	if b := txt.Bounds(); b.Top != 0 || b.Bottom != 10 || b.Right != 12 {
		t.Fatalf("unexpected text bounds %+v", b)
	}
	if c := txt.Bounds().Centre(); !nearVec(c, txt.Position()) {
		t.Fatalf("expected text centre %v, got %v", c, txt.Position())
	}

	d := NewDrawing([]schema.Vec2{{X: 0, Y: 0}, {X: 4, Y: 4}}, 2)
	if b := d.Bounds(); b.Left != -1 || b.Bottom != 5 {
		t.Fatalf("unexpected drawing bounds %+v", b)
	}
}

func TestDrawingIsDecimated(t *testing.T) {
	line := []schema.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0.1}, {X: 2, Y: -0.1}, {X: 3, Y: 0}}
	d := NewDrawing(line, 1)
	if got := len(d.Points()); got != 2 {
		t.Fatalf("expected 2 points after decimation, got %d", got)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	d := NewDrawing([]schema.Vec2{{X: 0, Y: 0}, {X: 0, Y: 5}, {X: 5, Y: 5}}, 1)
	cp := d.Copy()
	cp.Translate(schema.Vec2{X: 10})
	if d.Points()[0].X != 0 {
		t.Fatalf("expected original untouched")
	}
}

func TestNewByKind(t *testing.T) {
	if _, err := New("hexagon", schema.Vec2{}, 1, 1, "", nil); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if _, err := New(KindDrawing, schema.Vec2{}, 0, 0, "", nil); err == nil {
		t.Fatalf("expected empty drawing error")
	}
	s, err := New(KindText, schema.Vec2{}, 0, 12, "hi", nil)
	if err != nil {
		t.Fatalf("new text: %v", err)
	}
	if s.KindName() != "text" || s.Text() != "hi" {
		t.Fatalf("unexpected text shape %v", s)
	}
}
