package format

import (
	"strings"
	"testing"

	"pkt.systems/tweenly/internal/scene"
	"pkt.systems/tweenly/schema"
)

func TestFormatSnapshotHeaderAndShapes(t *testing.T) {
	snap := scene.Snapshot{
		Label: "halfway",
		Time:  1.5,
		Shapes: []scene.ShapeState{
			{ID: "ball", Name: "ellipse 1", Visible: true, Position: schema.Vec2{X: 1, Y: -0.0000001}},
			{ID: "box", Name: "graphic 1", Rotation: 0.5, Bounds: schema.Bounds{Right: 2, Bottom: 3}},
		},
	}
	lines := NewPlainRenderer().FormatSnapshot(snap)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d (%v)", len(lines), lines)
	}
	if lines[0] != "== halfway @ 1.500s (paused)" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "+ ball") || !strings.Contains(lines[1], "pos=(1.00, 0.00)") {
		t.Fatalf("unexpected visible line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "- box") || !strings.Contains(lines[2], "rot=0.5") || !strings.Contains(lines[2], "bounds=[0.00 0.00 2.00 3.00]") {
		t.Fatalf("unexpected hidden line %q", lines[2])
	}
}

func TestFormatSnapshotSkipsHidden(t *testing.T) {
	snap := scene.Snapshot{
		Step:    4,
		Playing: true,
		Shapes: []scene.ShapeState{
			{ID: "a", Visible: false},
			{ID: "b", Visible: true},
		},
	}
	lines := (&PlainRenderer{}).FormatSnapshot(snap)
	if len(lines) != 2 {
		t.Fatalf("expected header and one shape, got %v", lines)
	}
	if lines[0] != "== step 4 @ 0.000s (playing)" {
		t.Fatalf("unexpected header %q", lines[0])
	}
}

func TestFormatAllSeparatesSnapshots(t *testing.T) {
	out := NewPlainRenderer().FormatAll([]scene.Snapshot{{Label: "a"}, {Label: "b"}})
	if out != "== a @ 0.000s (paused)\n\n== b @ 0.000s (paused)\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
