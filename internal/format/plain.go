package format

import (
	"fmt"
	"strings"

	"pkt.systems/tweenly/internal/scene"
	"pkt.systems/tweenly/schema"
)

// PlainRenderer formats scene snapshots as plain text lines.
type PlainRenderer struct {
	// Hidden includes shapes that are not visible.
	Hidden bool
}

// NewPlainRenderer returns a default plain-text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{Hidden: true}
}

// FormatSnapshot converts a snapshot into user-facing lines: a header with
// the clock followed by one line per shape.
func (p *PlainRenderer) FormatSnapshot(snap scene.Snapshot) []string {
	lines := []string{formatHeader(snap)}
	for _, st := range snap.Shapes {
		if !st.Visible && !p.Hidden {
			continue
		}
		lines = append(lines, formatShape(st))
	}
	return lines
}

// FormatAll renders every snapshot separated by a blank line.
func (p *PlainRenderer) FormatAll(snaps []scene.Snapshot) string {
	var b strings.Builder
	for i, snap := range snaps {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, line := range p.FormatSnapshot(snap) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatHeader(snap scene.Snapshot) string {
	label := snap.Label
	if label == "" {
		label = fmt.Sprintf("step %d", snap.Step)
	}
	state := "paused"
	if snap.Playing {
		state = "playing"
	}
	return fmt.Sprintf("== %s @ %.3fs (%s)", label, snap.Time, state)
}

func formatShape(st scene.ShapeState) string {
	marker := "-"
	if st.Visible {
		marker = "+"
	}
	line := fmt.Sprintf("%s %-10s %-12s pos=%s", marker, st.ID, st.Name, formatVec(st.Position))
	if st.Rotation != 0 {
		line += fmt.Sprintf(" rot=%.4g", st.Rotation)
	}
	if st.Bounds != (schema.Bounds{}) {
		line += " bounds=" + formatBounds(st.Bounds)
	}
	return line
}

func formatVec(v schema.Vec2) string {
	return fmt.Sprintf("(%.2f, %.2f)", clean(v.X), clean(v.Y))
}

func formatBounds(b schema.Bounds) string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", clean(b.Left), clean(b.Top), clean(b.Right), clean(b.Bottom))
}

// clean folds negative zero and rounding noise so output is stable.
func clean(v float64) float64 {
	if v > -5e-7 && v < 5e-7 {
		return 0
	}
	return v
}
