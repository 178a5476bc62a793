// Package scene loads YAML scene scripts and runs them against a controller.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"pkt.systems/tweenly/internal/shapes"
	"pkt.systems/tweenly/schema"
)

// ErrInvalidScript indicates a script that cannot be run.
var ErrInvalidScript = errors.New("invalid scene script")

// Script is a document fixture followed by a list of steps.
type Script struct {
	Name   string      `yaml:"name"`
	End    float64     `yaml:"end"`
	Shapes []ShapeSpec `yaml:"shapes"`
	Steps  []Step      `yaml:"steps"`
}

// ShapeSpec places one shape in the document.
type ShapeSpec struct {
	ID        string             `yaml:"id"`
	Kind      shapes.Kind        `yaml:"kind"`
	At        schema.Vec2        `yaml:"at"`
	Width     float64            `yaml:"width"`
	Height    float64            `yaml:"height"`
	Text      string             `yaml:"text"`
	Points    []schema.Vec2      `yaml:"points"`
	Appear    float64            `yaml:"appear"`
	Disappear float64            `yaml:"disappear"`
	Tweens    []schema.TweenSpec `yaml:"tweens"`
	Changes   []ChangeSpec       `yaml:"changes"`
}

// ChangeSpec is a discrete change applied at a point in time.
type ChangeSpec struct {
	At            float64 `yaml:"at"`
	schema.Change `yaml:",inline"`
}

// PlaySpec ticks playback for a number of frames.
type PlaySpec struct {
	Frames   int     `yaml:"frames"`
	Interval float64 `yaml:"interval"`
}

// PivotSpec is a rotation or scale of the selection.
type PivotSpec struct {
	Angle  float64     `yaml:"angle"`
	Factor float64     `yaml:"factor"`
	Centre schema.Vec2 `yaml:"centre"`
}

// LifetimeSpec moves the lifetime boundaries of one shape.
type LifetimeSpec struct {
	Shape     string   `yaml:"shape"`
	Appear    *float64 `yaml:"appear"`
	Disappear *float64 `yaml:"disappear"`
}

// Step is one operation. Exactly one field is set.
type Step struct {
	Clock     *float64      `yaml:"clock"`
	Play      *PlaySpec     `yaml:"play"`
	Undo      int           `yaml:"undo"`
	Redo      int           `yaml:"redo"`
	Select    []string      `yaml:"select"`
	Translate *schema.Vec2  `yaml:"translate"`
	Rotate    *PivotSpec    `yaml:"rotate"`
	Scale     *PivotSpec    `yaml:"scale"`
	Lifetime  *LifetimeSpec `yaml:"lifetime"`
	Delete    string        `yaml:"delete"`
	Snapshot  string        `yaml:"snapshot"`
}

func (s Step) op() string {
	var ops []string
	if s.Clock != nil {
		ops = append(ops, "clock")
	}
	if s.Play != nil {
		ops = append(ops, "play")
	}
	if s.Undo != 0 {
		ops = append(ops, "undo")
	}
	if s.Redo != 0 {
		ops = append(ops, "redo")
	}
	if s.Select != nil {
		ops = append(ops, "select")
	}
	if s.Translate != nil {
		ops = append(ops, "translate")
	}
	if s.Rotate != nil {
		ops = append(ops, "rotate")
	}
	if s.Scale != nil {
		ops = append(ops, "scale")
	}
	if s.Lifetime != nil {
		ops = append(ops, "lifetime")
	}
	if s.Delete != "" {
		ops = append(ops, "delete")
	}
	if s.Snapshot != "" {
		ops = append(ops, "snapshot")
	}
	if len(ops) != 1 {
		return strings.Join(ops, "+")
	}
	return ops[0]
}

// Read parses the script at path.
func Read(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a script. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var script Script
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks shape ids and step shape.
func (s *Script) Validate() error {
	ids := make(map[string]bool, len(s.Shapes))
	for i, sh := range s.Shapes {
		if strings.TrimSpace(sh.ID) == "" {
			return fmt.Errorf("%w: shape %d has no id", ErrInvalidScript, i)
		}
		if ids[sh.ID] {
			return fmt.Errorf("%w: duplicate shape id %q", ErrInvalidScript, sh.ID)
		}
		ids[sh.ID] = true
	}
	for i, step := range s.Steps {
		op := step.op()
		switch op {
		case "":
			return fmt.Errorf("%w: step %d is empty", ErrInvalidScript, i+1)
		case "select":
			for _, id := range step.Select {
				if !ids[id] {
					return fmt.Errorf("%w: step %d selects unknown shape %q", ErrInvalidScript, i+1, id)
				}
			}
		case "lifetime":
			if !ids[step.Lifetime.Shape] {
				return fmt.Errorf("%w: step %d edits unknown shape %q", ErrInvalidScript, i+1, step.Lifetime.Shape)
			}
		case "delete":
			if !ids[step.Delete] {
				return fmt.Errorf("%w: step %d deletes unknown shape %q", ErrInvalidScript, i+1, step.Delete)
			}
		case "play":
			if step.Play.Frames <= 0 || step.Play.Interval <= 0 {
				return fmt.Errorf("%w: step %d needs positive frames and interval", ErrInvalidScript, i+1)
			}
		case "clock", "undo", "redo", "translate", "rotate", "scale", "snapshot":
		default:
			return fmt.Errorf("%w: step %d sets %s", ErrInvalidScript, i+1, op)
		}
	}
	return nil
}
