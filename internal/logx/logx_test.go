package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/schema"
)

func newCaptureLogger(capture *logCapture) pslog.Logger {
	return pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
}

func TestWithShapeAddsField(t *testing.T) {
	capture := &logCapture{}
	log := WithShape(newCaptureLogger(capture), "ellipse 1")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["shape"] != "ellipse 1" {
		t.Fatalf("expected shape field, got %+v", entry)
	}
}

func TestWithShapeSkipsEmptyName(t *testing.T) {
	capture := &logCapture{}
	log := WithShape(newCaptureLogger(capture), "")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["shape"]; ok {
		t.Fatalf("did not expect shape field, got %+v", entry)
	}
}

func TestWithTweenAndModelAddFields(t *testing.T) {
	capture := &logCapture{}
	log := WithModel(WithTween(newCaptureLogger(capture), schema.TweenRotation, 2, 6), schema.ModelClock)
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["tween"] != "rotation" {
		t.Fatalf("expected tween field, got %+v", entry)
	}
	if entry["model"] != "clock" {
		t.Fatalf("expected model field, got %+v", entry)
	}
}

func TestWithSceneReadsContext(t *testing.T) {
	capture := &logCapture{}
	ctx := ContextWithSceneLogger(context.Background(), newCaptureLogger(capture), "demo")
	WithScene(ctx).Info("hello")

	entry := capture.firstEntry(t)
	if entry["scene"] != "demo" {
		t.Fatalf("expected scene field, got %+v", entry)
	}
}

func TestOrFallsBack(t *testing.T) {
	if Or(nil) == nil {
		t.Fatalf("expected fallback logger")
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
