package logx

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/schema"
)

type contextKey int

const (
	sceneKey contextKey = iota
)

// Or returns log, or the background logger when log is nil.
func Or(log pslog.Logger) pslog.Logger {
	if log != nil {
		return log
	}
	return pslog.Ctx(context.Background())
}

// WithShape annotates the logger with the shape name if present.
func WithShape(log pslog.Logger, name string) pslog.Logger {
	log = Or(log)
	if name != "" {
		log = log.With("shape", name)
	}
	return log
}

// WithTween annotates the logger with tween kind and interval.
func WithTween(log pslog.Logger, kind schema.TweenKind, start, end float64) pslog.Logger {
	log = Or(log)
	if kind == "" {
		return log
	}
	return log.With("tween", string(kind), "tween_start", start, "tween_end", end)
}

// WithEvent annotates the logger with a timeline event type and time.
func WithEvent(log pslog.Logger, eventType schema.EventType, at float64) pslog.Logger {
	log = Or(log)
	if eventType == "" {
		return log
	}
	return log.With("event", string(eventType), "event_time", at)
}

// WithModel annotates the logger with an aggregate model name.
func WithModel(log pslog.Logger, name schema.ModelName) pslog.Logger {
	log = Or(log)
	if name != "" {
		log = log.With("model", string(name))
	}
	return log
}

// WithScene annotates the logger with the scene name stored on ctx, if any.
func WithScene(ctx context.Context) pslog.Logger {
	log := pslog.Ctx(ctx)
	if name, ok := ctx.Value(sceneKey).(string); ok && name != "" {
		log = log.With("scene", name)
	}
	return log
}

// ContextWithScene stores the scene name on the context.
func ContextWithScene(ctx context.Context, name string) context.Context {
	if ctx == nil || name == "" {
		return ctx
	}
	return context.WithValue(ctx, sceneKey, name)
}

// ContextWithSceneLogger attaches the logger and scene marker to the context.
func ContextWithSceneLogger(ctx context.Context, log pslog.Logger, name string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithScene(ctx, name)
}
