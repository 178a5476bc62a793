package schema

import (
	"errors"
	"math"
)

// ControllerConfig defines defaults and limits for the animation controller.
type ControllerConfig struct {
	// AnimationEnd is the end of the timeline in seconds; playback pauses there.
	AnimationEnd float64
	// MaxActions bounds the undo stack; the oldest action is dropped first.
	MaxActions int
}

const (
	// DefaultAnimationEnd is the default timeline length in seconds.
	DefaultAnimationEnd = 10.0
	// DefaultMaxActions is the default undo depth.
	DefaultMaxActions = 500
)

// NormalizeControllerConfig applies defaults and validates the config.
func NormalizeControllerConfig(cfg ControllerConfig) (ControllerConfig, error) {
	if cfg.AnimationEnd == 0 {
		cfg.AnimationEnd = DefaultAnimationEnd
	}
	if cfg.MaxActions <= 0 {
		cfg.MaxActions = DefaultMaxActions
	}
	if cfg.AnimationEnd < 0 || math.IsNaN(cfg.AnimationEnd) || math.IsInf(cfg.AnimationEnd, 0) {
		return ControllerConfig{}, errors.New("animation end must be a positive number of seconds")
	}
	return cfg, nil
}
