package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/tweenly/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int             `mapstructure:"config_version" yaml:"config_version"`
	Animation     AnimationConfig `mapstructure:"animation" yaml:"animation"`
	History       HistoryConfig   `mapstructure:"history" yaml:"history"`
	Preview       PreviewConfig   `mapstructure:"preview" yaml:"preview"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// AnimationConfig controls the timeline length and playback rate.
type AnimationConfig struct {
	EndSeconds float64 `mapstructure:"end_seconds" yaml:"end_seconds"`
	FrameRate  int     `mapstructure:"frame_rate" yaml:"frame_rate"`
}

// HistoryConfig bounds the undo stack.
type HistoryConfig struct {
	MaxActions int `mapstructure:"max_actions" yaml:"max_actions"`
}

// PreviewConfig sizes the terminal preview canvas in scene units per cell.
type PreviewConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() (Config, error) {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Animation: AnimationConfig{
			EndSeconds: schema.DefaultAnimationEnd,
			FrameRate:  30,
		},
		History: HistoryConfig{
			MaxActions: schema.DefaultMaxActions,
		},
		Preview: PreviewConfig{
			Width:  800,
			Height: 600,
		},
	}, nil
}

// ControllerConfig maps the loaded values onto the controller settings.
func (c Config) ControllerConfig() schema.ControllerConfig {
	return schema.ControllerConfig{
		AnimationEnd: c.Animation.EndSeconds,
		MaxActions:   c.History.MaxActions,
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tweenly", "config.yaml"), nil
}
