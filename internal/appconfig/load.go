package appconfig

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("animation.end_seconds", cfg.Animation.EndSeconds)
	v.SetDefault("animation.frame_rate", cfg.Animation.FrameRate)
	v.SetDefault("history.max_actions", cfg.History.MaxActions)
	v.SetDefault("preview.width", cfg.Preview.Width)
	v.SetDefault("preview.height", cfg.Preview.Height)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	end := cfg.Animation.EndSeconds
	if end <= 0 || math.IsNaN(end) || math.IsInf(end, 0) {
		return fmt.Errorf("animation.end_seconds must be a positive number")
	}
	if cfg.Animation.FrameRate <= 0 || cfg.Animation.FrameRate > 240 {
		return fmt.Errorf("animation.frame_rate must be between 1 and 240")
	}
	if cfg.History.MaxActions <= 0 {
		return fmt.Errorf("history.max_actions must be positive")
	}
	if cfg.Preview.Width <= 0 || cfg.Preview.Height <= 0 {
		return fmt.Errorf("preview.width and preview.height must be positive")
	}
	return nil
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := DefaultYAML()
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// DefaultYAML renders the default config.
func DefaultYAML() ([]byte, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(cfg)
}
