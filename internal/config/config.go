// Package config handles scenetool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all scenetool settings.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Camera   CameraConfig   `yaml:"camera"`
	Import   ImportConfig   `yaml:"import"`
	Picking  PickingConfig  `yaml:"picking"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewportConfig holds the screen size used to turn pixels into rays.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CameraConfig holds the orbit camera placed around imported models.
// Angles are in degrees.
type CameraConfig struct {
	FovY  float32 `yaml:"fov_y"`
	Pitch float32 `yaml:"pitch"`
	Yaw   float32 `yaml:"yaw"`
}

// ImportConfig holds scene import options.
type ImportConfig struct {
	FlipUVs         bool `yaml:"flip_uvs"`
	GenerateNormals bool `yaml:"generate_normals"`
	UnicodePaths    bool `yaml:"unicode_paths"` // NFC-normalize texture cache keys
}

// PickingConfig holds ray picking settings.
type PickingConfig struct {
	Mode string `yaml:"mode"` // "view" or "unproject"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:  1280,
			Height: 720,
		},
		Camera: CameraConfig{
			FovY:  45,
			Pitch: 30,
			Yaw:   0,
		},
		Import: ImportConfig{
			FlipUVs:         false,
			GenerateNormals: true,
		},
		Picking: PickingConfig{
			Mode: "view",
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		errs = append(errs, fmt.Errorf("camera fov_y must be in (0, 180), got %g", c.Camera.FovY))
	}
	switch c.Picking.Mode {
	case "view", "unproject":
	default:
		errs = append(errs, fmt.Errorf("unknown picking mode %q", c.Picking.Mode))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "off":
	default:
		errs = append(errs, fmt.Errorf("unknown logging level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}
