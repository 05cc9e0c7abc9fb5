package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Framebuffer width in pixels.
	Width uint32 `toml:"width"`
	// Framebuffer height in pixels.
	Height uint32 `toml:"height"`
	// Number of frames to run before exiting. 0 runs until shutdown.
	Frames uint32 `toml:"frames"`
	// Fixed update step in seconds.
	FixedStep float64 `toml:"fixed_step"`
	// Path of the last frame capture (.png or .webp). Empty disables capture.
	CapturePath string `toml:"capture_path"`
	// Present the framebuffer in a desktop window.
	Window bool `toml:"window"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type DrawConfig struct {
	TriangleCapacity int     `toml:"triangle_capacity"`
	LineCapacity     int     `toml:"line_capacity"`
	PointCapacity    int     `toml:"point_capacity"`
	LineWidth        float32 `toml:"line_width"`
}

type AnimationConfig struct {
	// Cross-fade duration in seconds.
	TransitionTime float32 `toml:"transition_time"`
	// One of "high", "low" or "none".
	Quality string `toml:"quality"`
}

type AssetsConfig struct {
	BaseDir string `toml:"base_dir"`
	Watch   bool   `toml:"watch"`
}

type JobsConfig struct {
	// Worker goroutines decoding textures.
	Workers int `toml:"workers"`
	// Jobs that can be queued before Submit blocks.
	QueueSize int `toml:"queue_size"`
}

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Log         LogConfig         `toml:"log"`
	Draw        DrawConfig        `toml:"draw"`
	Animation   AnimationConfig   `toml:"animation"`
	Assets      AssetsConfig      `toml:"assets"`
	Jobs        JobsConfig        `toml:"jobs"`
}

// DefaultConfig returns the settings the demo ships with.
func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:      "Anima Blend",
			Width:     960,
			Height:    640,
			Frames:    0,
			FixedStep: 1.0 / 60.0,
		},
		Log: LogConfig{
			Level: "info",
		},
		Draw: DrawConfig{
			TriangleCapacity: 512,
			LineCapacity:     256,
			PointCapacity:    64,
			LineWidth:        2,
		},
		Animation: AnimationConfig{
			TransitionTime: 0.1,
			Quality:        "high",
		},
		Assets: AssetsConfig{
			BaseDir: "assets",
			Watch:   true,
		},
		Jobs: JobsConfig{
			Workers:   2,
			QueueSize: 16,
		},
	}
}

// LoadConfig overlays the TOML file at path on top of DefaultConfig.
// A missing file is not an error; the defaults are returned as-is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			LogWarn("config file '%s' not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config '%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return fmt.Errorf("application width and height must be > 0")
	}
	if c.Application.FixedStep <= 0 {
		return fmt.Errorf("application fixed_step must be > 0")
	}
	if c.Draw.TriangleCapacity < 0 || c.Draw.LineCapacity < 0 || c.Draw.PointCapacity < 0 {
		return fmt.Errorf("draw capacities: %w", ErrNegativeCount)
	}
	if c.Animation.TransitionTime < 0 {
		return fmt.Errorf("animation transition_time must be >= 0")
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("jobs workers must be > 0")
	}
	if c.Jobs.QueueSize < 0 {
		return fmt.Errorf("jobs queue_size: %w", ErrNegativeCount)
	}
	switch c.Animation.Quality {
	case "high", "low", "none":
	default:
		return fmt.Errorf("animation quality must be one of high, low, none; got '%s'", c.Animation.Quality)
	}
	return nil
}
