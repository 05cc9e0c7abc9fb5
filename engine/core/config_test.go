package core

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0/60.0, cfg.Application.FixedStep, 1e-9)
	assert.Equal(t, "high", cfg.Animation.Quality)
	assert.Equal(t, 2, cfg.Jobs.Workers)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	SetLogOutput(io.Discard)
	path := writeConfig(t, `
[application]
name = "demo"
width = 320
frames = 10

[animation]
transition_time = 0.25
quality = "low"

[jobs]
workers = 4
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Application.Name)
	assert.Equal(t, uint32(320), cfg.Application.Width)
	assert.Equal(t, uint32(640), cfg.Application.Height, "unset keys keep their default")
	assert.Equal(t, uint32(10), cfg.Application.Frames)
	assert.Equal(t, float32(0.25), cfg.Animation.TransitionTime)
	assert.Equal(t, "low", cfg.Animation.Quality)
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, 16, cfg.Jobs.QueueSize)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	SetLogOutput(io.Discard)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	SetLogOutput(io.Discard)
	_, err := LoadConfig(writeConfig(t, "[application\nwidth ="))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "[draw]\nline_capacity = -1\n"))
	assert.ErrorIs(t, err, ErrNegativeCount)

	_, err = LoadConfig(writeConfig(t, "[animation]\nquality = \"ultra\"\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero width":          func(c *Config) { c.Application.Width = 0 },
		"zero step":           func(c *Config) { c.Application.FixedStep = 0 },
		"negative transition": func(c *Config) { c.Animation.TransitionTime = -1 },
		"no workers":          func(c *Config) { c.Jobs.Workers = 0 },
		"negative queue":      func(c *Config) { c.Jobs.QueueSize = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLogLevel(" warning "))
	assert.Equal(t, ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, InfoLevel, ParseLogLevel("chatty"))
	assert.Equal(t, "warn", WarnLevel.String())
}
