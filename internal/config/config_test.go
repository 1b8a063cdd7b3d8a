package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/phanxgames/marionette"
	"github.com/phanxgames/marionette/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists to be false")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, path)
	}
	if cfg.Playback.FPS != 60 {
		t.Fatalf("expected default fps 60, got %v", cfg.Playback.FPS)
	}
	if cfg.Logging.Format != "auto" {
		t.Fatalf("expected auto log format, got %q", cfg.Logging.Format)
	}
	if cfg.Paths.Rig != "" {
		t.Fatalf("expected built-in rig, got %q", cfg.Paths.Rig)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "marionette.toml")

	type payload struct {
		Paths struct {
			Rig string `toml:"rig"`
		} `toml:"paths"`
		Playback struct {
			FPS           float64 `toml:"fps"`
			Interpolation string  `toml:"interpolation"`
		} `toml:"playback"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.Rig = "~/rigs/dancer.toml"
	custom.Playback.FPS = 30
	custom.Playback.Interpolation = " Linear "
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "DEBUG"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if cfg.Playback.FPS != 30 {
		t.Fatalf("expected fps 30, got %v", cfg.Playback.FPS)
	}
	if cfg.Playback.Interpolation != "linear" {
		t.Fatalf("expected normalized interpolation, got %q", cfg.Playback.Interpolation)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected json/debug logging, got %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if !filepath.IsAbs(cfg.Paths.Rig) || strings.HasPrefix(cfg.Paths.Rig, "~") {
		t.Fatalf("expected expanded rig path, got %q", cfg.Paths.Rig)
	}
	// Unset sections keep their defaults.
	if cfg.View.Width != 800 {
		t.Fatalf("expected default view width, got %d", cfg.View.Width)
	}
	if opts := cfg.AnalysisOptions(); opts.Interpolation != marionette.InterpolateLinear {
		t.Fatalf("expected linear analysis options, got %v", opts.Interpolation)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[playback\nfps = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[playback]") {
		t.Fatalf("sample config missing playback section: %s", contents)
	}

	// The sample must load cleanly.
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists || cfg.Smoothing.Mode != "none" {
		t.Fatalf("unexpected sample config: exists=%v mode=%q", exists, cfg.Smoothing.Mode)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero fps", func(c *config.Config) { c.Playback.FPS = 0 }},
		{"bad interpolation", func(c *config.Config) { c.Playback.Interpolation = "cubic" }},
		{"negative onset width", func(c *config.Config) { c.Playback.OnsetWidth = -1 }},
		{"zero duration", func(c *config.Config) { c.Playback.Duration = 0 }},
		{"zero bpm", func(c *config.Config) { c.Playback.BPM = 0 }},
		{"unknown smoothing", func(c *config.Config) { c.Smoothing.Mode = "kalman" }},
		{"bad alpha", func(c *config.Config) {
			c.Smoothing.Mode = "exponential"
			c.Smoothing.Alpha = 0
		}},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"zero width", func(c *config.Config) { c.View.Width = 0 }},
		{"negative zoom", func(c *config.Config) { c.View.Zoom = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestDefaultSmoothing(t *testing.T) {
	cfg := config.Default()
	cfg.Smoothing = config.Smoothing{Mode: "spring", Frequency: 8, Damping: 1}
	sm := cfg.DefaultSmoothing()
	if sm.Mode != marionette.SmoothSpring || sm.Frequency != 8 {
		t.Fatalf("unexpected smoothing %+v", sm)
	}
}
