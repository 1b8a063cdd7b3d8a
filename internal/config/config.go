package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/phanxgames/marionette"
	"github.com/phanxgames/marionette/analysis"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the input files. Empty values select built-in data.
type Paths struct {
	Rig         string `toml:"rig"`
	Analysis    string `toml:"analysis"`
	Patch       string `toml:"patch"`
	Screenshots string `toml:"screenshots"`
}

// Playback controls the evaluation clock and how analysis features become
// signals.
type Playback struct {
	FPS           float64 `toml:"fps"`
	Loop          bool    `toml:"loop"`
	Interpolation string  `toml:"interpolation"`
	OnsetWidth    float64 `toml:"onset_width"`
	// Duration and BPM shape the generated signals used when no analysis
	// file is configured.
	Duration float64 `toml:"duration"`
	BPM      float64 `toml:"bpm"`
}

// Smoothing is applied to rig bindings that declare none.
type Smoothing struct {
	Mode      string  `toml:"mode"`
	Alpha     float64 `toml:"alpha"`
	Frequency float64 `toml:"frequency"`
	Damping   float64 `toml:"damping"`
}

// Logging selects the log handler and level.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// View configures the interactive viewer window.
type View struct {
	Title     string  `toml:"title"`
	Width     int     `toml:"width"`
	Height    int     `toml:"height"`
	Zoom      float64 `toml:"zoom"`
	ShowBones bool    `toml:"show_bones"`
	ShowHUD   bool    `toml:"show_hud"`
}

// Config encapsulates all configuration values for marionette.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Playback  Playback  `toml:"playback"`
	Smoothing Smoothing `toml:"smoothing"`
	Logging   Logging   `toml:"logging"`
	View      View      `toml:"view"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marionette/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. A missing file is not an error: the
// defaults are returned with exists set to false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marionette.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// AnalysisOptions converts the playback section into signal construction
// options for analysis files.
func (c *Config) AnalysisOptions() analysis.Options {
	opts := analysis.DefaultOptions()
	if mode, ok := marionette.ParseInterpolation(c.Playback.Interpolation); ok {
		opts.Interpolation = mode
	}
	if c.Playback.OnsetWidth > 0 {
		opts.OnsetWidth = c.Playback.OnsetWidth
	}
	return opts
}

// DefaultSmoothing returns the smoothing applied to bindings without their own.
func (c *Config) DefaultSmoothing() marionette.Smoothing {
	mode, _ := marionette.ParseSmoothMode(c.Smoothing.Mode)
	return marionette.Smoothing{
		Mode:      mode,
		Alpha:     c.Smoothing.Alpha,
		Frequency: c.Smoothing.Frequency,
		Damping:   c.Smoothing.Damping,
	}
}
