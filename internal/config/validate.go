package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/phanxgames/marionette"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateSmoothing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateView(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlayback() error {
	p := c.Playback
	if p.FPS <= 0 || math.IsInf(p.FPS, 0) || math.IsNaN(p.FPS) {
		return errors.New("playback.fps must be positive")
	}
	if _, ok := marionette.ParseInterpolation(p.Interpolation); !ok {
		return fmt.Errorf("playback.interpolation: unsupported value %q (want step or linear)", p.Interpolation)
	}
	if p.OnsetWidth < 0 {
		return errors.New("playback.onset_width must not be negative")
	}
	if p.Duration <= 0 {
		return errors.New("playback.duration must be positive")
	}
	if p.BPM <= 0 {
		return errors.New("playback.bpm must be positive")
	}
	return nil
}

func (c *Config) validateSmoothing() error {
	if _, ok := marionette.ParseSmoothMode(c.Smoothing.Mode); !ok {
		return fmt.Errorf("smoothing.mode: unsupported value %q", c.Smoothing.Mode)
	}
	if err := c.DefaultSmoothing().Validate(); err != nil {
		return fmt.Errorf("smoothing: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
}

func (c *Config) validateView() error {
	if c.View.Width <= 0 || c.View.Height <= 0 {
		return errors.New("view.width and view.height must be positive")
	}
	if c.View.Zoom <= 0 {
		return errors.New("view.zoom must be positive")
	}
	return nil
}
