package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlayback()
	c.normalizeLogging()
	c.normalizeView()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Rig, err = expandPath(strings.TrimSpace(c.Paths.Rig)); err != nil {
		return fmt.Errorf("paths.rig: %w", err)
	}
	if c.Paths.Analysis, err = expandPath(strings.TrimSpace(c.Paths.Analysis)); err != nil {
		return fmt.Errorf("paths.analysis: %w", err)
	}
	if c.Paths.Patch, err = expandPath(strings.TrimSpace(c.Paths.Patch)); err != nil {
		return fmt.Errorf("paths.patch: %w", err)
	}
	if c.Paths.Screenshots, err = expandPath(strings.TrimSpace(c.Paths.Screenshots)); err != nil {
		return fmt.Errorf("paths.screenshots: %w", err)
	}
	return nil
}

func (c *Config) normalizePlayback() {
	c.Playback.Interpolation = strings.ToLower(strings.TrimSpace(c.Playback.Interpolation))
	if c.Playback.Interpolation == "" {
		c.Playback.Interpolation = defaultInterpolation
	}
	if c.Playback.OnsetWidth == 0 {
		c.Playback.OnsetWidth = defaultOnsetWidth
	}
	c.Smoothing.Mode = strings.ToLower(strings.TrimSpace(c.Smoothing.Mode))
	if c.Smoothing.Mode == "" {
		c.Smoothing.Mode = "none"
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "auto":
		c.Logging.Format = "auto"
	case "console", "text":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeView() {
	if strings.TrimSpace(c.View.Title) == "" {
		c.View.Title = defaultViewTitle
	}
	if c.View.Zoom == 0 {
		c.View.Zoom = defaultViewZoom
	}
}
