package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/phanxgames/marionette"
	"github.com/phanxgames/marionette/analysis"
	"github.com/phanxgames/marionette/internal/config"
	"github.com/phanxgames/marionette/internal/logging"
	"github.com/phanxgames/marionette/rig"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger. Logs go to stderr so tables on stdout
// stay clean.
func (c *commandContext) logger(out io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level = *c.logLevelFlag
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: out,
	})
}

// sourceFlags are the input overrides shared by the commands that load a rig.
type sourceFlags struct {
	rig       string
	analysis  string
	patch     string
	synthetic bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rig, "rig", "", "Rig description (TOML); defaults to the built-in rig")
	cmd.Flags().StringVar(&f.analysis, "analysis", "", "Audio analysis file (JSON)")
	cmd.Flags().StringVar(&f.patch, "patch", "", "Timed patch script (JSON)")
	cmd.Flags().BoolVar(&f.synthetic, "synthetic", false, "Use generated signals instead of an analysis file")
}

// session is a loaded rig wired to its signals.
type session struct {
	cfg      *config.Config
	log      *slog.Logger
	rig      *rig.Rig
	material *analysis.File
	binder   *marionette.Binder
	patch    rig.Patch
	script   *marionette.PatchScript
}

// openSession loads the rig and analysis named by the flags or the config,
// registers every feature as a signal, and attaches the rig's default patch.
// Bindings without smoothing of their own get the configured default.
func (c *commandContext) openSession(cmd *cobra.Command, flags sourceFlags) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	desc, err := loadDescription(firstNonEmpty(flags.rig, cfg.Paths.Rig))
	if err != nil {
		return nil, err
	}
	r, err := rig.Build(desc)
	if err != nil {
		return nil, err
	}
	applyDefaultSmoothing(r, cfg)

	material, err := loadMaterial(cfg, flags)
	if err != nil {
		return nil, err
	}
	signals, err := material.Signals(cfg.AnalysisOptions())
	if err != nil {
		return nil, err
	}

	binder := marionette.NewBinder(r.Bones, marionette.WithLogger(log))
	for _, s := range signals {
		if err := binder.AddSignal(s); err != nil {
			return nil, err
		}
	}
	patch, err := r.Attach(binder)
	if err != nil {
		return nil, err
	}
	for _, spec := range patch.Skipped {
		log.Warn("binding skipped: signal not in analysis",
			"signal", spec.Signal,
			"effector", spec.Effector,
		)
	}

	s := &session{
		cfg:      cfg,
		log:      log,
		rig:      r,
		material: material,
		binder:   binder,
		patch:    patch,
	}

	if path := firstNonEmpty(flags.patch, cfg.Paths.Patch); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read patch script: %w", err)
		}
		if s.script, err = marionette.LoadPatchScript(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	log.Debug("session ready",
		"rig", r.Name,
		"bones", r.Bones.Len(),
		"effectors", len(r.Effectors),
		"signals", len(signals),
		"bindings", len(patch.Connected),
		"duration", material.Duration(),
	)
	return s, nil
}

// player returns a Player over the session's Binder with the patch script
// installed.
func (s *session) player(loop bool) *marionette.Player {
	p := marionette.NewPlayer(s.binder, s.material.Duration(), loop)
	if s.script != nil {
		p.SetScript(s.script)
	}
	return p
}

func loadDescription(path string) (*rig.Description, error) {
	if path == "" {
		return rig.Default(), nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return rig.Load(expanded)
}

func loadMaterial(cfg *config.Config, flags sourceFlags) (*analysis.File, error) {
	path := firstNonEmpty(flags.analysis, cfg.Paths.Analysis)
	if flags.synthetic || path == "" {
		return analysis.Synthetic(analysis.SyntheticConfig{
			Duration: cfg.Playback.Duration,
			FPS:      cfg.Playback.FPS,
			BPM:      cfg.Playback.BPM,
		}), nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return analysis.Load(expanded)
}

func applyDefaultSmoothing(r *rig.Rig, cfg *config.Config) {
	if cfg.Smoothing.Mode == "" || cfg.Smoothing.Mode == "none" {
		return
	}
	for i := range r.Bindings {
		if r.Bindings[i].Smoothing != nil {
			continue
		}
		r.Bindings[i].Smoothing = &rig.SmoothingSpec{
			Mode:      cfg.Smoothing.Mode,
			Alpha:     cfg.Smoothing.Alpha,
			Frequency: cfg.Smoothing.Frequency,
			Damping:   cfg.Smoothing.Damping,
		}
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// kindLabel renders an effector kind for tables, e.g. "Pulse Trigger".
func kindLabel(k marionette.EffectorKind) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(k.String(), "-", " "))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
