// Package analysis loads pre-extracted audio analysis files and turns them
// into marionette Signals.
//
// An analysis file is JSON with three sections:
//
//	{
//	  "info":       {"filename": "song.wav", "duration": 12.5, "fps": 43.07, ...},
//	  "continuous": {"volume": [0.1, 0.3, ...], "pitch": [...], "timbre": [...]},
//	  "triggers":   {"beats": [0.52, 1.03, ...]}
//	}
//
// Continuous arrays hold one normalized value per analysis frame, frame i
// starting at i/fps seconds. Trigger lists hold event timestamps in seconds.
package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/phanxgames/marionette"
)

// Info describes the audio the features were extracted from.
type Info struct {
	Filename   string  `json:"filename"`
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	HopLength  int     `json:"hop_length"`
	FPS        float64 `json:"fps"`
}

// File is a parsed analysis file.
type File struct {
	Info       Info                 `json:"info"`
	Continuous map[string][]float64 `json:"continuous"`
	Triggers   map[string][]float64 `json:"triggers"`
}

// Load reads and parses the analysis file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes analysis JSON and validates it.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the frame rate, every value, and that no feature name is
// used by both sections.
func (f *File) Validate() error {
	if len(f.Continuous) > 0 && (f.Info.FPS <= 0 || math.IsNaN(f.Info.FPS) || math.IsInf(f.Info.FPS, 0)) {
		return fmt.Errorf("%w: analysis: fps %v must be positive", marionette.ErrValidation, f.Info.FPS)
	}
	if f.Info.Duration < 0 {
		return fmt.Errorf("%w: analysis: negative duration %v", marionette.ErrValidation, f.Info.Duration)
	}
	for name, values := range f.Continuous {
		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: analysis: continuous %q frame %d is %v", marionette.ErrValidation, name, i, v)
			}
		}
	}
	for name, times := range f.Triggers {
		if _, dup := f.Continuous[name]; dup {
			return fmt.Errorf("%w: analysis: feature %q is both continuous and a trigger", marionette.ErrValidation, name)
		}
		for i, t := range times {
			if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
				return fmt.Errorf("%w: analysis: trigger %q event %d at %v", marionette.ErrValidation, name, i, t)
			}
		}
	}
	return nil
}

// Names lists the continuous features then the triggers, each sorted.
func (f *File) Names() []string {
	cont := sortedKeys(f.Continuous)
	trig := sortedKeys(f.Triggers)
	return append(cont, trig...)
}

// IsTrigger reports whether name is a trigger feature.
func (f *File) IsTrigger(name string) bool {
	_, ok := f.Triggers[name]
	return ok
}

// Duration returns the declared duration, or the span covered by the data
// when the header has none.
func (f *File) Duration() float64 {
	if f.Info.Duration > 0 {
		return f.Info.Duration
	}
	var d float64
	if f.Info.FPS > 0 {
		for _, values := range f.Continuous {
			d = math.Max(d, float64(len(values))/f.Info.FPS)
		}
	}
	for _, times := range f.Triggers {
		for _, t := range times {
			d = math.Max(d, t)
		}
	}
	return d
}

// Options controls how features become Signals.
type Options struct {
	// Interpolation for continuous features. InterpolateStep reproduces
	// frame-indexed lookup.
	Interpolation marionette.Interpolation

	// Domain of continuous features. Zero width derives it from the data.
	Domain marionette.Range

	// OnsetWidth is how long each trigger stays high, in seconds.
	OnsetWidth float64
}

// DefaultOnsetWidth keeps a trigger high long enough for a 20 fps loop to
// observe it.
const DefaultOnsetWidth = 0.05

// DefaultOptions matches the analyzer output: values pre-normalized to
// [0, 1], read per frame.
func DefaultOptions() Options {
	return Options{
		Interpolation: marionette.InterpolateStep,
		Domain:        marionette.Range{Min: 0, Max: 1},
		OnsetWidth:    DefaultOnsetWidth,
	}
}

// Signal builds the named feature as a Signal.
func (f *File) Signal(name string, opts Options) (*marionette.Signal, error) {
	if times, ok := f.Triggers[name]; ok {
		width := opts.OnsetWidth
		if width <= 0 {
			width = DefaultOnsetWidth
		}
		return marionette.NewOnsetSignal(name, times, width)
	}
	values, ok := f.Continuous[name]
	if !ok {
		return nil, fmt.Errorf("%w: analysis: no feature %q", marionette.ErrValidation, name)
	}
	samples := make([]marionette.Sample, len(values))
	for i, v := range values {
		samples[i] = marionette.Sample{Time: float64(i) / f.Info.FPS, Value: v}
	}
	return marionette.NewSignal(name, samples, opts.Domain, opts.Interpolation)
}

// Signals builds every feature in Names order.
func (f *File) Signals(opts Options) ([]*marionette.Signal, error) {
	names := f.Names()
	out := make([]*marionette.Signal, 0, len(names))
	for _, name := range names {
		s, err := f.Signal(name, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
