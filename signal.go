package marionette

import (
	"math"
	"sort"
)

// Sample is one (timestamp, value) point of a Signal. Time is in seconds of
// playback.
type Sample struct {
	Time  float64
	Value float64
}

// Interpolation selects how a Signal is read between samples.
type Interpolation uint8

const (
	InterpolateStep   Interpolation = iota // hold the latest sample at or before t
	InterpolateLinear                      // blend linearly between bracketing samples
)

func (m Interpolation) String() string {
	switch m {
	case InterpolateStep:
		return "step"
	case InterpolateLinear:
		return "linear"
	}
	return "unknown"
}

// ParseInterpolation converts "step" or "linear" to an Interpolation.
func ParseInterpolation(name string) (Interpolation, bool) {
	switch name {
	case "step":
		return InterpolateStep, true
	case "linear":
		return InterpolateLinear, true
	}
	return 0, false
}

// Signal is an immutable, time-indexed series of feature values. Once
// NewSignal returns, a Signal is never written again, so it may be read from
// any goroutine that observed its publication.
type Signal struct {
	name   string
	times  []float64
	values []float64
	domain Range
	mode   Interpolation
}

// NewSignal copies samples into a new Signal. Timestamps must be
// non-decreasing and finite. If domain has zero width it is derived from the
// sample values.
func NewSignal(name string, samples []Sample, domain Range, mode Interpolation) (*Signal, error) {
	if name == "" {
		return nil, validationf("new signal: empty name")
	}
	if mode != InterpolateStep && mode != InterpolateLinear {
		return nil, validationf("new signal %q: unknown interpolation %d", name, mode)
	}
	if domain.Min > domain.Max {
		return nil, validationf("new signal %q: domain min %g > max %g", name, domain.Min, domain.Max)
	}

	s := &Signal{
		name:   name,
		times:  make([]float64, len(samples)),
		values: make([]float64, len(samples)),
		domain: domain,
		mode:   mode,
	}
	for i, smp := range samples {
		if math.IsNaN(smp.Time) || math.IsInf(smp.Time, 0) {
			return nil, validationf("new signal %q: sample %d has invalid time %v", name, i, smp.Time)
		}
		if math.IsNaN(smp.Value) || math.IsInf(smp.Value, 0) {
			return nil, validationf("new signal %q: sample %d has invalid value %v", name, i, smp.Value)
		}
		if i > 0 && smp.Time < samples[i-1].Time {
			return nil, validationf("new signal %q: timestamp %g at %d precedes %g", name, smp.Time, i, samples[i-1].Time)
		}
		s.times[i] = smp.Time
		s.values[i] = smp.Value
	}

	if domain.Width() == 0 && len(samples) > 0 {
		lo, hi := s.values[0], s.values[0]
		for _, v := range s.values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		s.domain = Range{lo, hi}
	}
	return s, nil
}

// NewOnsetSignal builds a step Signal from a list of trigger timestamps, such
// as beat onsets. Each onset becomes a pulse of value 1 lasting width
// seconds, then 0 until the next onset. Onsets are sorted; overlapping pulses
// merge.
func NewOnsetSignal(name string, onsets []float64, width float64) (*Signal, error) {
	if width <= 0 {
		return nil, validationf("new onset signal %q: width %g must be positive", name, width)
	}
	sorted := make([]float64, len(onsets))
	copy(sorted, onsets)
	sort.Float64s(sorted)

	samples := make([]Sample, 0, 2*len(sorted)+1)
	if len(sorted) == 0 || sorted[0] > 0 {
		samples = append(samples, Sample{Time: 0, Value: 0})
	}
	for i, t := range sorted {
		if math.IsNaN(t) {
			return nil, validationf("new onset signal %q: onset %d is NaN", name, i)
		}
		end := t + width
		if i+1 < len(sorted) && sorted[i+1] <= end {
			samples = append(samples, Sample{Time: t, Value: 1})
			continue
		}
		samples = append(samples, Sample{Time: t, Value: 1}, Sample{Time: end, Value: 0})
	}
	return NewSignal(name, samples, Range{0, 1}, InterpolateStep)
}

// Name returns the signal's name, which doubles as its id in a Binder.
func (s *Signal) Name() string { return s.name }

// Domain returns the value range used by Normalize.
func (s *Signal) Domain() Range { return s.domain }

// Mode returns the signal's interpolation mode.
func (s *Signal) Mode() Interpolation { return s.mode }

// Len returns the number of samples.
func (s *Signal) Len() int { return len(s.times) }

// At returns the i-th sample.
func (s *Signal) At(i int) Sample {
	return Sample{Time: s.times[i], Value: s.values[i]}
}

// Duration returns the timestamp of the last sample, 0 when empty.
func (s *Signal) Duration() float64 {
	if len(s.times) == 0 {
		return 0
	}
	return s.times[len(s.times)-1]
}

// Sample returns the raw value at time t. Before the first sample it returns
// the first value; after the last it holds the last value. With duplicate
// timestamps the latest sample wins. An empty signal reads as domain.Min.
func (s *Signal) Sample(t float64) float64 {
	n := len(s.times)
	if n == 0 {
		return s.domain.Min
	}
	// First index whose timestamp is strictly after t.
	hi := sort.Search(n, func(i int) bool { return s.times[i] > t })
	if hi == 0 {
		return s.values[0]
	}
	if hi == n {
		return s.values[n-1]
	}
	lo := hi - 1
	if s.mode == InterpolateStep || s.times[lo] == t {
		return s.values[lo]
	}
	frac := (t - s.times[lo]) / (s.times[hi] - s.times[lo])
	return s.values[lo] + (s.values[hi]-s.values[lo])*frac
}

// Peak returns the largest raw value the signal takes over (from, to]. A
// short pulse that starts and ends between two reads still shows up. When
// to <= from it is Sample(to).
func (s *Signal) Peak(from, to float64) float64 {
	peak := s.Sample(to)
	if to <= from {
		return peak
	}
	i := sort.Search(len(s.times), func(i int) bool { return s.times[i] > from })
	for ; i < len(s.times) && s.times[i] <= to; i++ {
		peak = max(peak, s.values[i])
	}
	return peak
}

// Normalize remaps a raw value onto [0, 1] using the signal's domain.
// Out-of-domain values are clamped.
func (s *Signal) Normalize(v float64) float64 {
	return s.domain.Normalize(v)
}

// NormalizeChecked is Normalize that also reports a *RangeError when v was
// outside the domain. The returned value is always usable.
func (s *Signal) NormalizeChecked(v float64) (float64, error) {
	return normalizeChecked(s.name, v, s.domain)
}

func normalizeChecked(name string, v float64, domain Range) (float64, error) {
	n := domain.Normalize(v)
	if !domain.Contains(v) {
		return n, &RangeError{Signal: name, Value: v, Domain: domain}
	}
	return n, nil
}
