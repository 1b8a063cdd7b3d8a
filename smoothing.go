package marionette

import "github.com/charmbracelet/harmonica"

// SmoothMode selects the filter a Smoothing applies.
type SmoothMode uint8

const (
	SmoothNone        SmoothMode = iota // pass values through unchanged
	SmoothExponential                   // single-pole filter: α·value + (1-α)·previous
	SmoothSpring                        // damped spring following the value
)

func (m SmoothMode) String() string {
	switch m {
	case SmoothNone:
		return "none"
	case SmoothExponential:
		return "exponential"
	case SmoothSpring:
		return "spring"
	}
	return "unknown"
}

// ParseSmoothMode converts "none", "exponential", or "spring" to a SmoothMode.
func ParseSmoothMode(name string) (SmoothMode, bool) {
	switch name {
	case "", "none":
		return SmoothNone, true
	case "exponential", "ema":
		return SmoothExponential, true
	case "spring":
		return SmoothSpring, true
	}
	return 0, false
}

// Smoothing is the configuration of one smoothing filter. It holds no state:
// each use site owns a SmoothState, so the same Signal can be smoothed
// differently by different bindings.
type Smoothing struct {
	Mode SmoothMode

	// Alpha is the exponential filter gain in (0, 1]. 1 disables smoothing.
	Alpha float64

	// Frequency (angular, rad/s) and Damping (ratio, 1 = critical) configure
	// SmoothSpring.
	Frequency float64
	Damping   float64
}

// SmoothState is the caller-owned state of a Smoothing filter.
type SmoothState struct {
	value    float64
	velocity float64
	time     float64
	primed   bool
}

// Value returns the last filter output.
func (st SmoothState) Value() float64 { return st.value }

// Primed reports whether the filter has seen at least one value.
func (st SmoothState) Primed() bool { return st.primed }

// Validate checks the configuration ranges.
func (sm Smoothing) Validate() error {
	switch sm.Mode {
	case SmoothNone:
	case SmoothExponential:
		if sm.Alpha <= 0 || sm.Alpha > 1 {
			return validationf("smoothing: alpha %g outside (0, 1]", sm.Alpha)
		}
	case SmoothSpring:
		if sm.Frequency <= 0 {
			return validationf("smoothing: spring frequency %g must be positive", sm.Frequency)
		}
		if sm.Damping < 0 {
			return validationf("smoothing: spring damping %g must not be negative", sm.Damping)
		}
	default:
		return validationf("smoothing: unknown mode %d", sm.Mode)
	}
	return nil
}

// Step feeds value observed at time t through the filter and returns the
// smoothed value with the new state. The first call passes value through.
// A t that does not advance past the previous call is rejected with ErrState
// and the state is returned unchanged: the filter assumes forward-only
// playback.
func (sm Smoothing) Step(t, value float64, st SmoothState) (float64, SmoothState, error) {
	if st.primed && t <= st.time {
		return st.value, st, statef("smooth: time %g does not advance past %g", t, st.time)
	}
	if !st.primed || sm.Mode == SmoothNone {
		return value, SmoothState{value: value, time: t, primed: true}, nil
	}

	next := st
	next.time = t
	switch sm.Mode {
	case SmoothExponential:
		next.value = sm.Alpha*value + (1-sm.Alpha)*st.value
	case SmoothSpring:
		spring := harmonica.NewSpring(t-st.time, sm.Frequency, sm.Damping)
		next.value, next.velocity = spring.Update(st.value, st.velocity, value)
	}
	return next.value, next, nil
}
