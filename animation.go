package marionette

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// easings maps the names accepted in rig descriptions to gween easing
// functions. The short aliases match the beat mapper presets.
var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"ease_in":      ease.InQuad,
	"ease_out":     ease.OutQuad,
	"ease_in_out":  ease.InOutQuad,
	"bounce":       ease.OutBounce,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_cubic":     ease.InCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_cubic": ease.InOutCubic,
	"in_sine":      ease.InSine,
	"out_sine":     ease.OutSine,
	"in_out_sine":  ease.InOutSine,
	"out_expo":     ease.OutExpo,
	"out_back":     ease.OutBack,
	"out_elastic":  ease.OutElastic,
	"out_bounce":   ease.OutBounce,
}

// EasingByName returns the easing function registered under name.
func EasingByName(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}

// EasingNames lists every registered easing name in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// decay eases from amplitude at elapsed=0 to 0 at elapsed=duration. A nil
// fn is linear, amplitude·(1 - elapsed/duration), computed in float64;
// gween functions run in float32. Callers handle elapsed outside
// [0, duration).
func decay(fn ease.TweenFunc, elapsed, amplitude, duration float64) float64 {
	if fn == nil {
		return amplitude * (1 - elapsed/duration)
	}
	return float64(fn(float32(elapsed), float32(amplitude), float32(-amplitude), float32(duration)))
}
