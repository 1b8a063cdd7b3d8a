package marionette

import (
	"math"
	"testing"
)

func TestDecayLinearEndpoints(t *testing.T) {
	assertNear(t, "start", decay(nil, 0, -15, 0.3), -15)
	assertNear(t, "half", decay(nil, 0.15, -15, 0.3), -7.5)
	assertNear(t, "end", decay(nil, 0.3, -15, 0.3), 0)
}

func TestDecayEasedEndpoints(t *testing.T) {
	for _, name := range EasingNames() {
		fn, _ := EasingByName(name)
		start := decay(fn, 0, 10, 1)
		end := decay(fn, 1, 10, 1)
		// gween runs in float32.
		if math.Abs(start-10) > 1e-4 {
			t.Errorf("%s: start = %v, want 10", name, start)
		}
		if math.Abs(end) > 1e-4 {
			t.Errorf("%s: end = %v, want 0", name, end)
		}
	}
}

func TestEasingFunctionsProduceDifferentCurves(t *testing.T) {
	in, _ := EasingByName("ease_in")
	out, _ := EasingByName("ease_out")
	a := decay(in, 0.5, 1, 1)
	b := decay(out, 0.5, 1, 1)
	if math.Abs(a-b) < 0.1 {
		t.Errorf("ease_in and ease_out too similar at midpoint: %v vs %v", a, b)
	}
}

func TestEasingByNameUnknown(t *testing.T) {
	if _, ok := EasingByName("wobble"); ok {
		t.Error("unknown easing should not resolve")
	}
}

func TestEasingNamesSorted(t *testing.T) {
	names := EasingNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
