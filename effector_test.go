package marionette

import (
	"errors"
	"testing"

	"github.com/tanema/gween/ease"
)

var headY = ParamRef{Bone: 2, Param: ParamY}

func one(b BindingID, v float64) []Input {
	return []Input{{Binding: b, Value: v, Weight: 1}}
}

func mustPulse(t *testing.T, cfg PulseConfig) *Effector {
	t.Helper()
	e, err := NewPulseTrigger("pulse", headY, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func evalDelta(t *testing.T, e *Effector, at float64, in []Input) float64 {
	t.Helper()
	outs, err := e.Evaluate(at, in)
	if err != nil {
		t.Fatalf("Evaluate(%v): %v", at, err)
	}
	if len(outs) == 0 {
		return 0
	}
	return outs[0].Delta
}

// --- Pulse trigger ---

func TestPulseFiresAndDecays(t *testing.T) {
	e := mustPulse(t, PulseConfig{Threshold: 0.5, Amplitude: -15, Duration: 0.3})

	assertNear(t, "idle", evalDelta(t, e, 0.4, one("a", 0)), 0)
	assertNear(t, "fire", evalDelta(t, e, 0.5, one("a", 1)), -15)
	assertNear(t, "half", evalDelta(t, e, 0.65, one("a", 0)), -7.5)
	assertNear(t, "done", evalDelta(t, e, 0.8, one("a", 0)), 0)
	assertNear(t, "refire", evalDelta(t, e, 1.0, one("a", 1)), -15)
}

func TestPulseNeedsUpwardCrossing(t *testing.T) {
	e := mustPulse(t, PulseConfig{Threshold: 0.5, Amplitude: 10, Duration: 0.2})

	assertNear(t, "fire", evalDelta(t, e, 0, one("a", 0.9)), 10)
	// Staying above threshold does not retrigger.
	assertNear(t, "held", evalDelta(t, e, 0.3, one("a", 0.9)), 0)
	assertNear(t, "below", evalDelta(t, e, 0.4, one("a", 0.1)), 0)
	assertNear(t, "cross", evalDelta(t, e, 0.5, one("a", 0.6)), 10)
}

func TestPulseRetriggerResetsWindow(t *testing.T) {
	e := mustPulse(t, PulseConfig{Threshold: 0.5, Amplitude: 10, Duration: 1})

	evalDelta(t, e, 0, one("a", 1))
	evalDelta(t, e, 0.5, one("a", 0))
	assertNear(t, "retrigger", evalDelta(t, e, 0.6, one("a", 1)), 10)
	// 0.5s after the retrigger, not after the first fire.
	assertNear(t, "window", evalDelta(t, e, 1.1, one("a", 1)), 5)
}

func TestPulseUsesTriggeringWeight(t *testing.T) {
	e := mustPulse(t, PulseConfig{Threshold: 0.5, Amplitude: 10, Duration: 1})
	in := []Input{
		{Binding: "a", Value: 0.7, Weight: 0.5},
		{Binding: "b", Value: 0.9, Weight: 2},
	}
	assertNear(t, "largest crossing wins", evalDelta(t, e, 0, in), 20)
}

func TestPulseEased(t *testing.T) {
	e := mustPulse(t, PulseConfig{Threshold: 0.5, Amplitude: 1, Duration: 1, Ease: ease.InQuad})
	evalDelta(t, e, 0, one("a", 1))
	got := evalDelta(t, e, 0.5, one("a", 0))
	// InQuad from 1 to 0: 1 - 0.25.
	if got < 0.749 || got > 0.751 {
		t.Errorf("eased decay = %v, want 0.75", got)
	}
}

func TestPulseTaps(t *testing.T) {
	left := ParamRef{Bone: 3, Param: ParamRotation}
	right := ParamRef{Bone: 4, Param: ParamRotation}
	e, err := NewPulseTrigger("arms", left, PulseConfig{
		Threshold: 0.5, Amplitude: 0.4, Duration: 1,
		Taps: []Tap{{Target: right, Gain: -1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Outputs(); len(got) != 2 || got[1] != right {
		t.Fatalf("Outputs = %v", got)
	}
	outs, _ := e.Evaluate(0, one("a", 1))
	if len(outs) != 2 {
		t.Fatalf("outputs = %d, want 2", len(outs))
	}
	assertNear(t, "left", outs[0].Delta, 0.4)
	assertNear(t, "right", outs[1].Delta, -0.4)
}

func TestPulseValidation(t *testing.T) {
	if _, err := NewPulseTrigger("p", headY, PulseConfig{Duration: 0}); !errors.Is(err, ErrValidation) {
		t.Errorf("zero duration err = %v", err)
	}
	sprite := ParamRef{Bone: 1, Param: ParamSprite}
	if _, err := NewPulseTrigger("p", sprite, PulseConfig{Duration: 1}); !errors.Is(err, ErrValidation) {
		t.Errorf("sprite target err = %v", err)
	}
	if _, err := NewPulseTrigger("", headY, PulseConfig{Duration: 1}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty id err = %v", err)
	}
}

// --- Continuous scale ---

func TestContinuousScaleRemaps(t *testing.T) {
	body := ParamRef{Bone: 1, Param: ParamScale}
	e, err := NewContinuousScale("pump", body, ScaleConfig{Out: Range{-0.1, 0.15}})
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "min", evalDelta(t, e, 0, one("a", 0)), -0.1)
	assertNear(t, "max", evalDelta(t, e, 0.1, one("a", 1)), 0.15)
	assertNear(t, "mid", evalDelta(t, e, 0.2, one("a", 0.5)), 0.025)
}

func TestContinuousScaleSumsWeighted(t *testing.T) {
	e, _ := NewContinuousScale("float", headY, ScaleConfig{Out: Range{0, 50}})
	in := []Input{
		{Binding: "a", Value: 1, Weight: 1},
		{Binding: "b", Value: 0.5, Weight: 0.5},
	}
	// 1·50 + 0.5·25
	assertNear(t, "sum", evalDelta(t, e, 0, in), 62.5)
	assertNear(t, "one left", evalDelta(t, e, 0.1, in[1:]), 12.5)
}

// --- Direction select ---

func mustDirection(t *testing.T, deadband float64) *Effector {
	t.Helper()
	e, err := NewDirectionSelect("eyes", 5, DirectionConfig{
		Variants: []string{"left", "center", "right"},
		Deadband: deadband,
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func variantAt(t *testing.T, e *Effector, at, v float64) string {
	t.Helper()
	outs, err := e.Evaluate(at, one("a", v))
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 1 || outs[0].Target.Param != ParamSprite {
		t.Fatalf("outputs = %+v", outs)
	}
	return outs[0].Variant
}

func TestDirectionSelectBuckets(t *testing.T) {
	e := mustDirection(t, 0)
	tests := []struct {
		v    float64
		want string
	}{
		{0, "left"},
		{0.2, "left"},
		{0.5, "center"},
		{0.9, "right"},
		{1, "right"},
	}
	for i, tt := range tests {
		if got := variantAt(t, e, float64(i), tt.v); got != tt.want {
			t.Errorf("v=%v: variant = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestDirectionSelectHysteresis(t *testing.T) {
	// Bucket width 1/3, margin 0.25·1/3 ≈ 0.083.
	e := mustDirection(t, 0.25)

	if got := variantAt(t, e, 0, 0.5); got != "center" {
		t.Fatalf("start = %q", got)
	}
	// Just past the center/right edge: held by the deadband.
	if got := variantAt(t, e, 1, 0.70); got != "center" {
		t.Errorf("inside deadband = %q, want center", got)
	}
	// Beyond the margin.
	if got := variantAt(t, e, 2, 0.80); got != "right" {
		t.Errorf("beyond deadband = %q, want right", got)
	}
	// Back just below the edge: still right.
	if got := variantAt(t, e, 3, 0.62); got != "right" {
		t.Errorf("return inside deadband = %q, want right", got)
	}
	if e.Bucket() != 2 {
		t.Errorf("Bucket = %d, want 2", e.Bucket())
	}
}

func TestDirectionSelectValidation(t *testing.T) {
	if _, err := NewDirectionSelect("d", 0, DirectionConfig{}); !errors.Is(err, ErrValidation) {
		t.Errorf("no variants err = %v", err)
	}
	if _, err := NewDirectionSelect("d", 0, DirectionConfig{Variants: []string{"a"}, Deadband: 0.5}); !errors.Is(err, ErrValidation) {
		t.Errorf("deadband err = %v", err)
	}
}

// --- Common ---

func TestEffectorRejectsBackwardsTime(t *testing.T) {
	e := mustPulse(t, PulseConfig{Threshold: 0.5, Amplitude: 1, Duration: 1})
	evalDelta(t, e, 1, one("a", 1))
	if _, err := e.Evaluate(0.5, one("a", 1)); !errors.Is(err, ErrState) {
		t.Fatalf("err = %v, want ErrState", err)
	}
	// Same time is allowed and does not retrigger.
	assertNear(t, "same t", evalDelta(t, e, 1, one("a", 1)), 1)
}

func TestEffectorResetRearms(t *testing.T) {
	e := mustPulse(t, PulseConfig{Threshold: 0.5, Amplitude: 1, Duration: 1})
	evalDelta(t, e, 2, one("a", 1))
	e.Reset()
	// After reset the earlier time is accepted and the held-high input fires
	// again.
	assertNear(t, "after reset", evalDelta(t, e, 0, one("a", 1)), 1)
}

func TestEffectorNoInputsNoOutputs(t *testing.T) {
	e, _ := NewContinuousScale("s", headY, ScaleConfig{Out: Range{0, 1}})
	outs, err := e.Evaluate(0, nil)
	if err != nil || len(outs) != 0 {
		t.Fatalf("outs = %v, err = %v", outs, err)
	}
}

func TestParseEffectorKind(t *testing.T) {
	for _, k := range []EffectorKind{KindPulseTrigger, KindContinuousScale, KindDirectionSelect} {
		got, ok := ParseEffectorKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseEffectorKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseEffectorKind("wiggle"); ok {
		t.Error("wiggle should not parse")
	}
}
