package marionette

import (
	"errors"
	"testing"
)

func TestSmoothNonePassesThrough(t *testing.T) {
	sm := Smoothing{Mode: SmoothNone}
	var st SmoothState
	for i, v := range []float64{0.2, 0.9, 0.1} {
		got, next, err := sm.Step(float64(i), v, st)
		if err != nil {
			t.Fatal(err)
		}
		assertNear(t, "none", got, v)
		st = next
	}
}

func TestSmoothExponential(t *testing.T) {
	sm := Smoothing{Mode: SmoothExponential, Alpha: 0.25}
	var st SmoothState

	// First value primes the filter.
	got, st, err := sm.Step(0, 1, st)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "first", got, 1)

	got, st, _ = sm.Step(0.1, 0, st)
	assertNear(t, "second", got, 0.75)

	got, _, _ = sm.Step(0.2, 0, st)
	assertNear(t, "third", got, 0.5625)
}

func TestSmoothSpringConverges(t *testing.T) {
	sm := Smoothing{Mode: SmoothSpring, Frequency: 12, Damping: 1}
	var st SmoothState
	_, st, _ = sm.Step(0, 0, st)

	var got float64
	for i := 1; i <= 240; i++ {
		var err error
		got, st, err = sm.Step(float64(i)/60, 1, st)
		if err != nil {
			t.Fatal(err)
		}
		if got > 1+1e-6 {
			t.Fatalf("critically damped spring overshot: %v at step %d", got, i)
		}
	}
	if got < 0.999 {
		t.Errorf("spring did not converge: %v", got)
	}
}

func TestSmoothRejectsNonAdvancingTime(t *testing.T) {
	sm := Smoothing{Mode: SmoothExponential, Alpha: 0.5}
	_, st, _ := sm.Step(1, 0.4, SmoothState{})

	for _, tm := range []float64{1, 0.5} {
		got, next, err := sm.Step(tm, 1, st)
		if !errors.Is(err, ErrState) {
			t.Fatalf("t=%v err = %v, want ErrState", tm, err)
		}
		if next != st {
			t.Errorf("state changed on rejected step: %+v", next)
		}
		assertNear(t, "held", got, 0.4)
	}
}

func TestSmoothingValidate(t *testing.T) {
	bad := []Smoothing{
		{Mode: SmoothExponential, Alpha: 0},
		{Mode: SmoothExponential, Alpha: 1.5},
		{Mode: SmoothSpring, Frequency: 0, Damping: 1},
		{Mode: SmoothSpring, Frequency: 5, Damping: -1},
		{Mode: SmoothMode(9)},
	}
	for _, sm := range bad {
		if err := sm.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate(%+v) = %v, want ErrValidation", sm, err)
		}
	}
	if err := (Smoothing{}).Validate(); err != nil {
		t.Errorf("zero Smoothing invalid: %v", err)
	}
}

func TestParseSmoothMode(t *testing.T) {
	for _, m := range []SmoothMode{SmoothNone, SmoothExponential, SmoothSpring} {
		got, ok := ParseSmoothMode(m.String())
		if !ok || got != m {
			t.Errorf("ParseSmoothMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
}
