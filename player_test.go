package marionette

import (
	"errors"
	"math"
	"testing"
)

func TestPlayerLoops(t *testing.T) {
	f := newRigFixture(t)
	if _, err := f.binder.Connect("beats", "head_bob", 1); err != nil {
		t.Fatal(err)
	}
	p := NewPlayer(f.binder, 2, true)

	if _, err := p.Advance(0.25); err != nil {
		t.Fatal(err)
	}
	assertNear(t, "first frame", p.Time(), 0)

	for p.Time() < 0.5 {
		if _, err := p.Advance(0.25); err != nil {
			t.Fatal(err)
		}
	}
	assertNear(t, "beat", f.headLocalY(t)+50, -15)

	var rep FrameReport
	for p.Loops() == 0 {
		var err error
		if rep, err = p.Advance(0.25); err != nil {
			t.Fatal(err)
		}
	}
	assertNear(t, "wrapped", p.Time(), 0)
	if !rep.Reset {
		t.Error("wrap should reset binder state")
	}
	if p.Done() {
		t.Error("looping playback is never done")
	}
}

func TestPlayerStopsAtEnd(t *testing.T) {
	f := newRigFixture(t)
	p := NewPlayer(f.binder, 1, false)
	for range 3 {
		if _, err := p.Advance(0.75); err != nil {
			t.Fatal(err)
		}
	}
	assertNear(t, "end", p.Time(), 1)
	if !p.Done() {
		t.Error("Done = false at end")
	}
	if _, err := p.Advance(0.75); err != nil {
		t.Fatalf("advancing past the end: %v", err)
	}
	assertNear(t, "held", p.Time(), 1)
}

func TestPlayerScript(t *testing.T) {
	f := newRigFixture(t)
	ps, err := LoadPatchScript([]byte(samplePatchScript))
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlayer(f.binder, 0, false)
	p.SetScript(ps)

	for _, at := range []float64{0, 0.5} {
		if _, err := p.Seek(at); err != nil {
			t.Fatal(err)
		}
	}
	assertNear(t, "connected by script", f.headLocalY(t)+50, -15)
	if len(f.binder.Bindings()) != 1 {
		t.Fatalf("bindings = %d, want 1", len(f.binder.Bindings()))
	}
}

func TestPlayerInvalidInput(t *testing.T) {
	f := newRigFixture(t)
	p := NewPlayer(f.binder, 1, false)
	for _, dt := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := p.Advance(dt); !errors.Is(err, ErrValidation) {
			t.Errorf("Advance(%v) err = %v", dt, err)
		}
	}
	if _, err := p.Seek(-0.5); !errors.Is(err, ErrValidation) {
		t.Errorf("Seek(-0.5) err = %v", err)
	}
}
