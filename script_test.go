package marionette

import (
	"errors"
	"testing"
)

const samplePatchScript = `{"steps": [
	{"at": 1.0, "action": "toggle", "signal": "beats", "effector": "head_bob"},
	{"at": 0,   "action": "connect", "signal": "beats", "effector": "head_bob"},
	{"at": 1.0, "action": "set_weight", "signal": "beats", "effector": "head_bob", "weight": 0.5},
	{"at": 1.2, "action": "toggle", "signal": "beats", "effector": "head_bob"}
]}`

func TestLoadPatchScript(t *testing.T) {
	ps, err := LoadPatchScript([]byte(samplePatchScript))
	if err != nil {
		t.Fatal(err)
	}
	if ps.Len() != 4 {
		t.Fatalf("Len = %d, want 4", ps.Len())
	}
	// Sorted by time; equal times keep file order.
	want := []PatchOp{OpConnect, OpToggle, OpSetWeight, OpToggle}
	for i, op := range want {
		if ps.steps[i].Op != op {
			t.Errorf("step %d op = %s, want %s", i, ps.steps[i].Op, op)
		}
	}
	if ps.steps[0].Weight != 1 {
		t.Errorf("connect default weight = %v, want 1", ps.steps[0].Weight)
	}
}

func TestLoadPatchScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{"steps": [`},
		{"no steps", `{"steps": []}`},
		{"unknown action", `{"steps": [{"at": 0, "action": "solder", "signal": "a", "effector": "b"}]}`},
		{"missing target", `{"steps": [{"at": 0, "action": "enable"}]}`},
		{"connect by id", `{"steps": [{"at": 0, "action": "connect", "binding": "x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadPatchScript([]byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := LoadPatchScript([]byte(`{"steps": []}`)); !errors.Is(err, ErrValidation) {
		t.Errorf("no steps err = %v, want ErrValidation", err)
	}
}

func TestPatchScriptStep(t *testing.T) {
	ps, _ := LoadPatchScript([]byte(samplePatchScript))
	q := NewPatchQueue()

	if n := ps.Step(0, q); n != 1 {
		t.Fatalf("Step(0) pushed %d, want 1", n)
	}
	if n := ps.Step(0.5, q); n != 0 {
		t.Fatalf("Step(0.5) pushed %d, want 0", n)
	}
	if n := ps.Step(1.1, q); n != 2 {
		t.Fatalf("Step(1.1) pushed %d, want 2", n)
	}
	if ps.Done() {
		t.Fatal("Done too early")
	}
	ps.Step(5, q)
	if !ps.Done() || q.Len() != 4 {
		t.Fatalf("Done = %v, queued = %d", ps.Done(), q.Len())
	}

	ps.Rewind()
	if ps.Done() {
		t.Error("Done after Rewind")
	}
}

func TestPatchScriptDrivesBinder(t *testing.T) {
	f := newRigFixture(t)
	ps, _ := LoadPatchScript([]byte(samplePatchScript))

	for _, at := range []float64{0, 0.5} {
		ps.Step(at, f.binder.Queue())
		f.evaluate(t, at)
	}
	assertNear(t, "connected", f.headLocalY(t)+50, -15)

	// At 1.0 the binding is toggled off and its weight halved.
	ps.Step(1.0, f.binder.Queue())
	f.evaluate(t, 1.0)
	assertNear(t, "toggled off", f.headLocalY(t)+50, 0)

	// At 1.2 it is back on; the beat at 1.5 fires with the new weight.
	for _, at := range []float64{1.2, 1.5} {
		ps.Step(at, f.binder.Queue())
		f.evaluate(t, at)
	}
	assertNear(t, "half weight", f.headLocalY(t)+50, -7.5)
}
