package marionette

import (
	"encoding/json"
	"fmt"
	"sort"
)

// patchStep is a single timed action in a patch script.
type patchStep struct {
	At       float64 `json:"at"`
	Action   string  `json:"action"`
	Binding  string  `json:"binding,omitempty"`
	Signal   string  `json:"signal,omitempty"`
	Effector string  `json:"effector,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
}

// patchScript is the top-level JSON structure for a patch script.
type patchScript struct {
	Steps []patchStep `json:"steps"`
}

// PatchScript replays timed patch-bay commands, standing in for a performer
// plugging and unplugging bindings. Steps are pushed into a PatchQueue as
// playback time passes their timestamp.
//
//	{"steps": [
//	  {"at": 0,   "action": "connect", "signal": "beats", "effector": "head_bob", "weight": 1},
//	  {"at": 2.5, "action": "toggle",  "signal": "beats", "effector": "head_bob"}
//	]}
type PatchScript struct {
	steps  []PatchCommand
	times  []float64
	cursor int
}

// LoadPatchScript parses a JSON patch script. Steps are ordered by time;
// steps sharing a timestamp keep their file order.
func LoadPatchScript(jsonData []byte) (*PatchScript, error) {
	var script patchScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse patch script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, validationf("parse patch script: no steps")
	}
	sort.SliceStable(script.Steps, func(i, j int) bool {
		return script.Steps[i].At < script.Steps[j].At
	})

	ps := &PatchScript{
		steps: make([]PatchCommand, len(script.Steps)),
		times: make([]float64, len(script.Steps)),
	}
	for i, st := range script.Steps {
		op, ok := ParsePatchOp(st.Action)
		if !ok {
			return nil, validationf("parse patch script: step %d: unknown action %q", i, st.Action)
		}
		if st.Binding == "" && (st.Signal == "" || st.Effector == "") {
			return nil, validationf("parse patch script: step %d: %s needs a binding or a signal/effector pair", i, st.Action)
		}
		if op == OpConnect && st.Binding != "" {
			return nil, validationf("parse patch script: step %d: connect takes a signal/effector pair", i)
		}
		weight := st.Weight
		if weight == 0 && (op == OpConnect || op == OpToggle) {
			weight = 1
		}
		ps.steps[i] = PatchCommand{
			Op:       op,
			Binding:  BindingID(st.Binding),
			Signal:   st.Signal,
			Effector: st.Effector,
			Weight:   weight,
		}
		ps.times[i] = st.At
	}
	return ps, nil
}

// Len returns the number of steps.
func (ps *PatchScript) Len() int {
	return len(ps.steps)
}

// Done reports whether every step has been pushed.
func (ps *PatchScript) Done() bool {
	return ps.cursor >= len(ps.steps)
}

// Rewind restarts the script, e.g. when playback loops.
func (ps *PatchScript) Rewind() {
	ps.cursor = 0
}

// Step pushes every pending step due at or before t into q and returns how
// many were pushed.
func (ps *PatchScript) Step(t float64, q *PatchQueue) int {
	n := 0
	for ps.cursor < len(ps.steps) && ps.times[ps.cursor] <= t {
		q.Push(ps.steps[ps.cursor])
		ps.cursor++
		n++
	}
	return n
}
