package view

import (
	"fmt"

	"github.com/phanxgames/marionette"
)

// Action is one patch-bay or transport command from the keyboard.
type Action uint8

const (
	ActionNone Action = iota
	ActionNextSignal
	ActionPrevSignal
	ActionNextEffector
	ActionPrevEffector
	ActionToggle
	ActionDisconnect
	ActionWeightUp
	ActionWeightDown
	ActionPause
	ActionRestart
	ActionRecenter
	ActionZoomIn
	ActionZoomOut
	ActionScreenshot
	ActionQuit
)

// weightStep is the weight change per key press.
const weightStep = 0.1

// PatchBay is the interactive patching surface: a selected signal and a
// selected effector, and commands that connect, toggle, disconnect, or
// re-weight that pair. Edits go through the Binder's PatchQueue and land
// between frames.
type PatchBay struct {
	binder   *marionette.Binder
	signal   int
	effector int
}

// NewPatchBay creates a patch bay over b.
func NewPatchBay(b *marionette.Binder) *PatchBay {
	return &PatchBay{binder: b}
}

// Selected returns the selected signal and effector ids. Either is empty
// when the Binder has none registered.
func (p *PatchBay) Selected() (signal, effector string) {
	if sigs := p.binder.Signals(); len(sigs) > 0 {
		signal = sigs[wrap(p.signal, len(sigs))]
	}
	if effs := p.binder.Effectors(); len(effs) > 0 {
		effector = effs[wrap(p.effector, len(effs))]
	}
	return signal, effector
}

// Handle applies a patch action and reports whether it was one. Transport
// and camera actions are left to the caller.
func (p *PatchBay) Handle(a Action) bool {
	switch a {
	case ActionNextSignal:
		p.signal++
	case ActionPrevSignal:
		p.signal--
	case ActionNextEffector:
		p.effector++
	case ActionPrevEffector:
		p.effector--
	case ActionToggle:
		sig, eff := p.Selected()
		if sig == "" || eff == "" {
			return true
		}
		p.binder.Queue().Toggle(sig, eff, 1)
	case ActionDisconnect:
		if id, ok := p.selectedBinding(); ok {
			p.binder.Queue().Disconnect(id)
		}
	case ActionWeightUp, ActionWeightDown:
		id, ok := p.selectedBinding()
		if !ok {
			return true
		}
		info, _ := p.binder.Binding(id)
		w := info.Weight + weightStep
		if a == ActionWeightDown {
			w = info.Weight - weightStep
		}
		p.binder.Queue().SetWeight(id, w)
	default:
		return false
	}
	return true
}

func (p *PatchBay) selectedBinding() (marionette.BindingID, bool) {
	sig, eff := p.Selected()
	if sig == "" || eff == "" {
		return "", false
	}
	return p.binder.Find(sig, eff)
}

// Lines renders the patch state for the HUD: the selection, then one line
// per binding with a marker on the selected pair.
func (p *PatchBay) Lines() []string {
	sig, eff := p.Selected()
	lines := []string{fmt.Sprintf("patch: %s -> %s", orDash(sig), orDash(eff))}
	for _, b := range p.binder.Bindings() {
		mark := " "
		if b.Signal == sig && b.Effector == eff {
			mark = ">"
		}
		state := "on "
		if !b.Enabled {
			state = "off"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s -> %s x%.1f", mark, state, b.Signal, b.Effector, b.Weight))
	}
	return lines
}

// Highlight returns the bones written by the selected effector.
func (p *PatchBay) Highlight() map[marionette.BoneID]bool {
	_, eff := p.Selected()
	e, ok := p.binder.Effector(eff)
	if !ok {
		return nil
	}
	out := make(map[marionette.BoneID]bool, len(e.Outputs()))
	for _, ref := range e.Outputs() {
		out[ref.Bone] = true
	}
	return out
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
