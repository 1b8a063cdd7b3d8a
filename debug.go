package marionette

import "time"

// debugStats holds per-frame phase timings.
// Only populated when the Binder is in debug mode.
type debugStats struct {
	sampleTime   time.Duration
	effectorTime time.Duration
	resolveTime  time.Duration
	worldTime    time.Duration
	frame        FrameEvent
}

// SetDebugMode enables per-frame timing logs and runs the rig sanity checks
// once.
func (b *Binder) SetDebugMode(enabled bool) {
	b.debug = enabled
	if enabled {
		b.debugCheckRig()
	}
}

// debugLog logs timing and write stats for one frame.
func (b *Binder) debugLog(stats debugStats) {
	total := stats.sampleTime + stats.effectorTime + stats.resolveTime + stats.worldTime
	b.log.Info("frame",
		"t", stats.frame.Time,
		"sample", stats.sampleTime,
		"effectors", stats.effectorTime,
		"resolve", stats.resolveTime,
		"world", stats.worldTime,
		"total", total,
		"bindings", stats.frame.Bindings,
		"evaluated", stats.frame.Effectors,
		"writes", stats.frame.Writes,
		"clamped", stats.frame.Clamped,
		"recomputed", stats.frame.Recomputed,
	)
}

// debugMaxDepth is the bone depth above which debugCheckRig warns.
const debugMaxDepth = 32

// debugMaxChildCount is the child count above which debugCheckRig warns.
const debugMaxChildCount = 1000

// debugCheckRig warns about suspicious rig shapes and bindings that can never
// produce output.
func (b *Binder) debugCheckRig() {
	s := b.bones
	s.Walk(func(id BoneID) bool {
		depth := 0
		for p := id; p != NoParent; p = s.Parent(p) {
			depth++
		}
		if depth > debugMaxDepth {
			b.log.Warn("bone depth exceeds threshold", "bone", s.Name(id), "depth", depth, "threshold", debugMaxDepth)
		}
		if n := len(s.Children(id)); n > debugMaxChildCount {
			b.log.Warn("bone child count exceeds threshold", "bone", s.Name(id), "children", n, "threshold", debugMaxChildCount)
		}
		return true
	})
	for _, bd := range b.bindings {
		if bd.weight == 0 {
			b.log.Warn("binding has zero weight", "binding", bd.id, "signal", bd.signal.Name(), "effector", bd.effector.ID)
		}
		if bd.signal.Len() == 0 {
			b.log.Warn("binding reads an empty signal", "binding", bd.id, "signal", bd.signal.Name())
		}
	}
	for _, c := range b.Conflicts() {
		b.log.Debug("shared parameter", "bone", s.Name(c.Target.Bone), "param", c.Target.Param.String(), "effectors", c.Effectors)
	}
}
