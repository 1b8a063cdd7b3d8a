// Package marionette animates 2D character rigs from pre-extracted audio
// features.
//
// A rig is a [BoneSystem]: a single-rooted tree of bones, each with a local
// [Transform] and an optional catalogue of sprite variants. Audio features
// arrive as immutable, time-indexed [Signal] values. [Effector] values turn
// signal values into bone parameter deltas, and a [Binder] connects the two
// through weighted bindings that can be changed live, like cables on a patch
// bay.
//
// # Quick start
//
//	bones := marionette.NewBoneSystem()
//	root, _ := bones.AddBone(marionette.NoParent, "root", marionette.Translate(400, 450))
//	head, _ := bones.AddBone(root, "head", marionette.Translate(0, -50))
//	_ = bones.Finalize()
//
//	beats, _ := marionette.NewOnsetSignal("beats", []float64{0.5, 1.0, 1.5}, 0.05)
//	bob, _ := marionette.NewPulseTrigger("head_bob",
//		marionette.ParamRef{Bone: head, Param: marionette.ParamY},
//		marionette.PulseConfig{Threshold: 0.5, Amplitude: -15, Duration: 0.3})
//
//	b := marionette.NewBinder(bones)
//	_ = b.AddSignal(beats)
//	_ = b.AddEffector(bob)
//	_, _ = b.Connect("beats", "head_bob", 1)
//
//	for t := 0.0; t < 2; t += 1.0 / 60 {
//		_, _ = b.Evaluate(t)
//		world, _ := bones.WorldTransform(head)
//		// draw the head sprite at world
//	}
//
// # Evaluation
//
// [Binder.Evaluate] is the only place bone parameters are written. Each frame
// starts from the rest pose, so deltas never accumulate across frames. When
// several effectors write the same parameter their weighted deltas are summed
// and the result is clamped to the parameter's limit. Time is always passed
// in explicitly; nothing in this package reads a clock, which keeps frames
// reproducible for offline rendering.
//
// Binding changes from other goroutines go through [PatchQueue] and are
// applied at the start of the next frame.
//
// Sub-packages load analysis files ([analysis]), describe rigs in TOML
// ([rig]), and render a running rig with Ebitengine ([view]). The nested
// ecs module publishes frames into a [Donburi] world.
//
// [analysis]: https://pkg.go.dev/github.com/phanxgames/marionette/analysis
// [rig]: https://pkg.go.dev/github.com/phanxgames/marionette/rig
// [view]: https://pkg.go.dev/github.com/phanxgames/marionette/view
// [Donburi]: https://github.com/yohamta/donburi
package marionette
