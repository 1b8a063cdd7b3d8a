package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/marionette"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the rig's bones, effectors, signals, and patch",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			name := s.rig.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Fprintf(out, "Rig: %s\n\n", name)

			fmt.Fprintln(out, newSheet("Bones",
				label("Bone"), label("Parent"), numeric("X"), numeric("Y"), numeric("Rotation"), numeric("Scale"), label("Variants"),
			).addAll(boneRows(s.binder.Bones())))

			fmt.Fprintln(out, newSheet("Effectors",
				label("Effector"), label("Kind"), label("Target"), numeric("Taps"), label("Settings"),
			).addAll(effectorRows(s.binder)))

			fmt.Fprintln(out, newSheet("Signals",
				label("Signal"), label("Type"), numeric("Samples"), numeric("Duration"), label("Interpolation"),
			).addAll(signalRows(s)))

			fmt.Fprintln(out, newSheet("Bindings",
				label("Signal"), label("Effector"), numeric("Weight"), label("Enabled"), label("Smoothing"),
			).addAll(bindingRows(s.binder.Bindings())))

			for _, spec := range s.patch.Skipped {
				fmt.Fprintf(out, "Skipped %s -> %s: no such signal\n", spec.Signal, spec.Effector)
			}
			bones := s.binder.Bones()
			for _, c := range s.binder.Conflicts() {
				fmt.Fprintf(out, "Shared target %s: %s\n", targetName(bones, c.Target), strings.Join(c.Effectors, ", "))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func boneRows(bones *marionette.BoneSystem) [][]string {
	rows := make([][]string, 0, bones.Len())
	bones.Walk(func(id marionette.BoneID) bool {
		local, err := bones.RestTransform(id)
		if err != nil {
			return true
		}
		parent := "-"
		if p := bones.Parent(id); p != marionette.NoParent {
			parent = bones.Name(p)
		}
		variants := "-"
		if names := bones.Variants(id); len(names) > 0 {
			variants = strings.Join(names, "|")
		}
		rows = append(rows, []string{
			bones.Name(id),
			parent,
			fmt.Sprintf("%.1f", local.X),
			fmt.Sprintf("%.1f", local.Y),
			fmt.Sprintf("%.1f°", local.Rotation*180/math.Pi),
			fmt.Sprintf("%.2f×%.2f", local.ScaleX, local.ScaleY),
			variants,
		})
		return true
	})
	return rows
}

func effectorRows(b *marionette.Binder) [][]string {
	bones := b.Bones()
	ids := b.Effectors()
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		e, ok := b.Effector(id)
		if !ok {
			continue
		}
		rows = append(rows, []string{
			e.ID,
			kindLabel(e.Kind),
			targetName(bones, e.Target()),
			fmt.Sprintf("%d", tapCount(e)),
			effectorSettings(e),
		})
	}
	return rows
}

func tapCount(e *marionette.Effector) int {
	switch e.Kind {
	case marionette.KindPulseTrigger:
		return len(e.Pulse().Taps)
	case marionette.KindContinuousScale:
		return len(e.Scale().Taps)
	}
	return 0
}

func effectorSettings(e *marionette.Effector) string {
	switch e.Kind {
	case marionette.KindPulseTrigger:
		p := e.Pulse()
		return fmt.Sprintf("threshold %.2f, amplitude %g, %gs", p.Threshold, p.Amplitude, p.Duration)
	case marionette.KindContinuousScale:
		out := e.Scale().Out
		return fmt.Sprintf("out [%.3g, %.3g]", out.Min, out.Max)
	case marionette.KindDirectionSelect:
		d := e.Direction()
		return fmt.Sprintf("%s, deadband %.2f", strings.Join(d.Variants, "|"), d.Deadband)
	}
	return ""
}

func signalRows(s *session) [][]string {
	ids := s.binder.Signals()
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		sig, ok := s.binder.Signal(id)
		if !ok {
			continue
		}
		kind := "continuous"
		if s.material.IsTrigger(id) {
			kind = "trigger"
		}
		rows = append(rows, []string{
			id,
			kind,
			fmt.Sprintf("%d", sig.Len()),
			fmt.Sprintf("%.2fs", sig.Duration()),
			sig.Mode().String(),
		})
	}
	return rows
}

func bindingRows(bindings []marionette.BindingInfo) [][]string {
	rows := make([][]string, 0, len(bindings))
	for _, b := range bindings {
		rows = append(rows, []string{
			b.Signal,
			b.Effector,
			fmt.Sprintf("%.2f", b.Weight),
			yesNo(b.Enabled),
			smoothingLabel(b.Smoothing),
		})
	}
	return rows
}

func smoothingLabel(sm marionette.Smoothing) string {
	switch sm.Mode {
	case marionette.SmoothExponential:
		return fmt.Sprintf("exponential α=%g", sm.Alpha)
	case marionette.SmoothSpring:
		return fmt.Sprintf("spring %gHz ζ=%g", sm.Frequency, sm.Damping)
	}
	return sm.Mode.String()
}

func targetName(bones *marionette.BoneSystem, ref marionette.ParamRef) string {
	return bones.Name(ref.Bone) + "." + ref.Param.String()
}
