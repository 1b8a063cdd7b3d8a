package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/marionette"
)

// maxDefaultColumns caps the bones shown when none are requested.
const maxDefaultColumns = 4

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	var duration float64
	var fps float64
	var every int
	var boneNames []string
	var debug bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Evaluate the rig offline and print sampled frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, flags)
			if err != nil {
				return err
			}
			if debug {
				s.binder.SetDebugMode(true)
			}
			if fps <= 0 {
				fps = s.cfg.Playback.FPS
			}
			if every <= 0 {
				every = max(1, int(fps/4))
			}
			end := s.material.Duration()
			if duration > 0 && (end <= 0 || duration < end) {
				end = duration
			}

			bones := s.binder.Bones()
			columns, err := resolveColumns(s.binder, boneNames)
			if err != nil {
				return err
			}

			layout := []column{numeric("Time"), numeric("Writes"), numeric("Clamped")}
			for _, id := range columns {
				layout = append(layout, label(bones.Name(id)))
			}
			poses := newSheet("", layout...)
			commands := newSheet("Patch commands", numeric("Time"), label("Command"), label("Result"))

			var sum frameTotals
			player := s.player(false)
			frames := int(math.Floor(end*fps + 1e-9))
			for i := 0; i <= frames; i++ {
				rep, err := player.Seek(float64(i) / fps)
				if err != nil {
					return err
				}
				sum.add(rep)
				for _, res := range rep.Commands {
					commands.add(commandRow(rep.Time, res)...)
				}
				if i%every != 0 && i != frames {
					continue
				}
				row := []string{
					fmt.Sprintf("%.3f", rep.Time),
					fmt.Sprintf("%d", rep.Writes),
					fmt.Sprintf("%d", rep.Clamped),
				}
				for _, id := range columns {
					row = append(row, bonePose(bones, id))
				}
				poses.add(row...)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, poses)
			if len(commands.rows) > 0 {
				fmt.Fprintln(out, commands)
			}
			fmt.Fprintf(out, "\nSimulated %d frames over %.2fs at %g fps\n", sum.frames, end, fps)
			fmt.Fprintf(out, "Writes: %d  Clamped: %d  Range errors: %d  Effector errors: %d\n",
				sum.writes, sum.clamped, sum.rangeErrors, sum.effectorErrors)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&duration, "duration", 0, "Seconds to simulate; defaults to the analysis duration")
	cmd.Flags().Float64Var(&fps, "fps", 0, "Evaluation rate; defaults to playback.fps")
	cmd.Flags().IntVar(&every, "every", 0, "Print every Nth frame")
	cmd.Flags().StringSliceVar(&boneNames, "bone", nil, "Bones to show (repeatable); defaults to the driven bones")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log per-frame timings and rig checks")
	return cmd
}

type frameTotals struct {
	frames         int
	writes         int
	clamped        int
	rangeErrors    int
	effectorErrors int
}

func (t *frameTotals) add(rep marionette.FrameReport) {
	t.frames++
	t.writes += rep.Writes
	t.clamped += rep.Clamped
	t.rangeErrors += len(rep.RangeErrors)
	t.effectorErrors += len(rep.EffectorErrors)
}

// resolveColumns maps bone names to ids. With no names it picks the primary
// targets of enabled bindings, in binding order.
func resolveColumns(b *marionette.Binder, names []string) ([]marionette.BoneID, error) {
	bones := b.Bones()
	if len(names) > 0 {
		ids := make([]marionette.BoneID, 0, len(names))
		for _, name := range names {
			id, ok := bones.Lookup(strings.TrimSpace(name))
			if !ok {
				return nil, fmt.Errorf("%w: unknown bone %q", marionette.ErrValidation, name)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	seen := make(map[marionette.BoneID]bool)
	var ids []marionette.BoneID
	for _, info := range b.Bindings() {
		if !info.Enabled {
			continue
		}
		e, ok := b.Effector(info.Effector)
		if !ok {
			continue
		}
		id := e.Target().Bone
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if len(ids) == maxDefaultColumns {
			break
		}
	}
	if len(ids) == 0 {
		ids = append(ids, bones.Root())
	}
	return ids, nil
}

// bonePose formats a bone's world position and rotation, plus its active
// sprite variant when it has a catalogue.
func bonePose(bones *marionette.BoneSystem, id marionette.BoneID) string {
	w, err := bones.WorldTransform(id)
	if err != nil {
		return "?"
	}
	pose := fmt.Sprintf("%.1f,%.1f %.0f°", w.X, w.Y, w.Rotation*180/math.Pi)
	if len(bones.Variants(id)) > 0 {
		variant, ok := bones.SpriteVariant(id)
		if !ok {
			variant = "-"
		}
		pose += " [" + variant + "]"
	}
	return pose
}

func commandRow(t float64, res marionette.CommandResult) []string {
	result := "ok"
	if res.Err != nil {
		result = res.Err.Error()
	} else if res.Binding != "" {
		result = "ok " + shortID(res.Binding)
	}
	return []string{fmt.Sprintf("%.3f", t), res.Command.String(), result}
}

func shortID(id marionette.BindingID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
