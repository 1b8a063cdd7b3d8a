package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the rig, analysis, and patch script load together",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rig: %d bones, %d effectors, %d default bindings\n",
				s.rig.Bones.Len(), len(s.rig.Effectors), len(s.rig.Bindings))
			fmt.Fprintf(out, "Analysis: %s, %d features, %.2fs\n",
				orDash(s.material.Info.Filename), len(s.material.Names()), s.material.Duration())
			if s.script != nil {
				fmt.Fprintf(out, "Patch script: %d steps\n", s.script.Len())
			}
			for _, spec := range s.patch.Skipped {
				fmt.Fprintf(out, "Skipped binding %s -> %s: no such signal\n", spec.Signal, spec.Effector)
			}
			if strict && len(s.patch.Skipped) > 0 {
				return fmt.Errorf("%d default bindings reference missing signals", len(s.patch.Skipped))
			}
			fmt.Fprintln(out, "Rig valid")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a default binding has no signal")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
