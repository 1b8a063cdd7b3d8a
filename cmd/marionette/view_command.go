package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phanxgames/marionette/view"
)

func newViewCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	var follow string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the interactive viewer and patch bay",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, flags)
			if err != nil {
				return err
			}
			vc := s.cfg.View
			g := view.New(s.player(s.cfg.Playback.Loop), view.Options{
				Title:         vc.Title,
				Width:         vc.Width,
				Height:        vc.Height,
				Zoom:          vc.Zoom,
				ShowBones:     vc.ShowBones,
				ShowHUD:       vc.ShowHUD,
				Logger:        s.log,
				ScreenshotDir: s.cfg.Paths.Screenshots,
			})
			if follow != "" {
				id, ok := s.binder.Bones().Lookup(follow)
				if !ok {
					return fmt.Errorf("follow: unknown bone %q", follow)
				}
				g.Camera().Follow(s.binder.Bones(), id, 0.1)
			}
			s.log.Info("viewer starting", "rig", s.rig.Name, "duration", s.material.Duration())
			return view.Run(g)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&follow, "follow", "", "Bone the camera tracks")
	return cmd
}
