// Package view renders a marionette rig in an ebiten window and exposes the
// Binder as a keyboard patch bay.
//
// The view is a collaborator of the engine, not part of it: it drives a
// Player from the ebiten tick, reads world transforms and sprite variants
// after each frame, and pushes patch edits through the Binder's queue.
// Bones are drawn as a stick figure; sprite images are out of scope.
package view

import (
	"errors"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/marionette"
)

// Options configures the window and overlays.
type Options struct {
	Title     string
	Width     int
	Height    int
	Zoom      float64
	ShowBones bool
	ShowHUD   bool
	Logger    *slog.Logger

	// ScreenshotDir receives F12 captures. Defaults to "screenshots".
	ScreenshotDir string
}

// Game implements ebiten.Game over a Player.
type Game struct {
	player *marionette.Player
	bones  *marionette.BoneSystem
	cam    *Camera
	bay    *PatchBay
	hud    hud
	opts   Options
	log    *slog.Logger

	paused  bool
	last    marionette.FrameReport
	actions []Action
	cv      canvas
	shots   []shot
}

// New creates a Game. The camera starts so that world coordinates equal
// window coordinates at zoom 1.
func New(p *marionette.Player, opts Options) *Game {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "screenshots"
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w, h := float64(opts.Width), float64(opts.Height)
	cam := NewCamera(Rect{Width: w, Height: h})
	cam.X, cam.Y = w/2, h/2
	cam.Zoom = opts.Zoom
	return &Game{
		player: p,
		bones:  p.Binder().Bones(),
		cam:    cam,
		bay:    NewPatchBay(p.Binder()),
		opts:   opts,
		log:    log,
	}
}

// Camera returns the view camera.
func (g *Game) Camera() *Camera { return g.cam }

// PatchBay returns the keyboard patch bay.
func (g *Game) PatchBay() *PatchBay { return g.bay }

// Update advances input, the transport, and the camera by one tick.
func (g *Game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	g.actions = pollActions(g.actions)
	for _, a := range g.actions {
		if err := g.handle(a); err != nil {
			return err
		}
	}

	if !g.paused && !g.player.Done() {
		rep, err := g.player.Advance(dt)
		if err != nil {
			return err
		}
		g.record(rep)
	}

	g.cam.Update(float32(dt))
	g.hud.update(dt)
	return nil
}

func (g *Game) handle(a Action) error {
	if g.bay.Handle(a) {
		return nil
	}
	switch a {
	case ActionPause:
		g.paused = !g.paused
	case ActionRestart:
		rep, err := g.player.Seek(0)
		if err != nil {
			return err
		}
		g.record(rep)
	case ActionRecenter:
		if w, err := g.bones.WorldTransform(g.bones.Root()); err == nil {
			g.cam.ScrollTo(w.X, w.Y-float64(g.opts.Height)/4, 0.4, ease.OutQuad)
		}
	case ActionZoomIn:
		g.cam.ZoomBy(1.25)
	case ActionZoomOut:
		g.cam.ZoomBy(0.8)
	case ActionScreenshot:
		g.Screenshot("pose")
	case ActionQuit:
		return ebiten.Termination
	}
	return nil
}

func (g *Game) record(rep marionette.FrameReport) {
	g.last = rep
	for _, res := range rep.Commands {
		if res.Err != nil {
			g.log.Warn("patch command failed", "command", res.Command.String(), "error", res.Err)
		}
	}
	for _, err := range rep.EffectorErrors {
		g.log.Warn("effector error", "t", rep.Time, "error", err)
	}
	for _, err := range rep.RangeErrors {
		g.log.Debug("signal out of range", "t", rep.Time, "error", err)
	}
}

// Draw renders the skeleton, variant labels, and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundFill)

	if g.opts.ShowBones {
		joints, segments, err := Layout(g.bones, g.cam.ViewMatrix())
		if err != nil {
			g.log.Debug("skip skeleton draw", "error", err)
		} else {
			g.cv.drawSkeleton(screen, joints, segments, g.bay.Highlight())
			for _, j := range joints {
				if j.Catalogue {
					label := j.Variant
					if !j.HasSprite {
						label = "(none)"
					}
					ebitenutil.DebugPrintAt(screen, label, int(j.X)+6, int(j.Y)-6)
				}
			}
		}
	}

	if g.opts.ShowHUD {
		g.hud.draw(screen, g.hud.text(g.player, g.last, g.paused, g.bay))
	}

	g.flushScreenshots(screen)
}

// Layout keeps a fixed logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.opts.Width, g.opts.Height
}

// Run opens the window and blocks until it is closed. Quitting with Escape
// is not an error.
func Run(g *Game) error {
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
