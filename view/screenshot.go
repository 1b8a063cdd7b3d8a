package view

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// shot is a pending capture, stamped with the playback time it was asked for.
type shot struct {
	label string
	at    float64
}

// filename is "<label>_t<seconds>_<wall clock>.png", so captures of the same
// pose sort together.
func (s shot) filename(now time.Time) string {
	return fmt.Sprintf("%s_t%07.3f_%s.png", fileSafe(s.label), s.at, now.Format("20060102_150405"))
}

// Screenshot asks for the next drawn frame to be saved as a PNG under
// Options.ScreenshotDir.
func (g *Game) Screenshot(label string) {
	g.shots = append(g.shots, shot{label: label, at: g.player.Time()})
}

func (g *Game) flushScreenshots(screen *ebiten.Image) {
	if len(g.shots) == 0 {
		return
	}
	pending := g.shots
	g.shots = g.shots[:0]

	dir := g.opts.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		g.log.Warn("cannot create screenshot directory", "dir", dir, "error", err)
		return
	}
	frame := image.NewRGBA(screen.Bounds())
	screen.ReadPixels(frame.Pix)
	img := straightAlpha(frame)

	now := time.Now()
	for _, s := range pending {
		path := filepath.Join(dir, s.filename(now))
		if err := savePNG(path, img); err != nil {
			g.log.Warn("screenshot not saved", "label", s.label, "error", err)
			continue
		}
		g.log.Info("screenshot saved", "path", path, "time", s.at)
	}
}

// straightAlpha converts a premultiplied frame, as read back from the GPU,
// into the NRGBA layout PNG expects.
func straightAlpha(src *image.RGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	draw.Draw(dst, dst.Rect, src, src.Rect.Min, draw.Src)
	return dst
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// fileSafe keeps letters, digits, '-' and '.'; everything else becomes '_'.
func fileSafe(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
