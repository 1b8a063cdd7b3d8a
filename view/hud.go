package view

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/marionette"
)

// hudRefresh is how often the rate counters are re-read, in seconds.
const hudRefresh = 0.5

// hud is the text overlay: frame rates, transport, frame statistics, and
// the patch bay.
type hud struct {
	sinceRefresh float64
	rates        string
}

func (h *hud) update(dt float64) {
	h.sinceRefresh += dt
	if h.rates != "" && h.sinceRefresh < hudRefresh {
		return
	}
	h.sinceRefresh = 0
	h.rates = fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
}

// text builds the overlay body. It does not touch ebiten state.
func (h *hud) text(p *marionette.Player, rep marionette.FrameReport, paused bool, bay *PatchBay) string {
	var sb strings.Builder
	sb.WriteString(h.rates)
	sb.WriteByte('\n')

	state := "playing"
	if paused {
		state = "paused"
	}
	fmt.Fprintf(&sb, "t=%.2fs / %.2fs  loop %d  %s\n", p.Time(), p.Duration(), p.Loops(), state)
	fmt.Fprintf(&sb, "bindings %d  effectors %d  writes %d  clamped %d  recomputed %d\n",
		rep.Bindings, rep.Effectors, rep.Writes, rep.Clamped, rep.Recomputed)
	if n := len(rep.RangeErrors) + len(rep.EffectorErrors); n > 0 {
		fmt.Fprintf(&sb, "errors this frame: %d\n", n)
	}
	sb.WriteByte('\n')
	for _, line := range bay.Lines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (h *hud) draw(screen *ebiten.Image, body string) {
	ebitenutil.DebugPrintAt(screen, body, 8, 8)
	height := screen.Bounds().Dy()
	ebitenutil.DebugPrintAt(screen, helpText, 8, height-36)
}
