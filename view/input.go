package view

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keyBindings maps keys to actions. Keys fire once per press.
var keyBindings = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeyArrowDown, ActionNextSignal},
	{ebiten.KeyArrowUp, ActionPrevSignal},
	{ebiten.KeyArrowRight, ActionNextEffector},
	{ebiten.KeyArrowLeft, ActionPrevEffector},
	{ebiten.KeyEnter, ActionToggle},
	{ebiten.KeyBackspace, ActionDisconnect},
	{ebiten.KeyDelete, ActionDisconnect},
	{ebiten.KeyPageUp, ActionWeightUp},
	{ebiten.KeyPageDown, ActionWeightDown},
	{ebiten.KeySpace, ActionPause},
	{ebiten.KeyR, ActionRestart},
	{ebiten.KeyC, ActionRecenter},
	{ebiten.KeyEqual, ActionZoomIn},
	{ebiten.KeyMinus, ActionZoomOut},
	{ebiten.KeyF12, ActionScreenshot},
	{ebiten.KeyEscape, ActionQuit},
}

// pollActions returns the actions whose keys were pressed this tick, in
// keyBindings order.
func pollActions(dst []Action) []Action {
	dst = dst[:0]
	for _, kb := range keyBindings {
		if inpututil.IsKeyJustPressed(kb.key) {
			dst = append(dst, kb.action)
		}
	}
	return dst
}

// helpText lists the key bindings for the HUD.
const helpText = "arrows: select  enter: toggle  bksp: unplug  pgup/pgdn: weight\n" +
	"space: pause  r: restart  c: recenter  +/-: zoom  f12: screenshot  esc: quit"
