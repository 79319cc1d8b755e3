package snowfall

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is something the user can ask the driver to do.
type Action uint8

const (
	ActionNone        Action = iota
	ActionZoomIn             // enlarge the card one step
	ActionZoomOut            // shrink the card one step
	ActionSpeedUp            // raise the speed multiplier one step
	ActionSpeedDown          // lower the speed multiplier one step
	ActionExportStill        // download the card as PNG
	ActionExportVideo        // download the card with snow as video
	ActionScreenshot         // write the current window to ScreenshotDir
	ActionToggleHUD          // show or hide the overlay
	ActionQuit               // end the game loop
)

var actionNames = [...]string{
	ActionNone:        "none",
	ActionZoomIn:      "zoom-in",
	ActionZoomOut:     "zoom-out",
	ActionSpeedUp:     "speed-up",
	ActionSpeedDown:   "speed-down",
	ActionExportStill: "export-png",
	ActionExportVideo: "export-video",
	ActionScreenshot:  "screenshot",
	ActionToggleHUD:   "toggle-hud",
	ActionQuit:        "quit",
}

// String returns the script name of the action.
func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// keyBindings maps keys to actions. "+" shares KeyEqual with "=".
var keyBindings = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeyEqual, ActionZoomIn},
	{ebiten.KeyNumpadAdd, ActionZoomIn},
	{ebiten.KeyMinus, ActionZoomOut},
	{ebiten.KeyNumpadSubtract, ActionZoomOut},
	{ebiten.KeyBracketRight, ActionSpeedUp},
	{ebiten.KeyBracketLeft, ActionSpeedDown},
	{ebiten.KeyP, ActionExportStill},
	{ebiten.KeyV, ActionExportVideo},
	{ebiten.KeyF12, ActionScreenshot},
	{ebiten.KeyH, ActionToggleHUD},
	{ebiten.KeyEscape, ActionQuit},
}

// processInput applies one injected action if any are queued, otherwise the
// actions of keys pressed this tick.
func (d *Driver) processInput() error {
	if a, ok := d.popInjected(); ok {
		return d.apply(a)
	}
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			if err := d.apply(b.action); err != nil {
				return err
			}
		}
	}
	return nil
}

// apply performs a single action.
func (d *Driver) apply(a Action) error {
	switch a {
	case ActionZoomIn:
		if d.card != nil {
			d.card.zoom.ZoomIn()
		}
	case ActionZoomOut:
		if d.card != nil {
			d.card.zoom.ZoomOut()
		}
	case ActionSpeedUp:
		d.SetSpeed(d.speed + SpeedStep)
	case ActionSpeedDown:
		d.SetSpeed(d.speed - SpeedStep)
	case ActionExportStill:
		d.trigger(d.StillButton, d.onExportStill)
	case ActionExportVideo:
		d.trigger(d.VideoButton, d.onExportVideo)
	case ActionScreenshot:
		d.Screenshot("manual")
	case ActionToggleHUD:
		d.hud.visible = !d.hud.visible
	case ActionQuit:
		return ebiten.Termination
	}
	return nil
}

// trigger runs an export hook unless its button is busy. The hook owns the
// button from here on and must restore it.
func (d *Driver) trigger(b *Button, fn func()) {
	if fn == nil || b.Disabled() {
		return
	}
	fn()
}
