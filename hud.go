package snowfall

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hudRefresh is how often, in seconds, the FPS line is recomputed.
const hudRefresh = 0.5

// hud is the text overlay: FPS, flake count, speed, zoom, the export
// controls and the latest alert.
type hud struct {
	visible bool
	since   float64
	fps     float64
}

func (h *hud) update(dt float64) {
	h.since += dt
	if h.since < hudRefresh {
		return
	}
	h.since = 0
	h.fps = ebiten.ActualFPS()
}

// text renders the overlay lines for d.
func (h *hud) text(d *Driver) string {
	var b strings.Builder
	zoom := 1.0
	if d.card != nil {
		zoom = d.card.zoom.Scale()
	}
	fmt.Fprintf(&b, "FPS: %.1f  flakes: %d  speed: %.1fx  zoom: %.2f\n", h.fps, d.field.Len(), d.speed, zoom)
	fmt.Fprintf(&b, "[P] %s  [V] %s\n", buttonText(d.StillButton), buttonText(d.VideoButton))
	b.WriteString("[+/-] zoom  [[/]] speed  [F12] screenshot  [H] hide")
	if msg := d.alerts.current(d.now()); msg != "" {
		b.WriteString("\n! ")
		b.WriteString(msg)
	}
	return b.String()
}

func buttonText(b *Button) string {
	if b.Disabled() {
		return "(" + b.Label() + ")"
	}
	return b.Label()
}

func (h *hud) draw(screen *ebiten.Image, d *Driver) {
	if !h.visible {
		return
	}
	ebitenutil.DebugPrintAt(screen, h.text(d), 8, 8)
}
