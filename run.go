package snowfall

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window Run opens.
type RunConfig struct {
	Title string
	// Width and Height are the initial logical window size. Zero keeps the
	// driver's configured size.
	Width, Height int
	// Fixed disables window resizing.
	Fixed bool
	// TPS overrides ebiten's ticks per second when positive.
	TPS int
}

// Run opens a window and drives d until the window closes or the quit
// action is triggered.
func Run(d *Driver, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = d.cfg.Width, d.cfg.Height
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, h)
	if cfg.Fixed {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}

	d.Start()
	defer d.Stop()
	return ebiten.RunGame(d)
}
