// Package snowfall renders falling snow over a greeting card with
// [Ebitengine] and keeps the simulation independent of the window size.
//
// # Quick start
//
//	card := snowfall.NewCard(snowfall.PlaceholderArt(600, 400), snowfall.DefaultZoomConfig())
//	d, err := snowfall.NewDriver(snowfall.Config{
//		Width: 960, Height: 640,
//		Surface:   snowfall.SurfaceConfig{Strategy: snowfall.DualSurface, Fog: true},
//		Reference: snowfall.ReferenceCard,
//	}, card)
//	if err != nil {
//		log.Fatal(err)
//	}
//	log.Fatal(snowfall.Run(d, snowfall.RunConfig{Title: "Snow"}))
//
// # Simulation
//
// A [Field] is one simulation session: its bounds, a flake set sized by
// density, and its own random source. Flakes live in stable slots; a flake
// that falls past the bottom is overwritten in place with a fresh one
// entering from above, so the count never drifts. Horizontal wrap keeps
// density even at the edges.
//
// # Render targets
//
// [SingleSurface] draws straight into the window over the sizing reference
// (the window or the card) and rebuilds the flake set when the reference is
// resized. [DualSurface] simulates on a fixed 1920x1080 offscreen surface,
// composites an optional fog band, and copies the result scaled over the
// reference every frame.
//
// # Driver
//
// [Driver] implements ebiten.Game. Each frame draws every flake and then
// advances it by its fall speed times the speed multiplier. The card zoom
// eases between clamped steps with [gween] and never touches simulation
// coordinates. Exports are wired in by the caller through
// [Driver.OnExportStill] and [Driver.OnExportVideo]; see the capture
// package.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package snowfall
