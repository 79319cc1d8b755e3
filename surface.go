package snowfall

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Strategy selects how simulation space maps onto the window.
type Strategy uint8

const (
	// SingleSurface draws straight into the window over the reference
	// rectangle. The simulation is as large as the reference, so a resize
	// rebuilds the flake set by density.
	SingleSurface Strategy = iota
	// DualSurface runs the simulation on a fixed-resolution offscreen
	// surface and copies it, scaled, over the reference rectangle every
	// frame. Density and physics are independent of the window size.
	DualSurface
)

// String returns the config name of the strategy.
func (s Strategy) String() string {
	switch s {
	case SingleSurface:
		return "single"
	case DualSurface:
		return "dual"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy maps a config name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "single", "":
		return SingleSurface, nil
	case "dual":
		return DualSurface, nil
	default:
		return 0, fmt.Errorf("unknown surface strategy %q", name)
	}
}

// ErrMissingReference is returned when the sizing reference is absent.
var ErrMissingReference = errors.New("snowfall: sizing reference is missing")

// SizeReference is the element the snow is laid over, measured in logical
// window pixels. ok is false while the element does not exist.
type SizeReference interface {
	Rect() (r Rect, ok bool)
}

// displayScaler is a SizeReference shown scaled about its centre, like a
// zoomed card. The scale only affects where the snow is presented.
type displayScaler interface {
	DisplayScale() float64
}

// ViewportReference tracks the whole window. It is updated from Layout.
type ViewportReference struct {
	w, h float64
}

// Set records the logical window size.
func (v *ViewportReference) Set(w, h float64) {
	v.w, v.h = w, h
}

// Rect implements SizeReference.
func (v *ViewportReference) Rect() (Rect, bool) {
	r := Rect{Width: v.w, Height: v.h}
	return r, !r.Empty()
}

// FixedReference is a constant rectangle.
type FixedReference Rect

// Rect implements SizeReference.
func (f FixedReference) Rect() (Rect, bool) {
	return Rect(f), !Rect(f).Empty()
}

// Default simulation resolution of the dual-surface strategy.
const (
	DefaultSimWidth  = 1920
	DefaultSimHeight = 1080
)

// SurfaceConfig configures RenderTargets.
type SurfaceConfig struct {
	Strategy Strategy
	// SimWidth and SimHeight fix the simulation resolution of DualSurface.
	SimWidth, SimHeight int
	// Fog composites the bottom fog band every frame.
	Fog bool
}

// placement maps simulation coordinates onto a target image:
// target = (X, Y) + sim * Scale.
type placement struct {
	X, Y, Scale float64
}

func (p placement) apply(x, y float64) (float64, float64) {
	return p.X + x*p.Scale, p.Y + y*p.Scale
}

// RenderTargets owns the simulation surface and the mapping between
// simulation coordinates and device pixels.
type RenderTargets struct {
	cfg   SurfaceConfig
	ref   SizeReference
	sim   *RenderTexture
	fog   fogLayer
	view  Rect
	scale float64
	zoom  float64
}

// NewRenderTargets measures ref and prepares the surfaces. It fails with
// ErrMissingReference when ref is nil or reports no element; every frame
// after this assumes the reference exists.
func NewRenderTargets(cfg SurfaceConfig, ref SizeReference) (*RenderTargets, error) {
	if ref == nil {
		return nil, ErrMissingReference
	}
	r, ok := ref.Rect()
	if !ok {
		return nil, fmt.Errorf("measure reference: %w", ErrMissingReference)
	}
	if cfg.SimWidth <= 0 || cfg.SimHeight <= 0 {
		cfg.SimWidth, cfg.SimHeight = DefaultSimWidth, DefaultSimHeight
	}
	rt := &RenderTargets{cfg: cfg, ref: ref, view: r, scale: 1}
	rt.zoom = rt.displayScale()
	if cfg.Strategy == DualSurface {
		rt.sim = NewRenderTexture(cfg.SimWidth, cfg.SimHeight)
	}
	return rt, nil
}

// Measure re-reads the reference at the given device scale and reports
// whether the logical simulation size changed. A reference that vanished
// keeps the previous measurement and returns ErrMissingReference.
func (rt *RenderTargets) Measure(deviceScale float64) (changed bool, err error) {
	if deviceScale <= 0 || math.IsNaN(deviceScale) {
		deviceScale = 1
	}
	r, ok := rt.ref.Rect()
	if !ok {
		return false, ErrMissingReference
	}
	oldW, oldH := rt.SimSize()
	rt.view = r
	rt.scale = deviceScale
	rt.zoom = rt.displayScale()
	w, h := rt.SimSize()
	return w != oldW || h != oldH, nil
}

// Strategy returns the configured strategy.
func (rt *RenderTargets) Strategy() Strategy {
	return rt.cfg.Strategy
}

// SimSize returns the logical simulation size.
func (rt *RenderTargets) SimSize() (w, h float64) {
	if rt.cfg.Strategy == DualSurface {
		return float64(rt.cfg.SimWidth), float64(rt.cfg.SimHeight)
	}
	return rt.view.Width, rt.view.Height
}

// displayScale reads the reference's display scale, 1 when it has none.
func (rt *RenderTargets) displayScale() float64 {
	ds, ok := rt.ref.(displayScaler)
	if !ok {
		return 1
	}
	z := ds.DisplayScale()
	if z <= 0 || math.IsNaN(z) || math.IsInf(z, 0) {
		return 1
	}
	return z
}

// ViewRect returns the reference rectangle in logical window pixels, before
// any display scale.
func (rt *RenderTargets) ViewRect() Rect {
	return rt.view
}

// ShownRect returns the presentation rectangle in logical window pixels:
// the reference rectangle scaled about its centre by its display scale.
func (rt *RenderTargets) ShownRect() Rect {
	v, z := rt.view, rt.zoom
	if z == 0 {
		z = 1
	}
	w, h := v.Width*z, v.Height*z
	return Rect{X: v.X + (v.Width-w)/2, Y: v.Y + (v.Height-h)/2, Width: w, Height: h}
}

// DeviceScale returns the device pixel ratio of the last Measure.
func (rt *RenderTargets) DeviceScale() float64 {
	return rt.scale
}

// BackingSize returns the presentation size in device pixels.
func (rt *RenderTargets) BackingSize() (w, h int) {
	r := rt.ShownRect()
	return int(math.Ceil(r.Width * rt.scale)), int(math.Ceil(r.Height * rt.scale))
}

// deviceRect returns the presentation rectangle in device pixels.
func (rt *RenderTargets) deviceRect() Rect {
	r, s := rt.ShownRect(), rt.scale
	return Rect{X: r.X * s, Y: r.Y * s, Width: r.Width * s, Height: r.Height * s}
}

// deviceBounds returns deviceRect rounded outwards to whole pixels.
func (rt *RenderTargets) deviceBounds() image.Rectangle {
	r := rt.deviceRect()
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
}

// simPlacement returns where simulation drawing lands. Single surface draws
// into the window at device scale times display scale; dual surface draws
// 1:1 into the simulation texture.
func (rt *RenderTargets) simPlacement() placement {
	if rt.cfg.Strategy == DualSurface {
		return placement{Scale: 1}
	}
	r := rt.deviceRect()
	z := rt.zoom
	if z == 0 {
		z = 1
	}
	return placement{X: r.X, Y: r.Y, Scale: rt.scale * z}
}

// begin returns the image simulation drawing goes to: the cleared offscreen
// surface, or for a single surface the window clipped to the presentation
// rectangle. Sub-images keep the window's coordinates, so simPlacement
// applies unchanged.
func (rt *RenderTargets) begin(screen *ebiten.Image) *ebiten.Image {
	if rt.cfg.Strategy == DualSurface {
		rt.sim.Clear()
		return rt.sim.Image()
	}
	return screen.SubImage(rt.deviceBounds()).(*ebiten.Image)
}

// drawFog composites the fog band when enabled.
func (rt *RenderTargets) drawFog(dst *ebiten.Image) {
	if !rt.cfg.Fog {
		return
	}
	w, h := rt.SimSize()
	rt.fog.draw(dst, w, h, rt.simPlacement())
}

// present copies the simulation surface into the window. No-op for the
// single-surface strategy.
func (rt *RenderTargets) present(screen *ebiten.Image) {
	if rt.cfg.Strategy != DualSurface {
		return
	}
	rt.sim.DrawScaledTo(screen, rt.deviceRect())
}

// Dispose releases the offscreen surface.
func (rt *RenderTargets) Dispose() {
	if rt.sim != nil {
		rt.sim.Dispose()
	}
}

// drawFlakes paints every flake as a filled circle.
func drawFlakes(dst *ebiten.Image, flakes []Flake, p placement) {
	for i := range flakes {
		f := &flakes[i]
		x, y := p.apply(f.X, f.Y)
		vector.DrawFilledCircle(dst, float32(x), float32(y), float32(float64(f.Radius)*p.Scale), f.Color, true)
	}
}
