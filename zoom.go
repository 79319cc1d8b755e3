package snowfall

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ZoomConfig bounds the card zoom.
type ZoomConfig struct {
	Min, Max float64
	// Step is the increment applied by ZoomIn and ZoomOut.
	Step float64
	// Ease is the duration, in seconds, of the visual transition to a new
	// zoom. Zero snaps immediately.
	Ease float32
}

// DefaultZoomConfig returns the stock zoom limits.
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{Min: 0.8, Max: 1.3, Step: 0.05, Ease: 0.12}
}

// CardZoom is the card's visual scale. Set clamps and is idempotent; the
// shown scale eases toward the target. It never touches simulation
// coordinates.
type CardZoom struct {
	cfg    ZoomConfig
	target float64
	shown  float64
	tween  *gween.Tween
}

// NewCardZoom creates a zoom at 1.0 (clamped into the configured range).
func NewCardZoom(cfg ZoomConfig) *CardZoom {
	if cfg.Min <= 0 || cfg.Max < cfg.Min {
		d := DefaultZoomConfig()
		cfg.Min, cfg.Max = d.Min, d.Max
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultZoomConfig().Step
	}
	z := &CardZoom{cfg: cfg}
	z.target = z.clamp(1)
	z.shown = z.target
	return z
}

func (z *CardZoom) clamp(v float64) float64 {
	v = math.Max(z.cfg.Min, math.Min(z.cfg.Max, v))
	// Keep repeated steps from accumulating float error.
	return math.Round(v*1e6) / 1e6
}

// Set clamps v into [Min, Max] and makes it the target. It returns the
// resulting target. NaN is ignored.
func (z *CardZoom) Set(v float64) float64 {
	if math.IsNaN(v) {
		return z.target
	}
	v = z.clamp(v)
	if v == z.target {
		return v
	}
	z.target = v
	if z.cfg.Ease <= 0 {
		z.shown = v
		z.tween = nil
		return v
	}
	z.tween = gween.New(float32(z.shown), float32(v), z.cfg.Ease, ease.OutQuad)
	return v
}

// ZoomIn increases the target by one step.
func (z *CardZoom) ZoomIn() float64 {
	return z.Set(z.target + z.cfg.Step)
}

// ZoomOut decreases the target by one step.
func (z *CardZoom) ZoomOut() float64 {
	return z.Set(z.target - z.cfg.Step)
}

// Scale returns the target zoom.
func (z *CardZoom) Scale() float64 {
	return z.target
}

// Shown returns the zoom currently on screen, which lags Scale while easing.
func (z *CardZoom) Shown() float64 {
	return z.shown
}

// Update advances the easing by dt seconds.
func (z *CardZoom) Update(dt float32) {
	if z.tween == nil {
		return
	}
	val, finished := z.tween.Update(dt)
	z.shown = float64(val)
	if finished {
		z.shown = z.target
		z.tween = nil
	}
}
