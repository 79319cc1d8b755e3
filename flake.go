package snowfall

import (
	"math"
	"math/rand/v2"
)

// Flake is one snowflake. Positions are in simulation space.
type Flake struct {
	X, Y      float64
	Radius    int
	Color     RGB
	FallSpeed float64 // pixels per frame at speed multiplier 1
	Drift     float64 // signed horizontal pixels per frame, fixed for the flake's life
}

// FlakeConfig controls how flakes are generated.
type FlakeConfig struct {
	// MaxSize is the largest radius. Radii are integers in [1, MaxSize].
	MaxSize int
	// MaxSpeed bounds the fall speed: speeds are drawn from [1, MaxSpeed+1).
	MaxSpeed float64
	// DriftSpread is the width of the drift interval centred on zero.
	DriftSpread float64
	// SpawnBand is the vertical band above the top edge that respawned
	// flakes enter from. Both ends should be negative.
	SpawnBand Range
}

// Default flake parameters.
const (
	DefaultMaxFlakeSize  = 5
	DefaultMaxFlakeSpeed = 3
	DefaultDriftSpread   = 5
)

// DefaultFlakeConfig returns the stock flake parameters.
func DefaultFlakeConfig() FlakeConfig {
	return FlakeConfig{
		MaxSize:     DefaultMaxFlakeSize,
		MaxSpeed:    DefaultMaxFlakeSpeed,
		DriftSpread: DefaultDriftSpread,
		SpawnBand:   Range{Min: -100, Max: -50},
	}
}

func (c FlakeConfig) withDefaults() FlakeConfig {
	d := DefaultFlakeConfig()
	if c.MaxSize <= 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = d.MaxSpeed
	}
	if c.DriftSpread < 0 {
		c.DriftSpread = 0
	}
	if c.SpawnBand == (Range{}) {
		c.SpawnBand = d.SpawnBand
	}
	return c
}

// newFlake draws every field independently. On the first population the
// flake is scattered across the full height; afterwards it enters from the
// spawn band above the top edge so new flakes do not pop in mid-screen.
func newFlake(rng *rand.Rand, cfg FlakeConfig, width, height float64, first bool) Flake {
	f := Flake{
		X:         rng.Float64() * width,
		Radius:    rng.IntN(cfg.MaxSize) + 1,
		Color:     nearWhite(rng),
		FallSpeed: rng.Float64()*cfg.MaxSpeed + 1,
		Drift:     (rng.Float64() - 0.5) * cfg.DriftSpread,
	}
	if first {
		f.Y = rng.Float64() * height
	} else {
		f.Y = cfg.SpawnBand.Random(rng)
	}
	return f
}

// nearWhite returns a color with every channel in [250, 255).
func nearWhite(rng *rand.Rand) RGB {
	return RGB{
		R: uint8(250 + rng.IntN(5)),
		G: uint8(250 + rng.IntN(5)),
		B: uint8(250 + rng.IntN(5)),
	}
}

// DensityCount returns the number of flakes that keeps visual density constant
// for a width x height area.
func DensityCount(width, height, density float64) int {
	if width <= 0 || height <= 0 || density <= 0 {
		return 0
	}
	return int(math.Floor(width * height * density))
}

// newRand returns a PCG-backed generator. A zero seed picks a random one.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
