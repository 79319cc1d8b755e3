package snowfall

import "math/rand/v2"

// ExitPolicy decides what happens to a flake that falls past the bottom edge.
type ExitPolicy uint8

const (
	// ExitRespawn overwrites the flake in place with a fresh one entering
	// from above the top edge. The flake count never changes.
	ExitRespawn ExitPolicy = iota
	// ExitDrop removes the flake. It is not replaced until the next Resize
	// or Reset.
	ExitDrop
)

// DefaultDensity is the number of flakes per square pixel of simulation area.
const DefaultDensity = 0.000157

// FieldConfig describes a simulation field.
type FieldConfig struct {
	// Width and Height are the simulation bounds in logical pixels.
	Width, Height float64
	// Density sizes the flake set as floor(Width*Height*Density).
	Density float64
	// Count, when positive, fixes the flake count and ignores Density.
	Count int
	// Flake controls how individual flakes are drawn at random.
	Flake FlakeConfig
	// Wrap enables toroidal horizontal topology.
	Wrap bool
	// Exit selects the bottom edge policy.
	Exit ExitPolicy
	// Seed seeds the field's random source. Zero picks a random seed.
	Seed uint64
}

// Field is one simulation session: bounds, a flake set sized by density, and
// the random source that feeds it. A Field is not safe for concurrent use;
// the live animation and each capture session own separate Fields.
type Field struct {
	cfg    FieldConfig
	rng    *rand.Rand
	flakes []Flake
	width  float64
	height float64
	seeded bool
	first  bool
}

// NewField creates an unseeded field. Call Seed before the first Step.
func NewField(cfg FieldConfig) *Field {
	if cfg.Density <= 0 && cfg.Count <= 0 {
		cfg.Density = DefaultDensity
	}
	cfg.Flake = cfg.Flake.withDefaults()
	f := &Field{
		cfg:    cfg,
		rng:    newRand(cfg.Seed),
		width:  cfg.Width,
		height: cfg.Height,
		first:  true,
	}
	f.flakes = make([]Flake, 0, f.target())
	return f
}

// target is the flake count the current bounds call for.
func (f *Field) target() int {
	if f.cfg.Count > 0 {
		return f.cfg.Count
	}
	return DensityCount(f.width, f.height, f.cfg.Density)
}

// Seed populates the field, scattering flakes across the full height.
// No-op if the field is already seeded.
func (f *Field) Seed() {
	if f.seeded {
		return
	}
	f.first = true
	f.grow(f.target())
	f.seeded = true
}

// Seeded reports whether the initial population has been created.
func (f *Field) Seeded() bool {
	return f.seeded
}

// Reset removes every flake. The next Seed repopulates from scratch.
func (f *Field) Reset() {
	f.flakes = f.flakes[:0]
	f.seeded = false
	f.first = true
}

// Resize changes the simulation bounds. Flakes that lie outside the new
// bounds are discarded rather than rescaled, then the set grows or shrinks
// to the density target. Added flakes are scattered over the full height.
func (f *Field) Resize(width, height float64) {
	f.width = width
	f.height = height
	f.first = true

	kept := f.flakes[:0]
	for _, fl := range f.flakes {
		if fl.X > width || fl.Y > height {
			continue
		}
		kept = append(kept, fl)
	}
	f.flakes = kept

	n := f.target()
	if len(f.flakes) > n {
		f.flakes = f.flakes[:n]
		return
	}
	if f.seeded {
		f.grow(n)
	}
}

// grow appends flakes until the set holds n.
func (f *Field) grow(n int) {
	for len(f.flakes) < n {
		f.flakes = append(f.flakes, newFlake(f.rng, f.cfg.Flake, f.width, f.height, f.first))
	}
}

// Advance moves flake i by one frame. speed scales the fall for this call
// only. It reports whether the flake crossed the bottom edge; under
// ExitRespawn the slot has already been refilled when it returns.
func (f *Field) Advance(i int, speed float64) bool {
	fl := &f.flakes[i]
	fl.Y += fl.FallSpeed * speed
	fl.X += fl.Drift

	if f.cfg.Wrap {
		if fl.X < 0 {
			fl.X = f.width
		} else if fl.X > f.width {
			fl.X = 0
		}
	}

	if fl.Y <= f.height {
		return false
	}
	if f.cfg.Exit == ExitRespawn {
		*fl = newFlake(f.rng, f.cfg.Flake, f.width, f.height, false)
	}
	return true
}

// Step advances every flake once.
func (f *Field) Step(speed float64) {
	i := 0
	for i < len(f.flakes) {
		if f.Advance(i, speed) && f.cfg.Exit == ExitDrop {
			last := len(f.flakes) - 1
			f.flakes[i] = f.flakes[last]
			f.flakes = f.flakes[:last]
			continue
		}
		i++
	}
	f.first = false
}

// Len returns the number of live flakes.
func (f *Field) Len() int {
	return len(f.flakes)
}

// Flakes returns the live flakes. The slice is owned by the field and MUST
// NOT be retained across frames or mutated.
func (f *Field) Flakes() []Flake {
	return f.flakes
}

// Bounds returns the current simulation size.
func (f *Field) Bounds() (width, height float64) {
	return f.width, f.height
}

// Config returns a copy of the field's configuration.
func (f *Field) Config() FieldConfig {
	return f.cfg
}
