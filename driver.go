package snowfall

import (
	"fmt"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Driver.
type State uint8

const (
	StateIdle     State = iota // constructed, not started
	StateRunning               // frames are simulated and drawn
	StateResizing              // a new size is pending; no simulation this tick
	StateStopped               // frames are no longer simulated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateResizing:
		return "resizing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Speed multiplier limits.
const (
	MinSpeed  = 0.1
	MaxSpeed  = 3.0
	SpeedStep = 0.1
)

// Reference selects what the snow is laid over.
type Reference uint8

const (
	ReferenceViewport Reference = iota // the whole window
	ReferenceCard                      // the card's on-screen rectangle
)

// ParseReference maps a config name to a Reference.
func ParseReference(name string) (Reference, error) {
	switch name {
	case "viewport", "":
		return ReferenceViewport, nil
	case "card":
		return ReferenceCard, nil
	default:
		return 0, fmt.Errorf("unknown sizing reference %q", name)
	}
}

// Config configures a Driver.
type Config struct {
	// Width and Height are the initial logical window size.
	Width, Height int
	Surface       SurfaceConfig
	// Field configures the live simulation. Its Width and Height are
	// replaced by the measured simulation size.
	Field     FieldConfig
	Reference Reference
	// Speed is the initial speed multiplier. Zero means 1.
	Speed float64
	// ReducedMotion disables the live snow. The card and exports still work.
	ReducedMotion bool
	ClearColor    Color
	ShowHUD       bool
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
	Logger        zerolog.Logger
}

// Driver is the animation driver. It implements ebiten.Game: Update handles
// input, zoom easing and pending resizes; Draw renders one frame, drawing
// every flake before advancing it.
type Driver struct {
	cfg      Config
	log      zerolog.Logger
	state    State
	field    *Field
	targets  *RenderTargets
	viewport *ViewportReference
	card     *Card
	speed    float64
	scale    float64
	hud      hud
	debug    bool
	frames   uint64

	// StillButton and VideoButton are the export controls.
	StillButton *Button
	VideoButton *Button

	onExportStill func()
	onExportVideo func()
	alerts        alertBox

	injectQueue     []Action
	runner          *TestRunner
	screenshotQueue []string

	// ScreenshotDir is the directory Screenshot writes into.
	ScreenshotDir string

	// deviceScale reports the monitor's device pixel ratio.
	deviceScale func() float64
	now         func() time.Time
}

// NewDriver builds the render targets and the live field. card may be nil
// unless the card is the sizing reference, in which case construction fails
// with ErrMissingReference.
func NewDriver(cfg Config, card *Card) (*Driver, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}

	d := &Driver{
		cfg:           cfg,
		log:           cfg.Logger,
		viewport:      &ViewportReference{},
		card:          card,
		scale:         1,
		StillButton:   NewButton("Download PNG"),
		VideoButton:   NewButton("Download video"),
		ScreenshotDir: cfg.ScreenshotDir,
		deviceScale:   monitorScale,
		now:           time.Now,
	}
	d.hud.visible = cfg.ShowHUD
	d.viewport.Set(float64(cfg.Width), float64(cfg.Height))
	d.SetSpeed(cfg.Speed)

	var ref SizeReference = d.viewport
	if cfg.Reference == ReferenceCard {
		if card == nil {
			return nil, fmt.Errorf("card reference: %w", ErrMissingReference)
		}
		ref = card
	}
	if card != nil {
		card.Layout(Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)})
	}

	targets, err := NewRenderTargets(cfg.Surface, ref)
	if err != nil {
		return nil, err
	}
	d.targets = targets

	fc := cfg.Field
	fc.Width, fc.Height = targets.SimSize()
	d.field = NewField(fc)
	return d, nil
}

// monitorScale returns the device scale of the current monitor.
func monitorScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// Start seeds the flakes if needed and begins simulating frames.
func (d *Driver) Start() {
	if d.state == StateRunning {
		return
	}
	if !d.cfg.ReducedMotion {
		d.field.Seed()
	} else {
		d.log.Info().Msg("reduced motion: snow disabled")
	}
	d.state = StateRunning
	d.log.Debug().Int("flakes", d.field.Len()).Str("strategy", d.targets.Strategy().String()).Msg("animation started")
}

// Stop stops simulating frames. Calling Stop again has no effect.
func (d *Driver) Stop() {
	if d.state == StateStopped {
		return
	}
	d.state = StateStopped
	d.log.Debug().Uint64("frames", d.frames).Msg("animation stopped")
}

// State returns the current lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Field returns the live simulation. Capture sessions must not use it.
func (d *Driver) Field() *Field {
	return d.field
}

// Targets returns the render targets.
func (d *Driver) Targets() *RenderTargets {
	return d.targets
}

// Card returns the card, or nil.
func (d *Driver) Card() *Card {
	return d.card
}

// Speed returns the speed multiplier.
func (d *Driver) Speed() float64 {
	return d.speed
}

// SetSpeed sets the speed multiplier applied to every flake's fall on the
// next frame. Values are clamped to [MinSpeed, MaxSpeed]; zero, NaN and
// infinities reset it to 1.
func (d *Driver) SetSpeed(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 1
	}
	d.speed = math.Round(math.Max(MinSpeed, math.Min(MaxSpeed, v))*100) / 100
	return d.speed
}

// Resize records a new logical window size. The driver enters
// StateResizing and rebuilds on the next Update.
func (d *Driver) Resize(w, h float64) {
	d.viewport.Set(w, h)
	if d.state == StateRunning {
		d.state = StateResizing
	}
}

// OnExportStill sets the hook run when the still export is requested.
func (d *Driver) OnExportStill(fn func()) {
	d.onExportStill = fn
}

// OnExportVideo sets the hook run when the video export is requested.
func (d *Driver) OnExportVideo(fn func()) {
	d.onExportVideo = fn
}

// Alert shows msg to the user on the overlay and logs it.
func (d *Driver) Alert(msg string) {
	d.alerts.set(msg, d.now())
	d.log.Warn().Str("alert", msg).Msg("user alert")
}

// SetDebugMode enables per-frame timing logs at debug level.
func (d *Driver) SetDebugMode(enabled bool) {
	d.debug = enabled
}

// Update implements ebiten.Game.
func (d *Driver) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))

	if d.runner != nil {
		d.runner.step(d)
	}
	if err := d.processInput(); err != nil {
		return err
	}

	vw, _ := d.viewport.Rect()
	if d.card != nil {
		d.card.zoom.Update(dt)
		d.card.Layout(vw)
	}
	d.hud.update(float64(dt))

	if d.state == StateRunning || d.state == StateResizing {
		if err := d.remeasure(); err != nil {
			return err
		}
	}
	return nil
}

// remeasure re-reads the sizing reference and resizes the simulation when
// its logical size changed.
func (d *Driver) remeasure() error {
	changed, err := d.targets.Measure(d.scale)
	if err != nil {
		return fmt.Errorf("remeasure: %w", err)
	}
	if changed || d.state == StateResizing {
		d.state = StateResizing
		w, h := d.targets.SimSize()
		d.field.Resize(w, h)
		d.log.Debug().Float64("width", w).Float64("height", h).Int("flakes", d.field.Len()).Msg("resized")
	}
	d.state = StateRunning
	return nil
}

// Draw implements ebiten.Game.
func (d *Driver) Draw(screen *ebiten.Image) {
	var stats frameStats
	var t0 time.Time
	if d.debug {
		t0 = time.Now()
	}

	screen.Fill(d.cfg.ClearColor.RGBA())
	if d.card != nil {
		d.card.drawTo(screen, d.scale)
	}

	if d.state == StateRunning && !d.cfg.ReducedMotion {
		target := d.targets.begin(screen)
		drawFlakes(target, d.field.Flakes(), d.targets.simPlacement())
		if d.debug {
			stats.drawTime = time.Since(t0)
			t0 = time.Now()
		}
		d.field.Step(d.speed)
		if d.debug {
			stats.stepTime = time.Since(t0)
			t0 = time.Now()
		}
		d.targets.drawFog(target)
		d.targets.present(screen)
		if d.debug {
			stats.presentTime = time.Since(t0)
		}
		d.frames++
	}

	d.hud.draw(screen, d)
	d.flushScreenshots(screen)

	if d.debug {
		stats.flakes = d.field.Len()
		d.debugLog(stats)
	}
}

// LayoutF implements ebiten.LayoutFer. The screen is allocated in device
// pixels so drawing stays crisp on high-density displays; everything else
// works in logical pixels.
func (d *Driver) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	s := d.deviceScale()
	if s <= 0 {
		s = 1
	}
	d.scale = s
	if vw, _ := d.viewport.Rect(); vw.Width != outsideWidth || vw.Height != outsideHeight {
		d.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth * s, outsideHeight * s
}

// Layout implements ebiten.Game. Ebiten prefers LayoutF when present.
func (d *Driver) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := d.LayoutF(float64(outsideWidth), float64(outsideHeight))
	return int(math.Ceil(w)), int(math.Ceil(h))
}
