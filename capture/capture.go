// Package capture exports the greeting card as a still PNG or as a short
// video of the card with its own, isolated snowfall drawn over it.
package capture

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/phanxgames/snowfall"
)

var (
	// ErrCaptureUnavailable means no Capturer was configured.
	ErrCaptureUnavailable = errors.New("capture: bitmap capture is not available")
	// ErrTargetMissing means there is no element to capture.
	ErrTargetMissing = errors.New("capture: target element not found")
	// ErrRecorderUnavailable means no recorder could be constructed.
	ErrRecorderUnavailable = errors.New("capture: video recording is not supported")
	// ErrNoSupportedCodec means the encoder accepts none of the candidates.
	ErrNoSupportedCodec = errors.New("capture: no supported codec")
)

// User-visible messages.
const (
	msgCaptureUnavailable = "Capture is not available."
	msgTargetMissing      = "Card element not found."
	msgRecorderFailed     = "Video recording is not supported on this system."
	msgStillFailed        = "Failed to export image (see console)."
	msgVideoFailed        = "Failed to create video (see console)."
)

// Element is a capture target: something that can paint itself.
type Element interface {
	// Bounds returns the element's natural size, anchored at the origin.
	Bounds() image.Rectangle
	// Draw paints the element into r of dst.
	Draw(dst draw.Image, r image.Rectangle)
}

// Capturer turns an Element into a bitmap matching its rendered appearance.
type Capturer interface {
	Capture(ctx context.Context, el Element) (*image.RGBA, error)
}

// Notifier shows a message to the user.
type Notifier interface {
	Alert(msg string)
}

// Control is a UI control that is disabled while an export runs.
type Control interface {
	Disable(label string) (restore func())
}

// Downloader hands a finished artifact to the user.
type Downloader interface {
	Download(ctx context.Context, a Artifact) error
}

// Artifact is one exported file.
type Artifact struct {
	Name     string
	MIME     string
	Data     []byte
	Width    int
	Height   int
	Frames   int
	Duration time.Duration
}

// Config tunes the exports.
type Config struct {
	StillName string
	VideoName string
	// FPS is both the capture loop rate and the stream sampling rate.
	FPS int
	// Duration is how long the video records.
	Duration time.Duration
	// Codecs lists candidate encodings in order of preference.
	Codecs []Codec
	// FlakeCount is the size of the isolated flake set.
	FlakeCount int
	Flake      snowfall.FlakeConfig
	// Fog composites the fog band over every video frame.
	Fog bool
	// Seed seeds the isolated simulation. Zero picks a random seed.
	Seed uint64
	// RenderingLabel is shown on the video control while recording.
	RenderingLabel string
}

// DefaultConfig returns the stock export settings: 5 s at 30 fps, vp9 with
// a vp8 fallback, 200 flakes.
func DefaultConfig() Config {
	return Config{
		StillName:  "christmas-card.png",
		VideoName:  "christmas-card.webm",
		FPS:        30,
		Duration:   5000 * time.Millisecond,
		Codecs:     []Codec{CodecVP9, CodecVP8},
		FlakeCount: 200,
		Flake: snowfall.FlakeConfig{
			MaxSize:     snowfall.DefaultMaxFlakeSize,
			MaxSpeed:    snowfall.DefaultMaxFlakeSpeed,
			DriftSpread: 2.5,
			SpawnBand:   snowfall.Range{Min: -20, Max: -20},
		},
		RenderingLabel: "Rendering...",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StillName == "" {
		c.StillName = d.StillName
	}
	if c.VideoName == "" {
		c.VideoName = d.VideoName
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.Duration <= 0 {
		c.Duration = d.Duration
	}
	if len(c.Codecs) == 0 {
		c.Codecs = d.Codecs
	}
	if c.FlakeCount <= 0 {
		c.FlakeCount = d.FlakeCount
	}
	if c.Flake == (snowfall.FlakeConfig{}) {
		c.Flake = d.Flake
	}
	if c.RenderingLabel == "" {
		c.RenderingLabel = d.RenderingLabel
	}
	return c
}

// Pipeline runs exports. Each call is an independent capture session; the
// pipeline holds no per-export state.
type Pipeline struct {
	cfg Config

	Capturer     Capturer
	Target       Element
	Encoder      Encoder
	Downloader   Downloader
	Notifier     Notifier
	StillControl Control
	VideoControl Control
	Logger       zerolog.Logger
}

// NewPipeline creates a pipeline with cfg; zero fields take defaults.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// sessionLogger tags every line of one export with a fresh session id.
func (p *Pipeline) sessionLogger(kind string) zerolog.Logger {
	return p.Logger.With().Str("session", uuid.NewString()).Str("export", kind).Logger()
}

func (p *Pipeline) alert(msg string) {
	if p.Notifier != nil {
		p.Notifier.Alert(msg)
	}
}

// disable disables c if set and returns the matching restore func.
func disable(c Control, label string) func() {
	if c == nil {
		return func() {}
	}
	return c.Disable(label)
}

// captureBackground snapshots the target, reporting missing collaborators
// to the user.
func (p *Pipeline) captureBackground(ctx context.Context) (*image.RGBA, error) {
	if p.Capturer == nil {
		p.alert(msgCaptureUnavailable)
		return nil, reported(ErrCaptureUnavailable)
	}
	if p.Target == nil {
		p.alert(msgTargetMissing)
		return nil, reported(ErrTargetMissing)
	}
	return p.Capturer.Capture(ctx, p.Target)
}

// RasterCapturer paints an Element into a fresh RGBA bitmap.
type RasterCapturer struct {
	// Scale multiplies the element's natural size. Zero means 1.
	Scale float64
}

// Capture implements Capturer.
func (c RasterCapturer) Capture(ctx context.Context, el Element) (*image.RGBA, error) {
	if el == nil {
		return nil, ErrTargetMissing
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := c.Scale
	if s <= 0 {
		s = 1
	}
	b := el.Bounds()
	w := int(math.Round(float64(b.Dx()) * s))
	h := int(math.Round(float64(b.Dy()) * s))
	if w <= 0 || h <= 0 {
		return nil, ErrTargetMissing
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	el.Draw(dst, dst.Bounds())
	return dst, nil
}
