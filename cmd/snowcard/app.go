package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/phanxgames/snowfall"
	"github.com/phanxgames/snowfall/capture"
	"github.com/phanxgames/snowfall/internal/config"
	"github.com/phanxgames/snowfall/internal/logging"
)

// loadCard returns the configured artwork or a placeholder.
func loadCard(cfg *config.Config) (*snowfall.Card, error) {
	if cfg.Card.Path == "" {
		return snowfall.NewCard(snowfall.PlaceholderArt(600, 400), cfg.Zoom()), nil
	}
	return snowfall.LoadCard(cfg.Card.Path, cfg.Zoom())
}

// newPipeline builds the export pipeline shared by the window and the
// headless command.
func newPipeline(cfg *config.Config, card *snowfall.Card) *capture.Pipeline {
	lg := logging.For("capture")
	p := capture.NewPipeline(cfg.Capture())
	p.Capturer = capture.RasterCapturer{Scale: cfg.Export.Scale}
	if card != nil {
		p.Target = card
	}
	p.Encoder = &capture.FFmpegEncoder{Path: cfg.Export.FFmpeg, Bitrate: cfg.Export.Bitrate, Logger: lg}
	p.Downloader = capture.FileDownloader{Dir: cfg.Export.Dir, Logger: lg}
	p.Notifier = capture.LogNotifier{Logger: lg}
	p.Logger = lg
	return p
}

// heldControl is a control the caller already disabled; the pipeline gets
// the matching restore func.
type heldControl struct {
	restore func()
}

func (h heldControl) Disable(string) func() { return h.restore }

func runWindow(ctx context.Context, cfg *config.Config) error {
	card, err := loadCard(cfg)
	if err != nil {
		return err
	}
	d, err := snowfall.NewDriver(cfg.Driver(logging.For("driver")), card)
	if err != nil {
		return err
	}
	d.SetDebugMode(cfg.Debug.Timing)
	if cfg.Debug.Script != "" {
		data, err := os.ReadFile(cfg.Debug.Script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err := snowfall.LoadTestScript(data)
		if err != nil {
			return err
		}
		d.SetTestRunner(runner)
	}

	p := newPipeline(cfg, card)
	p.Notifier = d

	// Buttons are disabled on the frame loop before the export goroutine
	// starts so a second press is ignored.
	d.OnExportStill(func() {
		q := *p
		q.StillControl = heldControl{d.StillButton.Disable("Capturing...")}
		go q.ExportStill(ctx)
	})
	d.OnExportVideo(func() {
		q := *p
		q.VideoControl = heldControl{d.VideoButton.Disable(p.Config().RenderingLabel)}
		go q.ExportVideo(ctx)
	})

	log.Info().
		Str("strategy", cfg.Snow.Strategy).
		Str("reference", cfg.Snow.Reference).
		Bool("reduced_motion", cfg.Snow.ReducedMotion).
		Msg("starting")
	return snowfall.Run(d, snowfall.RunConfig{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Fixed:  cfg.Window.Fixed,
		TPS:    cfg.Window.TPS,
	})
}

func runExport(ctx context.Context, cfg *config.Config, kind string) error {
	card, err := loadCard(cfg)
	if err != nil {
		return err
	}
	p := newPipeline(cfg, card)
	switch kind {
	case "png":
		return p.ExportStill(ctx)
	case "video":
		return p.ExportVideo(ctx)
	default:
		return fmt.Errorf("unknown export %q: want png or video", kind)
	}
}
