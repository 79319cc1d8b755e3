package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/snowfall"
)

// ExportStill captures the card and delivers it as a PNG. Every failure is
// logged and reported to the Notifier once; the still control is restored
// on every path.
func (p *Pipeline) ExportStill(ctx context.Context) (err error) {
	restore := disable(p.StillControl, "Capturing...")
	defer restore()

	log := p.sessionLogger("still")
	defer func() {
		if err != nil && !isReported(err) {
			log.Error().Err(err).Msg("still export failed")
			p.alert(msgStillFailed)
		}
	}()
	defer recoverExport(log, &err)

	img, err := p.captureBackground(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	a := Artifact{
		Name:   p.cfg.StillName,
		MIME:   "image/png",
		Data:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Frames: 1,
	}
	if err := p.download(ctx, a); err != nil {
		return err
	}
	log.Info().Str("file", a.Name).Int("width", a.Width).Int("height", a.Height).Msg("still exported")
	return nil
}

// ExportVideo captures the card once, records the configured duration of
// an isolated snowfall over it and delivers the result as WebM. The video
// control shows the rendering label until the session ends, on every path.
func (p *Pipeline) ExportVideo(ctx context.Context) (err error) {
	restore := disable(p.VideoControl, p.cfg.RenderingLabel)
	defer restore()

	log := p.sessionLogger("video")
	defer func() {
		if err != nil && !isReported(err) {
			log.Error().Err(err).Msg("video export failed")
			p.alert(msgVideoFailed)
		}
	}()
	defer recoverExport(log, &err)

	bg, err := p.captureBackground(ctx)
	if err != nil {
		return err
	}
	if p.Encoder == nil {
		p.alert(msgRecorderFailed)
		return reported(ErrRecorderUnavailable)
	}
	codec, err := pickCodec(p.Encoder, p.cfg.Codecs)
	if err != nil {
		p.alert(msgRecorderFailed)
		return reported(err)
	}

	s := newSession(p.cfg, bg)
	var (
		mu   sync.Mutex
		data bytes.Buffer
	)
	rec, err := p.Encoder.NewRecorder(ctx, s.stream, codec, func(chunk []byte) {
		if len(chunk) == 0 {
			return
		}
		mu.Lock()
		data.Write(chunk)
		mu.Unlock()
	})
	if err != nil {
		log.Error().Err(err).Str("codec", string(codec)).Msg("recorder construction failed")
		p.alert(msgRecorderFailed)
		return reported(fmt.Errorf("%w: %v", ErrRecorderUnavailable, err))
	}
	if err := rec.Start(); err != nil {
		return fmt.Errorf("start recorder: %w", err)
	}
	log.Info().
		Str("codec", string(codec)).
		Int("width", s.width()).
		Int("height", s.height()).
		Dur("duration", p.cfg.Duration).
		Msg("recording")

	started := time.Now()
	loopErr := s.record(ctx, p.cfg.Duration)
	stopErr := rec.Stop()
	if loopErr != nil {
		return fmt.Errorf("capture loop: %w", loopErr)
	}
	if stopErr != nil {
		return fmt.Errorf("stop recorder: %w", stopErr)
	}

	mu.Lock()
	blob := bytes.Clone(data.Bytes())
	mu.Unlock()

	frames := s.stream.Sampled()
	a := Artifact{
		Name:     p.cfg.VideoName,
		MIME:     codec.MIME(),
		Data:     blob,
		Width:    s.width(),
		Height:   s.height(),
		Frames:   frames,
		Duration: time.Duration(frames) * s.stream.Interval(),
	}
	if err := p.download(ctx, a); err != nil {
		return err
	}
	log.Info().
		Str("file", a.Name).
		Int("frames", a.Frames).
		Int("bytes", len(a.Data)).
		Dur("elapsed", time.Since(started)).
		Msg("video exported")
	return nil
}

func (p *Pipeline) download(ctx context.Context, a Artifact) error {
	if p.Downloader == nil {
		return errors.New("no downloader configured")
	}
	if err := p.Downloader.Download(ctx, a); err != nil {
		return fmt.Errorf("download %s: %w", a.Name, err)
	}
	return nil
}

// session is the private state of one video export: the captured
// background, an offscreen surface of the same size and a flake set that
// shares nothing with the on-screen field.
type session struct {
	bg      *image.RGBA
	surface *image.RGBA
	field   *snowfall.Field
	paint   painter
	fog     bool
	stream  *Stream
	frames  int
}

func newSession(cfg Config, bg *image.RGBA) *session {
	b := bg.Bounds()
	field := snowfall.NewField(snowfall.FieldConfig{
		Width:  float64(b.Dx()),
		Height: float64(b.Dy()),
		Count:  cfg.FlakeCount,
		Flake:  cfg.Flake,
		Wrap:   true,
		Seed:   cfg.Seed,
	})
	field.Seed()
	return &session{
		bg:      bg,
		surface: image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy())),
		field:   field,
		fog:     cfg.Fog,
		stream:  NewStream(b.Dx(), b.Dy(), cfg.FPS),
	}
}

func (s *session) width() int  { return s.surface.Rect.Dx() }
func (s *session) height() int { return s.surface.Rect.Dy() }

// drawFrame clears the surface, draws the background and every flake,
// advances the flakes and publishes the frame.
func (s *session) drawFrame() {
	r := s.surface.Bounds()
	xdraw.Draw(s.surface, r, image.Transparent, image.Point{}, xdraw.Src)
	xdraw.Draw(s.surface, r, s.bg, s.bg.Bounds().Min, xdraw.Over)
	s.paint.drawFlakes(s.surface, s.field.Flakes())
	s.field.Step(1)
	if s.fog {
		s.paint.drawFog(s.surface)
	}
	s.stream.Publish(s.surface)
	s.frames++
}

// record runs the capture loop at the stream rate until d elapses. The
// loop and the stop timer run in one errgroup so a loop failure ends the
// session early.
func (s *session) record(ctx context.Context, d time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			close(done)
			return nil
		case <-gctx.Done():
			return nil
		}
	})
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		t := time.NewTicker(s.stream.Interval())
		defer t.Stop()
		s.drawFrame()
		for {
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			case <-t.C:
				s.drawFrame()
			}
		}
	})
	return g.Wait()
}

// reportedError marks an error the user has already been alerted about.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error { return reportedError{err} }

// isReported reports whether the user has already seen an alert for err.
func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// recoverExport turns a panic into an error. It runs before the alerting
// defer so a panic is still reported once.
func recoverExport(log zerolog.Logger, err *error) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Msg("export panicked")
		*err = fmt.Errorf("export panic: %v", r)
	}
}
