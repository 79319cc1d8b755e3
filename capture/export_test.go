package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type solidElement struct {
	w, h int
	c    color.RGBA
}

func (e solidElement) Bounds() image.Rectangle { return image.Rect(0, 0, e.w, e.h) }

func (e solidElement) Draw(dst draw.Image, r image.Rectangle) {
	draw.Draw(dst, r, image.NewUniform(e.c), image.Point{}, draw.Src)
}

type fakeDownloader struct {
	mu        sync.Mutex
	artifacts []Artifact
	err       error
}

func (d *fakeDownloader) Download(_ context.Context, a Artifact) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.artifacts = append(d.artifacts, a)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) Alert(msg string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

type fakeControl struct {
	mu       sync.Mutex
	label    string
	disabled bool
	calls    int
}

func (c *fakeControl) Disable(label string) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.label
	c.label = label
	c.disabled = true
	c.calls++
	return func() {
		c.mu.Lock()
		c.label = prev
		c.disabled = false
		c.mu.Unlock()
	}
}

func (c *fakeControl) state() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label, c.disabled
}

type fakeEncoder struct {
	supported  map[Codec]bool
	newErr     error
	stopErr    error
	gotCodec   Codec
	frameSizes []image.Point
	mu         sync.Mutex
}

func (e *fakeEncoder) IsTypeSupported(c Codec) bool { return e.supported[c] }

func (e *fakeEncoder) NewRecorder(ctx context.Context, s *Stream, c Codec, onData func([]byte)) (Recorder, error) {
	e.gotCodec = c
	if e.newErr != nil {
		return nil, e.newErr
	}
	return &fakeRecorder{enc: e, ctx: ctx, stream: s, onData: onData}, nil
}

type fakeRecorder struct {
	enc    *fakeEncoder
	ctx    context.Context
	stream *Stream
	onData func([]byte)
	done   chan struct{}
}

func (r *fakeRecorder) Start() error {
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		r.stream.Run(r.ctx, func(f *image.RGBA) error {
			r.enc.mu.Lock()
			r.enc.frameSizes = append(r.enc.frameSizes, f.Bounds().Size())
			r.enc.mu.Unlock()
			r.onData([]byte{0x1a})
			return nil
		})
	}()
	return nil
}

func (r *fakeRecorder) Stop() error {
	r.stream.Close()
	<-r.done
	return r.enc.stopErr
}

func newTestPipeline(cfg Config) (*Pipeline, *fakeDownloader, *fakeNotifier, *fakeControl, *fakeControl) {
	dl := &fakeDownloader{}
	n := &fakeNotifier{}
	still := &fakeControl{label: "Download PNG"}
	video := &fakeControl{label: "Download video"}
	p := NewPipeline(cfg)
	p.Capturer = RasterCapturer{}
	p.Target = solidElement{w: 64, h: 48, c: color.RGBA{R: 200, A: 255}}
	p.Downloader = dl
	p.Notifier = n
	p.StillControl = still
	p.VideoControl = video
	p.Logger = zerolog.Nop()
	return p, dl, n, still, video
}

func shortConfig() Config {
	cfg := DefaultConfig()
	cfg.Duration = 300 * time.Millisecond
	cfg.Seed = 7
	return cfg
}

// --- still ---

func TestExportStillWritesPNG(t *testing.T) {
	p, dl, n, still, _ := newTestPipeline(DefaultConfig())

	require.NoError(t, p.ExportStill(context.Background()))
	require.Len(t, dl.artifacts, 1)
	a := dl.artifacts[0]
	assert.Equal(t, "christmas-card.png", a.Name)
	assert.Equal(t, "image/png", a.MIME)

	img, err := png.Decode(bytes.NewReader(a.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(64, 48), img.Bounds().Size())
	assert.Empty(t, n.msgs)

	label, disabled := still.state()
	assert.Equal(t, "Download PNG", label)
	assert.False(t, disabled)
	assert.Equal(t, 1, still.calls)
}

func TestExportStillScale(t *testing.T) {
	p, dl, _, _, _ := newTestPipeline(DefaultConfig())
	p.Capturer = RasterCapturer{Scale: 2}

	require.NoError(t, p.ExportStill(context.Background()))
	require.Len(t, dl.artifacts, 1)
	assert.Equal(t, 128, dl.artifacts[0].Width)
	assert.Equal(t, 96, dl.artifacts[0].Height)
}

func TestExportStillWithoutCapturer(t *testing.T) {
	p, dl, n, still, _ := newTestPipeline(DefaultConfig())
	p.Capturer = nil

	err := p.ExportStill(context.Background())
	require.ErrorIs(t, err, ErrCaptureUnavailable)
	assert.Empty(t, dl.artifacts)
	assert.Len(t, n.msgs, 1)
	_, disabled := still.state()
	assert.False(t, disabled)
}

func TestExportStillWithoutTarget(t *testing.T) {
	p, dl, n, _, _ := newTestPipeline(DefaultConfig())
	p.Target = nil

	err := p.ExportStill(context.Background())
	require.ErrorIs(t, err, ErrTargetMissing)
	assert.Empty(t, dl.artifacts)
	assert.Equal(t, []string{msgTargetMissing}, n.msgs)
}

func TestExportStillDownloadFailure(t *testing.T) {
	p, dl, n, still, _ := newTestPipeline(DefaultConfig())
	dl.err = errors.New("disk full")

	require.Error(t, p.ExportStill(context.Background()))
	assert.Equal(t, []string{msgStillFailed}, n.msgs)
	_, disabled := still.state()
	assert.False(t, disabled)
}

type panickingElement struct{ solidElement }

func (panickingElement) Draw(draw.Image, image.Rectangle) { panic("boom") }

func TestExportStillRecoversPanic(t *testing.T) {
	p, dl, n, still, _ := newTestPipeline(DefaultConfig())
	p.Target = panickingElement{solidElement{w: 10, h: 10}}

	require.Error(t, p.ExportStill(context.Background()))
	assert.Empty(t, dl.artifacts)
	assert.Equal(t, []string{msgStillFailed}, n.msgs)
	_, disabled := still.state()
	assert.False(t, disabled)
}

// --- video ---

func TestExportVideoEndToEnd(t *testing.T) {
	p, dl, n, _, video := newTestPipeline(shortConfig())
	enc := &fakeEncoder{supported: map[Codec]bool{CodecVP9: true, CodecVP8: true}}
	p.Encoder = enc

	require.NoError(t, p.ExportVideo(context.Background()))
	require.Len(t, dl.artifacts, 1)
	a := dl.artifacts[0]
	assert.Equal(t, "christmas-card.webm", a.Name)
	assert.Equal(t, "video/webm", a.MIME)
	assert.Equal(t, 64, a.Width)
	assert.Equal(t, 48, a.Height)
	assert.Equal(t, CodecVP9, enc.gotCodec)
	assert.Empty(t, n.msgs)

	// 300ms at 30fps is about 9 samples; allow for scheduler jitter.
	assert.GreaterOrEqual(t, a.Frames, 4)
	assert.LessOrEqual(t, a.Frames, 12)
	assert.Len(t, a.Data, a.Frames)
	for _, sz := range enc.frameSizes {
		assert.Equal(t, image.Pt(64, 48), sz)
	}

	label, disabled := video.state()
	assert.Equal(t, "Download video", label)
	assert.False(t, disabled)
}

func TestExportVideoOddSizeMatchesBackground(t *testing.T) {
	p, dl, _, _, _ := newTestPipeline(shortConfig())
	p.Target = solidElement{w: 61, h: 41, c: color.RGBA{G: 90, A: 255}}
	enc := &fakeEncoder{supported: map[Codec]bool{CodecVP9: true}}
	p.Encoder = enc

	require.NoError(t, p.ExportVideo(context.Background()))
	require.Len(t, dl.artifacts, 1)
	assert.Equal(t, 61, dl.artifacts[0].Width)
	assert.Equal(t, 41, dl.artifacts[0].Height)
	require.NotEmpty(t, enc.frameSizes)
	for _, sz := range enc.frameSizes {
		assert.Equal(t, image.Pt(61, 41), sz)
	}
}

func TestExportVideoShowsRenderingLabel(t *testing.T) {
	p, _, _, _, video := newTestPipeline(shortConfig())
	enc := &fakeEncoder{supported: map[Codec]bool{CodecVP9: true}}
	p.Encoder = enc

	done := make(chan error, 1)
	go func() { done <- p.ExportVideo(context.Background()) }()

	require.Eventually(t, func() bool {
		label, disabled := video.state()
		return disabled && label == "Rendering..."
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, <-done)
	_, disabled := video.state()
	assert.False(t, disabled)
}

func TestExportVideoCodecFallback(t *testing.T) {
	p, dl, _, _, _ := newTestPipeline(shortConfig())
	enc := &fakeEncoder{supported: map[Codec]bool{CodecVP8: true}}
	p.Encoder = enc

	require.NoError(t, p.ExportVideo(context.Background()))
	assert.Equal(t, CodecVP8, enc.gotCodec)
	assert.Len(t, dl.artifacts, 1)
}

func TestExportVideoRecorderConstructionFails(t *testing.T) {
	p, dl, n, _, video := newTestPipeline(shortConfig())
	p.Encoder = &fakeEncoder{newErr: errors.New("no vp8 either")}

	err := p.ExportVideo(context.Background())
	require.ErrorIs(t, err, ErrRecorderUnavailable)
	assert.Empty(t, dl.artifacts)
	assert.Equal(t, []string{msgRecorderFailed}, n.msgs)
	_, disabled := video.state()
	assert.False(t, disabled)
}

func TestExportVideoWithoutEncoder(t *testing.T) {
	p, dl, n, _, _ := newTestPipeline(shortConfig())

	require.ErrorIs(t, p.ExportVideo(context.Background()), ErrRecorderUnavailable)
	assert.Empty(t, dl.artifacts)
	assert.Len(t, n.msgs, 1)
}

func TestExportVideoWithoutTarget(t *testing.T) {
	p, _, n, _, _ := newTestPipeline(shortConfig())
	p.Target = nil
	p.Encoder = &fakeEncoder{supported: map[Codec]bool{CodecVP9: true}}

	require.ErrorIs(t, p.ExportVideo(context.Background()), ErrTargetMissing)
	assert.Equal(t, []string{msgTargetMissing}, n.msgs)
}

func TestExportsAgreeWhenCaptureAndTargetMissing(t *testing.T) {
	p, dl, n, _, _ := newTestPipeline(shortConfig())
	p.Capturer = nil
	p.Target = nil
	p.Encoder = &fakeEncoder{supported: map[Codec]bool{CodecVP9: true}}

	require.ErrorIs(t, p.ExportStill(context.Background()), ErrCaptureUnavailable)
	require.ErrorIs(t, p.ExportVideo(context.Background()), ErrCaptureUnavailable)
	assert.Empty(t, dl.artifacts)
	assert.Equal(t, []string{msgCaptureUnavailable, msgCaptureUnavailable}, n.msgs)
}

func TestExportVideoStopFailure(t *testing.T) {
	p, dl, n, _, video := newTestPipeline(shortConfig())
	p.Encoder = &fakeEncoder{
		supported: map[Codec]bool{CodecVP9: true},
		stopErr:   errors.New("encoder crashed"),
	}

	require.Error(t, p.ExportVideo(context.Background()))
	assert.Empty(t, dl.artifacts)
	assert.Equal(t, []string{msgVideoFailed}, n.msgs)
	_, disabled := video.state()
	assert.False(t, disabled)
}

func TestExportVideoCancelled(t *testing.T) {
	p, dl, _, _, video := newTestPipeline(DefaultConfig())
	p.Encoder = &fakeEncoder{supported: map[Codec]bool{CodecVP9: true}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := p.ExportVideo(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, dl.artifacts)
	_, disabled := video.state()
	assert.False(t, disabled)
}

func TestSessionFieldIsIsolated(t *testing.T) {
	cfg := shortConfig().withDefaults()
	bg := image.NewRGBA(image.Rect(0, 0, 320, 200))
	s := newSession(cfg, bg)

	assert.Equal(t, 200, s.field.Len())
	assert.True(t, s.field.Config().Wrap)
	for _, f := range s.field.Flakes() {
		assert.GreaterOrEqual(t, f.X, 0.0)
		assert.Less(t, f.X, 320.0)
	}

	s.drawFrame()
	assert.Equal(t, 1, s.stream.Published())
	assert.Equal(t, 200, s.field.Len())
}

func TestPickCodec(t *testing.T) {
	c, err := pickCodec(&fakeEncoder{supported: map[Codec]bool{CodecVP9: true}}, []Codec{CodecVP9, CodecVP8})
	require.NoError(t, err)
	assert.Equal(t, CodecVP9, c)

	c, err = pickCodec(&fakeEncoder{}, []Codec{CodecVP9, CodecVP8})
	require.NoError(t, err)
	assert.Equal(t, CodecVP8, c)

	_, err = pickCodec(&fakeEncoder{}, nil)
	require.ErrorIs(t, err, ErrNoSupportedCodec)
}

func TestCodecMIME(t *testing.T) {
	assert.Equal(t, "video/webm", CodecVP9.MIME())
	assert.Equal(t, "video/mp4", Codec("video/mp4").MIME())
}
