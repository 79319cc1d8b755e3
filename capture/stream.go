package capture

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"
)

// framePool recycles RGBA frames keyed by exact dimensions. After warmup,
// acquire/release are zero-alloc.
type framePool struct {
	buckets map[uint64][]*image.RGBA
}

func frameKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// acquire returns a frame of exactly (w, h). Contents are undefined; callers
// overwrite every pixel.
func (p *framePool) acquire(w, h int) *image.RGBA {
	key := frameKey(w, h)
	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			return img
		}
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func (p *framePool) release(img *image.RGBA) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*image.RGBA)
	}
	key := frameKey(b.Dx(), b.Dy())
	p.buckets[key] = append(p.buckets[key], img)
}

// Stream carries frames from the capture loop to a recorder at a fixed
// rate. It holds only the latest published frame: the sampler emits
// whatever is newest on each tick and repeats the previous frame when
// nothing new arrived, so the output has a constant frame rate.
type Stream struct {
	w, h int
	fps  int

	mu     sync.Mutex
	latest *image.RGBA
	out    *image.RGBA
	pool   framePool

	closed    chan struct{}
	closeOnce sync.Once
	published atomic.Int64
	sampled   atomic.Int64
}

// NewStream creates a stream of w×h frames sampled at fps.
func NewStream(w, h, fps int) *Stream {
	if fps <= 0 {
		fps = 30
	}
	return &Stream{w: w, h: h, fps: fps, closed: make(chan struct{})}
}

// Size returns the frame dimensions.
func (s *Stream) Size() (w, h int) { return s.w, s.h }

// FPS returns the sampling rate.
func (s *Stream) FPS() int { return s.fps }

// Interval is the time between two samples.
func (s *Stream) Interval() time.Duration {
	return time.Second / time.Duration(s.fps)
}

// Publish copies src into the stream as its newest frame. Frames of the
// wrong size are ignored.
func (s *Stream) Publish(src *image.RGBA) {
	b := src.Bounds()
	if b.Dx() != s.w || b.Dy() != s.h {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := s.pool.acquire(s.w, s.h)
	copyRGBA(frame, src)
	s.pool.release(s.latest)
	s.latest = frame
	s.published.Add(1)
}

// sample copies the newest frame into the sampler-owned buffer. It returns
// nil before the first Publish.
func (s *Stream) sample() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil
	}
	if s.out == nil {
		s.out = image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	}
	copyRGBA(s.out, s.latest)
	return s.out
}

// Run calls emit with one frame per tick until the stream is closed or ctx
// is done. The frame passed to emit is reused on the next tick.
func (s *Stream) Run(ctx context.Context, emit func(frame *image.RGBA) error) error {
	t := time.NewTicker(s.Interval())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return nil
		case <-t.C:
			frame := s.sample()
			if frame == nil {
				continue
			}
			if err := emit(frame); err != nil {
				return err
			}
			s.sampled.Add(1)
		}
	}
}

// Close ends Run. Safe to call more than once.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Closed is closed once Close has been called.
func (s *Stream) Closed() <-chan struct{} {
	return s.closed
}

// Published returns how many frames the capture loop has published.
func (s *Stream) Published() int { return int(s.published.Load()) }

// Sampled returns how many frames Run has emitted.
func (s *Stream) Sampled() int { return int(s.sampled.Load()) }

func copyRGBA(dst, src *image.RGBA) {
	if dst.Stride == src.Stride && len(dst.Pix) == len(src.Pix) {
		copy(dst.Pix, src.Pix)
		return
	}
	rowLen := src.Rect.Dx() * 4
	for y := 0; y < src.Rect.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], src.Pix[y*src.Stride:y*src.Stride+rowLen])
	}
}
