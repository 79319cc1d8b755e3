package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// codecLibs maps codecs to ffmpeg encoder names.
var codecLibs = map[Codec]string{
	CodecVP9: "libvpx-vp9",
	CodecVP8: "libvpx",
}

const probeTimeout = 10 * time.Second

// FFmpegEncoder records streams by piping raw RGBA frames into an ffmpeg
// child process and collecting WebM from its stdout.
type FFmpegEncoder struct {
	// Path is the ffmpeg binary. Empty means "ffmpeg" on PATH.
	Path string
	// Bitrate is passed as -b:v. Empty means "2M".
	Bitrate string
	Logger  zerolog.Logger

	probeOnce sync.Once
	encoders  map[string]bool
	probeErr  error
}

func (e *FFmpegEncoder) path() string {
	if e.Path == "" {
		return "ffmpeg"
	}
	return e.Path
}

// probe lists the encoders ffmpeg was built with, once.
func (e *FFmpegEncoder) probe() {
	e.probeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		out, err := exec.CommandContext(ctx, e.path(), "-hide_banner", "-encoders").Output()
		if err != nil {
			e.probeErr = err
			e.Logger.Warn().Err(err).Str("path", e.path()).Msg("ffmpeg encoder probe failed")
			return
		}
		e.encoders = parseEncoders(out)
	})
}

// parseEncoders reads `ffmpeg -encoders` output. Each encoder line is a
// flags column followed by the encoder name.
func parseEncoders(out []byte) map[string]bool {
	found := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || len(fields[0]) != 6 || fields[1] == "=" {
			continue
		}
		found[fields[1]] = true
	}
	return found
}

// IsTypeSupported implements Encoder.
func (e *FFmpegEncoder) IsTypeSupported(c Codec) bool {
	lib, ok := codecLibs[c]
	if !ok {
		return false
	}
	e.probe()
	return e.encoders[lib]
}

// encodeArgs builds the ffmpeg command line for a w×h rgba stream. The
// output keeps the stream's exact size; libvpx accepts odd dimensions.
func encodeArgs(w, h, fps int, lib, bitrate string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-r", strconv.Itoa(fps),
		"-i", "-",
		"-c:v", lib,
		"-b:v", bitrate,
		"-pix_fmt", "yuv420p",
		"-f", "webm",
		"-",
	}
}

// NewRecorder implements Encoder.
func (e *FFmpegEncoder) NewRecorder(ctx context.Context, s *Stream, c Codec, onData func([]byte)) (Recorder, error) {
	lib, ok := codecLibs[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSupportedCodec, c)
	}
	if _, err := exec.LookPath(e.path()); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	bitrate := e.Bitrate
	if bitrate == "" {
		bitrate = "2M"
	}
	w, h := s.Size()

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, e.path(), encodeArgs(w, h, s.FPS(), lib, bitrate)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	stderr := &ringBuffer{max: 4096}
	cmd.Stderr = stderr

	return &ffmpegRecorder{
		ctx:    ctx,
		cancel: cancel,
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		stream: s,
		onData: onData,
		log:    e.Logger.With().Str("codec", lib).Logger(),
	}, nil
}

type ffmpegRecorder struct {
	ctx    context.Context
	cancel context.CancelFunc
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr *ringBuffer
	stream *Stream
	onData func([]byte)
	log    zerolog.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	writeErr error
	readErr  error
	stopOnce sync.Once
	stopErr  error
}

func (r *ffmpegRecorder) Start() error {
	if err := r.cmd.Start(); err != nil {
		r.cancel()
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	r.log.Debug().Strs("args", r.cmd.Args[1:]).Msg("ffmpeg started")

	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		err := r.stream.Run(r.ctx, func(frame *image.RGBA) error {
			_, err := r.stdin.Write(frame.Pix)
			return err
		})
		r.stdin.Close()
		r.mu.Lock()
		r.writeErr = err
		r.mu.Unlock()
	}()
	go func() {
		defer r.wg.Done()
		buf := make([]byte, 32*1024)
		for {
			n, err := r.stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				r.onData(chunk)
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					r.mu.Lock()
					r.readErr = err
					r.mu.Unlock()
				}
				return
			}
		}
	}()
	return nil
}

func (r *ffmpegRecorder) Stop() error {
	r.stopOnce.Do(func() {
		defer r.cancel()
		r.stream.Close()
		r.wg.Wait()
		err := r.cmd.Wait()

		r.mu.Lock()
		defer r.mu.Unlock()
		switch {
		case err != nil:
			msg := err.Error()
			if s := r.stderr.String(); s != "" {
				msg = msg + ": " + s
			}
			r.stopErr = fmt.Errorf("ffmpeg failed: %s", msg)
		case r.writeErr != nil:
			r.stopErr = fmt.Errorf("write frames: %w", r.writeErr)
		case r.readErr != nil:
			r.stopErr = fmt.Errorf("read output: %w", r.readErr)
		}
		r.log.Debug().Int("frames", r.stream.Sampled()).Err(r.stopErr).Msg("ffmpeg stopped")
	})
	return r.stopErr
}

// ringBuffer keeps the last max bytes written to it.
type ringBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (r *ringBuffer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max <= 0 {
		return len(p), nil
	}
	if len(p) >= r.max {
		r.buf = append(r.buf[:0], p[len(p)-r.max:]...)
		return len(p), nil
	}
	if len(r.buf)+len(p) > r.max {
		drop := len(r.buf) + len(p) - r.max
		r.buf = append(r.buf[drop:], p...)
		return len(p), nil
	}
	r.buf = append(r.buf, p...)
	return len(p), nil
}

func (r *ringBuffer) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.TrimSpace(string(r.buf))
}
