// Package transcode re-encodes exported WebM videos into broadly
// compatible MP4 files with an external ffmpeg process.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Usage is printed when an argument is missing.
const Usage = "usage: snowcard transcode INPUT.webm OUTPUT.mp4"

// ErrInputNotFound is returned when the input file does not exist.
var ErrInputNotFound = errors.New("transcode: input file not found")

// Runner runs an external program and returns what it wrote.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (stdout, stderr []byte, err error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Args returns the fixed ffmpeg argument list: H.264 video, AAC audio,
// overwrite the output.
func Args(input, output string) []string {
	return []string{
		"-y",
		"-i", input,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		output,
	}
}

// Convert checks that input exists and runs ffmpeg on it. The encoder's
// output is logged at debug level.
func Convert(ctx context.Context, r Runner, log zerolog.Logger, input, output string) error {
	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return fmt.Errorf("stat input: %w", err)
	}

	args := Args(input, output)
	log.Info().Str("cmd", "ffmpeg "+strings.Join(args, " ")).Msg("running ffmpeg")
	stdout, stderr, err := r.Run(ctx, "ffmpeg", args)
	if s := strings.TrimSpace(string(stdout)); s != "" {
		log.Debug().Str("stream", "stdout").Msg(s)
	}
	if s := strings.TrimSpace(string(stderr)); s != "" {
		log.Debug().Str("stream", "stderr").Msg(s)
	}
	if err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	log.Info().Str("output", output).Msg("converted")
	return nil
}

// Main runs the transcode command on args (input, output) and returns the
// process exit status. A missing argument or input file is status 1; an
// encoder failure is logged and still returns 0. Usage goes to stderr
// whatever the log level.
func Main(ctx context.Context, args []string, r Runner, log zerolog.Logger, stderr io.Writer) int {
	if len(args) < 2 || args[0] == "" || args[1] == "" {
		fmt.Fprintln(stderr, Usage)
		log.Error().Msg(Usage)
		return 1
	}
	err := Convert(ctx, r, log, args[0], args[1])
	switch {
	case errors.Is(err, ErrInputNotFound):
		log.Error().Err(err).Msg("transcode")
		return 1
	case err != nil:
		log.Error().Err(err).Msg("ffmpeg failed")
	}
	return 0
}
