package capture

import (
	"context"
)

// Codec names a container/codec pair.
type Codec string

const (
	CodecVP9 Codec = "video/webm;codecs=vp9"
	CodecVP8 Codec = "video/webm;codecs=vp8"
)

// MIME returns the container type without codec parameters.
func (c Codec) MIME() string {
	for i := 0; i < len(c); i++ {
		if c[i] == ';' {
			return string(c[:i])
		}
	}
	return string(c)
}

// Encoder builds recorders that turn a Stream into an encoded byte stream.
type Encoder interface {
	// IsTypeSupported reports whether the encoder can produce c.
	IsTypeSupported(c Codec) bool
	// NewRecorder prepares a recorder for s. onData receives encoded chunks
	// in order, possibly from another goroutine.
	NewRecorder(ctx context.Context, s *Stream, c Codec, onData func([]byte)) (Recorder, error)
}

// Recorder encodes one stream.
type Recorder interface {
	Start() error
	// Stop ends recording and blocks until every chunk has been delivered.
	Stop() error
}

// pickCodec returns the first candidate e supports. When none report
// support it returns the last candidate and leaves the final verdict to
// recorder construction.
func pickCodec(e Encoder, candidates []Codec) (Codec, error) {
	if len(candidates) == 0 {
		return "", ErrNoSupportedCodec
	}
	for _, c := range candidates {
		if e.IsTypeSupported(c) {
			return c, nil
		}
	}
	return candidates[len(candidates)-1], nil
}
