package capture

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const encodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC
 V....D libvpx               libvpx VP8 (codec vp8)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestParseEncoders(t *testing.T) {
	got := parseEncoders([]byte(encodersOutput))
	assert.True(t, got["libvpx"])
	assert.True(t, got["libvpx-vp9"])
	assert.True(t, got["libx264"])
	assert.False(t, got["Encoders:"])
	assert.False(t, got["="])
}

func TestEncodeArgs(t *testing.T) {
	args := encodeArgs(640, 360, 30, "libvpx-vp9", "2M")
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-f rawvideo -pix_fmt rgba -s 640x360 -r 30 -i -")
	assert.Contains(t, joined, "-c:v libvpx-vp9")
	assert.Equal(t, []string{"-f", "webm", "-"}, args[len(args)-3:])
}

func TestEncodeArgsKeepOddSize(t *testing.T) {
	args := encodeArgs(601, 401, 30, "libvpx", "2M")
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-s 601x401")
	assert.NotContains(t, args, "-vf")
	assert.NotContains(t, joined, "pad=")
	assert.NotContains(t, joined, "scale=")
}

func TestFFmpegUnknownCodec(t *testing.T) {
	e := &FFmpegEncoder{Logger: zerolog.Nop()}
	assert.False(t, e.IsTypeSupported(Codec("video/mp4")))

	_, err := e.NewRecorder(context.Background(), NewStream(2, 2, 30), Codec("video/mp4"), func([]byte) {})
	require.ErrorIs(t, err, ErrNoSupportedCodec)
}

func TestFFmpegMissingBinary(t *testing.T) {
	e := &FFmpegEncoder{Path: filepath.Join(t.TempDir(), "no-ffmpeg"), Logger: zerolog.Nop()}
	assert.False(t, e.IsTypeSupported(CodecVP9))
	assert.Error(t, e.probeErr)

	_, err := e.NewRecorder(context.Background(), NewStream(2, 2, 30), CodecVP9, func([]byte) {})
	require.Error(t, err)
}

func TestRingBuffer(t *testing.T) {
	r := &ringBuffer{max: 8}
	r.Write([]byte("hello "))
	r.Write([]byte("world"))
	assert.Equal(t, "lo world", r.String())

	r.Write([]byte("0123456789"))
	assert.Equal(t, "23456789", r.String())

	var none ringBuffer
	n, err := none.Write([]byte("x"))
	assert.Equal(t, 1, n)
	assert.NoError(t, err)
}

func TestFileDownloader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := FileDownloader{Dir: dir, Logger: zerolog.Nop()}

	require.NoError(t, d.Download(context.Background(), Artifact{Name: "christmas-card.png", Data: []byte("one")}))
	require.NoError(t, d.Download(context.Background(), Artifact{Name: "../christmas-card.png", Data: []byte("two")}))

	got, err := os.ReadFile(filepath.Join(dir, "christmas-card.png"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileDownloaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := FileDownloader{Dir: t.TempDir()}.Download(ctx, Artifact{Name: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
