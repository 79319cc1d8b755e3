package snowfall

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

func TestDebugModeLogsFrameTimings(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDriver(t, Config{}, nil)
	d.log = zerolog.New(&buf).Level(zerolog.DebugLevel)
	d.SetDebugMode(true)
	d.Start()

	screen := ebiten.NewImage(64, 64)
	defer screen.Deallocate()
	d.Draw(screen)

	out := buf.String()
	for _, key := range []string{`"frame":1`, `"flakes":`, `"total":`} {
		if !strings.Contains(out, key) {
			t.Errorf("debug log missing %s:\n%s", key, out)
		}
	}
}

func TestDebugModeOffIsSilent(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDriver(t, Config{}, nil)
	d.log = zerolog.New(&buf).Level(zerolog.DebugLevel)
	d.debugLog(frameStats{flakes: 3})
	if buf.Len() != 0 {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
