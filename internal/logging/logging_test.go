package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/snowfall/internal/config"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, Level("debug"))
	assert.Equal(t, zerolog.WarnLevel, Level("WARN"))
	assert.Equal(t, zerolog.Disabled, Level("none"))
	assert.Equal(t, zerolog.InfoLevel, Level("bogus"))
}

func TestSetupLogFile(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	prevLogger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	path := filepath.Join(t.TempDir(), "snowcard.log")
	closeFn, err := Setup(config.LogConfig{Level: "warn", File: path})
	require.NoError(t, err)

	assert.True(t, Enabled(zerolog.ErrorLevel))
	assert.False(t, Enabled(zerolog.InfoLevel))

	For("test").Warn().Msg("written")
	For("test").Info().Msg("filtered")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), "written")
	assert.NotContains(t, string(data), "filtered")
}

func TestSetupBadLogFile(t *testing.T) {
	prevLogger := log.Logger
	t.Cleanup(func() { log.Logger = prevLogger })

	_, err := Setup(config.LogConfig{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
}
