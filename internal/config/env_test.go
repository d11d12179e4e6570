package config

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SSH_HOST", "SSH_PORT", "LOG_LEVEL", "DARK_MODE", "PREFERS_REDUCED_MOTION", "DEVICE_PIXEL_RATIO"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2222", cfg.SSHPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.DarkMode)
	assert.False(t, cfg.ReducedMotion)
	assert.Equal(t, 1.0, cfg.DevicePixelRatio)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SSH_PORT", "2323")
	t.Setenv("DARK_MODE", "false")
	t.Setenv("PREFERS_REDUCED_MOTION", "true")
	t.Setenv("DEVICE_PIXEL_RATIO", "1.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2323", cfg.SSHPort)
	assert.False(t, cfg.DarkMode)
	assert.True(t, cfg.ReducedMotion)
	assert.Equal(t, 1.5, cfg.DevicePixelRatio)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("DEVICE_PIXEL_RATIO", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadSession_SessionWins(t *testing.T) {
	t.Setenv("DARK_MODE", "true")
	t.Setenv("PREFERS_REDUCED_MOTION", "false")

	cfg, err := LoadSession([]string{"PREFERS_REDUCED_MOTION=1", "DARK_MODE=false", "MALFORMED"})
	require.NoError(t, err)

	assert.True(t, cfg.ReducedMotion)
	assert.False(t, cfg.DarkMode)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer

	cfg := &Env{LogLevel: "debug"}
	assert.Equal(t, log.DebugLevel, cfg.NewLogger(&buf).GetLevel())

	cfg = &Env{LogLevel: "nope"}
	logger := cfg.NewLogger(&buf)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}

func TestOpenLogger_DiscardsWithoutFile(t *testing.T) {
	cfg := &Env{LogLevel: "info"}
	logger, closeFn, err := cfg.OpenLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NoError(t, closeFn())
}
