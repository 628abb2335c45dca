package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "SCENE", "LOG_LEVEL", "PROGRESS_TTL", "INTERACTION_RAY_DISTANCE", "INTERACTION_LAYER_MASK"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "lab", cfg.Scene)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 3.0, cfg.RayDistance)
	assert.Equal(t, uint32(0xFFFFFFFF), cfg.InteractionMask)
	assert.Equal(t, 30*time.Second, cfg.CacheResidency)
	assert.Equal(t, 10*time.Second, cfg.CacheSweepInterval)
	assert.Equal(t, time.Duration(0), cfg.ProgressTTL)
	assert.Equal(t, "ActivityMarker", cfg.MarkerTag)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCENE", "atrium")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("INTERACTION_LAYER_MASK", "0x4")
	t.Setenv("INTERACTION_RAY_DISTANCE", "2.5")
	t.Setenv("PROGRESS_TTL", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "atrium", cfg.Scene)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, uint32(4), cfg.InteractionMask)
	assert.Equal(t, 2.5, cfg.RayDistance)
	assert.Equal(t, 24*time.Hour, cfg.ProgressTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"ACTION_CACHE_RESIDENCY", "forever"},
		{"ACTION_CACHE_SWEEP_INTERVAL", "-1s"},
		{"INTERACTION_RAY_DISTANCE", "far"},
		{"INTERACTION_RAY_DISTANCE", "0"},
		{"INTERACTION_LAYER_MASK", "0x1FFFFFFFF"},
		{"PROGRESS_TTL", "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}
