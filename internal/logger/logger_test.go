package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/internal/config"
)

func TestNew_FormatByEnvironment(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, &config.Config{Environment: "production", LogLevel: slog.LevelInfo})
	log.Info("hello", "scene", "lab")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "lab", line["scene"])

	buf.Reset()
	log = New(&buf, &config.Config{Environment: "development", LogLevel: slog.LevelInfo})
	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, &config.Config{LogLevel: slog.LevelWarn})
	log.Info("quiet")
	assert.Empty(t, buf.String())
	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, &config.Config{LogLevel: slog.LevelInfo})

	WithError(WithSession(WithRequestID(base, "req-1"), "sess-1"), errors.New("boom")).Info("tagged")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "session_id=sess-1")
	assert.Contains(t, out, "error=boom")
}
