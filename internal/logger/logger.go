package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/quest-engine/internal/config"
)

// Setup builds the process logger on stdout, tags it with the scene and
// installs it as the slog default.
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(os.Stdout, cfg).With("scene", cfg.Scene)
	slog.SetDefault(logger)
	return logger
}

// New returns a logger writing to w: JSON in production, text otherwise.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WithRequestID adds request ID to logger context
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithSession adds the game session ID to logger context
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With("session_id", sessionID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
