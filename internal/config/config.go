package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL    string
	DataDir     string
	Scene       string
	SessionID   string
	ProgressTTL time.Duration

	// Interaction
	RayDistance        float64
	InteractionMask    uint32
	CacheResidency     time.Duration
	CacheSweepInterval time.Duration
	MarkerTag          string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var errs []error
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		Scene:       getEnv("SCENE", "lab"),
		SessionID:   getEnv("SESSION_ID", ""),
		MarkerTag:   getEnv("MARKER_TAG", "ActivityMarker"),
	}

	cfg.ProgressTTL = parseDuration("PROGRESS_TTL", "0s", &errs)
	cfg.CacheResidency = parseDuration("ACTION_CACHE_RESIDENCY", "30s", &errs)
	cfg.CacheSweepInterval = parseDuration("ACTION_CACHE_SWEEP_INTERVAL", "10s", &errs)

	distance, err := strconv.ParseFloat(getEnv("INTERACTION_RAY_DISTANCE", "3"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("INTERACTION_RAY_DISTANCE: %w", err))
	}
	cfg.RayDistance = distance

	mask, err := strconv.ParseUint(getEnv("INTERACTION_LAYER_MASK", "0xFFFFFFFF"), 0, 32)
	if err != nil {
		errs = append(errs, fmt.Errorf("INTERACTION_LAYER_MASK: %w", err))
	}
	cfg.InteractionMask = uint32(mask)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that parse but make no sense.
func (c *Config) Validate() error {
	var errs []error
	if c.Scene == "" {
		errs = append(errs, errors.New("SCENE is required"))
	}
	if c.RayDistance <= 0 {
		errs = append(errs, fmt.Errorf("INTERACTION_RAY_DISTANCE must be positive, got %v", c.RayDistance))
	}
	if c.CacheResidency <= 0 {
		errs = append(errs, fmt.Errorf("ACTION_CACHE_RESIDENCY must be positive, got %v", c.CacheResidency))
	}
	if c.CacheSweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("ACTION_CACHE_SWEEP_INTERVAL must be positive, got %v", c.CacheSweepInterval))
	}
	if c.ProgressTTL < 0 {
		errs = append(errs, fmt.Errorf("PROGRESS_TTL cannot be negative, got %v", c.ProgressTTL))
	}
	return errors.Join(errs...)
}

func parseDuration(key, defaultValue string, errs *[]error) time.Duration {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
