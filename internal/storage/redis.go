package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	store "github.com/jwebster45206/quest-engine/pkg/storage"
)

// RedisStorage implements the Storage interface using Redis for session
// progress and the filesystem for scene resources (quest bundles, messages,
// books, layouts)
type RedisStorage struct {
	*FileStore
	client      *redis.Client
	logger      *slog.Logger
	progressTTL time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ store.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		FileStore: NewFileStore(dataDir, logger),
		client:    rdb,
		logger:    logger,
	}
}

// WithProgressTTL expires saved progress after ttl. Zero keeps it forever.
// Returns the RedisStorage for method chaining
func (r *RedisStorage) WithProgressTTL(ttl time.Duration) *RedisStorage {
	r.progressTTL = ttl
	return r
}

// Client exposes the Redis client for pub/sub consumers
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
