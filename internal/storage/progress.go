package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/progress"
)

// Progress operations (Redis-backed)

func progressKey(id uuid.UUID) string {
	return "progress:" + id.String()
}

func (r *RedisStorage) SaveProgress(ctx context.Context, id uuid.UUID, s *progress.Snapshot) error {
	if s == nil {
		return errors.New("snapshot cannot be nil")
	}

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	cmd := r.client.Set(ctx, progressKey(id), string(data), r.progressTTL)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadProgress(ctx context.Context, id uuid.UUID) (*progress.Snapshot, error) {
	cmd := r.client.Get(ctx, progressKey(id))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Progress not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load progress", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	var s progress.Snapshot
	if err := json.Unmarshal([]byte(cmd.Val()), &s); err != nil {
		r.logger.Error("Failed to unmarshal progress", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}

	return &s, nil
}

func (r *RedisStorage) DeleteProgress(ctx context.Context, id uuid.UUID) error {
	cmd := r.client.Del(ctx, progressKey(id))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}
