package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/queue"
)

// EventQueue is a per-session inbox of significant events, kept in a Redis
// list so producers do not need the API to be reachable.
type EventQueue struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewEventQueue(rdb *redis.Client, logger *slog.Logger) *EventQueue {
	return &EventQueue{
		rdb:    rdb,
		logger: logger,
	}
}

// QueueKey returns the Redis key for a session's event inbox
func QueueKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("quest-inbox:%s", sessionID.String())
}

// Enqueue adds a request to the end of its session's inbox
func (q *EventQueue) Enqueue(ctx context.Context, req *queue.EventRequest) error {
	if req.Event == "" {
		return errors.New("event cannot be empty")
	}
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	key := QueueKey(req.SessionID)
	if err := q.rdb.RPush(ctx, key, data).Err(); err != nil {
		q.logger.Error("Failed to enqueue event",
			"error", err,
			"session_id", req.SessionID.String(),
			"key", key)
		return fmt.Errorf("failed to enqueue event: %w", err)
	}

	q.logger.Debug("Enqueued event",
		"session_id", req.SessionID.String(),
		"request_id", req.RequestID,
		"event", req.Event)
	return nil
}

// BlockingDequeue waits up to timeout for the next request. It returns nil
// without error when the wait times out.
func (q *EventQueue) BlockingDequeue(ctx context.Context, sessionID uuid.UUID, timeout time.Duration) (*queue.EventRequest, error) {
	result, err := q.rdb.BLPop(ctx, timeout, QueueKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue event: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Peek returns up to limit queued requests without removing them; limit <= 0
// returns all of them
func (q *EventQueue) Peek(ctx context.Context, sessionID uuid.UUID, limit int) ([]*queue.EventRequest, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1 // Get all
	}
	raw, err := q.rdb.LRange(ctx, QueueKey(sessionID), 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek events: %w", err)
	}

	out := make([]*queue.EventRequest, 0, len(raw))
	for _, item := range raw {
		req, err := queue.FromJSON([]byte(item))
		if err != nil {
			q.logger.Warn("Skipping malformed queued event", "error", err)
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

// Clear removes every queued request for a session
func (q *EventQueue) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := q.rdb.Del(ctx, QueueKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear event queue: %w", err)
	}
	q.logger.Debug("Cleared event queue", "session_id", sessionID.String())
	return nil
}

// Depth returns the number of requests waiting for a session
func (q *EventQueue) Depth(ctx context.Context, sessionID uuid.UUID) (int, error) {
	count, err := q.rdb.LLen(ctx, QueueKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
