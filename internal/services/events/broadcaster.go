package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/progress"
)

const publishTimeout = 2 * time.Second

// Event is the envelope published for every progression notification
type Event struct {
	Type      progress.NotificationType `json:"type"`
	SessionID string                    `json:"session_id"`
	Data      progress.Notification     `json:"data"`
}

// Channel returns the pub/sub channel carrying a session's events
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("quest-events:%s", sessionID.String())
}

// Broadcaster publishes progression events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish sends one notification to the session channel
func (b *Broadcaster) Publish(ctx context.Context, sessionID uuid.UUID, n progress.Notification) error {
	event := Event{
		Type:      n.Type,
		SessionID: sessionID.String(),
		Data:      n,
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := Channel(sessionID)
	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}

// ForSession adapts the broadcaster to a progress.Notifier for one session.
// Publish failures are logged and dropped so progression never stalls on Redis.
func (b *Broadcaster) ForSession(sessionID uuid.UUID) progress.Notifier {
	return progress.NotifierFunc(func(n progress.Notification) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		_ = b.Publish(ctx, sessionID, n)
	})
}
