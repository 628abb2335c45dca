package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/progress"
)

func TestBroadcaster_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := uuid.New()
	sub := client.Subscribe(ctx, Channel(sessionID))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewBroadcaster(client, slog.New(slog.DiscardHandler))
	b.ForSession(sessionID).Notify(progress.Notification{
		Type:  progress.QuestCompleted,
		Quest: "Get In",
		At:    time.Now(),
	})

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, progress.QuestCompleted, event.Type)
	assert.Equal(t, sessionID.String(), event.SessionID)
	assert.Equal(t, "Get In", event.Data.Quest)
}

func TestBroadcaster_PublishFailureIsReturned(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer func() { _ = client.Close() }()
	mr.Close()

	b := NewBroadcaster(client, slog.New(slog.DiscardHandler))
	err := b.Publish(context.Background(), uuid.New(), progress.Notification{Type: progress.EventRecorded})
	assert.Error(t, err)

	assert.NotPanics(t, func() {
		b.ForSession(uuid.New()).Notify(progress.Notification{Type: progress.EventRecorded})
	})
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "quest-events:6ba7b810-9dad-11d1-80b4-00c04fd430c8", Channel(id))
}
