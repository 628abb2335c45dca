package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/progress"
)

// readEvent returns the next "event:" name and its data line.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}

func TestStreamHandler_ForwardsNotifications(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	sessionID := uuid.New()
	server := httptest.NewServer(NewStreamHandler(client, sessionID, testLogger()))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	name, data := readEvent(t, reader)
	assert.Equal(t, "connected", name)
	assert.Contains(t, data, sessionID.String())

	broadcaster := events.NewBroadcaster(client, testLogger())
	broadcaster.ForSession(sessionID).Notify(progress.Notification{
		Type:  progress.TaskCompleted,
		Quest: "Get In",
		Task:  "Find Code",
		At:    time.Now(),
	})

	name, data = readEvent(t, reader)
	assert.Equal(t, string(progress.TaskCompleted), name)
	assert.Contains(t, data, `"task":"Find Code"`)
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	h := NewStreamHandler(nil, uuid.New(), testLogger())
	w := doRequest(t, h, http.MethodPost, "/v1/stream", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
