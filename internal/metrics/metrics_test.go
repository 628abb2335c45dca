package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/progress"
)

func TestNotifier_CountsAndForwards(t *testing.T) {
	m := New()
	rec := &progress.Recorder{}
	n := m.Notifier(rec)

	n.Notify(progress.Notification{Type: progress.TaskCompleted, Task: "Find Code"})
	n.Notify(progress.Notification{Type: progress.TaskCompleted, Task: "Open Door"})
	n.Notify(progress.Notification{Type: progress.QuestCompleted, Quest: "Get In"})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Notifications.WithLabelValues(string(progress.TaskCompleted))))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Notifications.WithLabelValues(string(progress.QuestCompleted))))
	assert.Len(t, rec.Notifications, 3)
}

func TestNotifier_NilNext(t *testing.T) {
	m := New()
	m.Notifier(nil).Notify(progress.Notification{Type: progress.EventRecorded})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Notifications.WithLabelValues(string(progress.EventRecorded))))
}

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordEvent(SourceAPI)
	m.RecordEvent(SourceAPI)
	m.RecordEvent(SourceInbox)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.EventsRaised.WithLabelValues(SourceAPI)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsRaised.WithLabelValues(SourceInbox)))

	m.RecordInbox(StatusApplied, 50*time.Millisecond)
	m.RecordInbox(StatusSaveFailed, -time.Second)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.InboxEvents.WithLabelValues(StatusApplied)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.InboxEvents.WithLabelValues(StatusSaveFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.InboxLatency))

	m.RecordRequest(http.MethodGet, http.StatusOK, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "200")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.RecordEvent(SourceSocket)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, `quest_engine_events_raised_total{source="socket"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
