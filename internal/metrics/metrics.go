// Package metrics exposes Prometheus counters for progression, the event
// inbox and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/quest-engine/pkg/progress"
)

// Event sources.
const (
	SourceAPI    = "api"
	SourceInbox  = "inbox"
	SourceSocket = "socket"
)

// Inbox outcomes.
const (
	StatusApplied    = "applied"
	StatusSaveFailed = "save_failed"
)

// Metrics holds the quest engine's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	EventsRaised  *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	InboxEvents   *prometheus.CounterVec
	InboxLatency  prometheus.Histogram
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// New creates and registers the collectors, plus the standard Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsRaised: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quest_engine_events_raised_total",
				Help: "Significant events fed to the engine by source",
			},
			[]string{"source"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quest_engine_notifications_total",
				Help: "Progression notifications by type",
			},
			[]string{"type"},
		),
		InboxEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quest_engine_inbox_events_total",
				Help: "Queued events processed by the inbox worker by outcome",
			},
			[]string{"status"},
		),
		InboxLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quest_engine_inbox_wait_seconds",
				Help:    "Time queued events spent in the inbox",
				Buckets: prometheus.DefBuckets,
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quest_engine_http_requests_total",
				Help: "HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quest_engine_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m.registry.MustRegister(
		m.EventsRaised,
		m.Notifications,
		m.InboxEvents,
		m.InboxLatency,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) RecordEvent(source string) {
	m.EventsRaised.WithLabelValues(source).Inc()
}

// RecordInbox counts one processed inbox event and how long it waited.
func (m *Metrics) RecordInbox(status string, waited time.Duration) {
	m.InboxEvents.WithLabelValues(status).Inc()
	if waited >= 0 {
		m.InboxLatency.Observe(waited.Seconds())
	}
}

func (m *Metrics) RecordRequest(method string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Notifier counts notifications by type and forwards them to next, which
// may be nil.
func (m *Metrics) Notifier(next progress.Notifier) progress.Notifier {
	return progress.NotifierFunc(func(n progress.Notification) {
		m.Notifications.WithLabelValues(string(n.Type)).Inc()
		if next != nil {
			next.Notify(n)
		}
	})
}
