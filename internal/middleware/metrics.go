package middleware

import (
	"net/http"
	"time"

	"github.com/jwebster45206/quest-engine/internal/metrics"
)

// Metrics counts requests and their duration by method and status code.
func Metrics(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RecordRequest(r.Method, rec.status, time.Since(start))
	})
}
