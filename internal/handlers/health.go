package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by the storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

// HealthCheck reports a component problem as an error.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	storage Pinger
	checks  []namedCheck
	logger  *slog.Logger
}

type namedCheck struct {
	name  string
	check HealthCheck
}

func NewHealthHandler(storage Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		logger:  logger,
	}
}

// WithCheck adds a component to the report; a failing check degrades the
// service. Returns the handler for chaining.
func (h *HealthHandler) WithCheck(name string, check HealthCheck) *HealthHandler {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
	return h
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	for _, c := range h.checks {
		if err := c.check(ctx); err != nil {
			h.logger.Warn("Health check failed", "component", c.name, "error", err)
			components[c.name] = "unhealthy"
			overallStatus = "degraded"
			continue
		}
		components[c.name] = "healthy"
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "quest-engine",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		return
	}
}
