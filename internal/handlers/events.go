package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/quest-engine/internal/metrics"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	"github.com/jwebster45206/quest-engine/internal/session"
	"github.com/jwebster45206/quest-engine/pkg/progress"
	queuePkg "github.com/jwebster45206/quest-engine/pkg/queue"
)

type RaiseEventRequest struct {
	Event string `json:"event"`
}

type RaiseEventResponse struct {
	Event          string               `json:"event"`
	Events         []progress.EventView `json:"events"`
	Quests         []progress.QuestView `json:"quests"`
	StoryCompleted bool                 `json:"story_completed"`
}

// EnqueueEventResponse acknowledges an event accepted into the session inbox.
type EnqueueEventResponse struct {
	RequestID string `json:"request_id"`
	Event     string `json:"event"`
	Depth     int    `json:"depth"`
}

// EventsHandler records significant events and lists the ones seen so far.
//
//	GET  /v1/events
//	POST /v1/events
//	POST /v1/events?async=true
type EventsHandler struct {
	session *session.Session
	queue   *queue.EventQueue
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewEventsHandler(s *session.Session, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		session: s,
		logger:  logger,
	}
}

// WithQueue enables async=true, which hands events to the session inbox
// instead of applying them inline. Returns the handler for chaining.
func (h *EventsHandler) WithQueue(q *queue.EventQueue) *EventsHandler {
	h.queue = q
	return h
}

// WithMetrics counts events raised through this handler. Returns the handler
// for chaining.
func (h *EventsHandler) WithMetrics(m *metrics.Metrics) *EventsHandler {
	h.metrics = m
	return h
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, h.logger, http.StatusOK, h.session.Events())
	case http.MethodPost:
		h.handleRaise(w, r)
	default:
		h.logger.Warn("Method not allowed for events endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET and POST are supported.")
	}
}

func (h *EventsHandler) handleRaise(w http.ResponseWriter, r *http.Request) {
	var req RaiseEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid event request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Event = strings.TrimSpace(req.Event)
	if req.Event == "" {
		writeError(w, h.logger, http.StatusBadRequest, "event is required")
		return
	}

	if r.URL.Query().Get("async") == "true" {
		h.handleEnqueue(w, r, req.Event)
		return
	}

	err := h.session.RaiseEvent(r.Context(), req.Event)
	if h.metrics != nil {
		h.metrics.RecordEvent(metrics.SourceAPI)
	}
	if err != nil {
		h.logger.Error("Failed to persist progress after event", "error", err, "event", req.Event)
		writeError(w, h.logger, http.StatusInternalServerError, "Event applied but progress was not saved")
		return
	}

	h.logger.Info("Significant event raised", "event", req.Event)
	writeJSON(w, h.logger, http.StatusOK, RaiseEventResponse{
		Event:          req.Event,
		Events:         h.session.Events(),
		Quests:         h.session.Quests(),
		StoryCompleted: h.session.Status().StoryCompleted,
	})
}

func (h *EventsHandler) handleEnqueue(w http.ResponseWriter, r *http.Request, event string) {
	if h.queue == nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "Event queue is not configured")
		return
	}

	req := queuePkg.NewEventRequest(h.session.ID(), event, queuePkg.SourceAPI)
	if err := h.queue.Enqueue(r.Context(), req); err != nil {
		h.logger.Error("Failed to enqueue event", "error", err, "event", event)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to enqueue event")
		return
	}

	depth, err := h.queue.Depth(r.Context(), h.session.ID())
	if err != nil {
		h.logger.Warn("Failed to read queue depth", "error", err)
	}

	h.logger.Info("Significant event queued", "event", event, "request_id", req.RequestID)
	writeJSON(w, h.logger, http.StatusAccepted, EnqueueEventResponse{
		RequestID: req.RequestID,
		Event:     event,
		Depth:     depth,
	})
}
