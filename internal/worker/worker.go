package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/metrics"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/quest-engine/pkg/queue"
)

const (
	workerTimeout = 5 * time.Second
	errorBackoff  = 1 * time.Second
)

// EventApplier applies a significant event to a session and persists the
// result.
type EventApplier interface {
	RaiseEvent(ctx context.Context, tag string) error
}

// Worker drains a session's event inbox into the running session.
type Worker struct {
	id        string
	queue     *queue.EventQueue
	sessionID uuid.UUID
	applier   EventApplier
	timeout   time.Duration
	metrics   *metrics.Metrics
	log       *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new worker instance
func New(q *queue.EventQueue, sessionID uuid.UUID, applier EventApplier, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:        workerID,
		queue:     q,
		sessionID: sessionID,
		applier:   applier,
		timeout:   workerTimeout,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// WithPollTimeout sets how long each dequeue blocks before the worker checks
// for shutdown. Returns the worker for chaining.
func (w *Worker) WithPollTimeout(d time.Duration) *Worker {
	if d > 0 {
		w.timeout = d
	}
	return w
}

// WithMetrics records processed events. Returns the worker for chaining.
func (w *Worker) WithMetrics(m *metrics.Metrics) *Worker {
	w.metrics = m
	return w
}

// Start processes events until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id, "session_id", w.sessionID.String())

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNext(); err != nil {
				if w.ctx.Err() != nil {
					continue
				}
				logger.WithError(w.log, err).Error("Error processing event", "worker_id", w.id)
				select {
				case <-w.ctx.Done():
				case <-time.After(errorBackoff):
				}
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNext pulls the next event from the inbox and applies it. A timeout
// with nothing queued is not an error.
func (w *Worker) processNext() error {
	req, err := w.queue.BlockingDequeue(w.ctx, w.sessionID, w.timeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue event: %w", err)
	}
	if req == nil {
		return nil
	}
	return w.apply(req)
}

func (w *Worker) apply(req *queuePkg.EventRequest) error {
	start := time.Now()
	w.log.Info("Applying queued event",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"event", req.Event,
		"source", req.Source,
		"queued_for_ms", start.Sub(req.EnqueuedAt).Milliseconds())

	err := w.applier.RaiseEvent(w.ctx, req.Event)
	w.record(err, start.Sub(req.EnqueuedAt))
	if err != nil {
		// The event is applied in memory even when saving fails, so it is
		// not re-queued.
		return fmt.Errorf("event %q applied but progress was not saved: %w", req.Event, err)
	}

	w.log.Debug("Queued event applied",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) record(err error, waited time.Duration) {
	if w.metrics == nil {
		return
	}
	w.metrics.RecordEvent(metrics.SourceInbox)
	status := metrics.StatusApplied
	if err != nil {
		status = metrics.StatusSaveFailed
	}
	w.metrics.RecordInbox(status, waited)
}
