package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Source identifies who enqueued an event request
type Source string

const (
	// SourceAPI is an event accepted by the HTTP API for deferred processing
	SourceAPI Source = "api"

	// SourceTool is an event pushed by an operator tool
	SourceTool Source = "tool"
)

// EventRequest is a significant event waiting in a session's inbox
type EventRequest struct {
	RequestID string    `json:"request_id"`
	SessionID uuid.UUID `json:"session_id"`
	Event     string    `json:"event"`
	Source    Source    `json:"source,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewEventRequest stamps a request with a fresh ID and the current time
func NewEventRequest(sessionID uuid.UUID, event string, source Source) *EventRequest {
	return &EventRequest{
		RequestID:  uuid.New().String(),
		SessionID:  sessionID,
		Event:      event,
		Source:     source,
		EnqueuedAt: time.Now(),
	}
}

// ToJSON converts the request to JSON bytes for Redis
func (r *EventRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*EventRequest, error) {
	var req EventRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
