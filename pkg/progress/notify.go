package progress

import "time"

// NotificationType names a progression change.
type NotificationType string

const (
	EventRecorded  NotificationType = "event.recorded"
	TaskActivated  NotificationType = "task.activated"
	TaskCompleted  NotificationType = "task.completed"
	QuestCompleted NotificationType = "quest.completed"
)

// Notification describes a single progression change.
type Notification struct {
	Type  NotificationType `json:"type"`
	Event string           `json:"event,omitempty"`
	Quest string           `json:"quest,omitempty"`
	Task  string           `json:"task,omitempty"`
	At    time.Time        `json:"at"`
}

// Notifier receives progression notifications. Notify is called
// synchronously from HandleSignificantEvent and must not call back into
// the engine.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder is a Notifier that keeps every notification, in order.
type Recorder struct {
	Notifications []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.Notifications = append(r.Notifications, n)
}

// Of returns the recorded notifications of one type.
func (r *Recorder) Of(t NotificationType) []Notification {
	var out []Notification
	for _, n := range r.Notifications {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}
