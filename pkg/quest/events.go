package quest

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RecordedEvent is a significant event and the time it first occurred.
type RecordedEvent struct {
	Tag string    `json:"tag"`
	At  time.Time `json:"at"`
}

// EventLog is the append-only set of significant events seen in a session.
// The first occurrence of a tag fixes its timestamp.
type EventLog struct {
	events map[string]time.Time
}

func NewEventLog() *EventLog {
	return &EventLog{events: make(map[string]time.Time)}
}

// Record stores tag at the given time. It returns false, leaving the original
// timestamp untouched, when the tag was already recorded. Empty tags are
// never recorded.
func (l *EventLog) Record(tag string, at time.Time) bool {
	if tag == "" {
		return false
	}
	if _, exists := l.events[tag]; exists {
		return false
	}
	l.events[tag] = at
	return true
}

func (l *EventLog) Has(tag string) bool {
	if tag == "" {
		return false
	}
	_, ok := l.events[tag]
	return ok
}

// At returns when tag first occurred.
func (l *EventLog) At(tag string) (time.Time, bool) {
	at, ok := l.events[tag]
	return at, ok
}

func (l *EventLog) Len() int { return len(l.events) }

// Events returns the recorded events ordered by tag.
func (l *EventLog) Events() []RecordedEvent {
	out := make([]RecordedEvent, 0, len(l.events))
	for tag, at := range l.events {
		out = append(out, RecordedEvent{Tag: tag, At: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// DisplayTag turns an event or state tag such as "door_opened" into
// "Door Opened" for display.
func DisplayTag(tag string) string {
	words := strings.FieldsFunc(tag, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
