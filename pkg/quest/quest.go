package quest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateTitle = errors.New("duplicate title")
	ErrEmptyTitle     = errors.New("title cannot be empty")
)

// State is the progression state shared by quests and tasks.
type State string

const (
	StatePending   State = "pending"
	StateActive    State = "active"
	StateCompleted State = "completed"
)

func (s State) rank() int {
	switch s {
	case StateActive:
		return 1
	case StateCompleted:
		return 2
	default:
		return 0
	}
}

// Advance returns the later of s and to. States only move forward:
// pending -> active -> completed.
func (s State) Advance(to State) State {
	if to.rank() > s.rank() {
		return to
	}
	if s == "" {
		return StatePending
	}
	return s
}

func (s State) IsCompleted() bool { return s == StateCompleted }

func (s State) MarshalText() ([]byte, error) {
	if s == "" {
		return []byte(StatePending), nil
	}
	return []byte(s), nil
}

// UnmarshalText accepts the state names case-insensitively so hand-written
// bundles can use "Pending" or "pending".
func (s *State) UnmarshalText(text []byte) error {
	switch v := State(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case "":
		*s = StatePending
	case StatePending, StateActive, StateCompleted:
		*s = v
	default:
		return fmt.Errorf("invalid state %q", string(text))
	}
	return nil
}

// Story is the per-scene narrative root. Quests are referenced by ID.
type Story struct {
	Title            string
	ShortDescription string
	LongDescription  string
	GameState        string
	CompletionEvent  string
	QuestIDs         []uuid.UUID
	CurrentQuestID   uuid.UUID
}

// Quest is an ordered group of tasks.
type Quest struct {
	ID               uuid.UUID
	Title            string
	ShortDescription string
	LongDescription  string
	State            State
	GameState        string
	CompletionEvent  string
	TaskIDs          []uuid.UUID
	CurrentTaskID    uuid.UUID
	IsActive         bool // not persisted
}

// Task is a single step of a quest, completed when its completion event
// has been recorded.
type Task struct {
	ID               uuid.UUID
	Title            string
	ShortDescription string
	LongDescription  string
	State            State
	GameState        string
	CompletionEvent  string
	Marker           string // activity marker name, defaults to Title
	IsActive         bool   // not persisted
}

// MarkerName returns the world activity marker that represents this task.
func (t *Task) MarkerName() string {
	if t.Marker != "" {
		return t.Marker
	}
	return t.Title
}
