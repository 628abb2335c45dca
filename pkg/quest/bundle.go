package quest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Format selects the text encoding of a persisted bundle.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks the encoding from a file extension. Anything other
// than .yaml/.yml is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Bundle is the persisted form of a scene's quest graph. References are
// written as titles so bundles stay hand-editable; IDs ride along when known.
type Bundle struct {
	Story            StoryRecord   `json:"story" yaml:"story"`
	Quests           []QuestRecord `json:"quests" yaml:"quests"`
	Tasks            []TaskRecord  `json:"tasks" yaml:"tasks"`
	CompletionEvents []string      `json:"completion_events" yaml:"completion_events"`
	GameStates       []string      `json:"game_states" yaml:"game_states"`
}

type StoryRecord struct {
	Title            string   `json:"title" yaml:"title"`
	ShortDescription string   `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	LongDescription  string   `json:"long_description,omitempty" yaml:"long_description,omitempty"`
	GameState        string   `json:"game_state,omitempty" yaml:"game_state,omitempty"`
	CompletionEvent  string   `json:"completion_event,omitempty" yaml:"completion_event,omitempty"`
	QuestTitles      []string `json:"quest_titles" yaml:"quest_titles"`
	CurrentQuest     string   `json:"current_quest,omitempty" yaml:"current_quest,omitempty"`
}

type QuestRecord struct {
	ID               string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title            string   `json:"title" yaml:"title"`
	ShortDescription string   `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	LongDescription  string   `json:"long_description,omitempty" yaml:"long_description,omitempty"`
	State            State    `json:"state" yaml:"state"`
	GameState        string   `json:"game_state,omitempty" yaml:"game_state,omitempty"`
	CompletionEvent  string   `json:"completion_event,omitempty" yaml:"completion_event,omitempty"`
	TaskTitles       []string `json:"task_titles" yaml:"task_titles"`
	CurrentTask      string   `json:"current_task,omitempty" yaml:"current_task,omitempty"`
}

type TaskRecord struct {
	ID               string `json:"id,omitempty" yaml:"id,omitempty"`
	Title            string `json:"title" yaml:"title"`
	ShortDescription string `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	LongDescription  string `json:"long_description,omitempty" yaml:"long_description,omitempty"`
	State            State  `json:"state" yaml:"state"`
	GameState        string `json:"game_state,omitempty" yaml:"game_state,omitempty"`
	CompletionEvent  string `json:"completion_event,omitempty" yaml:"completion_event,omitempty"`
	Marker           string `json:"marker,omitempty" yaml:"marker,omitempty"`
}

// NewBundle captures g in persisted form.
func NewBundle(g *Graph) *Bundle {
	b := &Bundle{
		Story: StoryRecord{
			Title:            g.Story.Title,
			ShortDescription: g.Story.ShortDescription,
			LongDescription:  g.Story.LongDescription,
			GameState:        g.Story.GameState,
			CompletionEvent:  g.Story.CompletionEvent,
			QuestTitles:      make([]string, 0, len(g.Story.QuestIDs)),
		},
		Quests:           make([]QuestRecord, 0, g.QuestCount()),
		Tasks:            make([]TaskRecord, 0, g.TaskCount()),
		CompletionEvents: append([]string(nil), g.CompletionEvents...),
		GameStates:       append([]string(nil), g.GameStates...),
	}
	for _, id := range g.Story.QuestIDs {
		if title, ok := g.ReferenceTitle(id); ok {
			b.Story.QuestTitles = append(b.Story.QuestTitles, title)
		}
	}
	if q := g.Quest(g.Story.CurrentQuestID); q != nil {
		b.Story.CurrentQuest = q.Title
	}

	for _, q := range g.Quests() {
		rec := QuestRecord{
			ID:               q.ID.String(),
			Title:            q.Title,
			ShortDescription: q.ShortDescription,
			LongDescription:  q.LongDescription,
			State:            q.State,
			GameState:        q.GameState,
			CompletionEvent:  q.CompletionEvent,
			TaskTitles:       make([]string, 0, len(q.TaskIDs)),
		}
		for _, id := range q.TaskIDs {
			if title, ok := g.ReferenceTitle(id); ok {
				rec.TaskTitles = append(rec.TaskTitles, title)
			}
		}
		if t := g.Task(q.CurrentTaskID); t != nil {
			rec.CurrentTask = t.Title
		}
		b.Quests = append(b.Quests, rec)
	}

	for _, t := range g.Tasks() {
		b.Tasks = append(b.Tasks, TaskRecord{
			ID:               t.ID.String(),
			Title:            t.Title,
			ShortDescription: t.ShortDescription,
			LongDescription:  t.LongDescription,
			State:            t.State,
			GameState:        t.GameState,
			CompletionEvent:  t.CompletionEvent,
			Marker:           t.Marker,
		})
	}
	return b
}

// Graph rebuilds the in-memory graph. A title reference that names no quest
// or task is kept under a placeholder ID that never completes, and is written
// back by its title on encode; use Validate to report them.
func (b *Bundle) Graph() (*Graph, error) {
	g := NewGraph()
	g.CompletionEvents = append([]string(nil), b.CompletionEvents...)
	g.GameStates = append([]string(nil), b.GameStates...)

	for _, rec := range b.Tasks {
		id, err := parseID(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", rec.Title, err)
		}
		t := &Task{
			ID:               id,
			Title:            rec.Title,
			ShortDescription: rec.ShortDescription,
			LongDescription:  rec.LongDescription,
			State:            rec.State,
			GameState:        rec.GameState,
			CompletionEvent:  rec.CompletionEvent,
			Marker:           rec.Marker,
		}
		if err := g.AddTask(t); err != nil {
			return nil, err
		}
	}

	for _, rec := range b.Quests {
		id, err := parseID(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("quest %q: %w", rec.Title, err)
		}
		q := &Quest{
			ID:               id,
			Title:            rec.Title,
			ShortDescription: rec.ShortDescription,
			LongDescription:  rec.LongDescription,
			State:            rec.State,
			GameState:        rec.GameState,
			CompletionEvent:  rec.CompletionEvent,
		}
		if err := g.AddQuest(q); err != nil {
			return nil, err
		}
		for _, title := range rec.TaskTitles {
			id := g.taskRef(title)
			if !slices.Contains(q.TaskIDs, id) {
				q.TaskIDs = append(q.TaskIDs, id)
			}
		}
		if t := g.TaskByTitle(rec.CurrentTask); t != nil {
			q.CurrentTaskID = t.ID
		}
	}

	g.Story = Story{
		Title:            b.Story.Title,
		ShortDescription: b.Story.ShortDescription,
		LongDescription:  b.Story.LongDescription,
		GameState:        b.Story.GameState,
		CompletionEvent:  b.Story.CompletionEvent,
	}
	for _, title := range b.Story.QuestTitles {
		id := g.questRef(title)
		if !slices.Contains(g.Story.QuestIDs, id) {
			g.Story.QuestIDs = append(g.Story.QuestIDs, id)
		}
	}
	if q := g.QuestByTitle(b.Story.CurrentQuest); q != nil {
		g.Story.CurrentQuestID = q.ID
	}
	return g, nil
}

func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

// DecodeBundle parses a bundle without building the graph.
func DecodeBundle(data []byte, f Format) (*Bundle, error) {
	var b Bundle
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quest bundle yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quest bundle json: %w", err)
		}
	}
	return &b, nil
}

// Decode parses data and builds the graph.
func Decode(data []byte, f Format) (*Graph, error) {
	b, err := DecodeBundle(data, f)
	if err != nil {
		return nil, err
	}
	return b.Graph()
}

// Encode serializes g in the given format.
func Encode(g *Graph, f Format) ([]byte, error) {
	b := NewBundle(g)
	switch f {
	case FormatYAML:
		data, err := yaml.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal quest bundle yaml: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal quest bundle json: %w", err)
		}
		return data, nil
	}
}
