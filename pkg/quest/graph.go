package quest

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Graph holds the story, quests and tasks of one scene.
// Quests and tasks are owned by ID; titles are a renameable index on top.
type Graph struct {
	Story            Story
	CompletionEvents []string // valid completion-event tags
	GameStates       []string // valid game-state tags

	quests     map[uuid.UUID]*Quest
	tasks      map[uuid.UUID]*Task
	questIndex map[string]uuid.UUID
	taskIndex  map[string]uuid.UUID
	questOrder []uuid.UUID
	taskOrder  []uuid.UUID

	// titles of referenced quests and tasks no record carries, by placeholder ID
	dangling map[uuid.UUID]string
}

var (
	danglingQuestSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("quest-engine/quest"))
	danglingTaskSpace  = uuid.NewSHA1(uuid.NameSpaceOID, []byte("quest-engine/task"))
)

// DanglingQuestID is the stable ID given to a reference to a quest title
// that no quest carries.
func DanglingQuestID(title string) uuid.UUID {
	return uuid.NewSHA1(danglingQuestSpace, []byte(title))
}

// DanglingTaskID is the stable ID given to a reference to a task title that
// no task carries. It never resolves to a task, so it never completes.
func DanglingTaskID(title string) uuid.UUID {
	return uuid.NewSHA1(danglingTaskSpace, []byte(title))
}

func NewGraph() *Graph {
	return &Graph{
		quests:     make(map[uuid.UUID]*Quest),
		tasks:      make(map[uuid.UUID]*Task),
		questIndex: make(map[string]uuid.UUID),
		taskIndex:  make(map[string]uuid.UUID),
		dangling:   make(map[uuid.UUID]string),
	}
}

// AddQuest inserts q, assigning a fresh ID when q has none. A quest without
// an ID whose title is already referenced takes over that reference.
func (g *Graph) AddQuest(q *Quest) error {
	if q.Title == "" {
		return ErrEmptyTitle
	}
	if _, exists := g.questIndex[q.Title]; exists {
		return fmt.Errorf("quest %q: %w", q.Title, ErrDuplicateTitle)
	}
	if q.ID == uuid.Nil {
		q.ID = g.claimID(DanglingQuestID(q.Title), q.Title)
	}
	if _, exists := g.quests[q.ID]; exists {
		return fmt.Errorf("quest id %s already present", q.ID)
	}
	delete(g.dangling, q.ID)
	q.State = q.State.Advance(StatePending)
	g.quests[q.ID] = q
	g.questIndex[q.Title] = q.ID
	g.questOrder = append(g.questOrder, q.ID)
	return nil
}

// AddTask inserts t, assigning a fresh ID when t has none. A task without
// an ID whose title is already referenced takes over that reference.
func (g *Graph) AddTask(t *Task) error {
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if _, exists := g.taskIndex[t.Title]; exists {
		return fmt.Errorf("task %q: %w", t.Title, ErrDuplicateTitle)
	}
	if t.ID == uuid.Nil {
		t.ID = g.claimID(DanglingTaskID(t.Title), t.Title)
	}
	if _, exists := g.tasks[t.ID]; exists {
		return fmt.Errorf("task id %s already present", t.ID)
	}
	delete(g.dangling, t.ID)
	t.State = t.State.Advance(StatePending)
	g.tasks[t.ID] = t
	g.taskIndex[t.Title] = t.ID
	g.taskOrder = append(g.taskOrder, t.ID)
	return nil
}

// AttachTask appends a task to the end of a quest's task list.
func (g *Graph) AttachTask(questID, taskID uuid.UUID) error {
	q, ok := g.quests[questID]
	if !ok {
		return fmt.Errorf("quest %s: %w", questID, ErrNotFound)
	}
	if _, ok := g.tasks[taskID]; !ok {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if !slices.Contains(q.TaskIDs, taskID) {
		q.TaskIDs = append(q.TaskIDs, taskID)
	}
	return nil
}

// AddToStory appends a quest to the story's ordered quest list.
func (g *Graph) AddToStory(questID uuid.UUID) error {
	if _, ok := g.quests[questID]; !ok {
		return fmt.Errorf("quest %s: %w", questID, ErrNotFound)
	}
	if !slices.Contains(g.Story.QuestIDs, questID) {
		g.Story.QuestIDs = append(g.Story.QuestIDs, questID)
	}
	return nil
}

func (g *Graph) claimID(placeholder uuid.UUID, title string) uuid.UUID {
	if g.dangling[placeholder] == title {
		return placeholder
	}
	return uuid.New()
}

// taskRef resolves a task title to an ID, recording a dangling placeholder
// when no task has the title.
func (g *Graph) taskRef(title string) uuid.UUID {
	if t := g.TaskByTitle(title); t != nil {
		return t.ID
	}
	id := DanglingTaskID(title)
	g.dangling[id] = title
	return id
}

// questRef resolves a quest title to an ID, recording a dangling placeholder
// when no quest has the title.
func (g *Graph) questRef(title string) uuid.UUID {
	if q := g.QuestByTitle(title); q != nil {
		return q.ID
	}
	id := DanglingQuestID(title)
	g.dangling[id] = title
	return id
}

// ReferenceTitle names whatever id points at: a quest, a task, or a dangling
// reference kept from a loaded bundle.
func (g *Graph) ReferenceTitle(id uuid.UUID) (string, bool) {
	if q, ok := g.quests[id]; ok {
		return q.Title, true
	}
	if t, ok := g.tasks[id]; ok {
		return t.Title, true
	}
	title, ok := g.dangling[id]
	return title, ok
}

func (g *Graph) Quest(id uuid.UUID) *Quest { return g.quests[id] }

func (g *Graph) Task(id uuid.UUID) *Task { return g.tasks[id] }

// QuestByTitle returns nil when no quest has the title.
func (g *Graph) QuestByTitle(title string) *Quest {
	id, ok := g.questIndex[title]
	if !ok {
		return nil
	}
	return g.quests[id]
}

// TaskByTitle returns nil when no task has the title.
func (g *Graph) TaskByTitle(title string) *Task {
	id, ok := g.taskIndex[title]
	if !ok {
		return nil
	}
	return g.tasks[id]
}

// Quests returns all quests in insertion order.
func (g *Graph) Quests() []*Quest {
	out := make([]*Quest, 0, len(g.questOrder))
	for _, id := range g.questOrder {
		out = append(out, g.quests[id])
	}
	return out
}

// Tasks returns all tasks in insertion order.
func (g *Graph) Tasks() []*Task {
	out := make([]*Task, 0, len(g.taskOrder))
	for _, id := range g.taskOrder {
		out = append(out, g.tasks[id])
	}
	return out
}

// OrderedQuests returns the story's quests in story order followed by any
// quests the story does not list, in insertion order.
func (g *Graph) OrderedQuests() []*Quest {
	out := make([]*Quest, 0, len(g.questOrder))
	seen := make(map[uuid.UUID]bool, len(g.questOrder))
	for _, id := range g.Story.QuestIDs {
		q, ok := g.quests[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, q)
	}
	for _, id := range g.questOrder {
		if !seen[id] {
			out = append(out, g.quests[id])
		}
	}
	return out
}

// QuestTasks resolves a quest's task list, skipping dangling references.
func (g *Graph) QuestTasks(q *Quest) []*Task {
	out := make([]*Task, 0, len(q.TaskIDs))
	for _, id := range q.TaskIDs {
		if t, ok := g.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// QuestForTask returns the first quest listing the task, or nil.
func (g *Graph) QuestForTask(taskID uuid.UUID) *Quest {
	for _, id := range g.questOrder {
		q := g.quests[id]
		if slices.Contains(q.TaskIDs, taskID) {
			return q
		}
	}
	return nil
}

// RenameQuest changes a quest's title. References are by ID, so nothing
// else needs rewriting.
func (g *Graph) RenameQuest(id uuid.UUID, title string) error {
	q, ok := g.quests[id]
	if !ok {
		return fmt.Errorf("quest %s: %w", id, ErrNotFound)
	}
	if title == "" {
		return ErrEmptyTitle
	}
	if other, exists := g.questIndex[title]; exists && other != id {
		return fmt.Errorf("quest %q: %w", title, ErrDuplicateTitle)
	}
	delete(g.questIndex, q.Title)
	q.Title = title
	g.questIndex[title] = id
	return nil
}

// RenameTask changes a task's title.
func (g *Graph) RenameTask(id uuid.UUID, title string) error {
	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if title == "" {
		return ErrEmptyTitle
	}
	if other, exists := g.taskIndex[title]; exists && other != id {
		return fmt.Errorf("task %q: %w", title, ErrDuplicateTitle)
	}
	delete(g.taskIndex, t.Title)
	t.Title = title
	g.taskIndex[title] = id
	return nil
}

func (g *Graph) QuestCount() int { return len(g.quests) }

func (g *Graph) TaskCount() int { return len(g.tasks) }
