package progress

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// MarkerSet toggles the world objects that show the player where the
// active task is.
type MarkerSet interface {
	SetMarkerActive(name string, active bool)
}

// Engine owns quest progression for one scene session. It is not safe for
// concurrent use; callers drive it from a single logical thread.
type Engine struct {
	graph    *quest.Graph
	events   *quest.EventLog
	markers  MarkerSet
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	currentTaskID uuid.UUID
}

// NewEngine creates an engine over g. A nil graph is treated as empty.
func NewEngine(g *quest.Graph, logger *slog.Logger) *Engine {
	if g == nil {
		g = quest.NewGraph()
	}
	e := &Engine{
		graph:  g,
		events: quest.NewEventLog(),
		logger: logger,
		now:    time.Now,
	}
	if q := g.Quest(g.Story.CurrentQuestID); q != nil {
		e.currentTaskID = q.CurrentTaskID
	}
	return e
}

// WithMarkers sets the activity marker set toggled during propagation and
// brings every marker in line with its task.
// Returns the Engine for method chaining
func (e *Engine) WithMarkers(m MarkerSet) *Engine {
	e.markers = m
	e.syncMarkers()
	return e
}

func (e *Engine) syncMarkers() {
	for _, t := range e.graph.Tasks() {
		e.setMarker(t, t.IsActive)
	}
}

// WithNotifier sets the receiver of progression notifications.
// Returns the Engine for method chaining
func (e *Engine) WithNotifier(n Notifier) *Engine {
	e.notifier = n
	return e
}

// WithClock overrides the time source used to stamp significant events.
// Returns the Engine for method chaining
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) Graph() *quest.Graph { return e.graph }

func (e *Engine) Events() *quest.EventLog { return e.events }

// CurrentQuestName returns the title of the current quest, or "".
func (e *Engine) CurrentQuestName() string {
	if q := e.graph.Quest(e.graph.Story.CurrentQuestID); q != nil {
		return q.Title
	}
	return ""
}

// SetCurrentQuestName makes the titled quest current and active. Unknown
// titles are logged and ignored.
func (e *Engine) SetCurrentQuestName(title string) bool {
	q := e.graph.QuestByTitle(title)
	if q == nil {
		e.logger.Error("Cannot set current quest: quest not found", "quest", title)
		return false
	}
	if prev := e.graph.Quest(e.graph.Story.CurrentQuestID); prev != nil && prev != q {
		prev.IsActive = false
	}
	q.State = q.State.Advance(quest.StateActive)
	q.IsActive = true
	e.graph.Story.CurrentQuestID = q.ID
	if t := e.graph.Task(q.CurrentTaskID); t != nil {
		e.currentTaskID = t.ID
	}
	return true
}

// CurrentTaskName returns the title of the current task, or "".
func (e *Engine) CurrentTaskName() string {
	if t := e.graph.Task(e.currentTaskID); t != nil {
		return t.Title
	}
	return ""
}

// SetCurrentTaskName makes the titled task current and active. Unknown
// titles are logged and ignored.
func (e *Engine) SetCurrentTaskName(title string) bool {
	t := e.graph.TaskByTitle(title)
	if t == nil {
		e.logger.Error("Cannot set current task: task not found", "task", title)
		return false
	}
	if prev := e.graph.Task(e.currentTaskID); prev != nil && prev != t {
		prev.IsActive = false
	}
	t.State = t.State.Advance(quest.StateActive)
	t.IsActive = !t.State.IsCompleted()
	e.currentTaskID = t.ID
	if q := e.graph.QuestForTask(t.ID); q != nil {
		q.CurrentTaskID = t.ID
	}
	return true
}

// ActiveOrCompletedQuests returns titles of quests that are active or
// completed. It is recomputed on every call.
func (e *Engine) ActiveOrCompletedQuests() []string {
	var titles []string
	for _, q := range e.graph.OrderedQuests() {
		if q.State == quest.StateActive || q.State == quest.StateCompleted {
			titles = append(titles, q.Title)
		}
	}
	return titles
}

// OutstandingQuests returns titles of quests not yet completed, in story
// order followed by unlisted quests in insertion order.
func (e *Engine) OutstandingQuests() []string {
	var titles []string
	for _, q := range e.outstanding() {
		titles = append(titles, q.Title)
	}
	return titles
}

func (e *Engine) outstanding() []*quest.Quest {
	var out []*quest.Quest
	for _, q := range e.graph.OrderedQuests() {
		if !q.State.IsCompleted() {
			out = append(out, q)
		}
	}
	return out
}

// GetQuest returns nil when no quest has the title.
func (e *Engine) GetQuest(title string) *quest.Quest { return e.graph.QuestByTitle(title) }

// GetTask returns nil when no task has the title.
func (e *Engine) GetTask(title string) *quest.Task { return e.graph.TaskByTitle(title) }

// StoryCompleted reports whether every quest on the story list is completed.
// A story with no quests is never complete.
func (e *Engine) StoryCompleted() bool {
	if len(e.graph.Story.QuestIDs) == 0 {
		return false
	}
	for _, id := range e.graph.Story.QuestIDs {
		q := e.graph.Quest(id)
		if q == nil || !q.State.IsCompleted() {
			return false
		}
	}
	return true
}

// HandleSignificantEvent records tag and rescans every outstanding quest.
// A task whose completion event has been recorded completes; the first open
// task of each quest becomes its active task; a quest whose tasks are all
// completed completes. Repeating a tag keeps its first timestamp but still
// rescans.
func (e *Engine) HandleSignificantEvent(tag string) {
	if tag == "" {
		return
	}
	now := e.now()
	if e.events.Record(tag, now) {
		e.logger.Info("Significant event recorded", "event", tag)
		e.notify(Notification{Type: EventRecorded, Event: tag, At: now})
	} else {
		e.logger.Debug("Significant event repeated", "event", tag)
	}

	for _, q := range e.outstanding() {
		e.scanQuest(q, now)
	}
}

func (e *Engine) scanQuest(q *quest.Quest, now time.Time) {
	allSubtasksCompleted := true
	foundNextActiveMarker := false

	for _, id := range q.TaskIDs {
		t := e.graph.Task(id)
		if t == nil {
			e.logger.Warn("Quest references missing task", "quest", q.Title, "task_id", id)
			allSubtasksCompleted = false
			continue
		}

		if t.State.IsCompleted() || e.events.Has(t.CompletionEvent) {
			wasCompleted := t.State.IsCompleted()
			t.State = quest.StateCompleted
			t.IsActive = false
			e.setMarker(t, false)
			if !wasCompleted {
				e.logger.Info("Task completed", "quest", q.Title, "task", t.Title)
				e.notify(Notification{Type: TaskCompleted, Quest: q.Title, Task: t.Title, At: now})
			}
		} else if !foundNextActiveMarker {
			foundNextActiveMarker = true
			wasActive := t.State == quest.StateActive
			t.State = quest.StateActive
			t.IsActive = true
			e.setMarker(t, true)
			q.CurrentTaskID = t.ID
			q.State = q.State.Advance(quest.StateActive)
			if q.ID == e.graph.Story.CurrentQuestID {
				e.currentTaskID = t.ID
			}
			if !wasActive {
				e.logger.Info("Task activated", "quest", q.Title, "task", t.Title)
				e.notify(Notification{Type: TaskActivated, Quest: q.Title, Task: t.Title, At: now})
			}
		}

		if !t.State.IsCompleted() {
			allSubtasksCompleted = false
		}
	}

	if !allSubtasksCompleted {
		return
	}
	q.State = quest.StateCompleted
	q.IsActive = false
	e.logger.Info("Quest completed", "quest", q.Title)
	e.notify(Notification{Type: QuestCompleted, Quest: q.Title, At: now})

	// Later calls see the quest's own completion event.
	if e.events.Record(q.CompletionEvent, now) {
		e.notify(Notification{Type: EventRecorded, Event: q.CompletionEvent, Quest: q.Title, At: now})
	}
}

func (e *Engine) setMarker(t *quest.Task, active bool) {
	if e.markers == nil {
		return
	}
	e.markers.SetMarkerActive(t.MarkerName(), active)
}

func (e *Engine) notify(n Notification) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(n)
}
