package progress

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// Snapshot is the session progress that lives outside the authored quest
// graph: which events happened, and where every quest and task stands.
type Snapshot struct {
	Scene        string                    `json:"scene"`
	Events       []quest.RecordedEvent     `json:"events"`
	Quests       map[uuid.UUID]quest.State `json:"quests"`
	Tasks        map[uuid.UUID]quest.State `json:"tasks"`
	CurrentQuest uuid.UUID                 `json:"current_quest"`
	CurrentTask  uuid.UUID                 `json:"current_task"`
	QuestTasks   map[uuid.UUID]uuid.UUID   `json:"quest_tasks,omitempty"` // quest ID -> its current task ID
	SavedAt      time.Time                 `json:"saved_at"`
}

// Snapshot captures the engine's progress for scene.
func (e *Engine) Snapshot(scene string) *Snapshot {
	s := &Snapshot{
		Scene:        scene,
		Events:       e.events.Events(),
		Quests:       make(map[uuid.UUID]quest.State, e.graph.QuestCount()),
		Tasks:        make(map[uuid.UUID]quest.State, e.graph.TaskCount()),
		CurrentQuest: e.graph.Story.CurrentQuestID,
		CurrentTask:  e.currentTaskID,
		QuestTasks:   make(map[uuid.UUID]uuid.UUID),
		SavedAt:      e.now(),
	}
	for _, q := range e.graph.Quests() {
		s.Quests[q.ID] = q.State
		if q.CurrentTaskID != uuid.Nil {
			s.QuestTasks[q.ID] = q.CurrentTaskID
		}
	}
	for _, t := range e.graph.Tasks() {
		s.Tasks[t.ID] = t.State
	}
	return s
}

// Restore replays a snapshot onto the engine. Entries for unknown IDs are
// ignored, states only move forward, and markers are resynchronised.
func (e *Engine) Restore(s *Snapshot) {
	if s == nil {
		return
	}
	for _, ev := range s.Events {
		e.events.Record(ev.Tag, ev.At)
	}
	for id, st := range s.Quests {
		if q := e.graph.Quest(id); q != nil {
			q.State = q.State.Advance(st)
		}
	}
	for id, st := range s.Tasks {
		if t := e.graph.Task(id); t != nil {
			t.State = t.State.Advance(st)
		}
	}
	for _, t := range e.graph.Tasks() {
		t.IsActive = t.State == quest.StateActive
	}
	for _, q := range e.graph.Quests() {
		e.restoreCurrentTask(q, s.QuestTasks[q.ID])
	}
	e.syncMarkers()
	if q := e.graph.Quest(s.CurrentQuest); q != nil {
		e.graph.Story.CurrentQuestID = q.ID
		q.IsActive = !q.State.IsCompleted()
	}
	if t := e.graph.Task(s.CurrentTask); t != nil {
		e.currentTaskID = t.ID
	} else if q := e.graph.Quest(e.graph.Story.CurrentQuestID); q != nil && e.graph.Task(q.CurrentTaskID) != nil {
		e.currentTaskID = q.CurrentTaskID
	}
	e.logger.Info("Progress restored",
		"scene", s.Scene,
		"events", len(s.Events),
		"saved_at", s.SavedAt)
}

// restoreCurrentTask points q at saved when it is one of q's tasks, and
// otherwise at q's first active task. Snapshots written before quest task
// pointers were saved take the second path.
func (e *Engine) restoreCurrentTask(q *quest.Quest, saved uuid.UUID) {
	if saved != uuid.Nil && slices.Contains(q.TaskIDs, saved) && e.graph.Task(saved) != nil {
		q.CurrentTaskID = saved
		return
	}
	for _, t := range e.graph.QuestTasks(q) {
		if t.State == quest.StateActive {
			q.CurrentTaskID = t.ID
			return
		}
	}
}
