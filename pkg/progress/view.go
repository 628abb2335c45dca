package progress

import (
	"time"

	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// QuestView is the read model a PDA quest screen renders.
type QuestView struct {
	Title            string      `json:"title"`
	ShortDescription string      `json:"short_description,omitempty"`
	LongDescription  string      `json:"long_description,omitempty"`
	State            quest.State `json:"state"`
	Current          bool        `json:"current"`
	CurrentTask      string      `json:"current_task,omitempty"`
	Tasks            []TaskView  `json:"tasks"`
}

type TaskView struct {
	Title            string      `json:"title"`
	ShortDescription string      `json:"short_description,omitempty"`
	State            quest.State `json:"state"`
	Current          bool        `json:"current"`
	Marker           string      `json:"marker"`
}

type EventView struct {
	Tag     string    `json:"tag"`
	Display string    `json:"display"`
	At      time.Time `json:"at"`
}

// QuestViews returns every quest in iteration order.
func (e *Engine) QuestViews() []QuestView {
	quests := e.graph.OrderedQuests()
	out := make([]QuestView, 0, len(quests))
	for _, q := range quests {
		out = append(out, e.questView(q))
	}
	return out
}

// QuestView returns the view of one quest.
func (e *Engine) QuestView(title string) (QuestView, bool) {
	q := e.graph.QuestByTitle(title)
	if q == nil {
		return QuestView{}, false
	}
	return e.questView(q), true
}

func (e *Engine) questView(q *quest.Quest) QuestView {
	v := QuestView{
		Title:            q.Title,
		ShortDescription: q.ShortDescription,
		LongDescription:  q.LongDescription,
		State:            q.State,
		Current:          q.ID == e.graph.Story.CurrentQuestID,
		Tasks:            make([]TaskView, 0, len(q.TaskIDs)),
	}
	if t := e.graph.Task(q.CurrentTaskID); t != nil {
		v.CurrentTask = t.Title
	}
	for _, t := range e.graph.QuestTasks(q) {
		v.Tasks = append(v.Tasks, TaskView{
			Title:            t.Title,
			ShortDescription: t.ShortDescription,
			State:            t.State,
			Current:          t.ID == e.currentTaskID,
			Marker:           t.MarkerName(),
		})
	}
	return v
}

// EventViews returns the recorded events ordered by tag.
func (e *Engine) EventViews() []EventView {
	recorded := e.events.Events()
	out := make([]EventView, 0, len(recorded))
	for _, ev := range recorded {
		out = append(out, EventView{Tag: ev.Tag, Display: quest.DisplayTag(ev.Tag), At: ev.At})
	}
	return out
}
