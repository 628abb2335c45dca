package quest

import (
	"fmt"
	"slices"
)

// Validate reports referential and vocabulary problems in a bundle. The
// runtime tolerates all of them; authoring tools should not.
func (b *Bundle) Validate() []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	tasks := make(map[string]bool, len(b.Tasks))
	for i, t := range b.Tasks {
		switch {
		case t.Title == "":
			add("task #%d has no title", i+1)
		case tasks[t.Title]:
			add("task %q is defined more than once", t.Title)
		}
		tasks[t.Title] = true
		if _, err := parseID(t.ID); err != nil {
			add("task %q: %v", t.Title, err)
		}
		if t.CompletionEvent == "" {
			add("task %q has no completion event and can never complete", t.Title)
		} else if len(b.CompletionEvents) > 0 && !slices.Contains(b.CompletionEvents, t.CompletionEvent) {
			add("task %q completion event %q is not in completion_events", t.Title, t.CompletionEvent)
		}
		if t.GameState != "" && len(b.GameStates) > 0 && !slices.Contains(b.GameStates, t.GameState) {
			add("task %q game state %q is not in game_states", t.Title, t.GameState)
		}
	}

	quests := make(map[string]bool, len(b.Quests))
	for i, q := range b.Quests {
		switch {
		case q.Title == "":
			add("quest #%d has no title", i+1)
		case quests[q.Title]:
			add("quest %q is defined more than once", q.Title)
		}
		quests[q.Title] = true
		if _, err := parseID(q.ID); err != nil {
			add("quest %q: %v", q.Title, err)
		}
		for _, title := range q.TaskTitles {
			if !tasks[title] {
				add("quest %q references unknown task %q", q.Title, title)
			}
		}
		if q.CurrentTask != "" && !slices.Contains(q.TaskTitles, q.CurrentTask) {
			add("quest %q current task %q is not one of its tasks", q.Title, q.CurrentTask)
		}
		if q.CompletionEvent != "" && len(b.CompletionEvents) > 0 && !slices.Contains(b.CompletionEvents, q.CompletionEvent) {
			add("quest %q completion event %q is not in completion_events", q.Title, q.CompletionEvent)
		}
		if q.GameState != "" && len(b.GameStates) > 0 && !slices.Contains(b.GameStates, q.GameState) {
			add("quest %q game state %q is not in game_states", q.Title, q.GameState)
		}
	}

	for _, title := range b.Story.QuestTitles {
		if !quests[title] {
			add("story references unknown quest %q", title)
		}
	}
	if b.Story.CurrentQuest != "" && !quests[b.Story.CurrentQuest] {
		add("story current quest %q does not exist", b.Story.CurrentQuest)
	}
	return problems
}
