package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle_ValidateCleanBundle(t *testing.T) {
	b, err := DecodeBundle([]byte(handAuthoredBundle), FormatJSON)
	require.NoError(t, err)

	problems := b.Validate()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], `unknown task "Ghost Task"`)
}

func TestBundle_ValidateReportsProblems(t *testing.T) {
	b := &Bundle{
		Story: StoryRecord{
			QuestTitles:  []string{"Q1", "Nowhere"},
			CurrentQuest: "Elsewhere",
		},
		Quests: []QuestRecord{
			{Title: "Q1", TaskTitles: []string{"T1"}, CurrentTask: "T2", CompletionEvent: "q1_unlisted"},
			{Title: "Q1"},
			{ID: "bogus", Title: "Q2", GameState: "void"},
		},
		Tasks: []TaskRecord{
			{Title: "T1", CompletionEvent: "t1_done"},
			{Title: "T2"},
			{Title: "", CompletionEvent: "t1_done"},
			{Title: "T3", CompletionEvent: "unlisted"},
		},
		CompletionEvents: []string{"t1_done"},
		GameStates:       []string{"lab"},
	}

	problems := b.Validate()
	expected := []string{
		`task "T2" has no completion event and can never complete`,
		`task #3 has no title`,
		`task "T3" completion event "unlisted" is not in completion_events`,
		`quest "Q1" current task "T2" is not one of its tasks`,
		`quest "Q1" completion event "q1_unlisted" is not in completion_events`,
		`quest "Q1" is defined more than once`,
		`quest "Q2" game state "void" is not in game_states`,
		`story references unknown quest "Nowhere"`,
		`story current quest "Elsewhere" does not exist`,
	}
	for _, want := range expected {
		assert.Contains(t, problems, want)
	}

	var sawBadID bool
	for _, p := range problems {
		if p == `quest "Q2": invalid id "bogus": invalid UUID length: 5` {
			sawBadID = true
		}
	}
	assert.True(t, sawBadID, "expected invalid id problem in %v", problems)
}
