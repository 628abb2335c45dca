package progress

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// sharedGraphs decodes the same bundle twice so both graphs carry equal IDs.
func sharedGraphs(t *testing.T) (*quest.Graph, *quest.Graph) {
	t.Helper()
	g, err := quest.Decode([]byte(labBundle), quest.FormatJSON)
	require.NoError(t, err)
	data, err := quest.Encode(g, quest.FormatJSON)
	require.NoError(t, err)
	a, err := quest.Decode(data, quest.FormatJSON)
	require.NoError(t, err)
	b, err := quest.Decode(data, quest.FormatJSON)
	require.NoError(t, err)
	return a, b
}

func TestSnapshot_RestoreOntoFreshGraph(t *testing.T) {
	a, b := sharedGraphs(t)

	source := NewEngine(a, testLogger())
	source.HandleSignificantEvent("code_found")
	snap := source.Snapshot("lab")

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	markers := newMarkerLog()
	target := NewEngine(b, testLogger())
	target.Restore(&decoded)
	target.WithMarkers(markers)

	assert.Equal(t, "lab", decoded.Scene)
	assert.True(t, target.Events().Has("code_found"))
	assert.True(t, target.Events().Has("side_done"))
	assert.Equal(t, quest.StateCompleted, target.GetTask("Find Code").State)
	assert.Equal(t, quest.StateActive, target.GetTask("Open Door").State)
	assert.True(t, target.GetTask("Open Door").IsActive)
	assert.Equal(t, "Open Door", target.CurrentTaskName())
	assert.Equal(t, "Get In", target.CurrentQuestName())
	assert.True(t, markers.state["Door Marker"])
	assert.False(t, markers.state["Find Code"])

	view, ok := target.QuestView("Get In")
	require.True(t, ok)
	assert.Equal(t, "Open Door", view.CurrentTask)

	first, _ := source.Events().At("code_found")
	restored, _ := target.Events().At("code_found")
	assert.True(t, first.Equal(restored))

	// Progress continues from the restored point.
	target.HandleSignificantEvent("door_opened")
	assert.Equal(t, quest.StateCompleted, target.GetQuest("Get In").State)
}

func TestSnapshot_RestoreKeepsQuestTaskPointers(t *testing.T) {
	a, b := sharedGraphs(t)

	source := NewEngine(a, testLogger())
	source.HandleSignificantEvent("code_found")
	// Point "Get In" back at its completed first task so the saved pointer
	// differs from the first active task.
	require.True(t, source.SetCurrentTaskName("Find Code"))
	snap := source.Snapshot("lab")
	require.Equal(t, source.GetTask("Find Code").ID, snap.QuestTasks[source.GetQuest("Get In").ID])

	target := NewEngine(b, testLogger())
	target.Restore(snap)

	view, ok := target.QuestView("Get In")
	require.True(t, ok)
	assert.Equal(t, "Find Code", view.CurrentTask)
	getOut, ok := target.QuestView("Get Out")
	require.True(t, ok)
	assert.Equal(t, "Leave", getOut.CurrentTask)
}

func TestSnapshot_RestoreWithoutQuestTasksUsesActiveTask(t *testing.T) {
	a, b := sharedGraphs(t)

	source := NewEngine(a, testLogger())
	source.HandleSignificantEvent("code_found")
	snap := source.Snapshot("lab")
	snap.QuestTasks = nil

	target := NewEngine(b, testLogger())
	target.Restore(snap)

	view, ok := target.QuestView("Get In")
	require.True(t, ok)
	assert.Equal(t, "Open Door", view.CurrentTask)
}

func TestSnapshot_RestoreIgnoresUnknownIDs(t *testing.T) {
	e, _, _ := newTestEngine(t, labBundle)

	e.Restore(&Snapshot{
		Quests:       map[uuid.UUID]quest.State{uuid.New(): quest.StateCompleted},
		Tasks:        map[uuid.UUID]quest.State{uuid.New(): quest.StateCompleted},
		CurrentQuest: uuid.New(),
		CurrentTask:  uuid.New(),
	})
	e.Restore(nil)

	assert.Equal(t, "Get In", e.CurrentQuestName())
	assert.Equal(t, "", e.CurrentTaskName())
	for _, task := range e.Graph().Tasks() {
		assert.Equal(t, quest.StatePending, task.State)
	}
}

func TestViews(t *testing.T) {
	e, _, _ := newTestEngine(t, labBundle)
	e.HandleSignificantEvent("code_found")

	views := e.QuestViews()
	require.Len(t, views, 3)
	assert.Equal(t, "Get In", views[0].Title)
	assert.True(t, views[0].Current)
	assert.Equal(t, "Open Door", views[0].CurrentTask)
	require.Len(t, views[0].Tasks, 2)
	assert.Equal(t, quest.StateCompleted, views[0].Tasks[0].State)
	assert.False(t, views[0].Tasks[0].Current)
	assert.True(t, views[0].Tasks[1].Current)
	assert.Equal(t, "Door Marker", views[0].Tasks[1].Marker)
	assert.Equal(t, "Find Code", views[0].Tasks[0].Marker)
	assert.False(t, views[1].Current)
	assert.Equal(t, "Side Job", views[2].Title)
	assert.Equal(t, quest.StateCompleted, views[2].State)

	_, ok := e.QuestView("Missing")
	assert.False(t, ok)
	v, ok := e.QuestView("Get Out")
	require.True(t, ok)
	assert.Equal(t, "Leave", v.CurrentTask)

	events := e.EventViews()
	require.Len(t, events, 2)
	assert.Equal(t, "code_found", events[0].Tag)
	assert.Equal(t, "Code Found", events[0].Display)
	assert.Equal(t, "Side Done", events[1].Display)
}
