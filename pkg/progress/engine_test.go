package progress

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/quest"
)

const labBundle = `{
  "story": {"title": "Lab Breach", "quest_titles": ["Get In", "Get Out"], "current_quest": "Get In"},
  "quests": [
    {"title": "Get In", "completion_event": "inside", "task_titles": ["Find Code", "Open Door"]},
    {"title": "Get Out", "completion_event": "outside", "task_titles": ["Leave"]},
    {"title": "Side Job", "completion_event": "side_done"}
  ],
  "tasks": [
    {"title": "Find Code", "completion_event": "code_found"},
    {"title": "Open Door", "completion_event": "door_opened", "marker": "Door Marker"},
    {"title": "Leave", "completion_event": "inside"}
  ]
}`

type markerLog struct {
	state   map[string]bool
	toggles int
}

func newMarkerLog() *markerLog {
	return &markerLog{state: make(map[string]bool)}
}

func (m *markerLog) SetMarkerActive(name string, active bool) {
	m.state[name] = active
	m.toggles++
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestEngine(t *testing.T, bundle string) (*Engine, *Recorder, *markerLog) {
	t.Helper()
	g, err := quest.Decode([]byte(bundle), quest.FormatJSON)
	require.NoError(t, err)
	rec := &Recorder{}
	markers := newMarkerLog()
	e := NewEngine(g, testLogger()).
		WithClock(fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))).
		WithNotifier(rec).
		WithMarkers(markers)
	return e, rec, markers
}

func TestEngine_TasksProgressInOrder(t *testing.T) {
	e, rec, markers := newTestEngine(t, `{
  "story": {"title": "S", "quest_titles": ["Q"], "current_quest": "Q"},
  "quests": [{"title": "Q", "completion_event": "q_done", "task_titles": ["T1", "T2"]}],
  "tasks": [
    {"title": "T1", "completion_event": "e1"},
    {"title": "T2", "completion_event": "e2"}
  ]
}`)

	e.HandleSignificantEvent("e1")

	assert.Equal(t, quest.StateCompleted, e.GetTask("T1").State)
	assert.Equal(t, quest.StateActive, e.GetTask("T2").State)
	assert.True(t, e.GetTask("T2").IsActive)
	assert.Equal(t, quest.StateActive, e.GetQuest("Q").State)
	assert.Equal(t, "T2", e.CurrentTaskName())
	assert.False(t, markers.state["T1"])
	assert.True(t, markers.state["T2"])
	assert.False(t, e.StoryCompleted())

	e.HandleSignificantEvent("e2")

	assert.Equal(t, quest.StateCompleted, e.GetTask("T2").State)
	assert.Equal(t, quest.StateCompleted, e.GetQuest("Q").State)
	assert.False(t, markers.state["T2"])
	assert.True(t, e.Events().Has("q_done"))
	assert.True(t, e.StoryCompleted())

	require.Len(t, rec.Of(QuestCompleted), 1)
	assert.Equal(t, "Q", rec.Of(QuestCompleted)[0].Quest)
	assert.Len(t, rec.Of(TaskCompleted), 2)
	assert.Len(t, rec.Of(TaskActivated), 1)

	recorded := rec.Of(EventRecorded)
	require.Len(t, recorded, 3)
	assert.Equal(t, "q_done", recorded[2].Event)
	assert.Equal(t, "Q", recorded[2].Quest)
}

func TestEngine_OutOfOrderEvents(t *testing.T) {
	e, _, _ := newTestEngine(t, labBundle)

	e.HandleSignificantEvent("door_opened")

	assert.Equal(t, quest.StateActive, e.GetTask("Find Code").State)
	assert.Equal(t, quest.StateCompleted, e.GetTask("Open Door").State)
	assert.Equal(t, quest.StateActive, e.GetQuest("Get In").State)

	e.HandleSignificantEvent("code_found")

	assert.Equal(t, quest.StateCompleted, e.GetQuest("Get In").State)
}

func TestEngine_QuestCompletionEventCascades(t *testing.T) {
	e, _, _ := newTestEngine(t, labBundle)

	e.HandleSignificantEvent("code_found")
	e.HandleSignificantEvent("door_opened")

	// "Leave" completes on "inside", which "Get In" records when it completes.
	assert.Equal(t, quest.StateCompleted, e.GetQuest("Get In").State)
	assert.Equal(t, quest.StateCompleted, e.GetTask("Leave").State)
	assert.Equal(t, quest.StateCompleted, e.GetQuest("Get Out").State)
	assert.True(t, e.StoryCompleted())
	assert.Empty(t, e.OutstandingQuests())
}

func TestEngine_EmptyQuestCompletesOnFirstEvent(t *testing.T) {
	e, rec, _ := newTestEngine(t, labBundle)

	e.HandleSignificantEvent("anything")

	assert.Equal(t, quest.StateCompleted, e.GetQuest("Side Job").State)
	assert.True(t, e.Events().Has("side_done"))
	assert.Len(t, rec.Of(QuestCompleted), 1)
}

func TestEngine_RepeatedEventKeepsFirstTimestamp(t *testing.T) {
	e, rec, _ := newTestEngine(t, labBundle)

	e.HandleSignificantEvent("code_found")
	first, ok := e.Events().At("code_found")
	require.True(t, ok)

	e.HandleSignificantEvent("code_found")
	again, _ := e.Events().At("code_found")

	assert.Equal(t, first, again)
	var codeFound int
	for _, n := range rec.Of(EventRecorded) {
		if n.Event == "code_found" {
			codeFound++
		}
	}
	assert.Equal(t, 1, codeFound)
	assert.Len(t, rec.Of(TaskCompleted), 1)
}

func TestEngine_EmptyTagIgnored(t *testing.T) {
	e, rec, _ := newTestEngine(t, labBundle)

	e.HandleSignificantEvent("")

	assert.Equal(t, 0, e.Events().Len())
	assert.Empty(t, rec.Notifications)
	assert.Equal(t, quest.StatePending, e.GetTask("Find Code").State)
}

func TestEngine_UnrelatedEventActivatesFirstTasks(t *testing.T) {
	e, rec, markers := newTestEngine(t, labBundle)

	e.HandleSignificantEvent("noise")
	e.HandleSignificantEvent("more_noise")

	assert.Equal(t, quest.StateActive, e.GetTask("Find Code").State)
	assert.Equal(t, quest.StatePending, e.GetTask("Open Door").State)
	assert.Equal(t, quest.StateActive, e.GetTask("Leave").State)
	assert.True(t, markers.state["Find Code"])
	assert.False(t, markers.state["Door Marker"])
	assert.Len(t, rec.Of(TaskActivated), 2)
	assert.Equal(t, []string{"Get In", "Get Out", "Side Job"}, e.ActiveOrCompletedQuests())
}

func TestEngine_DanglingTaskBlocksCompletion(t *testing.T) {
	g, err := quest.Decode([]byte(labBundle), quest.FormatJSON)
	require.NoError(t, err)
	side := g.QuestByTitle("Side Job")
	side.TaskIDs = append(side.TaskIDs, g.TaskByTitle("Leave").ID)
	side.TaskIDs = append(side.TaskIDs, uuid.New())

	e := NewEngine(g, testLogger())
	e.HandleSignificantEvent("inside")

	assert.Equal(t, quest.StateCompleted, e.GetTask("Leave").State)
	assert.NotEqual(t, quest.StateCompleted, e.GetQuest("Side Job").State)
}

func TestEngine_LoadedDanglingReferencesNeverComplete(t *testing.T) {
	data := `{
  "story": {"title": "S", "quest_titles": ["Real", "Ghosted", "Missing Quest"]},
  "quests": [
    {"title": "Real", "task_titles": ["Only"]},
    {"title": "Ghosted", "task_titles": ["Ghost Task"]}
  ],
  "tasks": [{"title": "Only", "completion_event": "e1"}]
}`
	g, err := quest.Decode([]byte(data), quest.FormatJSON)
	require.NoError(t, err)
	e := NewEngine(g, testLogger())

	e.HandleSignificantEvent("unrelated")
	assert.NotEqual(t, quest.StateCompleted, e.GetQuest("Ghosted").State)

	e.HandleSignificantEvent("e1")
	assert.Equal(t, quest.StateCompleted, e.GetQuest("Real").State)
	assert.NotEqual(t, quest.StateCompleted, e.GetQuest("Ghosted").State)
	assert.False(t, e.StoryCompleted())
}

func TestEngine_StatesNeverRegress(t *testing.T) {
	e, _, _ := newTestEngine(t, labBundle)
	e.HandleSignificantEvent("code_found")

	require.True(t, e.SetCurrentTaskName("Find Code"))
	assert.Equal(t, quest.StateCompleted, e.GetTask("Find Code").State)
	assert.False(t, e.GetTask("Find Code").IsActive)

	e.Restore(&Snapshot{
		Tasks: map[uuid.UUID]quest.State{e.GetTask("Find Code").ID: quest.StatePending},
	})
	assert.Equal(t, quest.StateCompleted, e.GetTask("Find Code").State)
}

func TestEngine_CurrentQuestAndTask(t *testing.T) {
	e, _, _ := newTestEngine(t, labBundle)

	assert.Equal(t, "Get In", e.CurrentQuestName())
	assert.False(t, e.SetCurrentQuestName("Missing"))
	assert.Equal(t, "Get In", e.CurrentQuestName())

	require.True(t, e.SetCurrentQuestName("Get Out"))
	assert.Equal(t, "Get Out", e.CurrentQuestName())
	assert.Equal(t, quest.StateActive, e.GetQuest("Get Out").State)
	assert.True(t, e.GetQuest("Get Out").IsActive)

	assert.False(t, e.SetCurrentTaskName("Missing"))
	require.True(t, e.SetCurrentTaskName("Leave"))
	assert.Equal(t, "Leave", e.CurrentTaskName())
	assert.Equal(t, e.GetTask("Leave").ID, e.GetQuest("Get Out").CurrentTaskID)
}

func TestEngine_StoryWithoutQuestsNeverCompletes(t *testing.T) {
	e := NewEngine(nil, testLogger())
	e.HandleSignificantEvent("anything")
	assert.False(t, e.StoryCompleted())
	assert.Empty(t, e.OutstandingQuests())
	assert.Equal(t, "", e.CurrentQuestName())
	assert.Equal(t, "", e.CurrentTaskName())
}

func TestEngine_NotifierFunc(t *testing.T) {
	g, err := quest.Decode([]byte(labBundle), quest.FormatJSON)
	require.NoError(t, err)

	var types []NotificationType
	e := NewEngine(g, testLogger()).WithNotifier(NotifierFunc(func(n Notification) {
		types = append(types, n.Type)
	}))
	e.HandleSignificantEvent("code_found")

	assert.Equal(t, EventRecorded, types[0])
	assert.Contains(t, types, TaskCompleted)
	assert.Contains(t, types, TaskActivated)
}
