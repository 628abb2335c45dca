package interactables

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/interaction"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

type hintHUD struct {
	hint string
}

func (h *hintHUD) ShowActionIcon(interaction.Icon) {}
func (h *hintHUD) SetHint(text string)             { h.hint = text }
func (h *hintHUD) HideAffordances()                { h.hint = "" }

type eventSink struct {
	tags []string
}

func (s *eventSink) HandleSignificantEvent(tag string) {
	s.tags = append(s.tags, tag)
}

func testEnv() (Env, *hintHUD, *eventSink) {
	hud := &hintHUD{}
	sink := &eventSink{}
	return Env{HUD: hud, Events: sink, Logger: slog.New(slog.DiscardHandler)}, hud, sink
}

func typed(now time.Time, s string, submit bool) interaction.Frame {
	return interaction.Frame{Now: now, Typed: []rune(s), Submit: submit}
}

func TestDoor(t *testing.T) {
	env, hud, sink := testEnv()
	d := NewDoor(env, "Lab Door", "lab_door_opened", true)

	assert.False(t, d.AdvertiseInteraction())
	assert.Equal(t, "Lab Door is locked", hud.hint)
	assert.False(t, d.PerformInteraction())
	assert.False(t, d.Open)
	assert.Empty(t, sink.tags)

	d.Unlock()
	d.AdvertiseInteraction()
	assert.Equal(t, "Open Lab Door", hud.hint)

	d.PerformInteraction()
	assert.True(t, d.Open)
	assert.Equal(t, "Close Lab Door", hud.hint)
	d.PerformInteraction()
	assert.False(t, d.Open)
	d.PerformInteraction()

	assert.Equal(t, []string{"lab_door_opened"}, sink.tags)
	assert.Equal(t, interaction.Completed, d.ContinueInteraction(interaction.Frame{}))
}

func TestKeypad_CorrectCodeUnlocksDoor(t *testing.T) {
	env, hud, sink := testEnv()
	door := NewDoor(env, "Lab Door", "", true)
	k := NewKeypad(env, "Keypad", "4711", "keypad_solved", door, 3*time.Second)
	now := time.Now()

	require.True(t, k.AdvertiseInteraction())
	require.True(t, k.PerformInteraction())

	assert.Equal(t, interaction.Continuing, k.ContinueInteraction(typed(now, "47a", false)))
	assert.Equal(t, "47", k.Entry())
	assert.Equal(t, "**", hud.hint)

	assert.Equal(t, interaction.Completed, k.ContinueInteraction(typed(now, "11", true)))
	assert.True(t, k.Solved())
	assert.False(t, door.Locked)
	assert.Equal(t, []string{"keypad_solved"}, sink.tags)

	assert.False(t, k.AdvertiseInteraction())
	assert.False(t, k.PerformInteraction())
	assert.Equal(t, "Keypad: access granted", hud.hint)
}

func TestKeypad_WrongCodeLocksOut(t *testing.T) {
	env, hud, sink := testEnv()
	k := NewKeypad(env, "Keypad", "4711", "keypad_solved", nil, 3*time.Second)
	now := time.Now()
	k.PerformInteraction()

	assert.Equal(t, interaction.Continuing, k.ContinueInteraction(typed(now, "0000", true)))
	assert.Equal(t, "Keypad: access denied", hud.hint)
	assert.Empty(t, k.Entry())

	// Input during the lockout is ignored.
	assert.Equal(t, interaction.Continuing, k.ContinueInteraction(typed(now.Add(time.Second), "4711", true)))
	assert.Empty(t, k.Entry())
	assert.False(t, k.Solved())

	after := now.Add(3 * time.Second)
	assert.Equal(t, interaction.Completed, k.ContinueInteraction(typed(after, "4711", true)))
	assert.True(t, k.Solved())
	assert.Equal(t, []string{"keypad_solved"}, sink.tags)
}

func TestKeypad_EscapeLeaves(t *testing.T) {
	env, hud, _ := testEnv()
	k := NewKeypad(env, "Keypad", "1", "", nil, time.Second)
	now := time.Now()
	k.PerformInteraction()
	k.ContinueInteraction(typed(now, "9", false))

	assert.Equal(t, interaction.Completed, k.ContinueInteraction(interaction.Frame{Now: now, Escape: true}))
	assert.Empty(t, k.Entry())
	assert.Empty(t, hud.hint)
}

func TestKeypad_EntryIsCapped(t *testing.T) {
	env, _, _ := testEnv()
	k := NewKeypad(env, "Keypad", "1", "", nil, time.Second)
	k.PerformInteraction()
	k.ContinueInteraction(typed(time.Now(), "12345678901234567890", false))
	assert.Len(t, k.Entry(), maxKeypadDigits)
}

func TestScreen(t *testing.T) {
	tests := []struct {
		name    string
		handoff bool
		want    interaction.ContinueResult
	}{
		{"completes", false, interaction.Completed},
		{"hands off to pda", true, interaction.ShowPdaHomeScreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, sink := testEnv()
			s := NewScreen(env, "Terminal", []string{"hello"}, "terminal_read", tt.handoff)

			assert.True(t, s.AdvertiseInteraction())
			assert.True(t, s.PerformInteraction())
			assert.Equal(t, interaction.Continuing, s.ContinueInteraction(interaction.Frame{Typed: []rune("x")}))
			assert.Equal(t, tt.want, s.ContinueInteraction(interaction.Frame{Escape: true}))

			s.PerformInteraction()
			assert.Equal(t, []string{"terminal_read"}, sink.tags)
		})
	}
}

func TestDatabrick(t *testing.T) {
	env, hud, sink := testEnv()
	obj := &world.Object{ID: "brick", Name: "Databrick", Active: true}
	d := NewDatabrick(env, "Databrick", "databrick_collected", obj)

	d.AdvertiseInteraction()
	assert.Equal(t, "Take Databrick", hud.hint)

	assert.False(t, d.PerformInteraction())
	assert.True(t, d.Collected())
	assert.True(t, d.Spent())
	assert.False(t, obj.Active)

	d.PerformInteraction()
	assert.Equal(t, []string{"databrick_collected"}, sink.tags)
}

func TestWhiteboard(t *testing.T) {
	env, hud, sink := testEnv()
	w := NewWhiteboard(env, "Code starts with 47", "whiteboard_read")

	assert.False(t, w.AdvertiseInteraction())
	assert.Equal(t, "Code starts with 47", hud.hint)

	w.PerformInteraction()
	w.PerformInteraction()
	assert.Equal(t, []string{"whiteboard_read"}, sink.tags)
}

func TestEnv_NilCollaborators(t *testing.T) {
	w := NewWhiteboard(Env{}, "text", "read")
	assert.NotPanics(t, func() {
		w.AdvertiseInteraction()
		w.PerformInteraction()
	})
}
