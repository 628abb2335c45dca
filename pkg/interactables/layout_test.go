package interactables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/interaction"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

const labLayout = `
objects:
  - id: whiteboard
    name: Whiteboard
    kind: whiteboard
    text: "Code starts with 47"
    event: whiteboard_read
    position: 1
  - id: keypad
    name: Keypad
    kind: keypad
    code: "4711"
    door: lab_door
    cooldown: 5s
    event: keypad_solved
  - id: lab_door
    name: Lab Door
    kind: door
    locked: true
    event: lab_door_opened
  - id: brick
    kind: databrick
    event: databrick_collected
  - id: marker_code
    name: Crack The Keypad
    tag: ActivityMarker
`

func TestLayout_Build(t *testing.T) {
	layout, err := DecodeLayout([]byte(labLayout))
	require.NoError(t, err)
	assert.Equal(t, 1.0, layout.Objects[0].Position)

	env, _, _ := testEnv()
	scene := world.NewScene("lab")
	reg := interaction.NewRegistry()
	require.NoError(t, layout.Build(env, scene, reg))

	assert.Len(t, scene.Objects(), 5)
	assert.Equal(t, 4, reg.Len())
	assert.Equal(t, "brick", scene.Object("brick").Name)

	it, ok := reg.Lookup("keypad")
	require.True(t, ok)
	keypad := it.(*Keypad)
	assert.Equal(t, 5*time.Second, keypad.Cooldown)
	require.NotNil(t, keypad.Door)
	assert.True(t, keypad.Door.Locked)

	doorIt, ok := reg.Lookup("lab_door")
	require.True(t, ok)
	assert.Same(t, keypad.Door, doorIt.(*Door))

	_, ok = reg.Lookup("marker_code")
	assert.False(t, ok)

	brick, _ := reg.Lookup("brick")
	brick.PerformInteraction()
	assert.False(t, scene.Object("brick").Active)
}

func TestLayout_BuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		layout string
	}{
		{"unknown kind", "objects:\n  - id: x\n    kind: toaster\n"},
		{"unknown door", "objects:\n  - id: k\n    kind: keypad\n    door: nowhere\n"},
		{"bad cooldown", "objects:\n  - id: k\n    kind: keypad\n    cooldown: soon\n"},
		{"duplicate id", "objects:\n  - id: x\n  - id: x\n"},
		{"missing id", "objects:\n  - name: nameless\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := DecodeLayout([]byte(tt.layout))
			require.NoError(t, err)
			env, _, _ := testEnv()
			assert.Error(t, layout.Build(env, world.NewScene("lab"), interaction.NewRegistry()))
		})
	}
}

func TestDecodeLayout_Invalid(t *testing.T) {
	_, err := DecodeLayout([]byte("objects: [unterminated"))
	assert.Error(t, err)
}
