// Package interactables implements the world objects a player can use:
// doors, keypads, computer screens, databricks and whiteboards.
package interactables

import (
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/interaction"
)

// EventSink receives significant events raised by interactables.
type EventSink interface {
	HandleSignificantEvent(tag string)
}

// Env is what every interactable needs from its scene.
type Env struct {
	HUD    interaction.HUD
	Events EventSink
	Logger *slog.Logger
}

func (e Env) hint(text string) {
	if e.HUD != nil {
		e.HUD.SetHint(text)
	}
}

func (e Env) raise(tag string) {
	if tag == "" || e.Events == nil {
		return
	}
	e.Events.HandleSignificantEvent(tag)
}

var (
	_ interaction.Interactable = (*Door)(nil)
	_ interaction.Interactable = (*Keypad)(nil)
	_ interaction.Interactable = (*Screen)(nil)
	_ interaction.Interactable = (*Databrick)(nil)
	_ interaction.Interactable = (*Whiteboard)(nil)
	_ interaction.Spender      = (*Databrick)(nil)
)
