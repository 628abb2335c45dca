package interactables

import (
	"github.com/jwebster45206/quest-engine/pkg/interaction"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// Databrick is a data storage brick the player picks up.
type Databrick struct {
	interaction.BaseAction
	env       Env
	Label     string
	Event     string
	Object    *world.Object // hidden once collected
	collected bool
}

func NewDatabrick(env Env, label, event string, obj *world.Object) *Databrick {
	return &Databrick{env: env, Label: label, Event: event, Object: obj}
}

func (d *Databrick) Kind() interaction.Kind { return interaction.KindDatabrick }

func (d *Databrick) Collected() bool { return d.collected }

// Spent hides a collected brick from the interaction controller.
func (d *Databrick) Spent() bool { return d.collected }

func (d *Databrick) AdvertiseInteraction() bool {
	if d.collected {
		d.env.hint("")
		return false
	}
	d.env.hint("Take " + d.Label)
	return false
}

func (d *Databrick) PerformInteraction() bool {
	if d.collected {
		return false
	}
	d.collected = true
	if d.Object != nil {
		d.Object.Active = false
	}
	d.env.hint("Collected " + d.Label)
	d.env.raise(d.Event)
	return false
}

// Whiteboard shows its text as a hint. Reading it raises ReadEvent once.
type Whiteboard struct {
	interaction.BaseAction
	env       Env
	Text      string
	ReadEvent string
	read      bool
}

func NewWhiteboard(env Env, text, readEvent string) *Whiteboard {
	return &Whiteboard{env: env, Text: text, ReadEvent: readEvent}
}

func (w *Whiteboard) Kind() interaction.Kind { return interaction.KindWhiteboard }

func (w *Whiteboard) AdvertiseInteraction() bool {
	w.env.hint(w.Text)
	return false
}

func (w *Whiteboard) PerformInteraction() bool {
	if !w.read {
		w.read = true
		w.env.raise(w.ReadEvent)
	}
	return false
}
