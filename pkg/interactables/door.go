package interactables

import "github.com/jwebster45206/quest-engine/pkg/interaction"

// Door opens and closes in a single interaction. A locked door stays shut
// until something unlocks it.
type Door struct {
	interaction.BaseAction
	env       Env
	Name      string
	OpenEvent string // raised the first time the door opens
	Locked    bool
	Open      bool
	opened    bool
}

func NewDoor(env Env, name, openEvent string, locked bool) *Door {
	return &Door{env: env, Name: name, OpenEvent: openEvent, Locked: locked}
}

func (d *Door) Kind() interaction.Kind { return interaction.KindDoor }

func (d *Door) AdvertiseInteraction() bool {
	switch {
	case d.Locked:
		d.env.hint(d.Name + " is locked")
	case d.Open:
		d.env.hint("Close " + d.Name)
	default:
		d.env.hint("Open " + d.Name)
	}
	return false
}

func (d *Door) PerformInteraction() bool {
	if d.Locked {
		d.env.hint(d.Name + " won't budge")
		return false
	}
	d.Open = !d.Open
	if d.Open {
		d.env.hint("Close " + d.Name)
	} else {
		d.env.hint("Open " + d.Name)
	}
	if d.Open && !d.opened {
		d.opened = true
		d.env.raise(d.OpenEvent)
	}
	return false
}

func (d *Door) Unlock() { d.Locked = false }
