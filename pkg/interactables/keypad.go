package interactables

import (
	"strings"
	"time"

	"github.com/jwebster45206/quest-engine/pkg/interaction"
)

const maxKeypadDigits = 12

// Keypad takes a code over several frames. A correct code raises its event
// and unlocks the linked door; a wrong one locks the pad for Cooldown.
type Keypad struct {
	env      Env
	Name     string
	Code     string
	Event    string
	Door     *Door
	Cooldown time.Duration

	entry   []rune
	lockout interaction.Timer
	solved  bool
}

func NewKeypad(env Env, name, code, event string, door *Door, cooldown time.Duration) *Keypad {
	return &Keypad{
		env:      env,
		Name:     name,
		Code:     code,
		Event:    event,
		Door:     door,
		Cooldown: cooldown,
	}
}

func (k *Keypad) Kind() interaction.Kind { return interaction.KindKeypad }

func (k *Keypad) Solved() bool { return k.solved }

// Entry returns the digits typed so far.
func (k *Keypad) Entry() string { return string(k.entry) }

func (k *Keypad) AdvertiseInteraction() bool {
	if k.solved {
		k.env.hint(k.Name + ": access granted")
		return false
	}
	k.env.hint("Use " + k.Name)
	return true
}

func (k *Keypad) PerformInteraction() bool {
	if k.solved {
		k.env.hint(k.Name + ": access granted")
		return false
	}
	k.entry = k.entry[:0]
	k.env.hint("Enter code, Enter to submit, Esc to leave")
	return true
}

func (k *Keypad) ContinueInteraction(f interaction.Frame) interaction.ContinueResult {
	if f.Escape {
		k.CompleteInteraction()
		return interaction.Completed
	}
	if k.lockout.Running(f.Now) {
		return interaction.Continuing
	}
	if k.lockout.Expired(f.Now) {
		k.lockout.Stop()
		k.env.hint("Enter code")
	}

	for _, r := range f.Typed {
		if r >= '0' && r <= '9' && len(k.entry) < maxKeypadDigits {
			k.entry = append(k.entry, r)
		}
	}
	if len(f.Typed) > 0 {
		k.env.hint(strings.Repeat("*", len(k.entry)))
	}
	if !f.Submit {
		return interaction.Continuing
	}

	if string(k.entry) == k.Code {
		k.solved = true
		k.entry = k.entry[:0]
		k.env.hint(k.Name + ": access granted")
		if k.Door != nil {
			k.Door.Unlock()
		}
		k.env.raise(k.Event)
		return interaction.Completed
	}

	k.entry = k.entry[:0]
	k.lockout.Start(f.Now, k.Cooldown)
	k.env.hint(k.Name + ": access denied")
	if k.env.Logger != nil {
		k.env.Logger.Debug("Keypad rejected code", "keypad", k.Name)
	}
	return interaction.Continuing
}

func (k *Keypad) CompleteInteraction() {
	k.entry = k.entry[:0]
	k.env.hint("")
}
