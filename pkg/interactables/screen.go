package interactables

import "github.com/jwebster45206/quest-engine/pkg/interaction"

// Screen is a computer terminal the player reads until they press Escape.
// With HandoffToPDA set, leaving the terminal opens the PDA home screen.
type Screen struct {
	env          Env
	Name         string
	Lines        []string
	ReadEvent    string
	HandoffToPDA bool
	read         bool
}

func NewScreen(env Env, name string, lines []string, readEvent string, handoff bool) *Screen {
	return &Screen{env: env, Name: name, Lines: lines, ReadEvent: readEvent, HandoffToPDA: handoff}
}

func (s *Screen) Kind() interaction.Kind { return interaction.KindScreen }

func (s *Screen) AdvertiseInteraction() bool {
	s.env.hint("Use " + s.Name)
	return true
}

func (s *Screen) PerformInteraction() bool {
	s.env.hint("Esc to log off")
	if !s.read {
		s.read = true
		s.env.raise(s.ReadEvent)
	}
	return true
}

func (s *Screen) ContinueInteraction(f interaction.Frame) interaction.ContinueResult {
	if !f.Escape {
		return interaction.Continuing
	}
	s.env.hint("")
	if s.HandoffToPDA {
		return interaction.ShowPdaHomeScreen
	}
	return interaction.Completed
}

func (s *Screen) CompleteInteraction() {
	s.env.hint("")
}
