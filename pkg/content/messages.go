package content

import (
	"sort"
	"time"
)

// GameMessage is a piece of narrative text delivered to the player's PDA.
type GameMessage struct {
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Shown   bool      `json:"shown"`
	ShownAt time.Time `json:"shown_at,omitempty"`
}

// Messages is a scene's message collection keyed by title.
type Messages struct {
	byTitle map[string]*GameMessage
}

// NewMessages builds the collection from title -> body assets.
func NewMessages(assets map[string]string) *Messages {
	m := &Messages{byTitle: make(map[string]*GameMessage, len(assets))}
	for title, body := range assets {
		m.byTitle[title] = &GameMessage{Title: title, Body: body}
	}
	return m
}

// Get returns nil when no message has the title.
func (m *Messages) Get(title string) *GameMessage { return m.byTitle[title] }

// Show marks the message shown at now. The timestamp tracks the most
// recent showing.
func (m *Messages) Show(title string, now time.Time) (*GameMessage, bool) {
	msg, ok := m.byTitle[title]
	if !ok {
		return nil, false
	}
	msg.Shown = true
	msg.ShownAt = now
	return msg, true
}

// Titles returns every title, sorted.
func (m *Messages) Titles() []string {
	titles := make([]string, 0, len(m.byTitle))
	for t := range m.byTitle {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Unshown returns the titles of messages not yet shown, sorted.
func (m *Messages) Unshown() []string {
	var titles []string
	for _, t := range m.Titles() {
		if !m.byTitle[t].Shown {
			titles = append(titles, t)
		}
	}
	return titles
}

func (m *Messages) Len() int { return len(m.byTitle) }
