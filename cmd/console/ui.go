package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/session"
	"github.com/jwebster45206/quest-engine/pkg/interactables"
	"github.com/jwebster45206/quest-engine/pkg/interaction"
	"github.com/jwebster45206/quest-engine/pkg/progress"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

const frameInterval = 100 * time.Millisecond

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config      *ConsoleConfig
	client      *http.Client
	sim         *simulation
	sceneView   viewport.Model
	pdaViewport viewport.Model
	ready       bool
	width       int
	height      int
	err         error
	notice      string

	quests []progress.QuestView
	events []progress.EventView
	status *session.Status

	input frameInput

	// Quit confirmation state
	showQuitModal bool
}

// frameInput buffers key presses between ticks.
type frameInput struct {
	primary bool
	escape  bool
	submit  bool
	typed   []rune
}

type tickMsg time.Time

type questsMsg struct {
	quests []progress.QuestView
	err    error
}

type statusMsg struct {
	status *session.Status
	err    error
}

type eventRaisedMsg struct {
	tag  string
	resp *handlers.RaiseEventResponse
	err  error
}

type currentQuestMsg struct {
	view *progress.QuestView
	err  error
}

var (
	scenePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(1)

	pdaPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	objectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // dark grey
			Strikethrough(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, sim *simulation) ConsoleUI {
	return ConsoleUI{
		config:      cfg,
		client:      client,
		sim:         sim,
		sceneView:   viewport.New(60, 20),
		pdaViewport: viewport.New(40, 20),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(frameTick(), m.loadQuests(), m.loadStatus())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		sceneWidth, pdaWidth := m.panelWidths()
		m.sceneView.Width = sceneWidth - 3
		m.sceneView.Height = m.height - 2
		m.pdaViewport.Width = pdaWidth - 4
		m.pdaViewport.Height = m.height - 4
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m.runFrame(time.Time(msg))

	case questsMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.quests = msg.quests
			m.applyMarkers()
		}
		m.refresh()

	case statusMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = msg.status
		}
		m.refresh()

	case eventRaisedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("event %s: %w", msg.tag, msg.err)
		} else {
			m.err = nil
			m.quests = msg.resp.Quests
			m.events = msg.resp.Events
			m.notice = "Event: " + quest.DisplayTag(msg.tag)
			if msg.resp.StoryCompleted {
				m.notice = "Story complete!"
			}
			m.applyMarkers()
		}
		m.refresh()
		return m, m.loadStatus()

	case currentQuestMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.notice = "Current quest: " + msg.view.Title
		}
		return m, tea.Batch(m.loadQuests(), m.loadStatus())
	}

	return m, nil
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.sim.controller.Abort()
		return m, tea.Quit
	}

	if m.sim.controller.State() == interaction.StateContinuing {
		switch msg.Type {
		case tea.KeyEsc:
			m.input.escape = true
		case tea.KeyEnter:
			m.input.submit = true
		case tea.KeyRunes:
			m.input.typed = append(m.input.typed, msg.Runes...)
		}
		return m, nil
	}

	if m.sim.pda.homeOpen {
		switch msg.String() {
		case "esc", "p":
			m.sim.pda.homeOpen = false
			m.sim.player.SetInputEnabled(true)
			m.refresh()
		case "[":
			return m, m.cycleQuest(-1)
		case "]":
			return m, m.cycleQuest(1)
		}
		return m, nil
	}

	switch msg.String() {
	case "left", "a":
		if m.sim.player.inputEnabled {
			m.sim.corridor.move(-1)
		}
	case "right", "d":
		if m.sim.player.inputEnabled {
			m.sim.corridor.move(1)
		}
	case "e", " ":
		m.input.primary = true
	case "p":
		m.sim.pda.ShowHomeScreen()
		m.sim.player.SetInputEnabled(false)
		m.refresh()
		return m, m.loadStatus()
	case "c":
		m.copyCurrentTask()
		m.refresh()
	case "q", "esc":
		m.showQuitModal = true
	}
	return m, nil
}

// runFrame feeds the buffered input to the controller and posts whatever
// events the frame raised.
func (m ConsoleUI) runFrame(now time.Time) (tea.Model, tea.Cmd) {
	frame := interaction.Frame{
		Now:         now,
		PrimaryDown: m.input.primary,
		Escape:      m.input.escape,
		Submit:      m.input.submit,
		Typed:       m.input.typed,
	}
	m.input = frameInput{}
	m.sim.controller.Tick(frame)

	cmds := []tea.Cmd{frameTick()}
	if tags := m.sim.events.drain(); len(tags) > 0 {
		cmds = append(cmds, m.postEvents(tags))
	}
	if m.sim.pda.homeOpen {
		m.sim.player.SetInputEnabled(false)
	}
	m.refresh()
	return m, tea.Batch(cmds...)
}

// applyMarkers shows the marker of every active task and hides the rest.
func (m *ConsoleUI) applyMarkers() {
	for _, q := range m.quests {
		for _, t := range q.Tasks {
			m.sim.markers.SetMarkerActive(t.Marker, t.State == quest.StateActive)
		}
	}
}

func (m *ConsoleUI) copyCurrentTask() {
	for _, q := range m.quests {
		if !q.Current {
			continue
		}
		for _, t := range q.Tasks {
			if !t.Current {
				continue
			}
			text := fmt.Sprintf("%s: %s", q.Title, t.Title)
			if t.ShortDescription != "" {
				text += " - " + t.ShortDescription
			}
			if err := clipboard.WriteAll(text); err != nil {
				m.err = fmt.Errorf("copy failed: %w", err)
				return
			}
			m.notice = "Copied current task"
			return
		}
	}
	m.notice = "No current task to copy"
}

func (m ConsoleUI) cycleQuest(dir int) tea.Cmd {
	var open []string
	current := -1
	for _, q := range m.quests {
		if q.State.IsCompleted() {
			continue
		}
		if q.Current {
			current = len(open)
		}
		open = append(open, q.Title)
	}
	if len(open) == 0 {
		return nil
	}
	next := (current + dir + len(open)) % len(open)
	if current < 0 && dir < 0 {
		next = len(open) - 1
	}
	return m.setCurrent(open[next])
}

func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	m.sceneView.SetContent(m.renderScene())
	m.pdaViewport.SetContent(m.renderPDA())
}

func (m ConsoleUI) renderScene() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SCENE: "+m.sim.scene.Name) + "\n\n")

	var parts []string
	for _, c := range m.sim.corridor.cells() {
		switch c.kind {
		case cellPlayer:
			parts = append(parts, playerStyle.Render(c.label))
		case cellMarker:
			parts = append(parts, markerStyle.Render("◆ "+c.label))
		default:
			parts = append(parts, objectStyle.Render("["+c.label+"]"))
		}
	}
	b.WriteString(wordwrap.String(strings.Join(parts, "  "), m.sceneView.Width) + "\n\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", max(m.sceneView.Width-2, 1))) + "\n")

	switch m.sim.hud.icon {
	case interaction.IconInteract:
		b.WriteString(activeStyle.Render("[E] "))
	case interaction.IconUnknown:
		b.WriteString(promptStyle.Render("[?] "))
	}
	b.WriteString(m.sim.hud.hint + "\n\n")

	if id, ok := m.sim.controller.Current(); ok {
		b.WriteString(m.renderInteraction(id))
	}

	if m.notice != "" {
		b.WriteString(activeStyle.Render(m.notice) + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + promptStyle.Render(m.helpLine()))
	return b.String()
}

func (m ConsoleUI) renderInteraction(id world.ObjectID) string {
	it, ok := m.sim.registry.Lookup(id)
	if !ok {
		return ""
	}
	var b strings.Builder
	switch v := it.(type) {
	case *interactables.Keypad:
		b.WriteString(titleStyle.Render(v.Name) + "\n")
		b.WriteString("> " + strings.Repeat("*", len(v.Entry())) + "\n\n")
	case *interactables.Screen:
		b.WriteString(titleStyle.Render(v.Name) + "\n")
		for _, line := range v.Lines {
			b.WriteString(wordwrap.String(line, m.sceneView.Width-2) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ConsoleUI) helpLine() string {
	switch {
	case m.sim.controller.State() == interaction.StateContinuing:
		return "digits: type  enter: submit  esc: leave"
	case m.sim.pda.homeOpen:
		return "[ ]: change quest  p/esc: close PDA"
	default:
		return "a/d: move  e: use  p: PDA  c: copy task  q: quit"
	}
}

func (m ConsoleUI) renderPDA() string {
	width := max(m.pdaViewport.Width, 10)
	var b strings.Builder

	if m.sim.pda.homeOpen {
		b.WriteString(titleStyle.Render("PDA") + "\n\n")
		if m.status != nil {
			b.WriteString(wordwrap.String(m.status.Story, width) + "\n\n")
			b.WriteString("Current quest:\n" + orNone(m.status.CurrentQuest) + "\n\n")
			b.WriteString("Current task:\n" + orNone(m.status.CurrentTask) + "\n\n")
			b.WriteString(fmt.Sprintf("Outstanding: %d\n", len(m.status.Outstanding)))
			if m.status.StoryCompleted {
				b.WriteString(activeStyle.Render("Story complete") + "\n")
			}
		}
		return b.String()
	}

	b.WriteString(titleStyle.Render("QUESTS") + "\n\n")
	for _, q := range m.quests {
		b.WriteString(renderQuestTitle(q) + "\n")
		if q.Current && q.ShortDescription != "" {
			b.WriteString(promptStyle.Render(wordwrap.String(q.ShortDescription, width)) + "\n")
		}
		for _, t := range q.Tasks {
			b.WriteString("  " + renderTask(t) + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.events) > 0 {
		b.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n")
		b.WriteString(titleStyle.Render("EVENTS") + "\n")
		for _, ev := range m.events {
			b.WriteString(fmt.Sprintf("%s %s\n", ev.At.Format("15:04:05"), ev.Display))
		}
	}
	return b.String()
}

func renderQuestTitle(q progress.QuestView) string {
	prefix := "  "
	if q.Current {
		prefix = "▶ "
	}
	switch q.State {
	case quest.StateCompleted:
		return prefix + completedStyle.Render(q.Title)
	case quest.StateActive:
		return prefix + activeStyle.Render(q.Title)
	default:
		return prefix + q.Title
	}
}

func renderTask(t progress.TaskView) string {
	switch t.State {
	case quest.StateCompleted:
		return "✓ " + completedStyle.Render(t.Title)
	case quest.StateActive:
		return "• " + activeStyle.Render(t.Title)
	default:
		return "· " + promptStyle.Render(t.Title)
	}
}

func orNone(s string) string {
	if s == "" {
		return promptStyle.Render("none")
	}
	return s
}

func (m ConsoleUI) panelWidths() (int, int) {
	sceneWidth := int(float64(m.width)*0.6) - 2
	return sceneWidth, m.width - sceneWidth - 2
}

func (m ConsoleUI) loadQuests() tea.Cmd {
	return func() tea.Msg {
		quests, err := getQuests(m.client, m.config.APIBaseURL)
		return questsMsg{quests, err}
	}
}

func (m ConsoleUI) loadStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := getStatus(m.client, m.config.APIBaseURL)
		return statusMsg{status, err}
	}
}

// postEvents sends tags in the order they were raised and reports the last
// response.
func (m ConsoleUI) postEvents(tags []string) tea.Cmd {
	return func() tea.Msg {
		var msg eventRaisedMsg
		for _, tag := range tags {
			resp, err := raiseEvent(m.client, m.config.APIBaseURL, tag)
			msg = eventRaisedMsg{tag, resp, err}
			if err != nil {
				break
			}
		}
		return msg
	}
}

func (m ConsoleUI) setCurrent(title string) tea.Cmd {
	return func() tea.Msg {
		view, err := setCurrentQuest(m.client, m.config.APIBaseURL, title)
		return currentQuestMsg{view, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		// The scene is paused while the modal is open.
		return m, frameTick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			m.sim.controller.Abort()
			return m, tea.Quit
		case tea.KeyEsc:
			m.showQuitModal = false
			return m, nil
		default:
			switch msg.String() {
			case "y", "Y":
				m.sim.controller.Abort()
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Progress is saved by the API after every event.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	sceneWidth, pdaWidth := m.panelWidths()

	scenePanel := scenePanelStyle.Width(sceneWidth).Height(m.height - 1).Render(
		m.sceneView.View(),
	)
	pdaPanel := pdaPanelStyle.Width(pdaWidth - 2).Height(m.height - 2).Render(
		m.pdaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, scenePanel, pdaPanel)
}

// frameTick creates a command that drives the next simulation frame
func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
