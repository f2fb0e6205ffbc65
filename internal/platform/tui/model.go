package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/brick-arcade/internal/core"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model for one running game. It polls its driver on
// every tick and forwards key presses as actions.
type Model struct {
	driver    Driver
	title     string
	pollEvery time.Duration
	keys      GameKeyMap
	help      help.Model

	info     core.GameInfo
	state    core.GameState
	hasState bool
	err      error

	quitting   bool // q: leave the arcade
	backToMenu bool // esc: leave this game only
}

// NewModel creates a game model around driver.
func NewModel(driver Driver, title string, pollEvery time.Duration) Model {
	if title == "" {
		title = driver.GameID()
	}
	return Model{
		driver:    driver,
		title:     title,
		pollEvery: pollEvery,
		keys:      DefaultGameKeyMap(),
		help:      help.New(),
	}
}

// Init starts the poll loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.pollEvery)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		m.poll()
		return m, tickCmd(m.pollEvery)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.backToMenu = true
		return m, nil
	}

	action, ok := m.keys.Action(msg)
	if !ok {
		return m, nil
	}

	m.err = m.driver.Submit(action)
	if action == core.ActionTerminate {
		// let the engine see it so the host can shut down
		m.poll()
		m.quitting = true
	}
	return m, nil
}

func (m *Model) poll() {
	info, err := m.driver.Poll()
	if err != nil {
		m.err = err
		return
	}
	m.info = info
	m.err = nil

	if sr, ok := m.driver.(StateReader); ok {
		if st, err := sr.State(); err == nil {
			m.state = st
			m.hasState = true
		}
	}
}

// status describes the run for the HUD.
func (m Model) status() string {
	if m.hasState {
		switch {
		case m.state.GameOver:
			return "GAME OVER"
		case !m.state.Started:
			return "PRESS ENTER"
		}
	}
	if m.info.Paused() {
		return "PAUSED"
	}
	return ""
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	frame := DrawFrame(Frame{Title: m.title, Info: m.info, Status: m.status()})
	var b strings.Builder
	b.WriteString(RenderScreen(frame))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Info returns the last snapshot polled.
func (m Model) Info() core.GameInfo {
	return m.info
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}
