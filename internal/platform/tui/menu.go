package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/brick-arcade/internal/registry"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

// MenuModel is the game picker.
type MenuModel struct {
	items  []registry.GameInfo
	cursor int
	width  int
	keys   MenuKeyMap
	help   help.Model
	notice string // shown under the list, e.g. a failed start

	quitting       bool
	selected       *registry.GameInfo
	openScoreboard bool
}

// NewMenuModel creates a menu listing every registered game.
func NewMenuModel(width int) MenuModel {
	return MenuModel{
		items: registry.List(),
		width: width,
		keys:  DefaultMenuKeyMap(),
		help:  help.New(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.items) > 0 {
				selected := m.items[m.cursor]
				m.selected = &selected
			}
		case key.Matches(msg, m.keys.Scores):
			m.openScoreboard = true
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("B R I C K   A R C A D E"), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := fmt.Sprintf("  %d. %s", item.Number, item.Title)
		if i == m.cursor {
			line = selectedStyle.Render(fmt.Sprintf("> %d. %s", item.Number, item.Title))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(centerText(errorStyle.Render(m.notice), m.width))
		b.WriteString("\n")
	}
	b.WriteString(centerText(helpStyle.Render(m.help.View(m.keys)), m.width))
	b.WriteString("\n")
	return b.String()
}

// WithNotice returns the menu showing notice under the list.
func (m MenuModel) WithNotice(notice string) MenuModel {
	m.notice = notice
	return m
}

// Selected returns the selected game, or nil if none selected.
func (m MenuModel) Selected() *registry.GameInfo {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}
