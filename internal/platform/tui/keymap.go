package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/brick-arcade/internal/core"
)

// GameKeyMap binds terminal keys to game actions.
type GameKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	ActionKey key.Binding
	Start     key.Binding
	Pause     key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.ActionKey, k.Pause, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.ActionKey, k.Start, k.Pause},
		{k.Back, k.Quit},
	}
}

// DefaultGameKeyMap returns the console client's bindings: arrows (or wasd)
// steer, space is Action, enter is Start, p pauses and q terminates.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "w"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("↓/s", "down"),
		),
		ActionKey: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "rotate/boost"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "menu"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Action maps a key press to a game action. ok is false for keys that are
// not game input; Back is handled by the caller and never maps.
func (k GameKeyMap) Action(msg tea.KeyMsg) (a core.Action, ok bool) {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionTerminate, true
	case key.Matches(msg, k.Left):
		return core.ActionLeft, true
	case key.Matches(msg, k.Right):
		return core.ActionRight, true
	case key.Matches(msg, k.Up):
		return core.ActionUp, true
	case key.Matches(msg, k.Down):
		return core.ActionDown, true
	case key.Matches(msg, k.ActionKey):
		return core.ActionAction, true
	case key.Matches(msg, k.Start):
		return core.ActionStart, true
	case key.Matches(msg, k.Pause):
		return core.ActionPause, true
	}
	return core.ActionNothing, false
}

// MenuKeyMap binds keys for the game picker.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Scores key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Scores, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultMenuKeyMap returns the game picker bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play"),
		),
		Scores: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "scores"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}
