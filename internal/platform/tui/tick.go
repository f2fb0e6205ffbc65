// Package tui provides the Bubble Tea integration for the brick games.
// It polls a Driver on a fixed cadence and draws each snapshot to the terminal.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultPollEvery is how often the terminal client polls its game.
const DefaultPollEvery = 100 * time.Millisecond

// TickMsg is sent on every poll tick.
type TickMsg time.Time

// tickCmd returns a command that fires one TickMsg after every.
func tickCmd(every time.Duration) tea.Cmd {
	if every <= 0 {
		every = DefaultPollEvery
	}
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
