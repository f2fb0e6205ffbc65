package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/brick-arcade/internal/core"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

const panelWidth = 20

// Frame is what the game view shows for one poll.
type Frame struct {
	Title  string
	Info   core.GameInfo
	Status string
}

// DrawFrame lays out the field in a box with the HUD and preview to its right.
func DrawFrame(f Frame) *core.Screen {
	field := f.Info.Field
	boxW := field.Width()*2 + 2
	boxH := field.Height() + 2

	height := boxH
	if height < 14 {
		height = 14
	}
	s := core.NewScreen(boxW+2+panelWidth, height)

	s.DrawBox(core.NewRect(0, 0, boxW, boxH))
	s.DrawGrid(1, 1, field)

	x := boxW + 2
	s.DrawText(x, 1, strings.ToUpper(f.Title))
	s.DrawText(x, 3, fmt.Sprintf("Score  %d", f.Info.Score))
	s.DrawText(x, 4, fmt.Sprintf("Best   %d", f.Info.HighScore))
	s.DrawText(x, 5, fmt.Sprintf("Level  %d", f.Info.Level))
	s.DrawText(x, 7, f.Status)

	if next := f.Info.Next; next.Height() > 0 {
		s.DrawText(x, 9, "Next")
		s.DrawBox(core.NewRect(x, 10, next.Width()*2+2, next.Height()+2))
		s.DrawGrid(x+1, 11, next)
	}
	return s
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
