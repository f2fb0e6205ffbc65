package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
)

// pieceColors follows the usual tetromino palette; index is the cell value.
var pieceColors = [...]Color{
	CellEmpty:  ColorGray,
	1:          ColorCyan,
	2:          ColorOrange,
	3:          ColorBlue,
	4:          ColorYellow,
	5:          ColorMagenta,
	6:          ColorGreen,
	7:          ColorRed,
	8:          ColorWhite,
	CellMarker: ColorRed,
}

// CellColor returns the display color of a grid value.
func CellColor(v int) Color {
	if v < 0 || v >= len(pieceColors) {
		return ColorDefault
	}
	return pieceColors[v]
}
