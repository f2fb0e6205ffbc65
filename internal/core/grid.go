package core

// Cell values shared by all games.
const (
	CellEmpty  = 0
	CellBody   = 1 // snake segment, race car
	CellMarker = 9 // food, obstacle, wall
)

// Point is a grid coordinate. X grows to the right, Y grows downward.
type Point struct {
	X, Y int
}

// Add returns p shifted by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Grid is a row-major cell buffer: Grid[y][x].
type Grid [][]int

// NewGrid allocates a zeroed grid with the given dimensions.
func NewGrid(width, height int) Grid {
	g := make(Grid, height)
	cells := make([]int, width*height)
	for y := range g {
		g[y], cells = cells[:width:width], cells[width:]
	}
	return g
}

// Width returns the number of columns.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows.
func (g Grid) Height() int {
	return len(g)
}

// InBounds reports whether p addresses a cell of the grid.
func (g Grid) InBounds(p Point) bool {
	return p.Y >= 0 && p.Y < len(g) && p.X >= 0 && p.X < g.Width()
}

// At returns the value at p, or CellEmpty when p is out of bounds.
func (g Grid) At(p Point) int {
	if !g.InBounds(p) {
		return CellEmpty
	}
	return g[p.Y][p.X]
}

// Set stores v at p. Out-of-bounds writes are silently ignored.
func (g Grid) Set(p Point, v int) {
	if g.InBounds(p) {
		g[p.Y][p.X] = v
	}
}

// Fill sets every cell to v.
func (g Grid) Fill(v int) {
	for y := range g {
		for x := range g[y] {
			g[y][x] = v
		}
	}
}

// Count returns how many cells hold v.
func (g Grid) Count(v int) int {
	n := 0
	for y := range g {
		for x := range g[y] {
			if g[y][x] == v {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy. A nil grid clones to nil.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	c := NewGrid(g.Width(), g.Height())
	for y := range g {
		copy(c[y], g[y])
	}
	return c
}
