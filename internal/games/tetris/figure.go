package tetris

import "github.com/vovakirdan/brick-arcade/internal/core"

// Shape identifies one of the seven tetrominoes.
type Shape int

const (
	ShapeI Shape = iota
	ShapeL
	ShapeJ
	ShapeO
	ShapeT
	ShapeS
	ShapeZ
	shapeCount
)

var shapeNames = [shapeCount]string{"I", "L", "J", "O", "T", "S", "Z"}

// offsets are relative to the anchor in orientation 0.
var offsets = [shapeCount][4]core.Point{
	ShapeI: {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}},
	ShapeL: {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}},
	ShapeJ: {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}},
	ShapeO: {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
	ShapeT: {{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 0}},
	ShapeS: {{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
	ShapeZ: {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}},
}

func (s Shape) String() string {
	if s < 0 || s >= shapeCount {
		return "?"
	}
	return shapeNames[s]
}

// Cell is the field value used for a settled or falling block of this shape.
func (s Shape) Cell() int { return int(s) + 1 }

// Rotates reports whether the shape reacts to rotation; the square never does.
func (s Shape) Rotates() bool { return s != ShapeO }

// Offsets returns the four block offsets for the given orientation (0..3),
// each rotated by 90° steps around the anchor.
func (s Shape) Offsets(orientation int) [4]core.Point {
	var out [4]core.Point
	for i, p := range offsets[s] {
		out[i] = rotate(p, orientation)
	}
	return out
}

func rotate(p core.Point, orientation int) core.Point {
	switch orientation & 3 {
	case 1:
		return core.Point{X: -p.Y, Y: p.X}
	case 2:
		return core.Point{X: -p.X, Y: -p.Y}
	case 3:
		return core.Point{X: p.Y, Y: -p.X}
	default:
		return p
	}
}

// Figure is a placed tetromino.
type Figure struct {
	Shape       Shape
	X, Y        int // anchor in storage coordinates
	Orientation int
}

// Cells returns the storage coordinates the figure covers.
func (f Figure) Cells() [4]core.Point {
	cells := f.Shape.Offsets(f.Orientation)
	for i := range cells {
		cells[i] = cells[i].Add(core.Point{X: f.X, Y: f.Y})
	}
	return cells
}

// Moved returns the figure shifted by dx, dy.
func (f Figure) Moved(dx, dy int) Figure {
	f.X += dx
	f.Y += dy
	return f
}

// Rotated returns the figure turned one step clockwise.
func (f Figure) Rotated() Figure {
	f.Orientation = (f.Orientation + 1) % 4
	return f
}
