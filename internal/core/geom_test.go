package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"left of rect", 5, 15, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},
		{-3, 0, 10, 0},
		{12, 0, 10, 10},
		{0, 1, 10, 1},
	}
	for _, tc := range tests {
		if got := Clamp(tc.val, tc.lo, tc.hi); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.lo, tc.hi, got, tc.expected)
		}
	}
}

func TestGridClone(t *testing.T) {
	g := NewGrid(4, 3)
	g.Set(Point{X: 1, Y: 2}, 7)

	c := g.Clone()
	c.Set(Point{X: 1, Y: 2}, 0)

	if g.At(Point{X: 1, Y: 2}) != 7 {
		t.Error("mutating a clone must not affect the original")
	}
	if c.Width() != 4 || c.Height() != 3 {
		t.Errorf("clone dims = %dx%d, expected 4x3", c.Width(), c.Height())
	}
	if Grid(nil).Clone() != nil {
		t.Error("nil grid should clone to nil")
	}
}

func TestGridBounds(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(Point{X: 5, Y: 5}, 1)
	if g.Count(1) != 0 {
		t.Error("out-of-bounds Set should be ignored")
	}
	if g.At(Point{X: -1, Y: 0}) != CellEmpty {
		t.Error("out-of-bounds At should return CellEmpty")
	}
}

func TestSpeedTable(t *testing.T) {
	table, err := SpeedTableFromMillis([]int{350, 330, 300, 280, 270, 260, 250, 240, 230, 200})
	if err != nil {
		t.Fatalf("SpeedTableFromMillis() error = %v", err)
	}
	if table.At(1) != 350*time.Millisecond {
		t.Errorf("At(1) = %v, expected 350ms", table.At(1))
	}
	if table.At(10) != 200*time.Millisecond {
		t.Errorf("At(10) = %v, expected 200ms", table.At(10))
	}
	if table.At(42) != table.At(10) || table.At(0) != table.At(1) {
		t.Error("At() should clamp out-of-range levels")
	}

	if _, err := SpeedTableFromMillis([]int{1, 2, 3}); err == nil {
		t.Error("short table should be rejected")
	}
	if _, err := SpeedTableFromMillis([]int{100, 100, 90, 80, 70, 60, 50, 40, 30, 20}); err == nil {
		t.Error("non-decreasing table should be rejected")
	}
}

func TestActionJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected Action
		wantErr  bool
	}{
		{`0`, ActionStart, false},
		{`3`, ActionLeft, false},
		{`8`, ActionNothing, false},
		{`"Down"`, ActionDown, false},
		{`"action"`, ActionAction, false},
		{`"7"`, ActionAction, false},
		{`9`, 0, true},
		{`"Jump"`, 0, true},
		{`true`, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			var a Action
			err := json.Unmarshal([]byte(tc.input), &a)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Unmarshal(%s) expected error, got %v", tc.input, a)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tc.input, err)
			}
			if a != tc.expected {
				t.Errorf("Unmarshal(%s) = %v, expected %v", tc.input, a, tc.expected)
			}
		})
	}
}

func TestActionIsDirection(t *testing.T) {
	for a := ActionStart; a <= ActionNothing; a++ {
		want := a == ActionLeft || a == ActionRight || a == ActionUp || a == ActionDown
		if got := a.IsDirection(); got != want {
			t.Errorf("%v.IsDirection() = %v, expected %v", a, got, want)
		}
	}
}

func TestActionBufferLastWriterWins(t *testing.T) {
	var b ActionBuffer
	b.Submit(ActionLeft, false)
	b.Submit(ActionDown, true)

	a, hold := b.Take()
	if a != ActionDown || !hold {
		t.Errorf("Take() = %v/%v, expected Down/true", a, hold)
	}
	if a, _ := b.Take(); a != ActionNothing {
		t.Errorf("Take() after consume = %v, expected Nothing", a)
	}
}

func TestManualClock(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewManualClock(start)
	c.Advance(150 * time.Millisecond)
	if got := c.Now().Sub(start); got != 150*time.Millisecond {
		t.Errorf("elapsed = %v, expected 150ms", got)
	}
}
