package core

import (
	"errors"
	"fmt"
	"time"
)

// Level bounds shared by every game.
const (
	MinLevel = 1
	MaxLevel = 10
)

// SpeedTable maps a level to the step interval used at that level.
type SpeedTable [MaxLevel]time.Duration

// SpeedTableFromMillis builds a table from millisecond values.
func SpeedTableFromMillis(ms []int) (SpeedTable, error) {
	var t SpeedTable
	if len(ms) != MaxLevel {
		return t, fmt.Errorf("core: speed table needs %d entries, got %d", MaxLevel, len(ms))
	}
	for i, v := range ms {
		t[i] = time.Duration(v) * time.Millisecond
	}
	return t, t.Validate()
}

// At returns the interval for level, clamping level into [MinLevel, MaxLevel].
func (t SpeedTable) At(level int) time.Duration {
	return t[Clamp(level, MinLevel, MaxLevel)-1]
}

// Validate checks that entries are positive and strictly decreasing.
func (t SpeedTable) Validate() error {
	for i, d := range t {
		if d <= 0 {
			return errors.New("core: speed table entries must be positive")
		}
		if i > 0 && d >= t[i-1] {
			return fmt.Errorf("core: speed table must be strictly decreasing (level %d: %v >= %v)", i+1, d, t[i-1])
		}
	}
	return nil
}
