package core

// RuntimeConfig contains configuration passed to games at construction.
type RuntimeConfig struct {
	Seed  int64 // RNG seed for deterministic gameplay
	Clock Clock // time source; nil means SystemClock
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Seed:  0, // 0 means use current time in platform layer
		Clock: SystemClock{},
	}
}

// ClockOrSystem returns the configured clock, falling back to the wall clock.
func (c RuntimeConfig) ClockOrSystem() Clock {
	if c.Clock == nil {
		return SystemClock{}
	}
	return c.Clock
}

// GameInfo is the snapshot handed to renderers and remote clients on every poll.
// Field and Next are always fresh copies; callers may keep or mutate them.
type GameInfo struct {
	Field     Grid `json:"field"`
	Next      Grid `json:"next"`
	Score     int  `json:"score"`
	HighScore int  `json:"highScore"`
	Level     int  `json:"level"`
	Speed     int  `json:"speed"`
	Pause     int  `json:"pause"`
}

// Paused reports whether the snapshot was taken while the game was paused.
func (g GameInfo) Paused() bool {
	return g.Pause != 0
}

// StepResult is returned by Game.Advance() after each poll.
type StepResult struct {
	Info GameInfo
	// Terminate is set when the user asked the host to shut down.
	Terminate bool
}

// GameState summarizes an engine for hosts that need more than the snapshot,
// e.g. to record a finished run.
type GameState struct {
	Score    int  // Current score
	GameOver bool // Whether the game has ended
	Paused   bool // Whether the game is paused
	Started  bool // Whether a run is in progress or finished
}

// ScoreKeeper is the high score capability engines depend on. It never fails:
// unreadable scores read as 0 and failed writes are dropped.
type ScoreKeeper interface {
	HighScore(gameID string) int
	SetHighScore(gameID string, score int)
}

// NopScores is a ScoreKeeper that remembers nothing.
type NopScores struct{}

// HighScore always returns 0.
func (NopScores) HighScore(string) int { return 0 }

// SetHighScore does nothing.
func (NopScores) SetHighScore(string, int) {}
