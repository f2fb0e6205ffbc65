package race

// String returns the phase name used in logs and snapshots.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Snapshot captures the engine state for determinism testing and replay.
type Snapshot struct {
	Phase     Phase
	Score     int
	HighScore int
	Level     int
	Paused    bool
	Lane      int
	Obstacles int
	Ticks     int
	FrontRow  int // -1 without obstacles
	FrontLane int
}

// Snapshot returns the current engine snapshot.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Phase:     g.phase,
		Score:     g.score,
		HighScore: g.highScore,
		Level:     g.level,
		Paused:    g.paused,
		Lane:      g.lane,
		Obstacles: len(g.obstacles),
		Ticks:     g.ticks,
		FrontRow:  -1,
		FrontLane: -1,
	}
	if len(g.obstacles) > 0 {
		s.FrontRow = g.obstacles[0].Row
		s.FrontLane = g.obstacles[0].Lane
	}
	return s
}
