package tetris

// String returns the phase name used in logs and snapshots.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseSpawn:
		return "spawn"
	case PhaseMoving:
		return "moving"
	case PhaseAttaching:
		return "attaching"
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
	Current   Figure
	Next      Shape
	Settled   int // non-empty cells inside the walls, falling figure included
}

// Snapshot returns the current engine snapshot.
func (g *Game) Snapshot() Snapshot {
	settled := 0
	for y := 1; y <= Height; y++ {
		for x := 1; x <= Width; x++ {
			if g.field[y][x] != 0 {
				settled++
			}
		}
	}
	return Snapshot{
		Phase:     g.phase,
		Score:     g.score,
		HighScore: g.highScore,
		Level:     g.level,
		Paused:    g.paused,
		Current:   g.cur,
		Next:      g.nextID,
		Settled:   settled,
	}
}
