package snake

import "github.com/vovakirdan/brick-arcade/internal/core"

// String returns the phase name used in logs and snapshots.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseSpawn:
		return "spawn"
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
	BodyLen   int
	Head      core.Point
	Heading   core.Point
	Food      core.Point // (-1,-1) when no food is on the board
}

// Snapshot returns the current engine snapshot.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Phase:     g.phase,
		Score:     g.score,
		HighScore: g.highScore,
		Level:     g.level,
		Paused:    g.paused,
		BodyLen:   len(g.body),
		Food:      core.Point{X: -1, Y: -1},
	}
	if len(g.body) >= 2 {
		s.Head = g.body[0]
		s.Heading = g.heading()
	}
	for y := range g.field {
		for x, v := range g.field[y] {
			if v == core.CellMarker {
				s.Food = core.Point{X: x, Y: y}
			}
		}
	}
	return s
}
