package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

//go:embed defaults/tetris.yaml
var defaultTetrisYAML []byte

//go:embed defaults/race.yaml
var defaultRaceYAML []byte

// DefaultSnakeConfig returns the default Snake configuration.
func DefaultSnakeConfig() SnakeConfig {
	return SnakeConfig{
		Field: FieldConfig{Width: 10, Height: 20},
		Speed: SpeedConfig{
			LevelsMS: []int{350, 330, 300, 280, 270, 260, 250, 240, 230, 200},
			BoostMS:  150,
		},
		Scoring: ScoringConfig{PointsPerLevel: 5},
	}
}

// DefaultTetrisConfig returns the default Tetris configuration.
func DefaultTetrisConfig() TetrisConfig {
	return TetrisConfig{
		Speed: SpeedConfig{
			LevelsMS: []int{800, 720, 640, 560, 480, 400, 320, 240, 160, 80},
		},
		Scoring: TetrisScoringConfig{LinePoints: 100, PointsPerLevel: 1000},
	}
}

// DefaultRaceConfig returns the default Race configuration.
func DefaultRaceConfig() RaceConfig {
	return RaceConfig{
		Speed: SpeedConfig{
			LevelsMS: []int{100, 90, 80, 70, 60, 50, 40, 30, 20, 10},
		},
		Obstacles: ObstaclesConfig{SpawnInterval: 20, SafeRows: 3},
		Scoring:   ScoringConfig{PointsPerLevel: 5},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "snake":
		return defaultSnakeYAML
	case "tetris":
		return defaultTetrisYAML
	case "race":
		return defaultRaceYAML
	default:
		return nil
	}
}
