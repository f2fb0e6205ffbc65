// Package config provides YAML-based game tuning and environment-driven
// server settings for the arcade.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/brick-arcade/internal/core"
)

// SnakeConfig contains all configuration for the Snake game.
type SnakeConfig struct {
	Field   FieldConfig   `yaml:"field"`
	Speed   SpeedConfig   `yaml:"speed"`
	Scoring ScoringConfig `yaml:"scoring"`
}

// TetrisConfig contains all configuration for the Tetris game.
type TetrisConfig struct {
	Speed   SpeedConfig         `yaml:"speed"`
	Scoring TetrisScoringConfig `yaml:"scoring"`
}

// RaceConfig contains all configuration for the Race game.
type RaceConfig struct {
	Speed     SpeedConfig     `yaml:"speed"`
	Obstacles ObstaclesConfig `yaml:"obstacles"`
	Scoring   ScoringConfig   `yaml:"scoring"`
}

// FieldConfig sets the playfield size in cells.
type FieldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SpeedConfig holds the per-level step intervals.
type SpeedConfig struct {
	LevelsMS []int `yaml:"levels_ms"` // one entry per level, fastest last
	BoostMS  int   `yaml:"boost_ms"`  // interval used while the action key is pressed (snake only)
}

// ScoringConfig controls level progression for score-per-event games.
type ScoringConfig struct {
	PointsPerLevel int `yaml:"points_per_level"`
}

// TetrisScoringConfig controls line rewards and level thresholds.
type TetrisScoringConfig struct {
	LinePoints     int `yaml:"line_points"`
	PointsPerLevel int `yaml:"points_per_level"`
}

// ObstaclesConfig controls obstacle generation in Race.
type ObstaclesConfig struct {
	SpawnInterval int `yaml:"spawn_interval"` // steps between spawn attempts
	SafeRows      int `yaml:"safe_rows"`      // a lane is blocked while an obstacle sits above this row
}

// Table converts the configured levels into a validated speed table.
func (s SpeedConfig) Table() (core.SpeedTable, error) {
	return core.SpeedTableFromMillis(s.LevelsMS)
}

// Boost returns the boost interval.
func (s SpeedConfig) Boost() time.Duration {
	return time.Duration(s.BoostMS) * time.Millisecond
}

// Validate checks the snake configuration.
func (c SnakeConfig) Validate() error {
	if _, err := c.Speed.Table(); err != nil {
		return fmt.Errorf("config: snake: %w", err)
	}
	// the initial body spans columns 3..6 on the middle row
	if c.Field.Width < 7 || c.Field.Height < 1 {
		return fmt.Errorf("config: snake: field %dx%d too small", c.Field.Width, c.Field.Height)
	}
	if c.Speed.BoostMS <= 0 {
		return fmt.Errorf("config: snake: boost_ms must be positive")
	}
	if c.Scoring.PointsPerLevel <= 0 {
		return fmt.Errorf("config: snake: points_per_level must be positive")
	}
	return nil
}

// Validate checks the tetris configuration.
func (c TetrisConfig) Validate() error {
	if _, err := c.Speed.Table(); err != nil {
		return fmt.Errorf("config: tetris: %w", err)
	}
	if c.Scoring.LinePoints <= 0 || c.Scoring.PointsPerLevel <= 0 {
		return fmt.Errorf("config: tetris: scoring values must be positive")
	}
	return nil
}

// Validate checks the race configuration.
func (c RaceConfig) Validate() error {
	if _, err := c.Speed.Table(); err != nil {
		return fmt.Errorf("config: race: %w", err)
	}
	if c.Obstacles.SpawnInterval <= 0 {
		return fmt.Errorf("config: race: spawn_interval must be positive")
	}
	if c.Obstacles.SafeRows < 0 {
		return fmt.Errorf("config: race: safe_rows must not be negative")
	}
	if c.Scoring.PointsPerLevel <= 0 {
		return fmt.Errorf("config: race: points_per_level must be positive")
	}
	return nil
}

// Games bundles the tuning for every game.
type Games struct {
	Snake  SnakeConfig
	Tetris TetrisConfig
	Race   RaceConfig
}

// DefaultGames returns the built-in tuning for every game.
func DefaultGames() Games {
	return Games{
		Snake:  DefaultSnakeConfig(),
		Tetris: DefaultTetrisConfig(),
		Race:   DefaultRaceConfig(),
	}
}
