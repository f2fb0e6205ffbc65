package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSnake loads Snake configuration.
// Search order: customPath -> ~/.arcade/configs/snake.yaml -> ./configs/snake.yaml -> embedded default
func LoadSnake(customPath string) (SnakeConfig, error) {
	cfg, err := load("snake", customPath, DefaultSnakeConfig)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadTetris loads Tetris configuration.
// Search order: customPath -> ~/.arcade/configs/tetris.yaml -> ./configs/tetris.yaml -> embedded default
func LoadTetris(customPath string) (TetrisConfig, error) {
	cfg, err := load("tetris", customPath, DefaultTetrisConfig)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadRace loads Race configuration.
// Search order: customPath -> ~/.arcade/configs/race.yaml -> ./configs/race.yaml -> embedded default
func LoadRace(customPath string) (RaceConfig, error) {
	cfg, err := load("race", customPath, DefaultRaceConfig)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadGames loads the tuning for every game. dir, when set, is searched for
// <game>.yaml before the usual locations.
func LoadGames(dir string) (Games, error) {
	var g Games
	var err error

	if g.Snake, err = LoadSnake(inDir(dir, "snake.yaml")); err != nil {
		return g, err
	}
	if g.Tetris, err = LoadTetris(inDir(dir, "tetris.yaml")); err != nil {
		return g, err
	}
	if g.Race, err = LoadRace(inDir(dir, "race.yaml")); err != nil {
		return g, err
	}
	return g, nil
}

// load decodes the first config found for id on top of the hardcoded defaults,
// so partial files only override the keys they set.
func load[T any](id, customPath string, defaults func() T) (T, error) {
	cfg := defaults()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	filename := id + ".yaml"
	candidates := []string{userConfigPath(filename), filepath.Join("configs", filename)}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		attempt := defaults()
		if err := yaml.Unmarshal(data, &attempt); err == nil {
			return attempt, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(GetDefaultYAML(id), &cfg); err != nil {
		return defaults(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// inDir returns dir/filename when that file exists, otherwise "".
func inDir(dir, filename string) string {
	if dir == "" {
		return ""
	}
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}
