// arcade hosts the brick games: Snake, Tetris and Race.
//
// Usage:
//
//	arcade list                    - List available games
//	arcade play <game>             - Play a game in this terminal
//	arcade play <game> --server U  - Play the game running on a remote arcade server
//	arcade menu                    - Pick games interactively
//	arcade serve                   - Serve the HTTP API (and optionally SSH)
//	arcade scores [game]           - Show high scores
//
// Global flags:
//
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--config <path>      - Server settings YAML (environment overrides it)
//	--games-dir <dir>    - Directory with snake.yaml / tetris.yaml / race.yaml tuning
//	--scores <backend>   - Score backend: sqlite, file, redis, memory
//	--db <path>          - SQLite database path
//	--log-level <level>  - debug, info, warn, error
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/brick-arcade/internal/config"
	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/registry"
	"github.com/vovakirdan/brick-arcade/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/brick-arcade/internal/games/race"
	_ "github.com/vovakirdan/brick-arcade/internal/games/snake"
	_ "github.com/vovakirdan/brick-arcade/internal/games/tetris"
)

var (
	// Global flags
	flagSeed     int64
	flagConfig   string
	flagGamesDir string
	flagScores   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Brick Arcade - Snake, Tetris and Race on a brick-game grid",
	Long: `Brick Arcade runs three classic brick games: Snake, Tetris and Race.

Play them in your terminal, or serve them over HTTP for the web and
console clients, over SSH, and to agents through MCP.

Examples:
  arcade list
  arcade play snake
  arcade play tetris --server http://localhost:5109
  arcade serve --http :5109 --ssh :23234
  arcade scores race`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = a fresh seed for every game)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to server settings YAML")
	rootCmd.PersistentFlags().StringVar(&flagGamesDir, "games-dir", "", "Directory with per-game tuning YAML")
	rootCmd.PersistentFlags().StringVar(&flagScores, "scores", "", "Score backend: sqlite, file, redis, memory")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// loadSettings reads server settings and applies the global flags on top.
func loadSettings() (*config.Server, error) {
	settings, err := config.LoadServer(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagGamesDir != "" {
		settings.GamesDir = flagGamesDir
	}
	if flagScores != "" {
		settings.Scores.Backend = flagScores
	}
	if flagDBPath != "" {
		settings.Scores.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		settings.LogLevel = flagLogLevel
	}
	return settings, nil
}

// newLogger builds the process logger. w is io.Discard while a TUI owns the terminal.
func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "arcade",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else if level != "" {
		logger.Warn("unknown log level, using info", "level", level)
	}
	return logger
}

// openScores opens the configured score backend behind a Keeper.
func openScores(ctx context.Context, settings *config.Server, logger *log.Logger) (*storage.Keeper, storage.Backend, error) {
	backend, err := storage.Open(ctx, storage.Options{
		Backend:   settings.Scores.Backend,
		DBPath:    settings.Scores.DBPath,
		Dir:       settings.Scores.Dir,
		RedisAddr: settings.Redis.Addr(),
	})
	if err != nil {
		return nil, nil, err
	}
	return storage.NewKeeper(backend, logger), backend, nil
}

// newEnv builds the engine environment: tuning, clock, seed and scores.
func newEnv(settings *config.Server, scores core.ScoreKeeper) (registry.Env, error) {
	games, err := config.LoadGames(settings.GamesDir)
	if err != nil {
		return registry.Env{}, err
	}

	// a zero seed lets every session seed its own engines
	return registry.Env{
		Runtime: core.RuntimeConfig{Seed: flagSeed, Clock: core.SystemClock{}},
		Scores:  scores,
		Games:   games,
	}, nil
}
