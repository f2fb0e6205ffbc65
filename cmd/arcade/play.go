package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/brick-arcade/internal/platform/tui"
	"github.com/vovakirdan/brick-arcade/internal/registry"
	"github.com/vovakirdan/brick-arcade/internal/session"
)

var flagServerURL string

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game (name or number).

Controls:
  Enter       - Start / restart
  Arrows/WASD - Steer
  Space       - Rotate (Tetris) / boost (Snake)
  P           - Pause
  Esc         - Back to the menu
  Q/Ctrl+C    - Quit

With --server the game runs on a remote arcade server and this terminal
only polls it for the board.

Examples:
  arcade play snake
  arcade play 2
  arcade play race --seed 42
  arcade play tetris --server http://localhost:5109`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gameID, err := registry.Resolve(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
			return err
		}
		return runArcade(cmd.Context(), gameID)
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade with a game picker menu",
	Long: `Start the arcade in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a game and Tab for the
scoreboard. Esc in a game returns to the menu.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runArcade(cmd.Context(), "")
	},
}

func init() {
	playCmd.Flags().StringVar(&flagServerURL, "server", "", "Base URL of an arcade server to play against")
	menuCmd.Flags().StringVar(&flagServerURL, "server", "", "Base URL of an arcade server to play against")
}

// runArcade runs the terminal client, local or remote, optionally starting in startGame.
func runArcade(ctx context.Context, startGame string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	cfg := tui.AppConfig{StartGame: startGame}

	if flagServerURL != "" {
		cfg.Open = func(gameID string) (tui.Driver, error) {
			return tui.NewRemoteDriver(ctx, flagServerURL, gameID, nil)
		}
		return tui.RunApp(cfg, width, height)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	// the alternate screen owns the terminal
	logger := newLogger(io.Discard, settings.LogLevel)

	keeper, closer, err := openScores(ctx, settings, logger)
	if err != nil {
		return fmt.Errorf("cannot open scores: %w", err)
	}
	defer closer.Close()

	env, err := newEnv(settings, keeper)
	if err != nil {
		return err
	}

	sessions := session.NewManager(session.Config{Env: env, Recorder: keeper, Logger: logger})
	cfg.Scores = keeper
	cfg.Open = func(gameID string) (tui.Driver, error) {
		sess, err := sessions.Start(session.DefaultID, gameID)
		if err != nil {
			return nil, err
		}
		return tui.NewLocalDriver(sess, nil), nil
	}
	return tui.RunApp(cfg, width, height)
}
