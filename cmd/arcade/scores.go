package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/brick-arcade/internal/registry"
	"github.com/vovakirdan/brick-arcade/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresReset bool
)

// statsBackend and resetBackend are implemented by the SQLite store.
type statsBackend interface {
	GameStats(ctx context.Context, gameID string) (*storage.GameStats, error)
}

type resetBackend interface {
	ClearScores(ctx context.Context, gameID string) error
}

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show high scores",
	Long: `Display the best score and the top runs of one game, or of every game.

Examples:
  arcade scores
  arcade scores tetris
  arcade scores 3 --limit 5
  arcade scores snake --reset --scores sqlite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show per game")
	scoresCmd.Flags().BoolVar(&flagScoresReset, "reset", false, "Delete the stored scores of the selected games (sqlite only)")
}

func runScores(cmd *cobra.Command, args []string) error {
	games := registry.List()
	if len(args) == 1 {
		id, err := registry.Resolve(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
			return err
		}
		games = games[:0]
		for _, g := range registry.List() {
			if g.ID == id {
				games = append(games, g)
			}
		}
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(os.Stderr, settings.LogLevel)

	keeper, backend, err := openScores(ctx, settings, logger)
	if err != nil {
		return fmt.Errorf("cannot open scores: %w", err)
	}
	defer backend.Close()

	if flagScoresReset {
		rb, ok := backend.(resetBackend)
		if !ok {
			return fmt.Errorf("the %s backend cannot reset scores", settings.Scores.Backend)
		}
		for _, g := range games {
			if err := rb.ClearScores(ctx, g.ID); err != nil {
				return err
			}
			fmt.Printf("Cleared scores for %s\n", g.Title)
		}
		return nil
	}

	for i, g := range games {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("High Scores - %s\n\n", g.Title)
		fmt.Printf("Best: %d\n", keeper.HighScore(g.ID))
		if sb, ok := backend.(statsBackend); ok {
			if stats, err := sb.GameStats(ctx, g.ID); err == nil && stats.GamesCount > 0 {
				fmt.Printf("Runs: %d  Average: %.1f  Last played: %s\n",
					stats.GamesCount, stats.AvgScore, stats.LastPlayed.Format("2006-01-02 15:04"))
			}
		}

		runs, err := keeper.TopScores(ctx, g.ID, flagScoresLimit)
		if err != nil {
			return fmt.Errorf("cannot list scores for %s: %w", g.ID, err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			continue
		}

		fmt.Println()
		fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
		fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
		for rank, entry := range runs {
			fmt.Printf("  %-4d  %-10d  %s\n", rank+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}
