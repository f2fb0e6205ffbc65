// Package storage persists per-game high scores and finished runs.
// Several backends are available; engines only ever see a Keeper, which
// never fails: read errors become 0 and write errors are logged.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("storage: unknown backend")

// Backend stores the best score of each game.
type Backend interface {
	HighScore(ctx context.Context, gameID string) (int, error)
	SaveHighScore(ctx context.Context, gameID string, score int) error
	Close() error
}

// Recorder is implemented by backends that also keep a history of finished runs.
type Recorder interface {
	SaveScore(ctx context.Context, gameID string, score int) error
	TopScores(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error)
}

// ScoreEntry represents a single finished run.
type ScoreEntry struct {
	GameID    string    `json:"game_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	DBPath    string // sqlite
	Dir       string // file
	RedisAddr string // redis
}

// Open creates the backend described by opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		return OpenSQLite(ctx, opts.DBPath)
	case BackendFile:
		return NewFileStore(opts.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, opts.Backend)
	}
}

// opTimeout bounds every backend call made through a Keeper.
const opTimeout = 2 * time.Second

// Keeper adapts a Backend to the infallible high score capability engines use.
type Keeper struct {
	backend Backend
	logger  *log.Logger
}

// NewKeeper wraps backend. A nil logger discards warnings.
func NewKeeper(backend Backend, logger *log.Logger) *Keeper {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Keeper{backend: backend, logger: logger}
}

// HighScore returns the stored best for gameID, or 0 when it cannot be read.
func (k *Keeper) HighScore(gameID string) int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	score, err := k.backend.HighScore(ctx, gameID)
	if err != nil {
		k.logger.Warn("cannot read high score", "game", gameID, "err", err)
		return 0
	}
	return score
}

// SetHighScore persists a new best. Failures are logged and otherwise ignored.
func (k *Keeper) SetHighScore(gameID string, score int) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := k.backend.SaveHighScore(ctx, gameID, score); err != nil {
		k.logger.Warn("cannot save high score", "game", gameID, "score", score, "err", err)
	}
}

// RecordRun stores a finished run when the backend keeps history.
func (k *Keeper) RecordRun(gameID string, score int) {
	rec, ok := k.backend.(Recorder)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := rec.SaveScore(ctx, gameID, score); err != nil {
		k.logger.Warn("cannot record run", "game", gameID, "score", score, "err", err)
	}
}

// TopScores returns the best finished runs, or nil when the backend keeps no history.
func (k *Keeper) TopScores(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error) {
	rec, ok := k.backend.(Recorder)
	if !ok {
		return nil, nil
	}
	return rec.TopScores(ctx, gameID, limit)
}
