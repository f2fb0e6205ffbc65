// Package registry provides a global registry for game factories.
// Games register themselves in init() functions, allowing the platform
// to discover and instantiate games without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/vovakirdan/brick-arcade/internal/config"
	"github.com/vovakirdan/brick-arcade/internal/core"
)

// ErrUnknownGame is returned when a game selection matches no registered game.
var ErrUnknownGame = errors.New("registry: unknown game")

// Game is the polling contract every brick game implements.
// Engines are not safe for concurrent use; hosts serialize calls.
type Game interface {
	// ID returns a unique identifier for this game (e.g., "snake", "tetris").
	// Used for CLI commands and score storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// SubmitAction records the latest user action, replacing any action not
	// yet consumed. hold is accepted for API symmetry; the bundled games ignore it.
	SubmitAction(a core.Action, hold bool)

	// Advance performs at most one simulation step if enough time has passed
	// and always returns a fresh snapshot.
	Advance() core.StepResult

	// State returns the current game state (score, game over, paused).
	State() core.GameState
}

// Env carries everything a factory needs to build an engine.
type Env struct {
	Runtime core.RuntimeConfig
	Scores  core.ScoreKeeper
	Games   config.Games
}

// DefaultEnv returns an Env with built-in tuning, the wall clock and no score persistence.
func DefaultEnv() Env {
	return Env{
		Runtime: core.DefaultConfig(),
		Scores:  core.NopScores{},
		Games:   config.DefaultGames(),
	}
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID     string `json:"id"`
	Number int    `json:"number"` // legacy numeric selector used by remote clients
	Title  string `json:"title"`
}

// Factory is a function that creates a new instance of a game.
type Factory func(env Env) (Game, error)

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]GameInfo)
	mu        sync.RWMutex
)

// Register adds a game factory to the registry.
// Typically called from a game's init() function.
// Panics if a game with the same ID or number is already registered.
func Register(info GameInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[info.ID]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", info.ID))
	}
	for _, other := range infos {
		if info.Number != 0 && other.Number == info.Number {
			panic(fmt.Sprintf("registry: game number %d already used by %q", info.Number, other.ID))
		}
	}

	factories[info.ID] = f
	infos[info.ID] = info
}

// List returns information about all registered games, sorted by number.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Number != result[j].Number {
			return result[i].Number < result[j].Number
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Resolve maps a selector (game ID, case-insensitive, or its number) to a game ID.
func Resolve(selector string) (string, error) {
	selector = strings.ToLower(strings.TrimSpace(selector))

	mu.RLock()
	defer mu.RUnlock()

	if _, ok := factories[selector]; ok {
		return selector, nil
	}
	if n, err := strconv.Atoi(selector); err == nil {
		for _, info := range infos {
			if info.Number == n {
				return info.ID, nil
			}
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownGame, selector)
}

// Create instantiates a new game by its ID or number.
// Returns an error wrapping ErrUnknownGame if the selector is not registered.
func Create(selector string, env Env) (Game, error) {
	id, err := Resolve(selector)
	if err != nil {
		return nil, err
	}

	mu.RLock()
	f := factories[id]
	mu.RUnlock()

	if env.Scores == nil {
		env.Scores = core.NopScores{}
	}
	return f(env)
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
