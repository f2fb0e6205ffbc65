// Package session hosts running engines behind explicit handles.
// A Session serializes every call into its engine, so transports serving
// concurrent requests can share one safely.
package session

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/registry"
)

// DefaultID names the session used by the single-game routes and local play.
const DefaultID = "default"

var (
	// ErrNotFound is returned for an unknown session ID.
	ErrNotFound = errors.New("session: not found")
	// ErrNoActiveGame is returned when a session has no engine yet.
	ErrNoActiveGame = errors.New("session: no game is running")
)

// RunRecorder stores finished runs. storage.Keeper implements it.
type RunRecorder interface {
	RecordRun(gameID string, score int)
}

// Info describes a session for listings.
type Info struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score"`
	GameOver  bool      `json:"game_over"`
}

// Session owns at most one engine at a time.
type Session struct {
	id        string
	createdAt time.Time
	env       registry.Env
	recorder  RunRecorder
	logger    *log.Logger
	terminate func()

	mu       sync.Mutex
	game     registry.Game
	recorded bool // the current run's game over was already recorded
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

var seedCounter atomic.Int64

// freshSeed mixes the wall clock with a counter so back-to-back calls differ.
func freshSeed() int64 {
	return time.Now().UnixNano() + seedCounter.Add(1)*7919
}

// Start replaces the session's engine with a fresh one. The new engine
// waits for a Start action like any other. A zero seed in the session's
// environment gives every engine its own seed; a fixed seed replays.
func (s *Session) Start(selector string) error {
	env := s.env
	if env.Runtime.Seed == 0 {
		env.Runtime.Seed = freshSeed()
	}
	g, err := registry.Create(selector, env)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = g
	s.recorded = false
	s.logger.Info("game started", "session", s.id, "game", g.ID())
	return nil
}

// GameID returns the running game's ID, or "" without one.
func (s *Session) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ""
	}
	return s.game.ID()
}

// Submit buffers an action for the next poll.
func (s *Session) Submit(a core.Action, hold bool) error {
	if !a.Valid() {
		return fmt.Errorf("session: invalid action %d", a)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ErrNoActiveGame
	}
	s.game.SubmitAction(a, hold)
	return nil
}

// Poll advances the engine once and returns its snapshot. A Terminate
// result invokes the session's terminate hook.
func (s *Session) Poll() (core.GameInfo, error) {
	s.mu.Lock()
	if s.game == nil {
		s.mu.Unlock()
		return core.GameInfo{}, ErrNoActiveGame
	}
	res := s.game.Advance()
	state := s.game.State()
	gameID := s.game.ID()

	finished := false
	switch {
	case state.GameOver && !s.recorded:
		s.recorded = true
		finished = true
	case !state.GameOver:
		s.recorded = false
	}
	s.mu.Unlock()

	if finished {
		s.logger.Info("game over", "session", s.id, "game", gameID, "score", state.Score)
		if s.recorder != nil {
			s.recorder.RecordRun(gameID, state.Score)
		}
	}
	if res.Terminate {
		s.logger.Info("terminate requested", "session", s.id)
		if s.terminate != nil {
			s.terminate()
		}
	}
	return res.Info, nil
}

// Step submits a and polls once; it is how request/response clients drive a game.
func (s *Session) Step(a core.Action, hold bool) (core.GameInfo, error) {
	if err := s.Submit(a, hold); err != nil {
		return core.GameInfo{}, err
	}
	return s.Poll()
}

// State returns the engine's state without advancing it.
func (s *Session) State() (core.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return core.GameState{}, ErrNoActiveGame
	}
	return s.game.State(), nil
}

// Info returns a listing entry for the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := Info{ID: s.id, CreatedAt: s.createdAt}
	if s.game != nil {
		st := s.game.State()
		info.GameID = s.game.ID()
		info.Score = st.Score
		info.GameOver = st.GameOver
	}
	return info
}

// Config configures a Manager.
type Config struct {
	Env         registry.Env
	Recorder    RunRecorder // optional
	Logger      *log.Logger // optional
	OnTerminate func()      // called when any engine reports Terminate
}

// Manager tracks sessions. Safe for concurrent use.
type Manager struct {
	cfg Config
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty manager.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Env.Scores == nil {
		cfg.Env.Scores = core.NopScores{}
	}
	return &Manager{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) newSession(id string) *Session {
	return &Session{
		id:        id,
		createdAt: m.now(),
		env:       m.cfg.Env,
		recorder:  m.cfg.Recorder,
		logger:    m.cfg.Logger,
		terminate: m.cfg.OnTerminate,
	}
}

// Create starts selector in a new session with a random ID.
func (m *Manager) Create(selector string) (*Session, error) {
	s := m.newSession(uuid.NewString())
	if err := s.Start(selector); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s, nil
}

// Start (re)starts selector in the session with the given ID, creating the
// session if needed. An invalid selector leaves any running game untouched.
func (m *Manager) Start(id, selector string) (*Session, error) {
	if _, err := registry.Resolve(selector); err != nil {
		return nil, err
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = m.newSession(id)
		m.sessions[id] = s
	}
	m.mu.Unlock()

	if err := s.Start(selector); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete drops a session. Its engine is simply discarded.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// List returns every session, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(all))
	for _, s := range all {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.Before(infos[j].CreatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
