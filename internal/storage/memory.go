package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps scores in process memory. Used by tests and by
// `arcade play --scores memory`.
type MemoryStore struct {
	mu   sync.RWMutex
	best map[string]int
	runs map[string][]ScoreEntry
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		best: make(map[string]int),
		runs: make(map[string][]ScoreEntry),
	}
}

// HighScore returns the stored best, 0 if none.
func (s *MemoryStore) HighScore(_ context.Context, gameID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.best[gameID], nil
}

// SaveHighScore stores score as the best for gameID.
func (s *MemoryStore) SaveHighScore(_ context.Context, gameID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.best[gameID] = score
	return nil
}

// SaveScore records a finished run.
func (s *MemoryStore) SaveScore(_ context.Context, gameID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[gameID] = append(s.runs[gameID], ScoreEntry{GameID: gameID, Score: score, CreatedAt: time.Now()})
	return nil
}

// TopScores returns up to limit runs, best first.
func (s *MemoryStore) TopScores(_ context.Context, gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	runs := append([]ScoreEntry(nil), s.runs[gameID]...)
	s.mu.RUnlock()

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Score > runs[j].Score
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
