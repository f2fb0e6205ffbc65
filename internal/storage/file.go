package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FileStore keeps one plain-text file per game holding the best score as a
// decimal integer, named score_<game>.txt.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore returns a store writing into dir, creating it when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file used for gameID.
func (s *FileStore) Path(gameID string) string {
	return filepath.Join(s.dir, "score_"+gameID+".txt")
}

// HighScore reads the stored best. A missing file means 0.
func (s *FileStore) HighScore(_ context.Context, gameID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path(gameID))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot read %s: %w", s.Path(gameID), err)
	}

	score, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("storage: malformed score file %s: %w", s.Path(gameID), err)
	}
	return score, nil
}

// SaveHighScore overwrites the stored best.
func (s *FileStore) SaveHighScore(_ context.Context, gameID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(gameID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(score)), 0o644); err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("storage: cannot replace %s: %w", path, err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
