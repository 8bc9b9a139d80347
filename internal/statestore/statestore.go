// Package statestore persists orchestrator runtime state across restarts.
//
// Only the two flat id lists (completed, failed) are persisted; the graph
// itself is always rebuilt from definitions. Rehydration goes through
// Orchestrator.LoadState, which replays the blocking cascade, so the
// stored file never needs to capture blocked or running tasks.
package statestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// State is the persisted runtime state.
type State struct {
	Workflow  string    `json:"workflow,omitempty"`
	Completed []string  `json:"completed"`
	Failed    []string  `json:"failed"`
	SavedAt   time.Time `json:"saved_at"`
}

// Store reads and writes orchestrator state files.
type Store struct {
	path   string
	logger *zap.Logger
}

// New creates a store writing to path.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Load reads the persisted state. A missing file is not an error: it
// returns an empty state, the normal case for a first run.
func (s *Store) Load() (*State, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(content, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	return &state, nil
}

// Save writes state atomically: temp file in the same directory, fsync,
// then rename over the target. The file is created 0600.
func (s *Store) Save(state *State) error {
	state.SavedAt = time.Now().UTC()

	content, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set state file permissions: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.logger.Debug("state saved",
		zap.String("path", s.path),
		zap.Int("completed", len(state.Completed)),
		zap.Int("failed", len(state.Failed)))
	return nil
}
