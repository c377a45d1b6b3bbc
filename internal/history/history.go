// Package history keeps the small persisted record of recently removed
// tracks so the selector does not re-add them right away. It is the only
// state shared across runs.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// History maps library track IDs to the time they were removed from the
// device.
type History struct {
	path    string
	Removed map[string]time.Time `json:"removed"`
}

// DefaultPath returns the standard location of the history file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".music-freshener", "history.json"), nil
}

// Load reads the history file at path. A missing file yields an empty
// history.
func Load(path string) (*History, error) {
	h := &History{path: path, Removed: make(map[string]time.Time)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	if h.Removed == nil {
		h.Removed = make(map[string]time.Time)
	}
	return h, nil
}

// Record marks track IDs as removed at the given time.
func (h *History) Record(ids []string, now time.Time) {
	for _, id := range ids {
		h.Removed[id] = now
	}
}

// Recent returns the set of track IDs removed within the window.
func (h *History) Recent(window time.Duration, now time.Time) map[string]bool {
	recent := make(map[string]bool)
	for id, removedAt := range h.Removed {
		if now.Sub(removedAt) <= window {
			recent[id] = true
		}
	}
	return recent
}

// Save prunes entries older than the window and writes the history back to
// disk, creating the parent directory if required.
func (h *History) Save(window time.Duration, now time.Time) error {
	for id, removedAt := range h.Removed {
		if now.Sub(removedAt) > window {
			delete(h.Removed, id)
		}
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
