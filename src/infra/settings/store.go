package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type record struct {
	LastFolder *string `json:"last_folder"`
}

// JSONStore keeps the last watched folder in a small JSON file. A missing or
// unreadable file reads as "no folder".
type JSONStore struct {
	mu       sync.Mutex
	path     string
	settings record
}

// NewJSONStore loads the settings file at path once.
func NewJSONStore(path string) *JSONStore {
	s := &JSONStore{path: path}
	s.settings = s.load()
	return s
}

func (s *JSONStore) load() record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("Cannot read settings, using defaults", "path", s.path, "error", err)
		}
		return record{}
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		slog.Debug("Corrupt settings file, using defaults", "path", s.path, "error", err)
		return record{}
	}
	return r
}

// GetLastFolder returns the saved folder or "" when there is none.
func (s *JSONStore) GetLastFolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.LastFolder == nil {
		return ""
	}
	return *s.settings.LastFolder
}

// SaveLastFolder replaces the whole record on disk.
func (s *JSONStore) SaveLastFolder(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := record{LastFolder: &path}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	s.settings = r
	return nil
}
