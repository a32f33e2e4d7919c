// Package store persists baselines as flat JSON files. The persisted field
// names are part of the interface contract with the extraction service: a
// baseline written here must reload identically in a later version.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
)

// ErrBaselineNotFound is returned when a baseline doesn't exist.
var ErrBaselineNotFound = errors.New("baseline not found")

// Store manages baseline persistence.
type Store struct {
	Dir string // Base directory for baselines
}

// NewStore creates a store with the given directory.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// DefaultDir returns the default baseline directory (~/.stepcm/baselines).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stepcm/baselines"
	}
	return filepath.Join(home, ".stepcm", "baselines")
}

// ResolveDir returns the baseline directory from env var or default.
func ResolveDir(environ []string) string {
	for _, env := range environ {
		if strings.HasPrefix(env, "STEPCM_BASELINE_DIR=") {
			return strings.TrimPrefix(env, "STEPCM_BASELINE_DIR=")
		}
	}
	return DefaultDir()
}

// Save stores a baseline under its baseline ID.
func (s *Store) Save(b model.Baseline) error {
	if b.BaselineID == "" {
		return fmt.Errorf("%w: baseline_id is empty", model.ErrInvalidBaseline)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path(b.BaselineID), data, 0644)
}

// Load retrieves a baseline by ID.
func (s *Store) Load(id string) (model.Baseline, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Baseline{}, ErrBaselineNotFound
		}
		return model.Baseline{}, err
	}
	return decode(data)
}

// Summary is a lightweight view for listing baselines.
type Summary struct {
	BaselineID string `json:"baseline_id"`
	File       string `json:"file"`
	Checksum   string `json:"checksum"`
	Timestamp  string `json:"timestamp"`
	Components int    `json:"components"`
}

// List returns all stored baselines as summaries.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, err
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			continue // Skip unreadable files
		}

		var b model.Baseline
		if err := json.Unmarshal(data, &b); err != nil {
			continue // Skip invalid JSON
		}

		summaries = append(summaries, Summary{
			BaselineID: b.BaselineID,
			File:       b.File,
			Checksum:   b.Checksum,
			Timestamp:  b.Timestamp,
			Components: len(b.BOM),
		})
	}

	return summaries, nil
}

// Delete removes a baseline by ID.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrBaselineNotFound
		}
		return err
	}
	return nil
}

// Exists checks if a baseline exists.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// ReadFile loads and validates a baseline from an arbitrary JSON file path,
// outside the store directory. This is how reloaded baselines enter a
// comparison.
func ReadFile(path string) (model.Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Baseline{}, fmt.Errorf("%w: %s", ErrBaselineNotFound, path)
		}
		return model.Baseline{}, err
	}
	return decode(data)
}

func decode(data []byte) (model.Baseline, error) {
	var b model.Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return model.Baseline{}, fmt.Errorf("%w: %v", model.ErrInvalidBaseline, err)
	}
	if err := b.Validate(); err != nil {
		return model.Baseline{}, err
	}
	b.Normalize()
	return b, nil
}

// path returns the file path for a baseline ID.
func (s *Store) path(id string) string {
	// Sanitize ID for filesystem
	safe := strings.ReplaceAll(id, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	return filepath.Join(s.Dir, "config_baseline_"+safe+".json")
}
