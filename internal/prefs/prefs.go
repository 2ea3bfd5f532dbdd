// Package prefs persists wizard defaults across sessions.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/logger"
)

// FileName is the preferences file inside the data directory.
const FileName = "prefs.json"

// Prefs are the remembered wizard defaults.
type Prefs struct {
	InspectionType inspection.Type `json:"inspection_type"`
	PropertyID     int64           `json:"property_id,omitempty"`
}

// Default returns the preferences used when nothing is remembered.
func Default() Prefs {
	return Prefs{InspectionType: inspection.DefaultType}
}

// Store reads and writes prefs.json in a data directory.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{Dir: dataDir}
}

func (s *Store) path() string {
	return filepath.Join(s.Dir, FileName)
}

// Load reads the preferences. A missing or unreadable file yields defaults,
// and an unknown inspection type is replaced by the default.
func (s *Store) Load() Prefs {
	path := s.path()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read prefs file: %v", err)
		return Default()
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Warn("Failed to parse prefs JSON: %v", err)
		return Default()
	}
	if !p.InspectionType.Valid() {
		p.InspectionType = inspection.DefaultType
	}
	return p
}

// Save writes the preferences, creating the data directory if needed.
func (s *Store) Save(p Prefs) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling prefs: %w", err)
	}

	path := s.path()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing prefs file: %w", err)
	}

	logger.Debug("Prefs saved to %s", path)
	return nil
}
