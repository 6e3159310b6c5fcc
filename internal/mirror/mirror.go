// Package mirror maintains the flat-file JSON snapshot of patterns and floss.
// The snapshot is derived from the relational store and is never read back
// into it.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// PatternEntry is one pattern in the patterns file.
type PatternEntry struct {
	Name          string   `json:"name"`
	FlossData     []string `json:"floss_data"`
	ImageFilename string   `json:"image_filename"`
	UserID        string   `json:"user_id"`
}

// FlossEntry is one floss record in the floss file.
type FlossEntry struct {
	Code   string  `json:"code"`
	Length float64 `json:"length"`
	UserID string  `json:"user_id,omitempty"`
}

// Store reads and writes the two mirror files. Every write replaces the whole
// file.
type Store struct {
	fs           afero.Fs
	patternsPath string
	flossPath    string
	mu           sync.Mutex
}

// NewStore returns a Store writing to the given paths on fs.
func NewStore(fs afero.Fs, patternsPath, flossPath string) *Store {
	return &Store{
		fs:           fs,
		patternsPath: patternsPath,
		flossPath:    flossPath,
	}
}

// LoadPatterns returns the patterns file contents, or an empty list when the
// file is missing or malformed.
func (s *Store) LoadPatterns() ([]PatternEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(s.patternsPath)
	if err != nil {
		return nil, err
	}
	var entries []PatternEntry
	if !decode(s.patternsPath, data, &entries) || entries == nil {
		entries = []PatternEntry{}
	}
	return entries, nil
}

// SavePatterns rewrites the patterns file.
func (s *Store) SavePatterns(entries []PatternEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries == nil {
		entries = []PatternEntry{}
	}
	return s.save(s.patternsPath, entries)
}

// LoadFloss returns the floss file contents, or an empty list when the file
// is missing or malformed.
func (s *Store) LoadFloss() ([]FlossEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(s.flossPath)
	if err != nil {
		return nil, err
	}
	var entries []FlossEntry
	if !decode(s.flossPath, data, &entries) || entries == nil {
		entries = []FlossEntry{}
	}
	return entries, nil
}

// SaveFloss rewrites the floss file.
func (s *Store) SaveFloss(entries []FlossEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries == nil {
		entries = []FlossEntry{}
	}
	return s.save(s.flossPath, entries)
}

// read returns the file contents, or nil when the file does not exist.
func (s *Store) read(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func decode(path string, data []byte, dst interface{}) bool {
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Printf("Ignoring malformed mirror file %s: %v", path, err)
		return false
	}
	return true
}

func (s *Store) save(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
