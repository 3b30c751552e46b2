// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knapsac/knapsac/pkg/types"
)

type (
	// Store persists a registry as a single JSON document at a fixed path.
	// Persistence is whole-document: every save validates the path, then
	// commits through a temp file and an atomic rename so a crashed write
	// can never leave a torn registry behind. There is no file lock; the
	// design assumes a single writer per registry location.
	Store struct {
		path types.FilesystemPath
	}
)

// NewStore builds a store for the registry file at path.
func NewStore(path types.FilesystemPath) *Store {
	return &Store{path: path}
}

// Path returns the registry file location.
func (s *Store) Path() types.FilesystemPath { return s.path }

// Load reads the registry document. A missing file is not an error: it
// yields an empty registry wired to this store (lazy initialization). A
// present but malformed file is ErrInvalidRegistry, never silently
// recovered.
func (s *Store) Load() (*Registry, error) {
	data, err := os.ReadFile(string(s.path))
	if err != nil {
		if os.IsNotExist(err) {
			return New(s), nil
		}
		return nil, fmt.Errorf("reading registry at %q: %w", s.path, err)
	}

	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing registry at %q: %v: %w", s.path, err, ErrInvalidRegistry)
	}
	r.normalize()
	r.persister = s
	return &r, nil
}

// Persist implements Persister: validate the path, then overwrite the
// whole document atomically.
func (s *Store) Persist(r *Registry) error {
	if err := s.validatePath(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "\t")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(s.path)), 0o755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	tmpPath := string(s.path) + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmpPath, string(s.path)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("committing registry: %w", err)
	}
	return nil
}

// Initialize writes an empty registry document at the store's path and
// returns it. An existing document is overwritten.
func (s *Store) Initialize() (*Registry, error) {
	r := New(s)
	if err := s.Persist(r); err != nil {
		return nil, err
	}
	return r, nil
}

// validatePath rejects locations that cannot hold the registry document:
// relative paths, paths without a .json extension, and directories.
func (s *Store) validatePath() error {
	path := string(s.path)
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%q: %w", s.path, ErrRegistryPathNotAbsolute)
	}
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Errorf("%q: %w", s.path, ErrRegistryPathNotFile)
	}
	if !strings.EqualFold(ext, ".json") {
		return fmt.Errorf("%q: %w", s.path, ErrRegistryPathNotJSON)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%q: %w", s.path, ErrRegistryPathNotFile)
	}
	return nil
}
