// Package storage persists canonical capability specs under a specs
// directory. All writes go through an atomic temp-write plus rename so a
// failed operation never leaves a partially written spec on disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/openspec/parser"
)

// SpecFile is the canonical spec filename within a capability directory.
const SpecFile = "spec.md"

// Store provides access to the canonical specs tree.
type Store struct {
	specsDir string
}

// NewStore creates a store rooted at the given specs directory.
func NewStore(specsDir string) *Store {
	return &Store{specsDir: specsDir}
}

// SpecsDir returns the root of the canonical specs tree.
func (s *Store) SpecsDir() string {
	return s.specsDir
}

// CapabilityPath returns the path to a capability's spec.md.
func (s *Store) CapabilityPath(name string) string {
	return filepath.Join(s.specsDir, name, SpecFile)
}

// Exists reports whether a capability spec exists.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.CapabilityPath(name))
	return err == nil
}

// Load reads and parses a capability spec. Returns ErrNotFound when the
// capability has no canonical spec yet.
func (s *Store) Load(name string) (*parser.CapabilitySpec, error) {
	path := s.CapabilityPath(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read capability spec %s: %w", path, err)
	}

	spec, err := parser.ParseCapability(name, path, data)
	if err != nil {
		return nil, fmt.Errorf("parse capability spec %s: %w", path, err)
	}

	return spec, nil
}

// Save renders and persists a capability spec atomically: the content is
// written to a temp file in the capability directory and renamed over the
// target, so readers never observe a partial write.
func (s *Store) Save(spec *parser.CapabilitySpec) error {
	dir := filepath.Join(s.specsDir, spec.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create capability directory %s: %w", dir, err)
	}

	content := parser.RenderCapability(spec)

	tmp, err := os.CreateTemp(dir, ".spec-*.md.tmp")
	if err != nil {
		return fmt.Errorf("create temp spec file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp spec file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp spec file %s: %w", tmpPath, err)
	}

	target := s.CapabilityPath(spec.Name)
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp spec file to %s: %w", target, err)
	}

	return nil
}

// List returns the names of all capabilities with a canonical spec,
// sorted alphabetically.
func (s *Store) List() ([]string, error) {
	pattern := filepath.Join(s.specsDir, "*", SpecFile)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("list capability specs under %s: %w", s.specsDir, err)
	}

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, filepath.Base(filepath.Dir(match)))
	}
	sort.Strings(names)

	return names, nil
}
