package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Directory and file constants for the openspec structure.
const (
	DefaultRootDir = "openspec"
	ChangesDir     = "changes"
	SpecsDir       = "specs"
	ArchiveDir     = "archive"
	MetadataFile   = "metadata.json"
	ProposalFile   = "proposal.md"
	TasksFile      = "tasks.md"
	DesignFile     = "design.md"
	SpecFile       = "spec.md"
	ChangeSpecsDir = "specs" // spec deltas within a change directory
)

// Manager provides file operations for the openspec directory tree.
type Manager struct {
	repoRoot string
	rootDir  string
}

// NewManager creates a manager for the given repository root using the
// default openspec directory name.
func NewManager(repoRoot string) *Manager {
	return NewManagerWithRoot(repoRoot, DefaultRootDir)
}

// NewManagerWithRoot creates a manager with a custom root directory name.
func NewManagerWithRoot(repoRoot, rootDir string) *Manager {
	if rootDir == "" {
		rootDir = DefaultRootDir
	}
	return &Manager{repoRoot: repoRoot, rootDir: rootDir}
}

// RootPath returns the full path to the openspec directory.
func (m *Manager) RootPath() string {
	return filepath.Join(m.repoRoot, m.rootDir)
}

// ChangesPath returns the path to the changes directory.
func (m *Manager) ChangesPath() string {
	return filepath.Join(m.RootPath(), ChangesDir)
}

// SpecsPath returns the path to the canonical specs directory.
func (m *Manager) SpecsPath() string {
	return filepath.Join(m.RootPath(), SpecsDir)
}

// ArchivePath returns the path to the archive directory.
func (m *Manager) ArchivePath() string {
	return filepath.Join(m.RootPath(), ArchiveDir)
}

// ChangePath returns the path to a specific change directory.
func (m *Manager) ChangePath(id string) string {
	return filepath.Join(m.ChangesPath(), id)
}

// ProposalPath returns the path to a change's proposal.md.
func (m *Manager) ProposalPath(id string) string {
	return filepath.Join(m.ChangePath(id), ProposalFile)
}

// TasksPath returns the path to a change's tasks.md.
func (m *Manager) TasksPath(id string) string {
	return filepath.Join(m.ChangePath(id), TasksFile)
}

// DesignPath returns the path to a change's design.md.
func (m *Manager) DesignPath(id string) string {
	return filepath.Join(m.ChangePath(id), DesignFile)
}

// EnsureDirectories creates the openspec directory structure if it
// doesn't exist.
func (m *Manager) EnsureDirectories() error {
	dirs := []string{
		m.RootPath(),
		m.ChangesPath(),
		m.SpecsPath(),
		m.ArchivePath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DeltaFiles returns a change's spec-delta files relative to the change
// directory (specs/<capability>/spec.md), sorted for determinism.
func (m *Manager) DeltaFiles(id string) ([]string, error) {
	changePath := m.ChangePath(id)
	pattern := filepath.Join(changePath, ChangeSpecsDir, "*", SpecFile)

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list spec deltas for %s: %w", id, err)
	}

	var rel []string
	for _, match := range matches {
		r, err := filepath.Rel(changePath, match)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize delta path %s: %w", match, err)
		}
		rel = append(rel, r)
	}
	sort.Strings(rel)

	return rel, nil
}

// DeltaCapability extracts the capability name from a delta path
// relative to the change directory (specs/<capability>/spec.md).
func DeltaCapability(relPath string) string {
	return filepath.Base(filepath.Dir(relPath))
}

// writeFile writes content to a file, creating parent directories.
func (m *Manager) writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// readFile reads content from a file.
func (m *Manager) readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// fileExists returns true if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
