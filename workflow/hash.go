package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// HashFiles computes content digests for every tracked file of a change:
// proposal.md, tasks.md, design.md when present, and all spec deltas.
// Keys are paths relative to the change directory.
func (m *Manager) HashFiles(id string) (map[string]string, error) {
	changePath := m.ChangePath(id)
	hashes := make(map[string]string)

	tracked := []string{ProposalFile, TasksFile, DesignFile}
	for _, name := range tracked {
		path := filepath.Join(changePath, name)
		if !fileExists(path) {
			continue
		}
		digest, err := hashFile(path)
		if err != nil {
			return nil, err
		}
		hashes[name] = digest
	}

	deltas, err := m.DeltaFiles(id)
	if err != nil {
		return nil, err
	}
	for _, rel := range deltas {
		digest, err := hashFile(filepath.Join(changePath, rel))
		if err != nil {
			return nil, err
		}
		hashes[rel] = digest
	}

	return hashes, nil
}

// StaleFiles compares recorded hashes against current file contents and
// returns the relative paths that changed, were removed, or were added.
func (m *Manager) StaleFiles(id string, recorded map[string]string) ([]string, error) {
	current, err := m.HashFiles(id)
	if err != nil {
		return nil, err
	}

	var stale []string
	for rel, digest := range recorded {
		if current[rel] != digest {
			stale = append(stale, rel)
		}
	}
	for rel := range current {
		if _, ok := recorded[rel]; !ok {
			stale = append(stale, rel)
		}
	}
	return stale, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
