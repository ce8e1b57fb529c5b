package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for change operations.
var (
	ErrInvalidID      = errors.New("invalid change id: must be kebab-case and verb-led")
	ErrDuplicateID    = errors.New("change id already exists")
	ErrChangeNotFound = errors.New("change not found")
)

// idPattern validates change ids: lowercase kebab-case, verb-led by
// convention (checked separately).
var idPattern = regexp.MustCompile(`^[a-z]+(-[a-z0-9]+)*$`)

// leadingVerbs is the allow-list of verbs a change id should start with.
// Unknown first tokens are tolerated (the convention check is a
// heuristic) but ids that fail the kebab-case pattern are rejected.
var leadingVerbs = map[string]bool{
	"add": true, "remove": true, "update": true, "refactor": true,
	"fix": true, "improve": true, "implement": true, "migrate": true,
	"deprecate": true, "rename": true, "split": true, "merge": true,
	"extract": true, "introduce": true, "enable": true, "disable": true,
	"upgrade": true, "downgrade": true, "replace": true, "rework": true,
	"simplify": true, "harden": true, "optimize": true, "document": true,
	"support": true, "drop": true, "adopt": true, "expose": true,
	"restrict": true, "extend": true, "integrate": true, "redesign": true,
}

// ValidateID checks that a change id is kebab-case and safe for use in
// file paths. Returns ErrInvalidID on failure.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidID)
	}
	// Prevent path traversal.
	if strings.Contains(id, "..") || strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// IsVerbLed reports whether the id's first token is a recognized verb.
// Callers surface a warning, not an error, when this returns false.
func IsVerbLed(id string, extraVerbs []string) bool {
	first, _, _ := strings.Cut(id, "-")
	if leadingVerbs[first] {
		return true
	}
	for _, v := range extraVerbs {
		if first == v {
			return true
		}
	}
	return false
}

// CreateChange scaffolds a new change directory with proposal.md,
// tasks.md, a spec-delta stub for the given capability, and metadata.
// Fails with ErrInvalidID on a malformed id and ErrDuplicateID when an
// active or archived change with the same id exists.
func (m *Manager) CreateChange(id, title, capability, author string) (*Change, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	if err := m.EnsureDirectories(); err != nil {
		return nil, err
	}

	changePath := m.ChangePath(id)
	if fileExists(changePath) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	if archived, _ := m.FindArchived(id); archived != "" {
		return nil, fmt.Errorf("%w: %s (archived)", ErrDuplicateID, id)
	}

	if err := os.MkdirAll(changePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create change directory: %w", err)
	}

	if title == "" {
		title = strings.ReplaceAll(id, "-", " ")
	}
	if capability == "" {
		capability = defaultCapability(id)
	}

	now := time.Now().UTC()
	change := &Change{
		UID:        uuid.New().String(),
		ID:         id,
		Title:      title,
		Capability: capability,
		Status:     StatusDraft,
		Author:     author,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	scaffold := func() error {
		if err := m.writeFile(m.ProposalPath(id), ProposalTemplate(title, capability)); err != nil {
			return err
		}
		if err := m.writeFile(m.TasksPath(id), TasksTemplate(title)); err != nil {
			return err
		}
		deltaPath := filepath.Join(changePath, ChangeSpecsDir, capability, SpecFile)
		if err := m.writeFile(deltaPath, DeltaTemplate(capability)); err != nil {
			return err
		}
		m.updateFileFlags(change)
		return m.SaveChange(change)
	}

	if err := scaffold(); err != nil {
		// Leave no partial scaffold behind.
		os.RemoveAll(changePath)
		return nil, err
	}

	return change, nil
}

// defaultCapability derives a capability name from a change id by
// stripping the leading verb token.
func defaultCapability(id string) string {
	_, rest, found := strings.Cut(id, "-")
	if !found || rest == "" {
		return id
	}
	return rest
}

// SaveChange persists the change metadata to metadata.json.
func (m *Manager) SaveChange(change *Change) error {
	change.UpdatedAt = time.Now().UTC()

	metadataPath := filepath.Join(m.ChangePath(change.ID), MetadataFile)
	data, err := json.MarshalIndent(change, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(metadataPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// LoadChange loads an active change by id. Returns ErrChangeNotFound
// when no change directory exists.
func (m *Manager) LoadChange(id string) (*Change, error) {
	metadataPath := filepath.Join(m.ChangePath(id), MetadataFile)

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrChangeNotFound, id)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var change Change
	if err := json.Unmarshal(data, &change); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", id, err)
	}

	m.updateFileFlags(&change)

	return &change, nil
}

// LoadArchivedChange loads an archived change by id.
func (m *Manager) LoadArchivedChange(id string) (*Change, error) {
	dir, err := m.FindArchived(id)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: %s", ErrChangeNotFound, id)
	}

	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read archived metadata: %w", err)
	}

	var change Change
	if err := json.Unmarshal(data, &change); err != nil {
		return nil, fmt.Errorf("failed to parse archived metadata for %s: %w", id, err)
	}

	return &change, nil
}

// archiveDatePrefixLen is the length of the "YYYY-MM-DD-" prefix on
// archive directory names.
const archiveDatePrefixLen = 11

// FindArchived returns the archive directory for a change id, or "" when
// the id was never archived. Archive entries are named <date>-<id>; the
// id after the fixed-width date prefix must match exactly, so an
// archived add-auth is never returned for id auth.
func (m *Manager) FindArchived(id string) (string, error) {
	entries, err := os.ReadDir(m.ArchivePath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read archive directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || len(name) <= archiveDatePrefixLen {
			continue
		}
		if name[archiveDatePrefixLen-1] == '-' && name[archiveDatePrefixLen:] == id {
			return filepath.Join(m.ArchivePath(), name), nil
		}
	}

	return "", nil
}

// ListChanges returns all active changes sorted by id.
func (m *Manager) ListChanges() ([]*Change, error) {
	entries, err := os.ReadDir(m.ChangesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read changes directory: %w", err)
	}

	var changes []*Change
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		change, err := m.LoadChange(entry.Name())
		if err != nil {
			// Skip directories without readable metadata.
			continue
		}
		changes = append(changes, change)
	}

	return changes, nil
}

// updateFileFlags refreshes the file-existence flags and delta list.
func (m *Manager) updateFileFlags(change *Change) {
	change.Files.HasProposal = fileExists(m.ProposalPath(change.ID))
	change.Files.HasTasks = fileExists(m.TasksPath(change.ID))
	change.Files.HasDesign = fileExists(m.DesignPath(change.ID))

	deltas, err := m.DeltaFiles(change.ID)
	if err == nil {
		change.Files.Deltas = deltas
	}
}
