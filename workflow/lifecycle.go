package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/openspec/parser"
	"github.com/c360studio/openspec/storage"
	"github.com/c360studio/openspec/workflow/validation"
)

// ErrStaleValidation indicates change files were edited after
// validation.
var ErrStaleValidation = errors.New("validation is stale")

// StateError reports an operation attempted from the wrong status.
type StateError struct {
	ID       string
	Status   Status
	Required Status
	Op       string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s change %s: status is %s, requires %s",
		e.Op, e.ID, e.Status, e.Required)
}

// ValidationFailedError reports a validation run that did not pass.
type ValidationFailedError struct {
	Report *validation.Report
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed: %d error(s), %d warning(s)",
		e.Report.Errors(), e.Report.Warnings())
}

// StaleValidationError lists the files that changed since validation.
type StaleValidationError struct {
	ID    string
	Files []string
}

func (e *StaleValidationError) Error() string {
	return fmt.Sprintf("%v for change %s: %s edited since validation",
		ErrStaleValidation, e.ID, strings.Join(e.Files, ", "))
}

func (e *StaleValidationError) Unwrap() error {
	return ErrStaleValidation
}

// IncompleteTasksError reports unfinished tasks blocking apply.
type IncompleteTasksError struct {
	ID        string
	Remaining int
}

func (e *IncompleteTasksError) Error() string {
	return fmt.Sprintf("change %s has %d incomplete task(s)", e.ID, e.Remaining)
}

// ConflictError reports a requirement title appearing in conflicting
// delta operations for one capability.
type ConflictError struct {
	Capability string
	Title      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting operations on requirement %q in capability %s",
		e.Title, e.Capability)
}

// Lifecycle drives changes through draft, validated, applied, and
// archived. It owns the locking, hashing, and spec merging around
// each transition.
type Lifecycle struct {
	manager *Manager
	store   *storage.Store
	logger  *slog.Logger
}

// NewLifecycle creates a Lifecycle over a change manager and spec store.
func NewLifecycle(m *Manager, store *storage.Store, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{manager: m, store: store, logger: logger}
}

// Manager returns the underlying change manager.
func (l *Lifecycle) Manager() *Manager {
	return l.manager
}

// Store returns the underlying spec store.
func (l *Lifecycle) Store() *storage.Store {
	return l.store
}

// Validate runs all checks on a change and promotes it to validated
// when the report passes. A passing run records content hashes so
// later edits are detected at apply time. Returns the report along
// with ValidationFailedError when the report does not pass.
func (l *Lifecycle) Validate(id string, strict bool) (*validation.Report, error) {
	change, err := l.manager.LoadChange(id)
	if err != nil {
		return nil, err
	}
	if change.Status.AtLeast(StatusApplied) {
		return nil, &StateError{ID: id, Status: change.Status, Required: StatusDraft, Op: "validate"}
	}

	if err := l.manager.Lock(id); err != nil {
		return nil, err
	}
	defer l.manager.Unlock(id)

	validator := validation.New(l.manager.ChangePath(id), l.store)
	report, err := validator.Validate()
	if err != nil {
		return nil, err
	}

	if !report.Pass(strict) {
		l.logger.Warn("validation failed",
			"change", id,
			"errors", report.Errors(),
			"warnings", report.Warnings())
		return report, &ValidationFailedError{Report: report}
	}

	hashes, err := l.manager.HashFiles(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	change.Status = StatusValidated
	change.ValidatedAt = &now
	change.FileHashes = hashes
	if err := l.manager.SaveChange(change); err != nil {
		return nil, err
	}

	l.logger.Info("change validated", "change", id, "warnings", report.Warnings())
	return report, nil
}

// Apply marks a validated change as implemented. It refuses when the
// change files were edited after validation or when tasks remain
// unchecked.
func (l *Lifecycle) Apply(id string) error {
	change, err := l.manager.LoadChange(id)
	if err != nil {
		return err
	}
	if change.Status != StatusValidated {
		return &StateError{ID: id, Status: change.Status, Required: StatusValidated, Op: "apply"}
	}

	if err := l.manager.Lock(id); err != nil {
		return err
	}
	defer l.manager.Unlock(id)

	stale, err := l.manager.StaleFiles(id, change.FileHashes)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		sort.Strings(stale)
		return &StaleValidationError{ID: id, Files: stale}
	}

	tasksContent, err := l.manager.readFile(l.manager.TasksPath(id))
	if err != nil {
		return fmt.Errorf("reading tasks: %w", err)
	}
	total, completed := TaskStats(ParseTasks(tasksContent))
	if remaining := total - completed; remaining > 0 {
		return &IncompleteTasksError{ID: id, Remaining: remaining}
	}

	now := time.Now().UTC()
	change.Status = StatusApplied
	change.AppliedAt = &now
	if err := l.manager.SaveChange(change); err != nil {
		return err
	}

	l.logger.Info("change applied", "change", id, "tasks", total)
	return nil
}

// Archive merges an applied change's spec deltas into the project
// specs and moves the change directory into the archive. Archiving an
// already-archived change is a no-op. With skipSpecs the merge step is
// bypassed and only the move happens.
func (l *Lifecycle) Archive(id string, skipSpecs bool) error {
	change, err := l.manager.LoadChange(id)
	if err != nil {
		if !errors.Is(err, ErrChangeNotFound) {
			return err
		}
		dir, ferr := l.manager.FindArchived(id)
		if ferr != nil {
			return ferr
		}
		if dir != "" {
			l.logger.Info("change already archived", "change", id, "dir", dir)
			return nil
		}
		return err
	}
	// A change still in changes/ with archived status had its merge and
	// metadata persisted but not its move; only the move remains.
	resuming := change.Status == StatusArchived
	if change.Status != StatusApplied && !resuming {
		return &StateError{ID: id, Status: change.Status, Required: StatusApplied, Op: "archive"}
	}

	if err := l.manager.Lock(id); err != nil {
		return err
	}
	locked := true
	defer func() {
		if locked {
			l.manager.Unlock(id)
		}
	}()

	if !skipSpecs && !resuming {
		if err := l.mergeDeltas(id); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	if !resuming {
		change.Status = StatusArchived
		change.ArchivedAt = &now
		if err := l.manager.SaveChange(change); err != nil {
			return err
		}
	}
	archivedAt := now
	if change.ArchivedAt != nil {
		archivedAt = *change.ArchivedAt
	}

	if err := os.MkdirAll(l.manager.ArchivePath(), 0755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	l.manager.Unlock(id)
	locked = false

	dest := filepath.Join(l.manager.ArchivePath(), archivedAt.Format("2006-01-02")+"-"+id)
	if err := os.Rename(l.manager.ChangePath(id), dest); err != nil {
		return fmt.Errorf("moving change to archive: %w", err)
	}

	l.logger.Info("change archived", "change", id, "dir", dest, "skip_specs", skipSpecs)
	return nil
}

// mergeDeltas parses every delta, checks for conflicting operations,
// merges all capabilities in memory, and only then persists. A failure
// at any point leaves the project specs untouched.
func (l *Lifecycle) mergeDeltas(id string) error {
	relPaths, err := l.manager.DeltaFiles(id)
	if err != nil {
		return err
	}

	changePath := l.manager.ChangePath(id)
	merged := make(map[string]*parser.CapabilitySpec, len(relPaths))
	var order []string

	for _, rel := range relPaths {
		content, err := l.manager.readFile(filepath.Join(changePath, rel))
		if err != nil {
			return fmt.Errorf("reading delta %s: %w", rel, err)
		}
		delta, err := parser.ParseDelta(rel, []byte(content))
		if err != nil {
			return err
		}

		capability := DeltaCapability(rel)
		if err := checkDeltaConflicts(capability, delta); err != nil {
			return err
		}

		spec, err := l.store.Load(capability)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			spec = &parser.CapabilitySpec{Name: capability, Title: capability}
		}

		result, err := storage.Merge(spec, delta)
		if err != nil {
			return err
		}
		merged[capability] = result
		order = append(order, capability)
	}

	for _, capability := range order {
		if err := l.store.Save(merged[capability]); err != nil {
			return err
		}
		l.logger.Debug("capability updated", "capability", capability, "change", id)
	}
	return nil
}

// checkDeltaConflicts rejects a delta that names the same requirement
// title under MODIFIED and under ADDED or REMOVED. A title under both
// ADDED and REMOVED is a rename and is allowed.
func checkDeltaConflicts(capability string, delta *parser.SpecDelta) error {
	modified := make(map[string]bool, len(delta.Modified))
	for _, req := range delta.Modified {
		modified[req.Title] = true
	}
	for _, req := range delta.Added {
		if modified[req.Title] {
			return &ConflictError{Capability: capability, Title: req.Title}
		}
	}
	for _, req := range delta.Removed {
		if modified[req.Title] {
			return &ConflictError{Capability: capability, Title: req.Title}
		}
	}
	return nil
}
