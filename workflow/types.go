// Package workflow manages the change-proposal lifecycle: scaffolding
// change directories, validating their structure, tracking task
// completion, and archiving finished changes into the canonical specs
// tree.
package workflow

import (
	"time"
)

// Status represents the current state of a change in the lifecycle.
type Status string

const (
	// StatusDraft indicates the change has been scaffolded but not yet
	// validated.
	StatusDraft Status = "draft"
	// StatusValidated indicates the change passed structural validation.
	StatusValidated Status = "validated"
	// StatusApplied indicates implementation finished with all tasks done.
	StatusApplied Status = "applied"
	// StatusArchived indicates the change was merged and moved to the
	// archive. Terminal.
	StatusArchived Status = "archived"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known lifecycle status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusValidated, StatusApplied, StatusArchived:
		return true
	default:
		return false
	}
}

// rank orders statuses along the lifecycle. Unknown statuses rank below
// draft.
func (s Status) rank() int {
	switch s {
	case StatusDraft:
		return 1
	case StatusValidated:
		return 2
	case StatusApplied:
		return 3
	case StatusArchived:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether the status has reached the target stage.
func (s Status) AtLeast(target Status) bool {
	return s.rank() >= target.rank()
}

// CanTransitionTo returns true if the status can transition to the
// target status. Transitions only move forward one step; archived is
// terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusValidated
	case StatusValidated:
		return target == StatusApplied
	case StatusApplied:
		return target == StatusArchived
	case StatusArchived:
		return false
	default:
		return false
	}
}

// Change is the metadata record for one change proposal, persisted as
// metadata.json inside the change directory.
type Change struct {
	// UID is a stable unique identifier independent of the change id.
	UID string `json:"uid"`

	// ID is the kebab-case, verb-led change identifier used in paths.
	ID string `json:"id"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// Capability is the capability the scaffolded delta targets.
	Capability string `json:"capability,omitempty"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Author is the user who created the change.
	Author string `json:"author,omitempty"`

	// CreatedAt is when the change was scaffolded.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the metadata was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// ValidatedAt is when validation last passed.
	ValidatedAt *time.Time `json:"validated_at,omitempty"`

	// AppliedAt is when the change was applied.
	AppliedAt *time.Time `json:"applied_at,omitempty"`

	// ArchivedAt is when the change was archived.
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// FileHashes maps tracked file paths (relative to the change
	// directory) to their content hash at the last successful
	// validation. Used to detect stale validation before apply.
	FileHashes map[string]string `json:"file_hashes,omitempty"`

	// Files tracks which documents exist for this change.
	Files ChangeFiles `json:"files"`
}

// ChangeFiles tracks which documents exist for a change.
type ChangeFiles struct {
	HasProposal bool `json:"has_proposal"`
	HasTasks    bool `json:"has_tasks"`
	HasDesign   bool `json:"has_design"`

	// Deltas lists spec-delta files relative to the change directory.
	Deltas []string `json:"deltas,omitempty"`
}
