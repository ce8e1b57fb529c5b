package storage

import (
	"errors"
	"fmt"
)

// Common storage errors.
var (
	// ErrNotFound is returned when a capability spec does not exist.
	ErrNotFound = errors.New("capability not found")

	// ErrRequirementNotFound is returned when MODIFIED or REMOVED targets
	// a requirement title that does not exist in the capability.
	ErrRequirementNotFound = errors.New("requirement not found")

	// ErrRequirementExists is returned when ADDED targets a requirement
	// title already present in the capability.
	ErrRequirementExists = errors.New("requirement already exists")
)

// MergeError describes a failed delta merge against one capability.
type MergeError struct {
	// Capability is the capability name the merge targeted.
	Capability string

	// Operation is the delta operation that failed (ADDED, MODIFIED, REMOVED).
	Operation string

	// Title is the requirement title involved.
	Title string

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %s %q into capability %q: %v", e.Operation, e.Title, e.Capability, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *MergeError) Unwrap() error {
	return e.Err
}
