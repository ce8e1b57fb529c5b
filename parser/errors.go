package parser

import "fmt"

// ErrorKind classifies structural parse failures.
type ErrorKind string

const (
	// ErrMissingSectionHeader indicates a requirement appears outside a
	// recognized delta section header.
	ErrMissingSectionHeader ErrorKind = "missing_section_header"

	// ErrRequirementWithoutScenario indicates a requirement block has no
	// scenario blocks.
	ErrRequirementWithoutScenario ErrorKind = "requirement_without_scenario"

	// ErrScenarioMissingStep indicates a scenario lacks a required step kind.
	ErrScenarioMissingStep ErrorKind = "scenario_missing_step"

	// ErrDuplicateRequirementTitle indicates the same requirement title
	// appears twice within one delta operation.
	ErrDuplicateRequirementTitle ErrorKind = "duplicate_requirement_title"

	// ErrStepsOutOfOrder indicates scenario steps violate the
	// Given -> When -> Then ordering.
	ErrStepsOutOfOrder ErrorKind = "steps_out_of_order"
)

// ParseError describes a structural problem in a spec document.
// Parsing is deterministic: identical input yields an identical error.
type ParseError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// File is the source file path, when known.
	File string

	// Line is the 1-based line number where the problem was detected.
	Line int

	// Step is the missing step kind for ErrScenarioMissingStep.
	Step StepKind

	// Detail names the offending requirement or scenario title.
	Detail string
}

// Message returns the failure description without file position.
func (e *ParseError) Message() string {
	switch e.Kind {
	case ErrMissingSectionHeader:
		return fmt.Sprintf("requirement %q outside an ADDED/MODIFIED/REMOVED Requirements section", e.Detail)
	case ErrRequirementWithoutScenario:
		return fmt.Sprintf("requirement %q has no scenarios", e.Detail)
	case ErrScenarioMissingStep:
		return fmt.Sprintf("scenario %q is missing a %s step", e.Detail, e.Step)
	case ErrDuplicateRequirementTitle:
		return fmt.Sprintf("duplicate requirement title %q", e.Detail)
	case ErrStepsOutOfOrder:
		return fmt.Sprintf("scenario %q has steps out of Given/When/Then order", e.Detail)
	default:
		return fmt.Sprintf("parse error (%s): %s", e.Kind, e.Detail)
	}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	return loc + ": " + e.Message()
}
