package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/openspec/storage"
)

const goodProposal = `# Add auth refresh

## Executive Summary

Rotate refresh tokens on every use.

## Background

Long-lived refresh tokens are a replay risk.

## Scope

Token issuing endpoints only.

## Approach

Rotate on redemption.

Related: ` + "`auth`" + `

## Risks

Clients holding stale tokens get logged out.

## Validation

Integration tests around the refresh endpoint.
`

const goodDelta = `## ADDED Requirements

### Requirement: Token refresh

The system SHALL rotate refresh tokens on use.

#### Scenario: Token rotated

- **Given** a valid refresh token
- **When** it is redeemed
- **Then** a new token pair is issued
`

const goodTasks = `## 1. Implementation

- [ ] 1.1 Rotate tokens on redemption
`

// writeChange lays out a change directory from a map of relative
// paths to contents.
func writeChange(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "add-auth-refresh")
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func goodChangeFiles() map[string]string {
	return map[string]string{
		"proposal.md":        goodProposal,
		"tasks.md":           goodTasks,
		"specs/auth/spec.md": goodDelta,
	}
}

func validate(t *testing.T, files map[string]string) *Report {
	t.Helper()
	dir := writeChange(t, files)
	store := storage.NewStore(filepath.Join(t.TempDir(), "specs"))

	report, err := New(dir, store).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return report
}

func TestValidateCleanChange(t *testing.T) {
	report := validate(t, goodChangeFiles())

	if len(report.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", report.Diagnostics)
	}
	if !report.Pass(true) {
		t.Error("clean change should pass strict validation")
	}
}

func TestValidateMissingSectionAndScenario(t *testing.T) {
	files := goodChangeFiles()
	files["proposal.md"] = `# Add auth refresh

## Executive Summary

Rotate refresh tokens on every use.

## Background

Long-lived refresh tokens are a replay risk.

## Scope

Token issuing endpoints only.

## Approach

Related: ` + "`auth`" + `

## Validation

Integration tests.
`
	files["specs/auth/spec.md"] = `## ADDED Requirements

### Requirement: Token refresh

The system SHALL rotate refresh tokens on use.
`

	report := validate(t, files)

	if len(report.Diagnostics) != 2 {
		t.Fatalf("expected exactly 2 diagnostics, got %v", report.Diagnostics)
	}
	if report.Warnings() != 1 {
		t.Errorf("expected 1 warning (missing Risks), got %d", report.Warnings())
	}
	if report.Errors() != 1 {
		t.Errorf("expected 1 error (requirement without scenario), got %d", report.Errors())
	}
	if report.Pass(false) {
		t.Error("change with errors must not pass")
	}
}

func TestValidateSectionOrder(t *testing.T) {
	files := goodChangeFiles()
	files["proposal.md"] = `# Add auth refresh

## Executive Summary

Summary.

## Scope

Scope.

## Background

Out of order.

## Approach

Related: ` + "`auth`" + `

## Risks

Risks.

## Validation

Validation.
`

	report := validate(t, files)

	if report.Errors() != 1 {
		t.Fatalf("expected 1 order error, got %v", report.Diagnostics)
	}
	d := report.Diagnostics[0]
	if d.File != "proposal.md" || d.Line == 0 {
		t.Errorf("diagnostic should carry file and line, got %+v", d)
	}
}

func TestValidateOptionalSectionsSilent(t *testing.T) {
	// Goals and Open Questions are absent from goodProposal; their
	// absence produces no diagnostics.
	report := validate(t, goodChangeFiles())
	for _, d := range report.Diagnostics {
		t.Errorf("unexpected diagnostic: %v", d)
	}
}

func TestValidateMissingFiles(t *testing.T) {
	report := validate(t, map[string]string{
		"proposal.md": goodProposal,
	})

	if report.Errors() < 2 {
		t.Errorf("expected errors for missing tasks and deltas, got %v", report.Diagnostics)
	}
}

func TestValidateDeltaParseErrorPosition(t *testing.T) {
	files := goodChangeFiles()
	files["specs/auth/spec.md"] = `### Requirement: Orphan

The system SHALL be parsed.

#### Scenario: Orphan

- **Given** a requirement outside a section
- **When** the delta is parsed
- **Then** an error points at the requirement
`

	report := validate(t, files)

	if report.Errors() != 1 {
		t.Fatalf("expected 1 parse error, got %v", report.Diagnostics)
	}
	d := report.Diagnostics[0]
	if d.File != "specs/auth/spec.md" {
		t.Errorf("File = %q", d.File)
	}
	if d.Line != 1 {
		t.Errorf("Line = %d, want 1", d.Line)
	}
}

func TestValidateCrossReference(t *testing.T) {
	files := goodChangeFiles()
	files["proposal.md"] = goodProposal + "\nRelated: `billing`\n"

	report := validate(t, files)

	if report.Errors() != 1 {
		t.Fatalf("expected 1 cross-reference error, got %v", report.Diagnostics)
	}
}

func TestValidateCrossReferenceExistingCapability(t *testing.T) {
	dir := writeChange(t, map[string]string{
		"proposal.md":        goodProposal,
		"tasks.md":           goodTasks,
		"specs/auth/spec.md": goodDelta,
	})

	specsDir := filepath.Join(t.TempDir(), "specs")
	store := storage.NewStore(specsDir)
	capDir := filepath.Join(specsDir, "auth")
	if err := os.MkdirAll(capDir, 0755); err != nil {
		t.Fatal(err)
	}
	spec := "# Auth\n\n## Purpose\n\nAuthentication.\n\n## Requirements\n"
	if err := os.WriteFile(filepath.Join(capDir, "spec.md"), []byte(spec), 0644); err != nil {
		t.Fatal(err)
	}

	report, err := New(dir, store).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(report.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", report.Diagnostics)
	}
}

func TestValidateBareBulletTask(t *testing.T) {
	files := goodChangeFiles()
	files["tasks.md"] = `## 1. Implementation

- [x] 1.1 A proper task
- Rotate tokens without a checkbox
`

	report := validate(t, files)

	if report.Errors() != 1 {
		t.Fatalf("expected 1 task syntax error, got %v", report.Diagnostics)
	}
	d := report.Diagnostics[0]
	if d.File != "tasks.md" || d.Line != 4 {
		t.Errorf("diagnostic position = %s:%d, want tasks.md:4", d.File, d.Line)
	}
}

func TestValidateBadCheckboxMarker(t *testing.T) {
	files := goodChangeFiles()
	files["tasks.md"] = `## 1. Implementation

- [x] 1.1 A proper task
- [z] 1.2 Do the thing
`

	report := validate(t, files)

	if report.Errors() != 1 {
		t.Fatalf("expected 1 task syntax error, got %v", report.Diagnostics)
	}
	d := report.Diagnostics[0]
	if d.File != "tasks.md" || d.Line != 4 {
		t.Errorf("diagnostic position = %s:%d, want tasks.md:4", d.File, d.Line)
	}
	if !strings.Contains(d.Message, "checkbox") {
		t.Errorf("diagnostic message = %q, want checkbox mention", d.Message)
	}
}

func TestValidateEmptyTasksWarns(t *testing.T) {
	files := goodChangeFiles()
	files["tasks.md"] = "# Tasks\n"

	report := validate(t, files)

	if report.Warnings() != 1 {
		t.Errorf("expected 1 warning for empty task list, got %v", report.Diagnostics)
	}
	if !report.Pass(false) {
		t.Error("warnings alone should not fail lenient validation")
	}
	if report.Pass(true) {
		t.Error("warnings should fail strict validation")
	}
}
