package workflow

import (
	"fmt"
	"strings"
)

// ProposalTemplate generates a proposal.md scaffold with the section
// headings validation expects, in order. The Related line points at
// the capability the delta stub introduces so a fresh scaffold
// cross-references cleanly.
func ProposalTemplate(title, capability string) string {
	return fmt.Sprintf(`# %s

## Executive Summary

One or two sentences describing the change and its outcome.

## Background

What problem exists today and why it matters now.

## Goals

- State the measurable outcomes this change delivers

## Scope

### In Scope
- (List what this change covers)

### Out of Scope
- (List what it deliberately does not)

## Approach

How the change will be made. Affected capabilities:

Related: %s

## Risks

- (List risks and mitigations)

## Validation

How we will know the change worked.

## Open Questions

- (List unresolved questions, or remove this section)
`, title, "`"+capability+"`")
}

// TasksTemplate generates a tasks.md scaffold.
func TasksTemplate(title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Tasks: %s\n\n", title))

	sections := []string{"Implementation", "Testing", "Documentation"}
	for i, section := range sections {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, section)
		fmt.Fprintf(&sb, "- [ ] %d.1 Task description\n\n", i+1)
	}

	return sb.String()
}

// DeltaTemplate generates a spec delta scaffold for a capability.
func DeltaTemplate(capability string) string {
	return fmt.Sprintf(`## ADDED Requirements

### Requirement: %s behavior

The system SHALL (describe the new behavior).

#### Scenario: Describe the situation

- **Given** an initial context
- **When** an action occurs
- **Then** the expected outcome holds
`, capability)
}

// ProjectTemplate generates the project.md written by init.
func ProjectTemplate() string {
	return `# Project Context

## Purpose

Describe what this project does and who it serves.

## Conventions

- Capability specs live in specs/<capability>/spec.md
- Changes are proposed under changes/<change-id>/
- Change ids are kebab-case and start with a verb (add, update, remove, ...)
`
}

// DesignTemplate generates an optional design.md scaffold.
func DesignTemplate(title string) string {
	return fmt.Sprintf(`# Design: %s

## Context

Technical background a reviewer needs.

## Decisions

### Decision: (Name)

What was decided and the alternatives considered.
`, title)
}
