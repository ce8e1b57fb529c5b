package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCapability = `# API Gateway

## Purpose

Edge routing and client-facing policy enforcement.

## Requirements

### Requirement: Rate Limiting

The gateway SHALL reject clients exceeding their quota.

#### Scenario: Client over quota

- **Given** a client that has exhausted its quota
- **When** the client sends another request
- **Then** the gateway responds with status 429

### Requirement: Request Logging

All requests MUST be logged.

#### Scenario: Request arrives

- **Given** an incoming request
- **When** the gateway accepts it
- **Then** a log entry is written
`

func TestParseCapability(t *testing.T) {
	spec, err := ParseCapability("api-gateway", "specs/api-gateway/spec.md", []byte(sampleCapability))
	require.NoError(t, err)

	assert.Equal(t, "api-gateway", spec.Name)
	assert.Equal(t, "API Gateway", spec.Title)
	assert.Equal(t, "Edge routing and client-facing policy enforcement.", spec.Purpose)

	require.Len(t, spec.Requirements, 2)
	assert.Equal(t, "Rate Limiting", spec.Requirements[0].Title)
	assert.Equal(t, "Request Logging", spec.Requirements[1].Title)

	assert.Equal(t, 0, spec.Find("Rate Limiting"))
	assert.Equal(t, -1, spec.Find("Nope"))
	assert.True(t, spec.Has("Request Logging"))
}

func TestParseCapability_DuplicateTitle(t *testing.T) {
	content := `# Auth

## Requirements

### Requirement: Login

Body.

#### Scenario: S

- **Given** a
- **When** b
- **Then** c

### Requirement: Login

Body.

#### Scenario: S2

- **Given** a
- **When** b
- **Then** c
`

	_, err := ParseCapability("auth", "spec.md", []byte(content))
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, ErrDuplicateRequirementTitle, perr.Kind)
}

func TestRenderCapability_RoundTrip(t *testing.T) {
	first, err := ParseCapability("api-gateway", "spec.md", []byte(sampleCapability))
	require.NoError(t, err)

	rendered := RenderCapability(first)
	second, err := ParseCapability("api-gateway", "spec.md", []byte(rendered))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCapabilityClone(t *testing.T) {
	spec, err := ParseCapability("api-gateway", "spec.md", []byte(sampleCapability))
	require.NoError(t, err)

	clone := spec.Clone()
	require.Equal(t, spec, clone)

	clone.Requirements[0].Title = "Changed"
	clone.Requirements[0].Scenarios[0].Steps[0].Text = "changed"
	assert.Equal(t, "Rate Limiting", spec.Requirements[0].Title)
	assert.Equal(t, "a client that has exhausted its quota", spec.Requirements[0].Scenarios[0].Steps[0].Text)
}
