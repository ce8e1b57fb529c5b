package storage

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/openspec/parser"
)

func parseDelta(t *testing.T, content string) *parser.SpecDelta {
	t.Helper()
	delta, err := parser.ParseDelta("spec.md", []byte(content))
	require.NoError(t, err)
	return delta
}

const addRateLimiting = `## ADDED Requirements

### Requirement: Rate Limiting

The gateway SHALL reject clients exceeding their quota.

#### Scenario: Client over quota

- **Given** a client over quota
- **When** the client sends a request
- **Then** the request is rejected
`

func TestMerge_Added(t *testing.T) {
	spec := testSpec(t)
	delta := parseDelta(t, addRateLimiting)

	merged, err := Merge(spec, delta)
	require.NoError(t, err)

	// Inserted at the end, original untouched.
	require.Len(t, merged.Requirements, 2)
	assert.Equal(t, "Rate Limiting", merged.Requirements[1].Title)
	assert.Len(t, spec.Requirements, 1)
}

func TestMerge_AddedExisting(t *testing.T) {
	spec := testSpec(t)
	delta := parseDelta(t, `## ADDED Requirements

### Requirement: Login

Different wording.

#### Scenario: S

- **Given** a
- **When** b
- **Then** c
`)

	_, err := Merge(spec, delta)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequirementExists))

	var merr *MergeError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, parser.OpAdded, merr.Operation)
	assert.Equal(t, "Login", merr.Title)
}

func TestMerge_ModifiedReplacesWholesale(t *testing.T) {
	spec := testSpec(t)
	delta := parseDelta(t, `## MODIFIED Requirements

### Requirement: Login

Users SHALL authenticate with a passkey.

#### Scenario: Passkey login

- **Given** a registered passkey
- **When** the user presents it
- **Then** a session is created
`)

	merged, err := Merge(spec, delta)
	require.NoError(t, err)

	req := merged.Requirements[merged.Find("Login")]
	assert.Equal(t, "Users SHALL authenticate with a passkey.", req.Body)
	require.Len(t, req.Scenarios, 1)
	assert.Equal(t, "Passkey login", req.Scenarios[0].Title)
}

func TestMerge_ModifiedMissing(t *testing.T) {
	spec := testSpec(t)
	delta := parseDelta(t, `## MODIFIED Requirements

### Requirement: Nope

Body.

#### Scenario: S

- **Given** a
- **When** b
- **Then** c
`)

	_, err := Merge(spec, delta)
	assert.True(t, errors.Is(err, ErrRequirementNotFound))
}

func TestMerge_RemovedMissing(t *testing.T) {
	spec := testSpec(t)
	delta := parseDelta(t, `## REMOVED Requirements

### Requirement: Nope

Gone.

#### Scenario: S

- **Given** a
- **When** b
- **Then** c
`)

	_, err := Merge(spec, delta)
	assert.True(t, errors.Is(err, ErrRequirementNotFound))
}

func TestMerge_RenameViaRemoveThenAdd(t *testing.T) {
	spec := testSpec(t)
	delta := parseDelta(t, `## REMOVED Requirements

### Requirement: Login

Old.

#### Scenario: Old

- **Given** a
- **When** b
- **Then** c

## ADDED Requirements

### Requirement: Login

New wording after rename.

#### Scenario: New

- **Given** a
- **When** b
- **Then** c
`)

	merged, err := Merge(spec, delta)
	require.NoError(t, err)
	require.Len(t, merged.Requirements, 1)
	assert.Equal(t, "New wording after rename.", merged.Requirements[0].Body)
}

func TestMergeAndSave_CreatesCapability(t *testing.T) {
	store := NewStore(t.TempDir())
	delta := parseDelta(t, addRateLimiting)

	merged, err := store.MergeAndSave("api-gateway", delta)
	require.NoError(t, err)
	require.Len(t, merged.Requirements, 1)
	assert.Equal(t, "Rate Limiting", merged.Requirements[0].Title)

	loaded, err := store.Load("api-gateway")
	require.NoError(t, err)
	require.Len(t, loaded.Requirements, 1)
	assert.Equal(t, "Rate Limiting", loaded.Requirements[0].Title)
}

func TestMergeAndSave_FailureLeavesSpecUntouched(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(testSpec(t)))

	before, err := os.ReadFile(store.CapabilityPath("auth"))
	require.NoError(t, err)

	// Second requirement in the delta fails after the first would apply.
	delta := parseDelta(t, `## ADDED Requirements

### Requirement: Audit Log

New requirement.

#### Scenario: S

- **Given** a
- **When** b
- **Then** c

### Requirement: Login

Duplicate of an existing requirement.

#### Scenario: S2

- **Given** a
- **When** b
- **Then** c
`)

	_, err = store.MergeAndSave("auth", delta)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequirementExists))

	after, err := os.ReadFile(store.CapabilityPath("auth"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
