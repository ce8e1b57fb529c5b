package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/openspec/parser"
)

func testSpec(t *testing.T) *parser.CapabilitySpec {
	t.Helper()

	content := `# Auth

## Purpose

Authentication and session management.

## Requirements

### Requirement: Login

Users SHALL authenticate with credentials.

#### Scenario: Valid credentials

- **Given** a registered user
- **When** the user submits valid credentials
- **Then** a session is created
`

	spec, err := parser.ParseCapability("auth", "spec.md", []byte(content))
	require.NoError(t, err)
	return spec
}

func TestStore_SaveLoad(t *testing.T) {
	store := NewStore(t.TempDir())
	spec := testSpec(t)

	require.NoError(t, store.Save(spec))
	assert.True(t, store.Exists("auth"))

	loaded, err := store.Load("auth")
	require.NoError(t, err)
	assert.Equal(t, "Auth", loaded.Title)
	assert.Equal(t, spec.Purpose, loaded.Purpose)
	require.Len(t, loaded.Requirements, 1)
	assert.Equal(t, "Login", loaded.Requirements[0].Title)
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, store.Exists("nope"))
}

func TestStore_List(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, name := range []string{"zeta", "alpha"} {
		spec := testSpec(t)
		spec.Name = name
		require.NoError(t, store.Save(spec))
	}

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(testSpec(t)))

	entries, err := os.ReadDir(filepath.Join(store.SpecsDir(), "auth"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "spec.md", entries[0].Name())
}
