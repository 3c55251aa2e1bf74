package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirque-irc/conformance/types"
)

func TestNewRegistryDefaults(t *testing.T) {
	r, err := NewRegistry(Config{})
	require.NoError(t, err)

	enabled := r.Enabled()
	require.NotEmpty(t, enabled)

	// Declared order is the run order.
	assert.Equal(t, "ROBUST", enabled[0].ID)
	assert.Equal(t, "BASIC_CONNECTION", enabled[1].ID)
	assert.Equal(t, "BASIC_CHANNEL_OPERATOR", enabled[len(enabled)-1].ID)

	for _, c := range r.Disabled() {
		assert.NotEmpty(t, c.Rationale, "disabled category %s has no rationale", c.ID)
	}

	// Enabled and disabled sets are disjoint.
	for _, d := range r.Disabled() {
		for _, e := range enabled {
			assert.NotEqual(t, e.ID, d.ID)
		}
	}
}

func TestNewRegistryOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	content := `categories:
  - id: BASIC_CONNECTION
    enabled: true
  - id: PING_PONG
    enabled: false
    rationale: "optional tokens"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := NewRegistry(Config{ConfigFile: path})
	require.NoError(t, err)

	require.Len(t, r.Enabled(), 1)
	assert.Equal(t, "BASIC_CONNECTION", r.Enabled()[0].ID)

	c, ok := r.Get("PING_PONG")
	require.True(t, ok)
	assert.False(t, c.Enabled)
	assert.Equal(t, "optional tokens", c.Rationale)

	_, ok = r.Get("CHANNEL_JOIN")
	assert.False(t, ok)
}

func TestNewRegistryValidation(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "categories.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("rejects duplicate ids", func(t *testing.T) {
		path := write(t, `categories:
  - id: AWAY
    enabled: true
  - id: AWAY
    enabled: true
`)
		_, err := NewRegistry(Config{ConfigFile: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("rejects disabled category without rationale", func(t *testing.T) {
		path := write(t, `categories:
  - id: MOTD
    enabled: false
`)
		_, err := NewRegistry(Config{ConfigFile: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rationale")
	})

	t.Run("rejects empty table", func(t *testing.T) {
		path := write(t, `categories: []`)
		_, err := NewRegistry(Config{ConfigFile: path})
		require.Error(t, err)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		path := write(t, `categories:
  - id: ""
    enabled: true
`)
		_, err := NewRegistry(Config{ConfigFile: path})
		require.Error(t, err)
	})

	t.Run("missing override file", func(t *testing.T) {
		_, err := NewRegistry(Config{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
		require.Error(t, err)
	})
}

func TestCategoriesPreserveTable(t *testing.T) {
	r, err := NewRegistry(Config{})
	require.NoError(t, err)

	all := r.Categories()
	assert.Len(t, all, len(r.Enabled())+len(r.Disabled()))
	assert.IsType(t, types.Category{}, all[0])
}
