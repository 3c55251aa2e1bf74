package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("roots path at target dir", func(t *testing.T) {
		r := newForOS("/builds/out", "linux")
		assert.Equal(t, filepath.Join("/builds/out", "debug", "chirc-compat"), r.Resolve("chirc-compat"))
	})

	t.Run("appends exe suffix exactly once on windows", func(t *testing.T) {
		r := newForOS("/builds/out", "windows")
		got := r.Resolve("chirc-compat")
		assert.Equal(t, filepath.Join("/builds/out", "debug", "chirc-compat.exe"), got)
	})

	t.Run("no suffix on unix-like hosts", func(t *testing.T) {
		for _, goos := range []string{"linux", "darwin", "freebsd"} {
			r := newForOS("/builds/out", goos)
			assert.Equal(t, filepath.Join("/builds/out", "debug", "irctest-compat"), r.Resolve("irctest-compat"), goos)
		}
	})

	t.Run("debug segment appears exactly once", func(t *testing.T) {
		r := newForOS("/builds/debug", "linux")
		assert.Equal(t, filepath.Join("/builds/debug", "debug", "chirc-compat"), r.Resolve("chirc-compat"))
	})

	t.Run("empty target dir falls back to cwd target", func(t *testing.T) {
		r := newForOS("", "linux")
		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "target", "debug", "chirc-compat"), r.Resolve("chirc-compat"))
	})

	t.Run("override wins regardless of cwd", func(t *testing.T) {
		r := newForOS("/elsewhere", "linux")
		wd, err := os.Getwd()
		require.NoError(t, err)
		got := r.Resolve("chirc-compat")
		assert.Equal(t, filepath.Join("/elsewhere", "debug", "chirc-compat"), got)
		assert.NotContains(t, got, wd)
	})
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvTargetDir, "/env/target")
	r := FromEnv()
	assert.Equal(t, "/env/target", r.TargetDir)
}
