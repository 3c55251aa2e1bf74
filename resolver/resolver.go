// Package resolver computes the on-disk path of a built server binary.
package resolver

import (
	"os"
	"path/filepath"
	"runtime"
)

// EnvTargetDir is the environment override for the build output root.
const EnvTargetDir = "CARGO_TARGET_DIR"

// DefaultProfile is the build profile segment appended under the target
// directory. The orchestrator only ever drives debug builds.
const DefaultProfile = "debug"

// Resolver resolves logical binary names to executable paths. It is a pure
// function of its fields; the environment is consulted once, at
// construction, never at resolve time.
type Resolver struct {
	TargetDir string
	Profile   string

	goos string
}

// New creates a resolver rooted at targetDir. An empty targetDir falls back
// to a "target" directory under the current working directory.
func New(targetDir string) *Resolver {
	return newForOS(targetDir, runtime.GOOS)
}

// FromEnv creates a resolver honoring the CARGO_TARGET_DIR override.
func FromEnv() *Resolver {
	return New(os.Getenv(EnvTargetDir))
}

func newForOS(targetDir, goos string) *Resolver {
	if targetDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		targetDir = filepath.Join(wd, "target")
	}
	return &Resolver{
		TargetDir: targetDir,
		Profile:   DefaultProfile,
		goos:      goos,
	}
}

// Resolve returns the path of the named binary. It performs no existence
// check; a missing binary surfaces later as a spawn failure.
func (r *Resolver) Resolve(binaryName string) string {
	name := binaryName
	if r.goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(r.TargetDir, r.Profile, name)
}
