// Package fixture keeps the external protocol test fixture repository
// present at an exact, pinned revision.
package fixture

import (
	"context"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/cirque-irc/conformance/proc"
)

// Pinned chirc fixture snapshot. The suite's behavior is frozen at this
// revision; bumping it is a curation decision, not an upgrade.
const (
	RepositoryURL  = "https://github.com/uchicago-cs/chirc"
	PinnedRevision = "a392e1789c362e58c75b0bc533fc0aeac6f56304"
	DefaultDir     = "chirc"
)

// commandRunner is the slice of proc.Runner the synchronizer needs.
type commandRunner interface {
	Run(ctx context.Context, cmd proc.Command) proc.RunResult
}

// Synchronizer clones and pins the fixture repository. An existing local
// checkout is trusted as-is: no drift detection, no repair.
type Synchronizer struct {
	runner commandRunner
	git    string
	log    *slog.Logger

	stat func(string) (fs.FileInfo, error)
}

// NewSynchronizer creates a synchronizer that shells out to gitBin.
func NewSynchronizer(runner *proc.Runner, gitBin string, log *slog.Logger) *Synchronizer {
	if gitBin == "" {
		gitBin = "git"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{
		runner: runner,
		git:    gitBin,
		log:    log,
		stat:   os.Stat,
	}
}

// Ensure guarantees dir holds a checkout of repoURL at revision. If dir
// already exists the call is a no-op; otherwise it clones and hard-resets.
// Any clone or reset failure is returned and must abort the run.
func (s *Synchronizer) Ensure(ctx context.Context, repoURL, revision, dir string) error {
	if _, err := s.stat(dir); err == nil {
		s.log.Debug("Fixture checkout present, leaving untouched", "dir", dir)
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "checking fixture dir %s", dir)
	}

	s.log.Info("Cloning fixture repository", "url", repoURL, "dir", dir)
	if res := s.runner.Run(ctx, proc.Command{
		Path: s.git,
		Args: []string{"clone", repoURL, dir},
	}); !res.Ok() {
		return errors.Wrapf(res.Err, "cloning fixture repository %s", repoURL)
	}

	s.log.Info("Pinning fixture checkout", "revision", revision)
	if res := s.runner.Run(ctx, proc.Command{
		Path: s.git,
		Args: []string{"reset", "--hard", revision},
		Dir:  dir,
	}); !res.Ok() {
		return errors.Wrapf(res.Err, "resetting fixture to %s", revision)
	}

	return nil
}
