// Package builder triggers the external build of a server binary. The
// build system is an opaque command; the orchestrator only cares that it
// exits zero.
package builder

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/cirque-irc/conformance/proc"
)

type commandRunner interface {
	Run(ctx context.Context, cmd proc.Command) proc.RunResult
}

// Builder invokes cargo for a single named binary target.
type Builder struct {
	runner commandRunner
	cargo  string
	log    *slog.Logger
}

// NewBuilder creates a builder that shells out to cargoBin.
func NewBuilder(runner *proc.Runner, cargoBin string, log *slog.Logger) *Builder {
	if cargoBin == "" {
		cargoBin = "cargo"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Builder{runner: runner, cargo: cargoBin, log: log}
}

// Build builds the named binary target and blocks until the build exits.
// A non-zero build is fatal to the run.
func (b *Builder) Build(ctx context.Context, target string) error {
	if target == "" {
		return errors.New("build target is required")
	}

	b.log.Info("Building server binary", "target", target)
	res := b.runner.Run(ctx, proc.Command{
		Path: b.cargo,
		Args: []string{"build", "--bin", target},
	})
	switch res.State {
	case proc.StateCompleted:
		return nil
	case proc.StateToolFailed:
		return errors.Errorf("build of %s failed with exit code %d", target, res.ExitCode)
	default:
		return errors.Wrapf(res.Err, "launching build of %s", target)
	}
}
