// Package proc is the single process-launch capability shared by the
// orchestration front-ends: run a command to completion with a classified
// outcome, or start it detached and hand the live process back to the
// caller.
package proc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// State classifies the outcome of a completed command.
type State int

const (
	// StateCompleted means the process ran and exited zero.
	StateCompleted State = iota
	// StateToolFailed means the process started but exited non-zero.
	StateToolFailed
	// StateSpawnFailed means the process could not be started at all
	// (missing executable, permission denied).
	StateSpawnFailed
)

// String provides a string representation of State
func (s State) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateToolFailed:
		return "tool-failed"
	case StateSpawnFailed:
		return "spawn-failed"
	default:
		return "unknown"
	}
}

// Command describes one external invocation.
type Command struct {
	Path string
	Args []string
	Dir  string

	// Stdout/Stderr override the runner defaults when non-nil.
	Stdout io.Writer
	Stderr io.Writer
}

// RunResult is the classified outcome of a Run call. Callers choose
// fail-fast or aggregate behavior from it; Run itself never aborts.
type RunResult struct {
	State    State
	ExitCode int
	Err      error
}

// Ok returns true if the process ran and exited zero.
func (r RunResult) Ok() bool {
	return r.State == StateCompleted
}

// CommandBuilder constructs the exec.Cmd for a Command. Tests substitute
// a recording builder.
type CommandBuilder func(ctx context.Context, cmd Command) *exec.Cmd

// DefaultCommandBuilder builds the real command.
func DefaultCommandBuilder(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	return c
}

// Runner launches commands. The zero value is not usable; use NewRunner.
type Runner struct {
	Builder CommandBuilder
	Stdout  io.Writer
	Stderr  io.Writer

	log *slog.Logger
}

// NewRunner creates a runner that mirrors child output to the orchestrator's
// own stdout/stderr unless a command overrides it.
func NewRunner(log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		Builder: DefaultCommandBuilder,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		log:     log,
	}
}

// Run executes the command and blocks until it exits.
func (r *Runner) Run(ctx context.Context, cmd Command) RunResult {
	c := r.Builder(ctx, cmd)
	c.Stdout = r.Stdout
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	}
	c.Stderr = r.Stderr
	if cmd.Stderr != nil {
		c.Stderr = cmd.Stderr
	}

	r.log.Debug("Running command", "path", cmd.Path, "args", cmd.Args, "dir", cmd.Dir)

	err := c.Run()
	if err == nil {
		return RunResult{State: StateCompleted}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return RunResult{
			State:    StateToolFailed,
			ExitCode: exitErr.ExitCode(),
			Err:      err,
		}
	}
	return RunResult{
		State:    StateSpawnFailed,
		ExitCode: -1,
		Err:      err,
	}
}

// Handle is a started process exposed to the caller. The caller owns
// termination; the runner does not wait on it.
type Handle struct {
	cmd *exec.Cmd
}

// Process returns the underlying live process.
func (h *Handle) Process() *os.Process {
	return h.cmd.Process
}

// PID returns the process id of the started process.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Wait blocks until the process exits and releases its resources.
func (h *Handle) Wait() error {
	return h.cmd.Wait()
}

// Start launches the command and returns without waiting for it.
func (r *Runner) Start(ctx context.Context, cmd Command) (*Handle, error) {
	c := r.Builder(ctx, cmd)
	c.Stdout = r.Stdout
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	}
	c.Stderr = r.Stderr
	if cmd.Stderr != nil {
		c.Stderr = cmd.Stderr
	}

	r.log.Debug("Starting command", "path", cmd.Path, "args", cmd.Args)

	if err := c.Start(); err != nil {
		return nil, err
	}
	return &Handle{cmd: c}, nil
}
