package runner

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/cirque-irc/conformance/proc"
	"github.com/cirque-irc/conformance/types"
)

// DefaultPytestBinary is the external suite driver.
const DefaultPytestBinary = "pytest"

// SuiteExecutor invokes the external category-based suite for one
// category. The suite's output is streamed to out as it runs.
type SuiteExecutor interface {
	RunCategory(ctx context.Context, category types.Category, out io.Writer) proc.RunResult
}

type commandRunner interface {
	Run(ctx context.Context, cmd proc.Command) proc.RunResult
}

// pytestExecutor drives the chirc pytest suite. One invocation per
// category; the suite spawns and tears down its own server instances.
type pytestExecutor struct {
	runner     commandRunner
	pytest     string
	fixtureDir string
	exePath    string
	log        *slog.Logger
}

// ExecutorConfig configures the pytest executor.
type ExecutorConfig struct {
	Runner     *proc.Runner
	PytestBin  string
	FixtureDir string
	// ExePath is the resolved server executable handed to the suite. It
	// need not exist yet; the suite reports the launch failure itself.
	ExePath string
	Log     *slog.Logger
}

// NewPytestExecutor creates the production suite executor.
func NewPytestExecutor(cfg ExecutorConfig) SuiteExecutor {
	if cfg.PytestBin == "" {
		cfg.PytestBin = DefaultPytestBinary
	}
	if cfg.FixtureDir == "" {
		cfg.FixtureDir = "chirc"
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &pytestExecutor{
		runner:     cfg.Runner,
		pytest:     cfg.PytestBin,
		fixtureDir: cfg.FixtureDir,
		exePath:    cfg.ExePath,
		log:        cfg.Log,
	}
}

// RunCategory blocks until the suite exits for this category.
func (e *pytestExecutor) RunCategory(ctx context.Context, category types.Category, out io.Writer) proc.RunResult {
	args := e.buildSuiteArgs(category.ID)
	e.log.Debug("Invoking suite", "category", category.ID, "args", args)

	stdout := io.Writer(os.Stdout)
	if out != nil {
		stdout = io.MultiWriter(os.Stdout, out)
	}

	return e.runner.Run(ctx, proc.Command{
		Path:   e.pytest,
		Args:   args,
		Stdout: stdout,
	})
}

// buildSuiteArgs constructs the suite command line for one category.
func (e *pytestExecutor) buildSuiteArgs(categoryID string) []string {
	return []string{
		e.fixtureDir,
		"--disable-pytest-warnings",
		"-vv",
		"--chirc-exe", e.exePath,
		"--chirc-category", categoryID,
	}
}
