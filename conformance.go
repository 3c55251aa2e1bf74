// Package conformance orchestrates IRC protocol conformance runs against
// the cirque server: build the compatibility shim, pin the fixture
// checkout, then drive the external suite category by category.
package conformance

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cirque-irc/conformance/builder"
	"github.com/cirque-irc/conformance/fixture"
	"github.com/cirque-irc/conformance/logging"
	"github.com/cirque-irc/conformance/metrics"
	"github.com/cirque-irc/conformance/proc"
	"github.com/cirque-irc/conformance/registry"
	"github.com/cirque-irc/conformance/resolver"
	"github.com/cirque-irc/conformance/runner"
	"github.com/cirque-irc/conformance/types"
	"github.com/cirque-irc/conformance/ui"
)

// Conformance is the orchestrator. Everything runs sequentially: build,
// then fixture sync, then the category batch; the only concurrency in the
// system is the child processes themselves.
type Conformance struct {
	ctx       context.Context
	config    *Config
	version   string
	registry  *registry.Registry
	resolver  *resolver.Resolver
	scheduler Scheduler
	result    *runner.BatchResult

	// Pipeline steps, assembled in New and replaceable in tests.
	buildStep func(ctx context.Context) error
	syncStep  func(ctx context.Context) error
	batchStep func(ctx context.Context, runID string) (*runner.BatchResult, error)

	running atomic.Bool
}

// New creates the orchestrator from a validated config.
func New(ctx context.Context, config *Config, version string) (*Conformance, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	reg, err := registry.NewRegistry(registry.Config{
		ConfigFile: config.CategoryConfig,
		Log:        config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	res := resolver.New(config.TargetDir)
	procRunner := proc.NewRunner(config.Log)
	bld := builder.NewBuilder(procRunner, config.CargoBin, config.Log)
	sync := fixture.NewSynchronizer(procRunner, config.GitBin, config.Log)

	c := &Conformance{
		ctx:       ctx,
		config:    config,
		version:   version,
		registry:  reg,
		resolver:  res,
		scheduler: NewDefaultScheduler(config.RunInterval, config.Log),
	}
	c.buildStep = func(ctx context.Context) error {
		return bld.Build(ctx, config.BuildTarget)
	}
	c.syncStep = func(ctx context.Context) error {
		return sync.Ensure(ctx, config.FixtureRepo, config.FixtureRevision, config.FixtureDir)
	}
	c.batchStep = func(ctx context.Context, runID string) (*runner.BatchResult, error) {
		return c.runBatch(ctx, procRunner, runID)
	}

	config.Log.Debug("Created conformance orchestrator",
		"buildTarget", config.BuildTarget,
		"fixtureDir", config.FixtureDir,
		"enabled", len(reg.Enabled()))

	return c, nil
}

// Start runs the first batch synchronously; in interval mode it keeps
// re-running until Stop.
func (c *Conformance) Start(ctx context.Context) error {
	c.config.Log.Info("Starting conformance orchestrator", "version", c.version)
	c.ctx = ctx
	c.running.Store(true)

	c.scheduler.RegisterCallback(func() error {
		return c.runOnce(c.ctx)
	})

	err := c.scheduler.Start(ctx)
	if c.config.RunInterval == 0 {
		c.running.Store(false)
	}
	return err
}

// Stop stops the orchestrator.
func (c *Conformance) Stop(ctx context.Context) error {
	if err := c.scheduler.Stop(); err != nil {
		return err
	}
	c.running.Store(false)
	c.config.Log.Info("Conformance orchestrator stopped")
	return nil
}

// Stopped returns true if the orchestrator is not running.
func (c *Conformance) Stopped() bool {
	return !c.running.Load()
}

// Result returns the most recent batch result.
func (c *Conformance) Result() *runner.BatchResult {
	return c.result
}

// runOnce executes one full pipeline pass: build, fixture sync, batch.
// Each step completes fully before the next begins; the first failure
// aborts the pass.
func (c *Conformance) runOnce(ctx context.Context) error {
	if err := c.buildStep(ctx); err != nil {
		metrics.RecordErrorDetails("build", err)
		return NewRuntimeError(err)
	}

	if err := c.syncStep(ctx); err != nil {
		metrics.RecordErrorDetails("fixture-sync", err)
		return NewRuntimeError(err)
	}

	runID := uuid.New().String()
	result, err := c.batchStep(ctx, runID)
	c.result = result

	if result != nil {
		c.printResultsTable(result)
		fmt.Println(result.String())
		c.config.Log.Info("Conformance batch finished", "run_id", runID, "status", result.Status)
	}

	if err != nil {
		metrics.RecordErrorDetails("batch", err)
		if result != nil && batchAbortedOnSpawn(result) {
			return NewRuntimeError(err)
		}
		return NewTestFailureError(err.Error())
	}
	return nil
}

// batchAbortedOnSpawn reports whether the batch stopped because the suite
// process itself could not be launched, as opposed to reporting failures.
func batchAbortedOnSpawn(result *runner.BatchResult) bool {
	if len(result.Categories) == 0 {
		return false
	}
	last := result.Categories[len(result.Categories)-1]
	return last.Status == types.CategoryStatusFail && last.ExitCode == -1
}

func (c *Conformance) runBatch(ctx context.Context, procRunner *proc.Runner, runID string) (*runner.BatchResult, error) {
	fileLogger, err := logging.NewFileLogger(c.config.LogDir, runID)
	if err != nil {
		return nil, err
	}
	c.config.Log.Info("Writing suite output", "dir", fileLogger.RunDir())

	executor := runner.NewPytestExecutor(runner.ExecutorConfig{
		Runner:     procRunner,
		PytestBin:  c.config.PytestBin,
		FixtureDir: c.config.FixtureDir,
		ExePath:    c.resolver.Resolve(c.config.BuildTarget),
		Log:        c.config.Log,
	})

	var progress runner.Progress
	if c.config.Progress {
		progress = ui.NewProgressBar(len(c.registry.Enabled()))
	}

	batch, err := runner.NewCategoryRunner(runner.Config{
		Registry: c.registry,
		Executor: executor,
		Sink:     fileLogger,
		Progress: progress,
		Log:      c.config.Log,
	})
	if err != nil {
		return nil, err
	}

	return batch.RunAll(ctx, runID)
}

// printResultsTable prints the results of the batch to the console.
func (c *Conformance) printResultsTable(result *runner.BatchResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Conformance Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Category", "Duration", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Category", WidthMax: 40},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 60},
	})

	for _, cat := range result.Categories {
		t.AppendRow(table.Row{
			cat.Category.ID,
			formatDuration(cat.Duration),
			getResultString(cat.Status),
			cat.Error,
		})
	}

	if result.Status == types.CategoryStatusPass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		formatDuration(result.Duration),
		getResultString(result.Status),
		fmt.Sprintf("%d passed, %d failed", result.Stats.Passed, result.Stats.Failed),
	})

	t.Render()

	// Disabled categories are part of the report even though they never
	// run; the rationale is the record of known non-conformance.
	disabled := c.registry.Disabled()
	if len(disabled) > 0 {
		d := table.NewWriter()
		d.SetOutputMirror(os.Stdout)
		d.SetTitle("Disabled Categories")
		d.AppendHeader(table.Row{"Category", "Rationale"})
		for _, cat := range disabled {
			d.AppendRow(table.Row{cat.ID, cat.Rationale})
		}
		d.SetStyle(table.StyleColoredBlackOnYellowWhite)
		d.Render()
	}
}

// getResultString returns a colored string representing the category result
func getResultString(status types.CategoryStatus) string {
	switch status {
	case types.CategoryStatusPass:
		return "✓ pass"
	case types.CategoryStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// formatDuration formats the duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
