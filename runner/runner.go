// Package runner drives the category-based external conformance suite
// against a built server binary, one category at a time.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cirque-irc/conformance/metrics"
	"github.com/cirque-irc/conformance/registry"
	"github.com/cirque-irc/conformance/types"
)

// BatchResult captures one fail-fast pass over the enabled categories.
// On abort it holds every category attempted up to and including the
// failing one; categories after the failure are never attempted.
type BatchResult struct {
	RunID      string
	Categories []*types.CategoryResult
	Status     types.CategoryStatus
	Duration   time.Duration
	Stats      types.RunStats
}

// ResultSink consumes per-category output and outcomes as the batch runs.
type ResultSink interface {
	CategoryWriter(categoryID string) (io.WriteCloser, error)
	RecordResult(categoryID string, status types.CategoryStatus, duration time.Duration, errMsg string) error
	Complete(status types.CategoryStatus) error
}

// Progress receives batch progress updates.
type Progress interface {
	Update(passed, failed int)
	Finish()
}

// CategoryRunner runs the enabled categories strictly sequentially.
// Sequential execution is load-bearing: the suite binds the default IRC
// port for each server it spawns, and concurrent batches would collide.
type CategoryRunner struct {
	registry *registry.Registry
	executor SuiteExecutor
	sink     ResultSink
	progress Progress
	log      *slog.Logger
}

// Config configures a CategoryRunner.
type Config struct {
	Registry *registry.Registry
	Executor SuiteExecutor
	// Sink is optional; without one, suite output only reaches the console.
	Sink ResultSink
	// Progress is optional.
	Progress Progress
	Log      *slog.Logger
}

// NewCategoryRunner creates a new batch runner.
func NewCategoryRunner(cfg Config) (*CategoryRunner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("suite executor is required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &CategoryRunner{
		registry: cfg.Registry,
		executor: cfg.Executor,
		sink:     cfg.Sink,
		progress: cfg.Progress,
		log:      cfg.Log,
	}, nil
}

// RunAll visits the enabled categories in declared order and stops at the
// first failure. The returned error is nil only if every category passed;
// the BatchResult is returned in both cases.
func (r *CategoryRunner) RunAll(ctx context.Context, runID string) (*BatchResult, error) {
	start := time.Now()
	enabled := r.registry.Enabled()

	result := &BatchResult{
		RunID:  runID,
		Status: types.CategoryStatusPass,
		Stats:  types.RunStats{StartTime: start},
	}
	defer func() {
		result.Duration = time.Since(start)
		result.Stats.EndTime = time.Now()
		if r.progress != nil {
			r.progress.Finish()
		}
		if r.sink != nil {
			if err := r.sink.Complete(result.Status); err != nil {
				r.log.Error("Error finalizing result sink", "error", err)
			}
		}
	}()

	r.log.Info("Running conformance batch",
		"run_id", runID,
		"enabled", len(enabled),
		"disabled", len(r.registry.Disabled()))

	var batchErr error
	for _, category := range enabled {
		catResult := r.runCategory(ctx, category)
		result.Categories = append(result.Categories, catResult)
		result.Stats.Total++

		switch catResult.Status {
		case types.CategoryStatusPass:
			result.Stats.Passed++
		default:
			result.Stats.Failed++
		}
		if r.progress != nil {
			r.progress.Update(result.Stats.Passed, result.Stats.Failed)
		}
		metrics.RecordCategory(runID, category.ID, string(catResult.Status))

		if catResult.Status == types.CategoryStatusFail {
			// Fail-fast: no remaining categories are attempted, and no
			// partial report is synthesized beyond the suite's own output.
			result.Status = types.CategoryStatusFail
			if catResult.ExitCode == -1 {
				batchErr = fmt.Errorf("category %s: suite could not be launched: %s", category.ID, catResult.Error)
			} else {
				batchErr = fmt.Errorf("category %s failed with exit code %d", category.ID, catResult.ExitCode)
			}
			break
		}
	}

	metrics.RecordBatch(runID, string(result.Status),
		result.Stats.Total, result.Stats.Passed, result.Stats.Failed, time.Since(start))

	return result, batchErr
}

func (r *CategoryRunner) runCategory(ctx context.Context, category types.Category) *types.CategoryResult {
	r.log.Info("Running category", "category", category.ID)
	start := time.Now()

	var out io.WriteCloser
	if r.sink != nil {
		var err error
		out, err = r.sink.CategoryWriter(category.ID)
		if err != nil {
			r.log.Error("Error creating category log", "category", category.ID, "error", err)
			out = nil
		}
	}

	res := r.executor.RunCategory(ctx, category, writerOrNil(out))
	if out != nil {
		_ = out.Close()
	}

	catResult := &types.CategoryResult{
		Category: category,
		Duration: time.Since(start),
		ExitCode: res.ExitCode,
	}
	if res.Ok() {
		catResult.Status = types.CategoryStatusPass
	} else {
		catResult.Status = types.CategoryStatusFail
		if res.Err != nil {
			catResult.Error = res.Err.Error()
		}
	}

	r.log.Info("Category finished",
		"category", category.ID,
		"status", catResult.Status,
		"duration", catResult.Duration)

	if r.sink != nil {
		if err := r.sink.RecordResult(category.ID, catResult.Status, catResult.Duration, catResult.Error); err != nil {
			r.log.Error("Error recording category result", "category", category.ID, "error", err)
		}
	}

	return catResult
}

func writerOrNil(w io.WriteCloser) io.Writer {
	if w == nil {
		return nil
	}
	return w
}

// formatDuration formats the duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// String returns a formatted string representation of the batch results
func (b *BatchResult) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Conformance Batch Results (%s):\n", formatDuration(b.Duration)))
	sb.WriteString(fmt.Sprintf("Total: %d, Passed: %d, Failed: %d\n",
		b.Stats.Total, b.Stats.Passed, b.Stats.Failed))

	for i, c := range b.Categories {
		prefix := "├──"
		if i == len(b.Categories)-1 {
			prefix = "└──"
		}
		sb.WriteString(fmt.Sprintf("%s %s (%s) [%s]\n",
			prefix, c.Category.ID, formatDuration(c.Duration), c.Status))
		if c.Error != "" {
			sb.WriteString(fmt.Sprintf("│       └── Error: %s\n", c.Error))
		}
	}
	return sb.String()
}
