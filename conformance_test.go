package conformance

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirque-irc/conformance/runner"
	"github.com/cirque-irc/conformance/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		BuildTarget: "chirc-compat",
		FixtureDir:  "chirc",
		LogDir:      t.TempDir(),
		Log:         testLogger(),
	}
}

func newTestOrchestrator(t *testing.T, steps *[]string, buildErr, syncErr error, batch *runner.BatchResult, batchErr error) *Conformance {
	t.Helper()
	c, err := New(context.Background(), testConfig(t), "test")
	require.NoError(t, err)

	c.buildStep = func(ctx context.Context) error {
		*steps = append(*steps, "build")
		return buildErr
	}
	c.syncStep = func(ctx context.Context) error {
		*steps = append(*steps, "sync")
		return syncErr
	}
	c.batchStep = func(ctx context.Context, runID string) (*runner.BatchResult, error) {
		*steps = append(*steps, "batch")
		if batch != nil {
			batch.RunID = runID
		}
		return batch, batchErr
	}
	return c
}

func passingBatch() *runner.BatchResult {
	return &runner.BatchResult{
		Status: types.CategoryStatusPass,
		Categories: []*types.CategoryResult{
			{Category: types.Category{ID: "BASIC_CONNECTION", Enabled: true}, Status: types.CategoryStatusPass},
		},
		Stats: types.RunStats{Total: 1, Passed: 1},
	}
}

func TestStartRunsPipelineInOrder(t *testing.T) {
	var steps []string
	c := newTestOrchestrator(t, &steps, nil, nil, passingBatch(), nil)

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, []string{"build", "sync", "batch"}, steps)
	assert.True(t, c.Stopped())
	require.NotNil(t, c.Result())
	assert.NotEmpty(t, c.Result().RunID)
}

func TestBuildFailureAbortsBeforeFixtureSync(t *testing.T) {
	var steps []string
	c := newTestOrchestrator(t, &steps, errors.New("cargo exploded"), nil, nil, nil)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Equal(t, []string{"build"}, steps)
}

func TestFixtureFailureAbortsBeforeBatch(t *testing.T) {
	var steps []string
	c := newTestOrchestrator(t, &steps, nil, errors.New("clone failed"), nil, nil)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Equal(t, []string{"build", "sync"}, steps)
}

func TestBatchToolFailureIsTestFailure(t *testing.T) {
	var steps []string
	batch := &runner.BatchResult{
		Status: types.CategoryStatusFail,
		Categories: []*types.CategoryResult{
			{Category: types.Category{ID: "A", Enabled: true}, Status: types.CategoryStatusPass},
			{Category: types.Category{ID: "B", Enabled: true}, Status: types.CategoryStatusFail, ExitCode: 1},
		},
		Stats: types.RunStats{Total: 2, Passed: 1, Failed: 1},
	}
	c := newTestOrchestrator(t, &steps, nil, nil, batch, errors.New("category B failed with exit code 1"))

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err))
	assert.False(t, IsRuntimeError(err))
}

func TestBatchSpawnFailureIsRuntimeError(t *testing.T) {
	var steps []string
	batch := &runner.BatchResult{
		Status: types.CategoryStatusFail,
		Categories: []*types.CategoryResult{
			{Category: types.Category{ID: "A", Enabled: true}, Status: types.CategoryStatusFail, ExitCode: -1, Error: "pytest not found"},
		},
		Stats: types.RunStats{Total: 1, Failed: 1},
	}
	c := newTestOrchestrator(t, &steps, nil, nil, batch, errors.New("category A: suite could not be launched"))

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, "test")
	require.Error(t, err)
}

func TestStopIsIdempotent(t *testing.T) {
	var steps []string
	c := newTestOrchestrator(t, &steps, nil, nil, passingBatch(), nil)

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Stop(context.Background()))
	require.NoError(t, c.Stop(context.Background()))
	assert.True(t, c.Stopped())
}
