package runner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirque-irc/conformance/proc"
	"github.com/cirque-irc/conformance/registry"
	"github.com/cirque-irc/conformance/types"
)

// stubExecutor records invocation order and fails on configured categories.
type stubExecutor struct {
	invocations []string
	failOn      map[string]proc.RunResult
}

func (s *stubExecutor) RunCategory(_ context.Context, category types.Category, _ io.Writer) proc.RunResult {
	s.invocations = append(s.invocations, category.ID)
	if res, ok := s.failOn[category.ID]; ok {
		return res
	}
	return proc.RunResult{State: proc.StateCompleted}
}

func testRegistry(t *testing.T, content string) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	reg, err := registry.NewRegistry(registry.Config{ConfigFile: path})
	require.NoError(t, err)
	return reg
}

const abcTable = `categories:
  - id: A
    enabled: true
  - id: B
    enabled: true
  - id: C
    enabled: true
  - id: D
    enabled: false
    rationale: "known gap"
`

func TestRunAllVisitsCategoriesInOrder(t *testing.T) {
	exec := &stubExecutor{}
	r, err := NewCategoryRunner(Config{
		Registry: testRegistry(t, abcTable),
		Executor: exec,
	})
	require.NoError(t, err)

	result, err := r.RunAll(context.Background(), "run1")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, exec.invocations)
	assert.Equal(t, types.CategoryStatusPass, result.Status)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 3, result.Stats.Passed)
	assert.Equal(t, 0, result.Stats.Failed)
}

func TestRunAllFailsFast(t *testing.T) {
	exec := &stubExecutor{
		failOn: map[string]proc.RunResult{
			"B": {State: proc.StateToolFailed, ExitCode: 1, Err: assert.AnError},
		},
	}
	r, err := NewCategoryRunner(Config{
		Registry: testRegistry(t, abcTable),
		Executor: exec,
	})
	require.NoError(t, err)

	result, err := r.RunAll(context.Background(), "run1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category B failed")

	// C is never invoked after B fails.
	assert.Equal(t, []string{"A", "B"}, exec.invocations)
	assert.Equal(t, types.CategoryStatusFail, result.Status)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Passed)
	assert.Equal(t, 1, result.Stats.Failed)
}

func TestRunAllNeverInvokesDisabledCategories(t *testing.T) {
	exec := &stubExecutor{}
	r, err := NewCategoryRunner(Config{
		Registry: testRegistry(t, abcTable),
		Executor: exec,
	})
	require.NoError(t, err)

	_, err = r.RunAll(context.Background(), "run1")
	require.NoError(t, err)
	assert.NotContains(t, exec.invocations, "D")
}

func TestRunAllSpawnFailureReportedDistinctly(t *testing.T) {
	exec := &stubExecutor{
		failOn: map[string]proc.RunResult{
			"A": {State: proc.StateSpawnFailed, ExitCode: -1, Err: assert.AnError},
		},
	}
	r, err := NewCategoryRunner(Config{
		Registry: testRegistry(t, abcTable),
		Executor: exec,
	})
	require.NoError(t, err)

	result, err := r.RunAll(context.Background(), "run1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be launched")
	assert.Equal(t, []string{"A"}, exec.invocations)
	assert.Equal(t, -1, result.Categories[0].ExitCode)
}

func TestNewCategoryRunnerValidation(t *testing.T) {
	_, err := NewCategoryRunner(Config{Executor: &stubExecutor{}})
	require.Error(t, err)

	_, err = NewCategoryRunner(Config{Registry: testRegistry(t, abcTable)})
	require.Error(t, err)
}

func TestBatchResultString(t *testing.T) {
	result := &BatchResult{
		RunID:  "run1",
		Status: types.CategoryStatusFail,
		Categories: []*types.CategoryResult{
			{Category: types.Category{ID: "A", Enabled: true}, Status: types.CategoryStatusPass},
			{Category: types.Category{ID: "B", Enabled: true}, Status: types.CategoryStatusFail, ExitCode: 1, Error: "exit status 1"},
		},
		Stats: types.RunStats{Total: 2, Passed: 1, Failed: 1},
	}

	s := result.String()
	assert.Contains(t, s, "Total: 2, Passed: 1, Failed: 1")
	assert.Contains(t, s, "A")
	assert.Contains(t, s, "B")
	assert.Contains(t, s, "exit status 1")
}
