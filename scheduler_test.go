package conformance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunOnce(t *testing.T) {
	s := NewDefaultScheduler(0, testLogger())

	var calls atomic.Int32
	s.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, s.Stopped())
}

func TestSchedulerRunOncePropagatesError(t *testing.T) {
	s := NewDefaultScheduler(0, testLogger())
	s.RegisterCallback(func() error {
		return errors.New("batch failed")
	})

	err := s.Start(context.Background())
	require.Error(t, err)
}

func TestSchedulerRequiresCallback(t *testing.T) {
	s := NewDefaultScheduler(0, testLogger())
	require.Error(t, s.Start(context.Background()))
}

func TestSchedulerIntervalMode(t *testing.T) {
	s := NewDefaultScheduler(10*time.Millisecond, testLogger())

	var calls atomic.Int32
	s.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.Stopped())

	// First run happens synchronously; at least one more on the interval.
	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.True(t, s.Stopped())
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewDefaultScheduler(time.Minute, testLogger())
	require.NoError(t, s.Stop())
}
