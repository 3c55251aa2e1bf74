package conformance

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler triggers conformance batches either once or on an interval.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
	RegisterCallback(func() error)
	Stopped() bool
}

// DefaultScheduler implements the Scheduler interface.
type DefaultScheduler struct {
	interval time.Duration
	runOnce  bool
	log      *slog.Logger
	callback func() error

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewDefaultScheduler creates a scheduler; interval 0 means run-once.
func NewDefaultScheduler(interval time.Duration, log *slog.Logger) *DefaultScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &DefaultScheduler{
		interval: interval,
		runOnce:  interval == 0,
		log:      log,
		done:     make(chan struct{}),
	}
}

// RegisterCallback registers the callback to be called when a batch should run.
func (s *DefaultScheduler) RegisterCallback(callback func() error) {
	s.callback = callback
}

// Start runs the first batch synchronously. In interval mode it then keeps
// re-running in the background until Stop; a failing interval batch is
// logged, not fatal, because the next interval may recover.
func (s *DefaultScheduler) Start(ctx context.Context) error {
	if s.callback == nil {
		return errors.New("callback must be registered before starting scheduler")
	}

	s.done = make(chan struct{})
	s.running.Store(true)

	if s.runOnce {
		s.log.Info("Starting scheduler in run-once mode")
		defer s.running.Store(false)
		return s.callback()
	}

	s.log.Info("Starting scheduler in continuous mode", "interval", s.interval)

	if err := s.callback(); err != nil {
		s.log.Error("Batch failed", "error", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-time.After(s.interval):
				if !s.running.Load() {
					return
				}
				if err := s.callback(); err != nil {
					s.log.Error("Batch failed", "error", err)
				}
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the scheduler and waits for the background loop to exit.
func (s *DefaultScheduler) Stop() error {
	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	close(s.done)
	s.wg.Wait()
	return nil
}

// Stopped returns true if the scheduler is not running.
func (s *DefaultScheduler) Stopped() bool {
	return !s.running.Load()
}
