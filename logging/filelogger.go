// Package logging persists the external suite's per-category output so a
// failed run can be inspected after the orchestrator has exited.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/cirque-irc/conformance/types"
)

const (
	// RunDirectoryPrefix is the standardized prefix for run directories.
	RunDirectoryPrefix = "testrun-"
	FailedDirName      = "failed"
	SummaryFilename    = "summary.log"
)

// FileLogger writes one log file per category under
// <baseDir>/testrun-<runID>/, duplicates failed category logs into
// failed/, and writes a one-line-per-category summary on completion.
type FileLogger struct {
	runDir    string
	failedDir string

	mu      sync.Mutex
	results []recordedResult
}

type recordedResult struct {
	categoryID string
	status     types.CategoryStatus
	duration   time.Duration
	errMsg     string
}

// NewFileLogger creates the run directory structure for runID.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	runDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	failedDir := filepath.Join(runDir, FailedDirName)
	if err := os.MkdirAll(failedDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run log directory %s: %w", runDir, err)
	}
	return &FileLogger{runDir: runDir, failedDir: failedDir}, nil
}

// RunDir returns the directory holding this run's logs.
func (l *FileLogger) RunDir() string {
	return l.runDir
}

// CategoryWriter returns a writer that persists one category's suite
// output, with ANSI escapes stripped.
func (l *FileLogger) CategoryWriter(categoryID string) (io.WriteCloser, error) {
	f, err := os.Create(l.categoryLogPath(categoryID))
	if err != nil {
		return nil, fmt.Errorf("creating category log for %s: %w", categoryID, err)
	}
	return &ansiStrippingWriter{f: f}, nil
}

// RecordResult notes a category outcome; failed categories get their log
// duplicated into the failed/ directory.
func (l *FileLogger) RecordResult(categoryID string, status types.CategoryStatus, duration time.Duration, errMsg string) error {
	l.mu.Lock()
	l.results = append(l.results, recordedResult{
		categoryID: categoryID,
		status:     status,
		duration:   duration,
		errMsg:     errMsg,
	})
	l.mu.Unlock()

	if status != types.CategoryStatusFail {
		return nil
	}
	return l.copyToFailed(categoryID)
}

// Complete writes the summary file. Call once, after the batch ends.
func (l *FileLogger) Complete(status types.CategoryStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Create(filepath.Join(l.runDir, SummaryFilename))
	if err != nil {
		return fmt.Errorf("creating summary file: %w", err)
	}
	defer f.Close()

	for _, r := range l.results {
		line := fmt.Sprintf("%-30s %-5s %.1fs", r.categoryID, r.status, r.duration.Seconds())
		if r.errMsg != "" {
			line += "  " + r.errMsg
		}
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(f, "overall: %s\n", status)
	return err
}

func (l *FileLogger) categoryLogPath(categoryID string) string {
	return filepath.Join(l.runDir, categoryID+".log")
}

func (l *FileLogger) copyToFailed(categoryID string) error {
	src, err := os.Open(l.categoryLogPath(categoryID))
	if err != nil {
		// No output was captured for this category; nothing to copy.
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(l.failedDir, categoryID+".log"))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// ansiStrippingWriter removes terminal escape sequences before writing.
// pytest emits colored output even with -vv and the log files should be
// grep-able.
type ansiStrippingWriter struct {
	f *os.File
}

func (w *ansiStrippingWriter) Write(p []byte) (int, error) {
	if _, err := w.f.WriteString(stripansi.Strip(string(p))); err != nil {
		return 0, err
	}
	// Report the original length so upstream MultiWriters stay in sync.
	return len(p), nil
}

func (w *ansiStrippingWriter) Close() error {
	return w.f.Close()
}
