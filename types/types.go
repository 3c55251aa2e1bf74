// Package types contains shared types used across the conformance orchestrator.
package types

import "time"

// CategoryStatus represents the possible outcomes of a category run
type CategoryStatus string

const (
	CategoryStatusPass CategoryStatus = "pass"
	CategoryStatusFail CategoryStatus = "fail"
	CategoryStatusSkip CategoryStatus = "skip"
)

// Category is one entry of the curated category table. Disabled entries
// carry the reason the category is known not to conform.
type Category struct {
	ID        string `yaml:"id"`
	Enabled   bool   `yaml:"enabled"`
	Rationale string `yaml:"rationale,omitempty"`
}

// CategoryResult captures the outcome of a single category invocation
type CategoryResult struct {
	Category Category
	Status   CategoryStatus
	ExitCode int
	Error    string
	Duration time.Duration
}

// RunStats tracks category counts for a batch
type RunStats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}
