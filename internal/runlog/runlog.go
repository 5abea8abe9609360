// Package runlog keeps a history of probe scenario results.
package runlog

import (
	"context"
	"strings"
	"time"

	"todocontract/internal/contract"
)

// Result is one stored scenario outcome
type Result struct {
	ID        string        `json:"id"`
	RunID     string        `json:"run_id"`
	Scenario  string        `json:"scenario"`
	Passed    bool          `json:"passed"`
	Failure   string        `json:"failure,omitempty"`
	BaseURL   string        `json:"base_url"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// FromOutcome converts a scenario outcome into a Result for the given run
func FromOutcome(runID, baseURL string, o contract.Outcome) Result {
	return Result{
		ID:        runID + ":" + o.Scenario,
		RunID:     runID,
		Scenario:  o.Scenario,
		Passed:    o.Passed,
		Failure:   strings.TrimSpace(o.Failure()),
		BaseURL:   baseURL,
		StartedAt: o.StartedAt,
		Duration:  o.Duration,
	}
}

// Store persists results.
// Implementations must be safe for concurrent use.
type Store interface {
	// Record writes the results of one run
	Record(ctx context.Context, results []Result) error

	// Recent returns up to limit results, newest first
	Recent(ctx context.Context, limit int) ([]Result, error)

	// Close releases resources held by the store
	Close() error
}

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 1000
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}
