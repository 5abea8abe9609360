// Package probe runs the contract scenarios outside go test, once or on an interval,
// and reports results to metrics and the run history.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"todocontract/internal/contract"
	"todocontract/internal/runlog"
)

// OutcomeObserver receives every scenario outcome. *observability.Metrics implements it.
type OutcomeObserver interface {
	ObserveOutcome(o contract.Outcome)
}

// Options configures a Runner. Every field is optional.
type Options struct {
	Logger   *slog.Logger
	Observer OutcomeObserver
	Store    runlog.Store
	// BaseURL is stored with each result
	BaseURL string
}

// Runner executes a suite's scenarios one after another
type Runner struct {
	suite    *contract.Suite
	logger   *slog.Logger
	observer OutcomeObserver
	store    runlog.Store
	baseURL  string
}

// Report is the result of one pass over the scenarios
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Outcomes  []contract.Outcome
}

// Passed reports whether every scenario passed
func (r Report) Passed() bool {
	for _, o := range r.Outcomes {
		if !o.Passed {
			return false
		}
	}
	return true
}

// Failed returns the outcomes that did not pass
func (r Report) Failed() []contract.Outcome {
	var failed []contract.Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Summary is a one-line description such as "4/5 scenarios passed"
func (r Report) Summary() string {
	passed := len(r.Outcomes) - len(r.Failed())
	return fmt.Sprintf("%d/%d scenarios passed", passed, len(r.Outcomes))
}

// NewRunner creates a runner for suite
func NewRunner(suite *contract.Suite, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		suite:    suite,
		logger:   logger,
		observer: opts.Observer,
		store:    opts.Store,
		baseURL:  opts.BaseURL,
	}
}

// RunOnce runs every scenario and returns the report. Scenarios run sequentially; a failing
// scenario does not stop the others. Scenarios not started before ctx is done are skipped.
// A history write failure is logged, not returned.
func (r *Runner) RunOnce(ctx context.Context) Report {
	report := Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	for _, sc := range r.suite.Scenarios() {
		if ctx.Err() != nil {
			r.logger.Warn("probe run interrupted", "run_id", report.RunID, "skipped_from", sc.Name)
			break
		}

		outcome := contract.Execute(ctx, sc, r.logger)
		report.Outcomes = append(report.Outcomes, outcome)
		r.logOutcome(outcome)

		if r.observer != nil {
			r.observer.ObserveOutcome(outcome)
		}
	}
	report.Duration = time.Since(report.StartedAt)

	if r.store != nil && len(report.Outcomes) > 0 {
		results := make([]runlog.Result, 0, len(report.Outcomes))
		for _, o := range report.Outcomes {
			results = append(results, runlog.FromOutcome(report.RunID, r.baseURL, o))
		}
		// the run's own context may already be cancelled; history still gets written
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		if err := r.store.Record(writeCtx, results); err != nil {
			r.logger.Error("failed to record probe results", "run_id", report.RunID, "error", err)
		}
		cancel()
	}

	level := slog.LevelInfo
	if !report.Passed() {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "probe run finished",
		"run_id", report.RunID,
		"summary", report.Summary(),
		"duration", report.Duration,
	)
	return report
}

// Run calls RunOnce immediately and then every interval until ctx is cancelled.
// onReport, when set, receives each report. Run returns ctx.Err().
func (r *Runner) Run(ctx context.Context, interval time.Duration, onReport func(Report)) error {
	if interval <= 0 {
		return fmt.Errorf("probe interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		report := r.RunOnce(ctx)
		if onReport != nil {
			onReport(report)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) logOutcome(o contract.Outcome) {
	if o.Passed {
		r.logger.Info("scenario passed", "scenario", o.Scenario, "duration", o.Duration)
		return
	}
	r.logger.Warn("scenario failed",
		"scenario", o.Scenario,
		"duration", o.Duration,
		"failure", strings.ReplaceAll(o.Failure(), "\n", " | "),
	)
}
