package contract

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Outcome is the result of running one scenario with Execute.
type Outcome struct {
	Scenario  string
	Passed    bool
	Errors    []string
	StartedAt time.Time
	Duration  time.Duration
}

// Failure joins the recorded errors into one message
func (o Outcome) Failure() string {
	return strings.Join(o.Errors, "\n")
}

// Recorder implements T for runs outside go test. FailNow ends the calling goroutine, so
// scenarios must run on a goroutine of their own (Execute does this).
type Recorder struct {
	mu       sync.Mutex
	logger   *slog.Logger
	failed   bool
	errors   []string
	cleanups []func()
}

// NewRecorder creates a recorder; logger receives Logf output at debug level and may be nil.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Errorf marks the run failed and records the message
func (r *Recorder) Errorf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
	r.errors = append(r.errors, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// FailNow marks the run failed and stops the scenario goroutine
func (r *Recorder) FailNow() {
	r.mu.Lock()
	r.failed = true
	r.mu.Unlock()
	runtime.Goexit()
}

// Helper is a no-op
func (r *Recorder) Helper() {}

// Logf forwards to the logger
func (r *Recorder) Logf(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(fmt.Sprintf(format, args...))
	}
}

// Cleanup registers f to run after the scenario, last registered first
func (r *Recorder) Cleanup(f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanups = append(r.cleanups, f)
}

// Failed reports whether the run failed
func (r *Recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// Errors returns the recorded failure messages
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.errors))
	copy(out, r.errors)
	return out
}

func (r *Recorder) popCleanup() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.cleanups)
	if n == 0 {
		return nil
	}
	f := r.cleanups[n-1]
	r.cleanups = r.cleanups[:n-1]
	return f
}

// Execute runs sc against a fresh Recorder and waits for it and its cleanups.
// A panic inside the scenario is recorded as a failure.
func Execute(ctx context.Context, sc Scenario, logger *slog.Logger) Outcome {
	rec := NewRecorder(logger)
	start := time.Now()

	runGuarded(rec, func() { sc.Run(ctx, rec) })
	for f := rec.popCleanup(); f != nil; f = rec.popCleanup() {
		runGuarded(rec, f)
	}

	return Outcome{
		Scenario:  sc.Name,
		Passed:    !rec.Failed(),
		Errors:    rec.Errors(),
		StartedAt: start,
		Duration:  time.Since(start),
	}
}

// runGuarded runs f on its own goroutine so FailNow and panics stay contained
func runGuarded(rec *Recorder, f func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if p := recover(); p != nil {
				rec.Errorf("panic: %v", p)
			}
		}()
		f()
	}()
	<-done
}
