package probe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todocontract/internal/contract"
	"todocontract/internal/fakeapi"
	"todocontract/internal/observability"
	"todocontract/internal/runlog"
	"todocontract/internal/todoclient"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []contract.Outcome
}

func (o *recordingObserver) ObserveOutcome(out contract.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, out)
}

type failingStore struct{}

func (failingStore) Record(context.Context, []runlog.Result) error {
	return errors.New("disk full")
}

func (failingStore) Recent(context.Context, int) ([]runlog.Result, error) { return nil, nil }

func (failingStore) Close() error { return nil }

func newFake(t *testing.T) (*fakeapi.Server, *httptest.Server) {
	t.Helper()
	fake := fakeapi.New(nil)
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return fake, server
}

func newSuite(server *httptest.Server, hooks todoclient.Hooks) *contract.Suite {
	return contract.NewSuite(todoclient.NewWithHTTPClient(server.URL, server.Client(), hooks))
}

func TestRunOnce_AllPass(t *testing.T) {
	_, server := newFake(t)
	observer := &recordingObserver{}

	runner := NewRunner(newSuite(server, todoclient.Hooks{}), Options{Observer: observer})
	report := runner.RunOnce(context.Background())

	require.Len(t, report.Outcomes, 5)
	assert.True(t, report.Passed(), "failures: %v", report.Failed())
	assert.Empty(t, report.Failed())
	assert.Equal(t, "5/5 scenarios passed", report.Summary())
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, observer.outcomes, 5)
}

func TestRunOnce_FailureDoesNotStopOtherScenarios(t *testing.T) {
	fake, server := newFake(t)
	fake.FailNext(http.StatusServiceUnavailable, "maintenance")

	runner := NewRunner(newSuite(server, todoclient.Hooks{}), Options{})
	report := runner.RunOnce(context.Background())

	require.Len(t, report.Outcomes, 5)
	assert.False(t, report.Passed())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "can_call_endpoint", failed[0].Scenario)
	assert.Contains(t, failed[0].Failure(), "503")
	assert.Equal(t, "4/5 scenarios passed", report.Summary())
}

func TestRunOnce_CancelledContextSkipsScenarios(t *testing.T) {
	_, server := newFake(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(newSuite(server, todoclient.Hooks{}), Options{})
	report := runner.RunOnce(ctx)

	assert.Empty(t, report.Outcomes)
	assert.True(t, report.Passed())
}

func TestRunOnce_RecordsHistoryAndMetrics(t *testing.T) {
	_, server := newFake(t)

	store, err := runlog.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	runner := NewRunner(newSuite(server, metrics.Hooks()), Options{
		Observer: metrics,
		Store:    store,
		BaseURL:  server.URL,
	})
	report := runner.RunOnce(context.Background())
	require.True(t, report.Passed())

	results, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, report.RunID, r.RunID)
		assert.Equal(t, server.URL, r.BaseURL)
		assert.True(t, r.Passed)
	}

	// EndpointReachable plus create and get in each of the other four scenarios at least
	count, err := testutil.GatherAndCount(reg, "todoprobe_requests_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 4)

	count, err = testutil.GatherAndCount(reg, "todoprobe_scenario_results_total")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRunOnce_HistoryFailureIsLogged(t *testing.T) {
	_, server := newFake(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	runner := NewRunner(newSuite(server, todoclient.Hooks{}), Options{Logger: logger, Store: failingStore{}})
	report := runner.RunOnce(context.Background())

	assert.True(t, report.Passed())
	assert.Contains(t, buf.String(), "failed to record probe results")
	assert.Contains(t, buf.String(), "disk full")
}

func TestRun_RepeatsUntilCancelled(t *testing.T) {
	_, server := newFake(t)
	runner := NewRunner(newSuite(server, todoclient.Hooks{}), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reports []Report
	err := runner.Run(ctx, 10*time.Millisecond, func(r Report) {
		reports = append(reports, r)
		if len(reports) == 2 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, reports, 2)
	assert.NotEqual(t, reports[0].RunID, reports[1].RunID)
}

func TestRun_RejectsNonPositiveInterval(t *testing.T) {
	runner := NewRunner(contract.NewSuite(nil), Options{})
	err := runner.Run(context.Background(), 0, nil)
	assert.Error(t, err)
}
