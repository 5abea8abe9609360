// Package observability exposes Prometheus metrics for task service requests and probe runs.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"todocontract/internal/contract"
	"todocontract/internal/todoclient"
)

const namespace = "todoprobe"

// Result label values for scenario outcomes
const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// statusError labels requests that never got a response
const statusError = "error"

// Metrics holds the collectors. Create one per registry with NewMetrics.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	inFlight        prometheus.Gauge
	scenarioResults *prometheus.CounterVec
	scenarioLastRun *prometheus.GaugeVec
	scenarioPassing *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of task service requests",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op", "status"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total task service requests by operation and status code",
		}, []string{"op", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Task service requests currently in flight",
		}),
		scenarioResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenario_results_total",
			Help:      "Scenario runs by outcome",
		}, []string{"scenario", "result"}),
		scenarioLastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scenario_last_run_timestamp_seconds",
			Help:      "Unix time the scenario last finished",
		}, []string{"scenario"}),
		scenarioPassing: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scenario_passing",
			Help:      "1 if the last run of the scenario passed, 0 otherwise",
		}, []string{"scenario"}),
	}

	reg.MustRegister(
		m.requestDuration,
		m.requestsTotal,
		m.inFlight,
		m.scenarioResults,
		m.scenarioLastRun,
		m.scenarioPassing,
	)
	return m
}

// Hooks returns client hooks that feed the request collectors
func (m *Metrics) Hooks() todoclient.Hooks {
	return todoclient.Hooks{
		OnRequestStart: func(todoclient.RequestInfo) {
			m.inFlight.Inc()
		},
		OnRequestEnd: func(info todoclient.ResponseInfo) {
			m.inFlight.Dec()
			status := statusError
			if info.Err == nil {
				status = strconv.Itoa(info.StatusCode)
			}
			m.requestsTotal.WithLabelValues(info.Op, status).Inc()
			m.requestDuration.WithLabelValues(info.Op, status).Observe(info.Duration.Seconds())
		},
	}
}

// ObserveOutcome records one scenario run
func (m *Metrics) ObserveOutcome(o contract.Outcome) {
	result, passing := ResultFail, 0.0
	if o.Passed {
		result, passing = ResultPass, 1.0
	}
	m.scenarioResults.WithLabelValues(o.Scenario, result).Inc()
	m.scenarioPassing.WithLabelValues(o.Scenario).Set(passing)

	finished := o.StartedAt.Add(o.Duration)
	if finished.IsZero() {
		finished = time.Now()
	}
	m.scenarioLastRun.WithLabelValues(o.Scenario).Set(float64(finished.UnixNano()) / 1e9)
}
