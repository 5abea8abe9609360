// Package main runs the task service contract scenarios against a live endpoint,
// once or on an interval, and optionally serves Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todocontract/config"
	"todocontract/internal/contract"
	"todocontract/internal/logging"
	"todocontract/internal/observability"
	"todocontract/internal/probe"
	"todocontract/internal/runlog"
	"todocontract/internal/todoclient"
	"todocontract/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	history := flag.Int("history", 0, "Print the N most recent stored results and exit (needs PROBE_HISTORY_PATH)")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if *history > 0 {
		if err := printHistory(cfg.Probe.HistoryPath, *history); err != nil {
			slog.Error("failed to read history", "error", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(run(cfg, logger))
}

func run(cfg *config.Config, logger *slog.Logger) int {
	slog.Info("starting todoprobe",
		"version", version.Version,
		"commit", version.Commit,
		"base_url", cfg.API.BaseURL,
		"interval", cfg.Probe.Interval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var hooks todoclient.Hooks
	opts := probe.Options{Logger: logger, BaseURL: cfg.API.BaseURL}

	if cfg.Probe.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)
		hooks = metrics.Hooks()
		opts.Observer = metrics

		srv := newMetricsServer(reg)
		go func() {
			slog.Info("serving metrics", "address", cfg.Probe.MetricsAddr)
			if err := srv.Start(cfg.Probe.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	} else {
		slog.Info("prometheus metrics disabled")
	}

	if cfg.Probe.HistoryPath != "" {
		store, err := runlog.Open(cfg.Probe.HistoryPath)
		if err != nil {
			slog.Error("failed to open run history", "path", cfg.Probe.HistoryPath, "error", err)
			return 1
		}
		defer store.Close()
		opts.Store = store
		slog.Info("run history enabled", "path", cfg.Probe.HistoryPath)
	}

	suite := contract.NewSuite(todoclient.New(cfg.API.BaseURL, hooks))
	suite.ListCount = cfg.Suite.ListCount
	suite.Cleanup = cfg.Suite.Cleanup

	runner := probe.NewRunner(suite, opts)

	if cfg.Probe.Interval <= 0 {
		report := runner.RunOnce(ctx)
		if !report.Passed() {
			return 1
		}
		return 0
	}

	err := runner.Run(ctx, cfg.Probe.Interval, nil)
	if errors.Is(err, context.Canceled) {
		slog.Info("probe stopped")
		return 0
	}
	slog.Error("probe failed", "error", err)
	return 1
}

func newMetricsServer(reg *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}

func printHistory(path string, limit int) error {
	if path == "" {
		return errors.New("PROBE_HISTORY_PATH is not set")
	}
	store, err := runlog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSCENARIO\tRESULT\tDURATION\tRUN")
	for _, r := range results {
		result := "pass"
		if !r.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Scenario,
			result,
			r.Duration.Round(time.Millisecond),
			r.RunID,
		)
	}
	return w.Flush()
}
