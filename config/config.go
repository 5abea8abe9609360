// Package config provides configuration management for the task API suite and its tools.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"todocontract/internal/core"
)

// DefaultBaseURL is the hosted task service the suite was written against
const DefaultBaseURL = "https://todo.pixegami.io"

// Config holds the application configuration
type Config struct {
	API   APIConfig
	Suite SuiteConfig
	Probe ProbeConfig
	Log   LogConfig
	Fake  FakeConfig
}

// APIConfig holds the task service endpoint
type APIConfig struct {
	BaseURL string
}

// SuiteConfig holds scenario options
type SuiteConfig struct {
	// ListCount is how many tasks the list scenario creates
	ListCount int
	// Cleanup deletes tasks created by scenarios when they finish
	Cleanup bool
}

// ProbeConfig holds todoprobe options
type ProbeConfig struct {
	// Interval between runs; zero runs once
	Interval time.Duration
	// MetricsAddr serves /metrics when set (e.g. ":9090")
	MetricsAddr string
	// HistoryPath is the SQLite run history file; empty disables history
	HistoryPath string
}

// LogConfig holds logging options
type LogConfig struct {
	Format string
	Level  string
}

// FakeConfig holds todofake options
type FakeConfig struct {
	Port string
}

// Load reads .env from the working directory (if present) and the environment
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
// Variables already set in the environment win over the file.
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("TODO_API_BASE_URL", DefaultBaseURL)
	v.SetDefault("TODO_LIST_COUNT", "3")
	v.SetDefault("TODO_CLEANUP", "false")
	v.SetDefault("PROBE_INTERVAL", "0")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("PROBE_HISTORY_PATH", "")
	v.SetDefault("LOG_FORMAT", "pretty")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")
	v.AutomaticEnv()

	listCount, err := strconv.Atoi(strings.TrimSpace(v.GetString("TODO_LIST_COUNT")))
	if err != nil {
		return nil, fmt.Errorf("invalid TODO_LIST_COUNT: %w", err)
	}
	cleanup, err := strconv.ParseBool(strings.TrimSpace(v.GetString("TODO_CLEANUP")))
	if err != nil {
		return nil, fmt.Errorf("invalid TODO_CLEANUP: %w", err)
	}
	interval, err := parseDuration(v.GetString("PROBE_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL: %w", err)
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("TODO_API_BASE_URL")), "/"),
		},
		Suite: SuiteConfig{
			ListCount: listCount,
			Cleanup:   cleanup,
		},
		Probe: ProbeConfig{
			Interval:    interval,
			MetricsAddr: v.GetString("METRICS_ADDR"),
			HistoryPath: v.GetString("PROBE_HISTORY_PATH"),
		},
		Log: LogConfig{
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		Fake: FakeConfig{
			Port: v.GetString("PORT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values Load cannot check while parsing
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid TODO_API_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid TODO_API_BASE_URL %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.Suite.ListCount < 0 {
		return fmt.Errorf("invalid TODO_LIST_COUNT %d: must be >= 0", c.Suite.ListCount)
	}
	if c.Suite.ListCount > core.ListPageSize {
		return fmt.Errorf("invalid TODO_LIST_COUNT %d: the list route returns at most %d tasks per page", c.Suite.ListCount, core.ListPageSize)
	}
	if c.Probe.Interval < 0 {
		return fmt.Errorf("invalid PROBE_INTERVAL %s: must be >= 0", c.Probe.Interval)
	}
	switch c.Log.Format {
	case "pretty", "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want pretty, json or text", c.Log.Format)
	}
	return nil
}

// parseDuration accepts plain integers as seconds or Go duration strings
func parseDuration(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(val)
}
