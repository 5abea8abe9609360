package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, FormatJSON, "info")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("scenario finished", "scenario", "can_create_task", "passed", true)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "scenario finished", entry["msg"])
	assert.Equal(t, "can_create_task", entry["scenario"])
	assert.Equal(t, true, entry["passed"])
}

func TestNew_PrettyWithoutTerminalHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, FormatPretty, "debug")
	require.NoError(t, err)

	logger.Debug("request", "op", "get", "status", 404)

	out := buf.String()
	assert.Contains(t, out, "request")
	assert.Contains(t, out, "op=get")
	assert.Contains(t, out, "status=404")
	assert.NotContains(t, out, "\033[", "no ANSI escapes when not writing to a terminal")
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, FormatText, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("slow", "op", "list")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=slow")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "xml", "info")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, FormatJSON, "loud")
	assert.Error(t, err)
}
