package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{" info ", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"invalid", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "INFO", LevelInfo.String())
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLogger_SetLevel(t *testing.T) {
	t.Setenv("INSPECTR_LOG_LEVEL", "")
	t.Setenv("INSPECTR_LOG_FILE", "")

	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	require.NotContains(t, buf.String(), "debug message")
	require.NotContains(t, buf.String(), "info message")

	l.Warn("warn message")
	l.Error("error message")
	require.Contains(t, buf.String(), "warn message")
	require.Contains(t, buf.String(), "error message")
}

func TestLogger_LogFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelDebug)

	l.Info("test message with %s", "formatting")

	output := buf.String()
	require.Contains(t, output, "[INFO]")
	require.Contains(t, output, "test message with formatting")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelDebug)

	l.With("wizard").Warn("room %d failed", 2)

	require.Contains(t, buf.String(), "[WARN] wizard: room 2 failed")
}

func TestLogger_EnvVarLogLevel(t *testing.T) {
	t.Setenv("INSPECTR_LOG_LEVEL", "debug")

	l := New()
	require.Equal(t, LevelDebug, l.level)
}

func TestLogger_EnvVarLogFile(t *testing.T) {
	tmpPath := filepath.Join(t.TempDir(), "inspectr.log")
	t.Setenv("INSPECTR_LOG_FILE", tmpPath)

	l := New()
	l.Info("test message")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(tmpPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "test message")
}

func TestLogger_Configure(t *testing.T) {
	t.Setenv("INSPECTR_LOG_FILE", "")
	tmpPath := filepath.Join(t.TempDir(), "configured.log")

	l := New()
	require.NoError(t, l.Configure("debug", tmpPath))
	l.Debug("configured debug")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(tmpPath)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(content), "[DEBUG] configured debug"))

	require.Error(t, l.Configure("loud", ""))
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	t.Setenv("INSPECTR_LOG_FILE", "")
	l := New()
	require.NoError(t, l.Close())
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	Default.SetOutput(&buf)
	Default.SetLevel(LevelDebug)
	defer Default.SetLevel(LevelInfo)

	Debug("pkg debug")
	Info("pkg info")
	Warn("pkg warn")
	Error("pkg error")
	With("quick").Info("pkg scoped")

	output := buf.String()
	for _, want := range []string{"pkg debug", "pkg info", "pkg warn", "pkg error", "quick: pkg scoped"} {
		require.Contains(t, output, want)
	}
}
