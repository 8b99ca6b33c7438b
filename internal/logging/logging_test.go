package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogFileName(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "data_import_20240309_140507.log", DefaultLogFileName(ts))
}

func TestSetup_ConsoleAndFile(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "run.log")

	logger, cleanup, err := Setup(Options{Console: &console, LogFile: logFile, RunID: "run-1"})
	require.NoError(t, err)

	logger.Info("table loaded", "table", "sales")
	logger.Debug("hidden")
	cleanup()

	assert.Contains(t, console.String(), "table loaded")
	assert.Contains(t, console.String(), "run_id=run-1")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "table=sales")
	assert.Contains(t, string(data), "run_id=run-1")
}

func TestSetup_Verbose(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer
	logger, cleanup, err := Setup(Options{Console: &console, Verbose: true})
	require.NoError(t, err)
	defer cleanup()

	logger.WithGroup("loader").Debug("chunk inserted", "rows", 10)
	assert.Contains(t, console.String(), "chunk inserted")
	assert.Contains(t, console.String(), "loader.rows=10")
	assert.Contains(t, console.String(), "run_id=")
}

func TestSetup_UnwritableLogFile(t *testing.T) {
	t.Parallel()

	_, _, err := Setup(Options{Console: &bytes.Buffer{}, LogFile: filepath.Join(t.TempDir(), "missing", "run.log")})
	assert.Error(t, err)
}

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	var info, debug bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}
	logger := slog.New(h).With("table", "sales")

	logger.Debug("detail")
	logger.Info("summary")

	assert.NotContains(t, info.String(), "detail")
	assert.Contains(t, info.String(), "summary")
	assert.Contains(t, debug.String(), "detail")
	assert.Contains(t, debug.String(), "table=sales")
}
