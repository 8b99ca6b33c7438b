// Package logging builds the slog logger of an import run.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	slogseq "github.com/sokkalf/slog-seq"
)

// logFileLayout is the timestamp layout of DefaultLogFileName.
const logFileLayout = "20060102_150405"

// DefaultLogFileName returns the per-run log file name for t.
func DefaultLogFileName(t time.Time) string {
	return "data_import_" + t.Format(logFileLayout) + ".log"
}

// Options configures Setup.
type Options struct {
	// Verbose enables debug records.
	Verbose bool
	// Console receives text records. Nil means os.Stderr.
	Console io.Writer
	// LogFile is appended to when set.
	LogFile string
	// SeqURL is the Seq server that also receives records when set.
	SeqURL string
	// RunID tags every record. Empty generates a UUID.
	RunID string
}

// multiHandler forwards log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// Setup builds the run logger and returns a cleanup function that flushes
// and closes the file and Seq sinks.
func Setup(opts Options) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	handlers := []slog.Handler{slog.NewTextHandler(console, handlerOpts)}
	var closers []func()

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // user-chosen log path
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.LogFile, err)
		}
		handlers = append(handlers, slog.NewTextHandler(f, handlerOpts))
		closers = append(closers, func() { _ = f.Close() })
	}

	if opts.SeqURL != "" {
		_, seqHandler := slogseq.NewLogger(
			opts.SeqURL,
			slogseq.WithBatchSize(1),
			slogseq.WithFlushInterval(500*time.Millisecond),
			slogseq.WithHandlerOptions(handlerOpts),
		)
		if seqHandler != nil {
			handlers = append(handlers, seqHandler)
			closers = append(closers, func() { seqHandler.Close() })
		}
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var handler slog.Handler = &multiHandler{handlers: handlers}
	if len(handlers) == 1 {
		handler = handlers[0]
	}
	logger := slog.New(handler).With("run_id", runID)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return logger, cleanup, nil
}
