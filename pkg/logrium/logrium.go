package logrium

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-isatty"
)

// LoggerName is written as the "logger" field of JSON-lines records
const LoggerName = "clawlog"

// Options controls Setup
type Options struct {
	// Verbose enables the human-readable log. When false it is discarded.
	Verbose bool

	// Interactive is true while a Bubbletea UI owns the terminal
	Interactive bool

	Level slog.Level

	// JSONLinesFile, when set, also appends every record to this file in the
	// format served by `clawlog serve`, whether or not Verbose is set
	JSONLinesFile string

	// Wrap, when set, wraps the final handler (e.g. to copy records elsewhere)
	Wrap func(slog.Handler) slog.Handler
}

// Setup configures the global slog logger based on display options and log level.
// It automatically handles TTY detection and respects shell redirection (2>).
//
// Logging behavior when Verbose is set:
//   - Interactive=true + stderr is terminal: Logs to timestamped file in temp dir
//   - Interactive=true + stderr redirected: Logs to stderr (respects user's 2> redirect)
//   - Interactive=false: Logs to stderr
//
// Returns the fully qualified debug log file path (empty string if logging to
// stderr or not logging).
func Setup(opts Options) (string, error) {
	var handlers []slog.Handler
	var logFilePath string

	if opts.Verbose {
		var output io.Writer

		// Only use debug file if BOTH:
		// 1. Interactive mode (Bubbletea UI is running)
		// 2. stderr is still pointing to a terminal (not redirected)
		if opts.Interactive && isatty.IsTerminal(os.Stderr.Fd()) {
			timestamp := time.Now().Format("2006-01-02T15-04-05")
			logFilePath = filepath.Join(os.TempDir(), fmt.Sprintf("clawlog-debug-%s.log", timestamp))

			logFile, err := os.OpenFile(logFilePath, //nolint:gosec // Log file in temp directory
				os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
			if err != nil {
				return "", err
			}
			output = logFile
		} else {
			output = os.Stderr
		}

		handlers = append(handlers, slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: opts.Level,
		}))
	}

	if opts.JSONLinesFile != "" {
		f, err := OpenJSONLinesFile(opts.JSONLinesFile)
		if err != nil {
			return "", err
		}
		handlers = append(handlers, NewJSONLinesHandler(f, opts.Level))
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = discardHandler()
	case 1:
		handler = handlers[0]
	default:
		handler = &teeHandler{handlers: handlers}
	}

	if opts.Wrap != nil {
		handler = opts.Wrap(handler)
	}

	slog.SetDefault(slog.New(handler))
	return logFilePath, nil
}

// Disable configures slog to discard all log output.
func Disable() {
	slog.SetDefault(slog.New(discardHandler()))
}

func discardHandler() slog.Handler {
	// Level higher than any log level to discard everything
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 100,
	})
}

// OpenJSONLinesFile opens path for appending, creating its directory
func OpenJSONLinesFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // Log directory needs standard permissions
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // User-configured log file
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// NewJSONLinesHandler writes one JSON object per line with the keys the log
// server and Logger view understand: ts, level, logger, msg, plus any
// attributes (tool, operation and error_type are shown as annotations).
func NewJSONLinesHandler(w io.Writer, level slog.Leveler) slog.Handler {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceJSONLinesAttr,
	})
	return h.WithAttrs([]slog.Attr{slog.String("logger", LoggerName)})
}

func replaceJSONLinesAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(slog.LevelKey, LevelName(level))
		}
	}
	return a
}

// LevelName maps slog levels to the level names used in the MCP server's log
// file (DEBUG, INFO, WARNING, ERROR, CRITICAL)
func LevelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError+4:
		return "CRITICAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// teeHandler sends every record to each handler that accepts its level
type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.handlers {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &teeHandler{handlers: next}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &teeHandler{handlers: next}
}

// SetupForTesting configures slog to write to a custom writer for testing.
// The original logger is automatically restored when the test completes.
func SetupForTesting(t *testing.T, w io.Writer, level slog.Level) {
	originalLogger := slog.Default()

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))

	t.Cleanup(func() {
		slog.SetDefault(originalLogger)
	})
}
