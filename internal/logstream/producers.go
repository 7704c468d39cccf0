package logstream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openclaw-molt/clawlog/pkg/logrium"
)

// Bootstrap records the startup notice. Call it once after creating the store.
func Bootstrap(store *Store) {
	store.Append(Entry{
		Timestamp: time.Now().UTC(),
		Level:     "INFO",
		Message:   "App initialized",
	})
}

// RecoverPanic records a panic as an ERROR entry and re-panics.
// Use with defer at the top of main and of long-lived goroutines.
func RecoverPanic(store *Store) {
	if r := recover(); r != nil {
		store.Append(panicEntry(r))
		panic(r)
	}
}

// CaptureGo runs fn in a new goroutine. A returned error or a panic is
// recorded as an ERROR entry instead of being lost. The channel receives fn's
// result (a panic is converted to an error) and is then closed.
func CaptureGo(store *Store, fn func() error) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				store.Append(panicEntry(r))
				done <- fmt.Errorf("panic: %v", r)
			}
		}()

		err := fn()
		if err != nil {
			store.Append(Entry{
				Timestamp: time.Now().UTC(),
				Level:     "ERROR",
				Message:   "Unhandled rejection: " + err.Error(),
			})
		}
		done <- err
	}()

	return done
}

func panicEntry(r any) Entry {
	return Entry{
		Timestamp: time.Now().UTC(),
		Level:     "ERROR",
		Message:   fmt.Sprintf("Unhandled panic: %v", r),
	}
}

// slogHandler copies records into a Store as client entries and passes them on
type slogHandler struct {
	store    *Store
	next     slog.Handler
	minLevel slog.Leveler
	attrs    []slog.Attr // attrs added outside any group
	grouped  bool
}

// NewSlogHandler returns a slog.Handler that appends every record at or above
// minLevel to store, then forwards it to next (which may be nil).
// The attributes tool, operation and error_type become entry annotations.
func NewSlogHandler(store *Store, next slog.Handler, minLevel slog.Leveler) slog.Handler {
	if minLevel == nil {
		minLevel = slog.LevelWarn
	}
	return &slogHandler{store: store, next: next, minLevel: minLevel}
}

func (h *slogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= h.minLevel.Level() {
		return true
	}
	return h.next != nil && h.next.Enabled(ctx, level)
}

func (h *slogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minLevel.Level() {
		h.store.Append(h.entryFromRecord(r))
	}

	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	if !h.grouped {
		clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	}
	if h.next != nil {
		clone.next = h.next.WithAttrs(attrs)
	}
	return &clone
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if name != "" {
		clone.grouped = true
	}
	if h.next != nil {
		clone.next = h.next.WithGroup(name)
	}
	return &clone
}

func (h *slogHandler) entryFromRecord(r slog.Record) Entry {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	e := Entry{
		Timestamp: ts.UTC(),
		Level:     logrium.LevelName(r.Level),
		Message:   r.Message,
	}

	annotate := func(a slog.Attr) bool {
		switch a.Key {
		case "tool":
			e.Tool = a.Value.String()
		case "operation":
			e.Operation = a.Value.String()
		case "error_type":
			e.ErrorKind = a.Value.String()
		}
		return true
	}
	for _, a := range h.attrs {
		annotate(a)
	}
	if !h.grouped {
		r.Attrs(annotate)
	}

	return e
}
