package logstream

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	store := New(Config{Fetcher: &mockFetcher{}})
	Bootstrap(store)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "App initialized", entries[0].Message)
	assert.Equal(t, OriginClient, entries[0].Origin)
	assert.True(t, entries[0].HasTimestamp())
}

func TestRecoverPanic(t *testing.T) {
	store := New(Config{Fetcher: &mockFetcher{}})

	assert.PanicsWithValue(t, "kaboom", func() {
		defer RecoverPanic(store)
		panic("kaboom")
	})

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "Unhandled panic: kaboom", entries[0].Message)
}

func TestCaptureGo(t *testing.T) {
	t.Run("error is recorded", func(t *testing.T) {
		store := New(Config{Fetcher: &mockFetcher{}})

		err := <-CaptureGo(store, func() error { return errors.New("gateway unreachable") })

		assert.EqualError(t, err, "gateway unreachable")
		entries := store.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "ERROR", entries[0].Level)
		assert.Equal(t, "Unhandled rejection: gateway unreachable", entries[0].Message)
	})

	t.Run("success records nothing", func(t *testing.T) {
		store := New(Config{Fetcher: &mockFetcher{}})

		err := <-CaptureGo(store, func() error { return nil })

		assert.NoError(t, err)
		assert.Empty(t, store.Entries())
	})

	t.Run("panic is recorded and returned", func(t *testing.T) {
		store := New(Config{Fetcher: &mockFetcher{}})

		err := <-CaptureGo(store, func() error { panic("nil map") })

		assert.EqualError(t, err, "panic: nil map")
		entries := store.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "Unhandled panic: nil map", entries[0].Message)
	})
}

func TestSlogHandler(t *testing.T) {
	store := New(Config{Fetcher: &mockFetcher{}})
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(NewSlogHandler(store, next, slog.LevelWarn))
	logger.Info("routine")
	logger.Warn("slow gateway", "tool", "gateway", "operation", "status")
	logger.With("error_type", "ConnectError").Error("gateway down")
	logger.WithGroup("req").Error("grouped", "tool", "ignored")

	entries := store.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, "WARNING", entries[0].Level)
	assert.Equal(t, "slow gateway", entries[0].Message)
	assert.Equal(t, "gateway", entries[0].Tool)
	assert.Equal(t, "status", entries[0].Operation)

	assert.Equal(t, "ERROR", entries[1].Level)
	assert.Equal(t, "ConnectError", entries[1].ErrorKind)

	assert.Equal(t, "grouped", entries[2].Message)
	assert.Empty(t, entries[2].Tool)

	// Every record still reaches the next handler
	out := buf.String()
	assert.Contains(t, out, "routine")
	assert.Contains(t, out, "slow gateway")
	assert.Contains(t, out, "gateway down")
}

func TestSlogHandler_NilNext(t *testing.T) {
	store := New(Config{Fetcher: &mockFetcher{}})
	logger := slog.New(NewSlogHandler(store, nil, nil))

	logger.Info("dropped")
	logger.Error("kept")

	assert.Equal(t, []string{"kept"}, messages(store.Entries()))
}
