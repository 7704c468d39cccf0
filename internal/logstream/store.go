// Package logstream merges locally produced log events with log events fetched
// from a remote log API into one time-ordered, bounded stream.
//
// A Store is created once at startup and handed to every consumer. Client
// entries are appended by in-process producers (see Bootstrap, RecoverPanic,
// CaptureGo and NewSlogHandler); server entries are replaced wholesale by each
// successful FetchRemote. Entries returns the merged view.
package logstream

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

const (
	// MaxClientEntries caps the client buffer. Older client entries are
	// evicted first, by insertion order.
	MaxClientEntries = 1000

	// DefaultTail is the number of most recent entries requested from the
	// remote source
	DefaultTail = 500

	// DefaultRemoteSource is where the log API server listens by default
	DefaultRemoteSource = "http://127.0.0.1:8765/api/logs"
)

// Fetcher reads the most recent entries from a remote log source
type Fetcher interface {
	Fetch(ctx context.Context, source string, tail int) ([]Entry, error)
}

// Config configures a Store
type Config struct {
	RemoteSource string  // Remote log API address (default: none, fetches fail)
	Tail         int     // Entries requested per fetch (default: DefaultTail)
	Fetcher      Fetcher // Default: an HTTP fetcher with a 30s timeout
}

// Snapshot is a consistent view of the store's readable state
type Snapshot struct {
	Entries      []Entry
	FetchError   string
	Fetching     bool
	RemoteSource string
}

// Store is the unified log stream. It is safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	client       []Entry
	server       []Entry
	merged       []Entry // cache of merge(client, server); nil when stale
	remoteSource string
	tail         int
	fetchErr     string
	inFlight     int
	fetcher      Fetcher
	changed      chan struct{}
}

// New creates a store
func New(cfg Config) *Store {
	if cfg.Tail <= 0 {
		cfg.Tail = DefaultTail
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = NewHTTPFetcher(HTTPFetcherConfig{})
	}

	return &Store{
		remoteSource: cfg.RemoteSource,
		tail:         cfg.Tail,
		fetcher:      cfg.Fetcher,
		changed:      make(chan struct{}),
	}
}

// Append adds a client entry. Any ID on e is replaced and the origin is
// forced to client.
func (s *Store) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(e)
	s.notifyLocked()
}

func (s *Store) appendLocked(e Entry) {
	e.ID = nextID()
	e.Origin = OriginClient
	s.client = append(s.client, e)

	if len(s.client) > MaxClientEntries {
		numToEvict := len(s.client) - MaxClientEntries
		// Copy so the evicted prefix can be collected
		s.client = slices.Clone(s.client[numToEvict:])
	}
	s.merged = nil
}

// Clear empties both buffers and resets the fetch error
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client = nil
	s.server = nil
	s.merged = nil
	s.fetchErr = ""
	s.notifyLocked()
}

// SetRemoteSource changes the address used by subsequent fetches. It does not
// fetch and does not validate the address.
func (s *Store) SetRemoteSource(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remoteSource = addr
	s.notifyLocked()
}

// SetTail changes the number of entries requested by subsequent fetches.
// Non-positive values restore DefaultTail.
func (s *Store) SetTail(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		n = DefaultTail
	}
	s.tail = n
}

// Tail returns the number of entries requested per fetch
func (s *Store) Tail() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tail
}

// FetchRemote replaces the server buffer with the most recent entries from the
// remote source. It never returns an error: on failure the server buffer is
// left as it was, FetchError reports the reason and one client ERROR entry
// describing the failure is appended.
//
// Overlapping calls are not serialised; whichever response resolves last
// decides the server buffer.
func (s *Store) FetchRemote(ctx context.Context) {
	s.mu.Lock()
	source := s.remoteSource
	tail := s.tail
	s.fetchErr = ""
	s.inFlight++
	s.notifyLocked()
	s.mu.Unlock()

	slog.Debug("Fetching remote logs", "source", source, "tail", tail)
	startTime := time.Now()
	entries, err := s.fetch(ctx, source, tail)
	duration := time.Since(startTime)

	if err != nil {
		// Debug keeps the slog bridge from adding a second entry for this failure
		slog.Debug("Remote log fetch failed", "source", source, "error", err, "duration", duration)

		s.mu.Lock()
		defer s.mu.Unlock()

		s.inFlight--
		s.fetchErr = err.Error()
		s.appendLocked(Entry{
			Timestamp: time.Now().UTC(),
			Level:     "ERROR",
			Message:   "Failed to fetch logs: " + s.fetchErr,
		})
		s.notifyLocked()
		return
	}

	// The fetcher may share its result slice
	entries = slices.Clone(entries)
	for i := range entries {
		entries[i].ID = nextID()
		entries[i].Origin = OriginServer
	}
	slog.Debug("Remote logs fetched", "source", source, "count", len(entries), "duration", duration)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	s.server = entries
	s.merged = nil
	s.fetchErr = ""
	s.notifyLocked()
}

// fetch calls the fetcher and turns a panic into an error
func (s *Store) fetch(ctx context.Context, source string, tail int) (entries []Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entries = nil
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()

	return s.fetcher.Fetch(ctx, source, tail)
}

// Entries returns the merged stream, sorted ascending by timestamp with
// untimestamped entries first. The returned slice belongs to the caller.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.entriesLocked())
}

func (s *Store) entriesLocked() []Entry {
	if s.merged == nil {
		s.merged = merge(s.client, s.server)
	}
	return s.merged
}

// FetchError returns the last fetch failure, or "" if the last fetch
// succeeded or none has failed since the last Clear
func (s *Store) FetchError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

// HasFetchError reports whether FetchError is set
func (s *Store) HasFetchError() bool {
	return s.FetchError() != ""
}

// IsFetching reports whether at least one fetch is in flight
func (s *Store) IsFetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// RemoteSource returns the configured remote address
func (s *Store) RemoteSource() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteSource
}

// Snapshot returns every readable field under one lock
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Entries:      slices.Clone(s.entriesLocked()),
		FetchError:   s.fetchErr,
		Fetching:     s.inFlight > 0,
		RemoteSource: s.remoteSource,
	}
}

// Changed returns a channel that is closed on the next mutation of the store
func (s *Store) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

func (s *Store) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// merge concatenates client and server entries and sorts them by timestamp.
// It does not modify its inputs.
func merge(client, server []Entry) []Entry {
	combined := make([]Entry, 0, len(client)+len(server))
	combined = append(combined, client...)
	combined = append(combined, server...)
	slices.SortStableFunc(combined, compareEntries)
	return combined
}

// compareEntries orders untimestamped entries before all timestamped ones
func compareEntries(a, b Entry) int {
	switch {
	case !a.HasTimestamp() && !b.HasTimestamp():
		return 0
	case !a.HasTimestamp():
		return -1
	case !b.HasTimestamp():
		return 1
	default:
		return a.Timestamp.Compare(b.Timestamp)
	}
}
