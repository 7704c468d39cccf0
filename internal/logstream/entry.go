package logstream

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Origin records where an entry came from. It is provenance only and never
// takes part in ordering.
type Origin string

const (
	OriginClient Origin = "client"
	OriginServer Origin = "server"
)

// Entry is a single log line in the unified stream
type Entry struct {
	// ID is process-unique and assigned at insertion time. Zero means unassigned.
	ID uint64

	// Timestamp is when the event happened. The zero value means the source
	// did not provide one (or provided something unparseable).
	Timestamp time.Time

	// RawTimestamp keeps the timestamp string as received, for display when it
	// could not be parsed. Empty for client entries.
	RawTimestamp string

	// Level is a free-text severity tag (INFO, WARNING, ERROR, ...)
	Level   string
	Message string
	Origin  Origin

	// Optional annotations carried through from server records
	Tool      string
	Operation string
	ErrorKind string
}

// Key returns the identifier used for UI keying, e.g. "log-42"
func (e Entry) Key() string {
	return fmt.Sprintf("log-%d", e.ID)
}

// HasTimestamp reports whether the entry carries a usable timestamp
func (e Entry) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}
