package logging

import (
	"fmt"
	"time"

	"github.com/openclaw-molt/clawlog/internal/logstream"
)

var levelRanks = map[string]int{
	"TRACE":    0,
	"DEBUG":    10,
	"INFO":     20,
	"WARN":     30,
	"WARNING":  30,
	"ERROR":    40,
	"CRITICAL": 50,
	"FATAL":    50,
}

// LevelRank orders level names by severity. Unknown levels such as RAW rank
// as INFO.
func LevelRank(level string) int {
	if rank, ok := levelRanks[NormalizeLevel(level)]; ok {
		return rank
	}
	return levelRanks["INFO"]
}

// ValidateLevel checks that level is a known level name
func ValidateLevel(level string) error {
	if _, ok := levelRanks[NormalizeLevel(level)]; !ok {
		return fmt.Errorf("unknown level %q (expected one of debug, info, warning, error, critical)", level)
	}
	return nil
}

// Filter selects entries for printing
type Filter struct {
	MinLevel string    // Empty keeps every level
	Since    time.Time // Zero keeps every entry; otherwise untimestamped entries are dropped
}

// Apply returns the entries matching f, in their original order
func (f Filter) Apply(entries []logstream.Entry) []logstream.Entry {
	if f.MinLevel == "" && f.Since.IsZero() {
		return entries
	}

	minRank := 0
	if f.MinLevel != "" {
		minRank = LevelRank(f.MinLevel)
	}

	out := make([]logstream.Entry, 0, len(entries))
	for _, e := range entries {
		if LevelRank(e.Level) < minRank {
			continue
		}
		if !f.Since.IsZero() && (!e.HasTimestamp() || e.Timestamp.Before(f.Since)) {
			continue
		}
		out = append(out, e)
	}
	return out
}
