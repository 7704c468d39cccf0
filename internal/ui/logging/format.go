// Package logging renders unified log stream entries for the terminal.
package logging

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openclaw-molt/clawlog/internal/logstream"
	"github.com/openclaw-molt/clawlog/internal/ui"
)

var upper = cases.Upper(language.Und)

// NormalizeLevel upper-cases and trims a level name. An empty level reads as INFO.
func NormalizeLevel(level string) string {
	level = strings.TrimSpace(level)
	if level == "" {
		return "INFO"
	}
	return upper.String(level)
}

// LevelStyle returns the colour for a level. Unknown levels render unstyled.
func LevelStyle(level string) lipgloss.Style {
	switch NormalizeLevel(level) {
	case "ERROR", "CRITICAL", "FATAL":
		return ui.RedStyle
	case "WARNING", "WARN":
		return ui.YellowStyle
	case "DEBUG", "TRACE":
		return ui.PendingStyle
	default:
		return lipgloss.NewStyle()
	}
}

// FormatTimestamp renders the local wall-clock time of an entry. Entries without
// a parseable timestamp show their raw value, or "--:--:--".
func FormatTimestamp(e logstream.Entry) string {
	if e.HasTimestamp() {
		return e.Timestamp.Local().Format("15:04:05")
	}
	if e.RawTimestamp != "" {
		return e.RawTimestamp
	}
	return "--:--:--"
}

// FormatEntry renders one entry as `HH:MM:SS [LEVEL] tool operation message`.
// Annotations are only included when present. Styled output colours the
// timestamp and level.
func FormatEntry(e logstream.Entry, styled bool) string {
	level := NormalizeLevel(e.Level)
	ts := FormatTimestamp(e)
	tag := "[" + level + "]"

	if styled {
		ts = ui.TimestampStyle.Render(ts)
		tag = LevelStyle(level).Render(tag)
	}

	parts := []string{ts, tag}
	if e.Tool != "" {
		parts = append(parts, annotation(e.Tool, styled))
	}
	if e.Operation != "" {
		parts = append(parts, annotation(e.Operation, styled))
	}
	if e.ErrorKind != "" {
		parts = append(parts, annotation("("+e.ErrorKind+")", styled))
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, " ")
}

func annotation(s string, styled bool) string {
	if styled {
		return ui.CyanStyle.Render(s)
	}
	return s
}
