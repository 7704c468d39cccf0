package logging

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/openclaw-molt/clawlog/internal/logstream"
)

func TestNormalizeLevel(t *testing.T) {
	assert.Equal(t, "INFO", NormalizeLevel(""))
	assert.Equal(t, "INFO", NormalizeLevel("  "))
	assert.Equal(t, "WARNING", NormalizeLevel("warning"))
	assert.Equal(t, "ERROR", NormalizeLevel(" Error "))
	assert.Equal(t, "RAW", NormalizeLevel("RAW"))
}

func TestLevelStyle(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	plain := lipgloss.NewStyle().Render("x")

	for _, level := range []string{"ERROR", "critical", "WARNING", "warn", "DEBUG"} {
		assert.NotEqual(t, plain, LevelStyle(level).Render("x"), level)
	}
	for _, level := range []string{"INFO", "RAW", "custom"} {
		assert.Equal(t, plain, LevelStyle(level).Render("x"), level)
	}
}

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2024, 1, 1, 14, 3, 9, 0, time.Local)

	tcs := []struct {
		name     string
		entry    logstream.Entry
		expected string
	}{
		{
			name:     "plain message",
			entry:    logstream.Entry{Timestamp: ts, Level: "info", Message: "App initialized"},
			expected: "14:03:09 [INFO] App initialized",
		},
		{
			name: "annotations",
			entry: logstream.Entry{
				Timestamp: ts, Level: "ERROR", Message: "gateway down",
				Tool: "openclaw_molt_mcp", Operation: "status", ErrorKind: "ConnectError",
			},
			expected: "14:03:09 [ERROR] openclaw_molt_mcp status (ConnectError) gateway down",
		},
		{
			name:     "missing timestamp",
			entry:    logstream.Entry{Level: "RAW", Message: "not json"},
			expected: "--:--:-- [RAW] not json",
		},
		{
			name:     "unparseable timestamp shows raw value",
			entry:    logstream.Entry{RawTimestamp: "yesterday", Message: "hello"},
			expected: "yesterday [INFO] hello",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatEntry(tc.entry, false))
		})
	}
}

func TestFormatEntry_StyledKeepsText(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	e := logstream.Entry{Level: "WARNING", Message: "slow", Tool: "gateway"}
	assert.Equal(t, FormatEntry(e, false), FormatEntry(e, true))
}
