package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tcs := []struct {
		bytes    int64
		expected string
	}{
		{bytes: 0, expected: "0 B"},
		{bytes: 1023, expected: "1023 B"},
		{bytes: 1536, expected: "1.5 KB"},
		{bytes: 10 * 1024 * 1024, expected: "10.0 MB"},
	}

	for _, tc := range tcs {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatSize(tc.bytes))
		})
	}
}

func TestRenderDetailTable(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderDetailTable([]TableRow{
		{Label: "tail", Value: "500"},
		{Label: "log-server-url", Value: "http://127.0.0.1:8765/api/logs"},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "tail            500", lines[0])
	assert.Equal(t, "log-server-url  http://127.0.0.1:8765/api/logs", lines[1])
}

func TestRenderPanel(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderPanel("clawlog serve", "Listening on http://127.0.0.1:8765/api/logs\n")

	assert.Contains(t, out, "clawlog serve")
	assert.Contains(t, out, "Listening on http://127.0.0.1:8765/api/logs")
	assert.True(t, strings.HasPrefix(out, "╭"))
}
