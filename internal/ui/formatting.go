package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FormatSize renders a byte count in binary units, e.g. "1.5 KB"
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// TableRow is one label/value line of a detail table
type TableRow struct {
	Label string
	Value string
}

// RenderDetailTable renders rows as aligned "label  value" lines
func RenderDetailTable(rows []TableRow) string {
	width := 0
	for _, row := range rows {
		width = max(width, lipgloss.Width(row.Label))
	}
	labelStyle := lipgloss.NewStyle().Bold(true).Width(width + 2)

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row.Label))
		b.WriteString(row.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPanel draws content in a rounded box with a styled title on the first line
func RenderPanel(title, content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("11")).
		Padding(0, 1).
		Render(TitleStyle.Render(title) + "\n" + strings.TrimRight(content, "\n"))
}
