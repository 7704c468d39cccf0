package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Status colors
	RedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	YellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	CyanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)

	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	URLStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	// Fetch failure banner shown above the log box
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("9")).
			PaddingLeft(1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true).
			Padding(0, 1)

	// Log box around the merged stream
	LogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("14")).
			Padding(0, 1)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Padding(0, 1)

	// Log timestamp - subtle gray to distinguish from log content
	TimestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))
)
