package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// SpinnerModel is a spinner followed by a label, e.g. "⠋ Fetching logs..."
type SpinnerModel struct {
	spinner spinner.Model
	label   string
}

// NewSpinner creates a new spinner with an optional label
func NewSpinner(label string) *SpinnerModel {
	return &SpinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(SpinnerStyle),
		),
		label: label,
	}
}

// Init returns the initial spinner tick command
func (m *SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles spinner tick messages
func (m *SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// SetLabel changes the text shown after the spinner
func (m *SpinnerModel) SetLabel(label string) {
	m.label = label
}

// View returns the current spinner frame and label
func (m *SpinnerModel) View() string {
	if m.label == "" {
		return m.spinner.View()
	}
	return m.spinner.View() + " " + m.label
}
