package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openclaw-molt/clawlog/internal/logstream"
	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/internal/ui/logging"
)

const (
	loggerMaxVisible = 40
	loggerPageSize   = 10
	loggerWidth      = 100
)

// LoggerConfig contains configuration for the Logger view
type LoggerConfig struct {
	ui.DisplayConfig

	Store *logstream.Store
}

// LoggerView is the Bubbletea model for the unified log stream
type LoggerView struct {
	ctx          context.Context
	conf         LoggerConfig
	spinner      *ui.SpinnerModel
	sourceInput  textinput.Model
	editing      bool
	scrollOffset int
	anchorBottom bool // Follow the newest entries
	printed      bool // Simple mode has written its output
	closed       bool
	err          *ui.UIError
}

// NewLoggerView creates a new Logger view
func NewLoggerView(ctx context.Context, conf LoggerConfig) *LoggerView {
	if ctx == nil {
		ctx = context.Background()
	}

	input := textinput.New()
	input.Prompt = "Log API URL: "
	input.Placeholder = logstream.DefaultRemoteSource
	input.CharLimit = 2048
	input.Width = loggerWidth - len(input.Prompt) - 4
	input.Cursor.SetMode(cursor.CursorStatic)

	return &LoggerView{
		ctx:          ctx,
		conf:         conf,
		spinner:      ui.NewSpinner("Fetching logs..."),
		sourceInput:  input,
		anchorBottom: true,
	}
}

// Init starts the spinner, subscribes to store changes and fetches once when
// a remote source is configured
func (m *LoggerView) Init() tea.Cmd {
	if m.conf.SimpleOutput() {
		return m.openCmd()
	}

	return tea.Batch(
		m.spinner.Init(),
		m.watchStore(),
		m.openCmd(),
	)
}

// openCmd is the fetch issued when the view opens. It is nil when no remote
// source is configured.
func (m *LoggerView) openCmd() tea.Cmd {
	if m.conf.Store.RemoteSource() == "" {
		if m.conf.SimpleOutput() {
			return func() tea.Msg { return ui.LogsFetchedMsg{} }
		}
		return nil
	}
	return m.fetchCmd()
}

func (m *LoggerView) fetchCmd() tea.Cmd {
	store := m.conf.Store
	ctx := m.ctx
	return func() tea.Msg {
		store.FetchRemote(ctx)
		return ui.LogsFetchedMsg{}
	}
}

func (m *LoggerView) watchStore() tea.Cmd {
	changed := m.conf.Store.Changed()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-changed:
			return ui.StreamChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages
func (m *LoggerView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		if m.conf.SimpleOutput() {
			fmt.Fprintf(os.Stderr, "\nCancelled by user\n")
		}
		return m.close(ui.NewUserCancelledError())

	case ui.LogsFetchedMsg:
		if m.conf.SimpleOutput() {
			m.printStream()
			return m, tea.Quit
		}
		m.followBottom()
		return m, nil

	case ui.StreamChangedMsg:
		m.followBottom()
		return m, m.watchStore()

	case tea.KeyMsg:
		if m.conf.SimpleOutput() {
			return m, nil
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.handleKey(msg)

	default:
		if !m.conf.SimpleOutput() {
			updatedSpinner, cmd := m.spinner.Update(msg)
			m.spinner = updatedSpinner.(*ui.SpinnerModel) //nolint:errcheck // Type assertion guaranteed by SpinnerModel structure
			return m, cmd
		}
	}

	return m, nil
}

func (m *LoggerView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	total := len(m.conf.Store.Entries())

	switch msg.String() {
	case "ctrl+c":
		return m.close(ui.NewUserCancelledError())

	case "q", "esc":
		return m.close(nil)

	case "r":
		return m, m.fetchCmd()

	case "c":
		m.conf.Store.Clear()
		m.scrollOffset = 0
		m.anchorBottom = true

	case "u":
		m.editing = true
		m.sourceInput.SetValue(m.conf.Store.RemoteSource())
		m.sourceInput.CursorEnd()
		return m, m.sourceInput.Focus()

	case "j":
		m.scrollOffset = min(maxScrollOffset(total), m.scrollOffset+1)

	case "J":
		m.scrollOffset = maxScrollOffset(total)

	case "k":
		m.scrollOffset = max(0, m.scrollOffset-1)

	case "K":
		m.scrollOffset = 0

	case "ctrl+u":
		m.scrollOffset = max(0, m.scrollOffset-loggerPageSize)

	case "ctrl+d":
		m.scrollOffset = min(maxScrollOffset(total), m.scrollOffset+loggerPageSize)

	default:
		return m, nil
	}

	// Always check if the newest entry is visible
	m.anchorBottom = m.scrollOffset+loggerMaxVisible >= total
	return m, nil
}

func (m *LoggerView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.conf.Store.SetRemoteSource(strings.TrimSpace(m.sourceInput.Value()))
		m.editing = false
		m.sourceInput.Blur()
		return m, nil

	case tea.KeyEsc:
		m.editing = false
		m.sourceInput.Blur()
		return m, nil

	case tea.KeyCtrlC:
		return m.close(ui.NewUserCancelledError())
	}

	var cmd tea.Cmd
	m.sourceInput, cmd = m.sourceInput.Update(msg)
	return m, cmd
}

func (m *LoggerView) close(err *ui.UIError) (tea.Model, tea.Cmd) {
	m.err = err
	m.closed = true
	return m, tea.Quit
}

// followBottom keeps the newest entries in view while anchored and clamps
// the offset after the stream shrinks
func (m *LoggerView) followBottom() {
	maxOffset := maxScrollOffset(len(m.conf.Store.Entries()))
	if m.anchorBottom || m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
		m.anchorBottom = true
	}
}

func maxScrollOffset(total int) int {
	return max(0, total-loggerMaxVisible)
}

// printStream writes the merged stream to stdout once, for piped or
// --no-color output
func (m *LoggerView) printStream() {
	if m.printed {
		return
	}
	m.printed = true

	snap := m.conf.Store.Snapshot()
	for _, e := range snap.Entries {
		fmt.Println(logging.FormatEntry(e, false))
	}
	if snap.FetchError != "" {
		m.err = ui.NewFetchError(snap.FetchError)
	}
}

// View renders the Logger view
func (m *LoggerView) View() string {
	if m.conf.SimpleOutput() || m.closed {
		return ""
	}

	snap := m.conf.Store.Snapshot()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.renderControls(snap))
	b.WriteString("\n")

	if snap.FetchError != "" {
		b.WriteString(ui.BannerStyle.Render("Failed to fetch logs: " + snap.FetchError))
		b.WriteString("\n")
	}

	b.WriteString(m.renderEntries(snap))
	b.WriteString("\n")
	b.WriteString(m.renderHelpText(len(snap.Entries)))
	return b.String()
}

func (m *LoggerView) renderControls(snap logstream.Snapshot) string {
	if m.editing {
		return m.sourceInput.View()
	}

	source := snap.RemoteSource
	if source == "" {
		source = ui.PendingStyle.Render("(no log source)")
	} else {
		source = ui.URLStyle.Render(source)
	}

	line := "Source: " + source
	if snap.Fetching {
		line += "  " + m.spinner.View()
	}
	return line
}

func (m *LoggerView) renderEntries(snap logstream.Snapshot) string {
	total := len(snap.Entries)
	title := ui.CyanStyle.Render(fmt.Sprintf("Logs (%d)", total))

	box := ui.LogBoxStyle.Width(loggerWidth)

	if total == 0 {
		hint := ui.PendingStyle.Render("No logs yet. Press r to fetch from the log API, or u to change its URL.")
		return box.Render(title + "\n" + hint)
	}

	start := min(m.scrollOffset, maxScrollOffset(total))
	end := min(start+loggerMaxVisible, total)

	var content strings.Builder
	content.WriteString(title)

	if start > 0 {
		content.WriteString("\n")
		content.WriteString(ui.PendingStyle.Render(fmt.Sprintf("↑ %d more lines above", start)))
	}

	for _, e := range snap.Entries[start:end] {
		content.WriteString("\n")
		content.WriteString(logging.FormatEntry(e, true))
	}

	if end < total {
		content.WriteString("\n")
		content.WriteString(ui.PendingStyle.Render(fmt.Sprintf("↓ %d more lines below", total-end)))
	}

	return box.Render(content.String())
}

// renderHelpText shows keyboard shortcuts
func (m *LoggerView) renderHelpText(total int) string {
	if m.editing {
		return ui.HelpStyle.Render("enter: save | esc: cancel")
	}

	hints := []string{"r: refresh", "c: clear", "u: edit URL", "q: close"}
	if total > loggerMaxVisible {
		hints = append(hints, "j/k: scroll", "J/K: scroll to bottom/top", "ctrl+u/d: page up/down")
	}
	return ui.HelpStyle.Render(strings.Join(hints, " | "))
}

// IsEditing reports whether the remote source editor is open
func (m *LoggerView) IsEditing() bool {
	return m.editing
}

// ScrollOffset returns the index of the first visible entry
func (m *LoggerView) ScrollOffset() int {
	return m.scrollOffset
}

// GetError returns any error that occurred
func (m *LoggerView) GetError() *ui.UIError {
	return m.err
}
