package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/openclaw-molt/clawlog/internal/logstream"
	"github.com/openclaw-molt/clawlog/internal/ui"
	uiCommands "github.com/openclaw-molt/clawlog/internal/ui/commands"
)

func NewLoggerCmd() *cobra.Command {
	var url string
	var tail int

	cmd := &cobra.Command{
		Use:   "logger",
		Short: "Open the Logger view",
		Long: `Open the interactive Logger view over the unified log stream.

The view fetches from the log API when it opens. Keys:
  r  refresh    c  clear    u  edit the log API URL    q  close
  j/k scroll one line, J/K jump to the ends, ctrl+u/ctrl+d page

When output is not a terminal (or with --no-color) the merged stream is
printed once instead.

Examples:
  clawlog logger
  clawlog logger --url http://10.0.0.5:8765/api/logs --tail 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogger(cmd, url, tail)
		},
	}

	addSourceFlags(cmd, &url, &tail)

	return cmd
}

func runLogger(cmd *cobra.Command, url string, tail int) error {
	cmd.SilenceUsage = true

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return ui.NewValidationError(fmt.Errorf("failed to get display options: %w", err))
	}

	store, err := getStore(cmd)
	if err != nil {
		return err
	}
	defer logstream.RecoverPanic(store)

	if err := applySourceFlags(cmd, store, url, tail); err != nil {
		return err
	}

	// Cancelled on close or signal so an in-flight fetch stops
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := uiCommands.NewLoggerView(ctx, uiCommands.LoggerConfig{
		DisplayConfig: displayOpts,
		Store:         store,
	})

	var programOpts []tea.ProgramOption
	if !displayOpts.IsInteractive {
		programOpts = append(programOpts,
			tea.WithoutRenderer(),
			tea.WithInput(nil),
		)
	} else {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	p := tea.NewProgram(model, programOpts...)

	doneCh := ui.SetupSignalHandling(p, cancel, 0)
	defer close(doneCh)

	finalModel, err := p.Run()
	if err != nil {
		return ui.NewInternalError(fmt.Errorf("program error: %w", err))
	}

	m, ok := finalModel.(*uiCommands.LoggerView)
	if !ok {
		return ui.NewInternalError(fmt.Errorf("unexpected model type"))
	}

	if uiErr := m.GetError(); uiErr != nil {
		if uiErr.SilentExit {
			return nil
		}
		return uiErr
	}

	return nil
}
