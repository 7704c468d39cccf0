package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	configCmd "github.com/openclaw-molt/clawlog/internal/commands/config"
	"github.com/openclaw-molt/clawlog/internal/logstream"
	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/internal/ui/logging"
	"github.com/openclaw-molt/clawlog/internal/version"
	"github.com/openclaw-molt/clawlog/pkg/bugsnag"
	"github.com/openclaw-molt/clawlog/pkg/config"
	"github.com/openclaw-molt/clawlog/pkg/logrium"
)

// storeLogLevel is the lowest slog level copied into the log stream
const storeLogLevel = slog.LevelWarn

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clawlog",
		Short: "Unified log stream for the OpenClaw MCP server",
		Long: `clawlog merges its own events with the log records served by the
OpenClaw MCP log API into one time-ordered stream.

  clawlog logger     open the interactive Logger view
  clawlog logs       fetch once and print the merged stream
  clawlog serve      serve an MCP log file at /api/logs`,
		// Silence errors - we handle them in main.go
		// Note: SilenceUsage is NOT set here so unknown commands show usage.
		// Individual commands set cmd.SilenceUsage = true to hide usage on errors.
		SilenceErrors: true,
		// Load config and create the log stream once for all subcommands
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupCommand(cmd, args)
		},
	}

	// Global flags (persistent flags are inherited by all subcommands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output and animations")
	rootCmd.PersistentFlags().Bool("no-ansi", false, "Disable colored output and animations (equivalent to --no-color)")

	rootCmd.AddCommand(NewLoggerCmd())
	rootCmd.AddCommand(NewLogsCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(configCmd.NewConfigCmd())

	return rootCmd
}

func setupCommand(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	displayOpts, err := ui.NewDisplayConfig(cmd, verbose)
	if err != nil {
		return ui.NewInternalError(fmt.Errorf("failed to determine display options: %w", err))
	}

	// Load config first (needed to get configured log level)
	cfg, err := config.Load()
	if err != nil {
		return ui.NewConfigurationError(fmt.Errorf("failed to load config: %w", err))
	}

	if err := bugsnag.Initialize(cfg); err != nil {
		// Don't fail if error reporting can't start
		fmt.Fprintln(os.Stderr, ui.WarningStyle.Render(fmt.Sprintf("Warning: Failed to initialize error tracking: %v", err)))
	}
	bugsnag.SetCommandContext(cmd.CommandPath(), args)

	store := newStore(cfg)
	logstream.Bootstrap(store)
	bugsnag.AttachRecentLogs(func() []string {
		entries := store.Entries()
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, logging.FormatEntry(e, false))
		}
		return lines
	})

	logFile, err := logrium.Setup(logrium.Options{
		Verbose:       verbose,
		Interactive:   displayOpts.IsInteractive,
		Level:         cfg.GetLogLevel(),
		JSONLinesFile: cfg.LogFile,
		Wrap: func(h slog.Handler) slog.Handler {
			return logstream.NewSlogHandler(store, h, storeLogLevel)
		},
	})
	if err != nil {
		return ui.NewFileSystemError(fmt.Errorf("failed to set up logging: %w", err))
	}
	if logFile != "" {
		fmt.Fprintf(os.Stderr, "Debug logs: %s\n", logFile)
	}

	slog.Debug("Config loaded successfully", "path", config.ConfigPath(), "source", cfg.LogServerURL)

	// Store config, display options and the log stream in context so
	// subcommands can access them
	ctx := context.WithValue(cmd.Context(), config.GetContextKey(), cfg)
	ctx = ui.WithDisplayConfig(ctx, displayOpts)
	ctx = logstream.NewContext(ctx, store)
	cmd.SetContext(ctx)

	if !skipsVersionCheck(cmd) {
		// A failed lookup is recorded in the stream rather than shown
		<-logstream.CaptureGo(store, func() error {
			if err := version.PrintUpdateNotification(ctx, cfg.SkipVersionCheck); err != nil {
				return fmt.Errorf("version check: %w", err)
			}
			return nil
		})
	}

	return nil
}

// newStore creates the log stream from the loaded config
func newStore(cfg *config.Config) *logstream.Store {
	return logstream.New(logstream.Config{
		RemoteSource: cfg.LogServerURL,
		Tail:         cfg.GetTail(),
		Fetcher: logstream.NewHTTPFetcher(logstream.HTTPFetcherConfig{
			Timeout: cfg.FetchTimeout,
		}),
	})
}

// skipsVersionCheck is true for commands that must not reach the network
// before running: version, serve and everything under config
func skipsVersionCheck(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "config", "serve":
			return true
		}
	}
	return false
}

// getStore returns the log stream created by the root command
func getStore(cmd *cobra.Command) (*logstream.Store, error) {
	store, err := logstream.FromContext(cmd.Context())
	if err != nil {
		return nil, ui.NewInternalError(err)
	}
	return store, nil
}

// applySourceFlags lets --url and --tail override the configured values
func applySourceFlags(cmd *cobra.Command, store *logstream.Store, url string, tail int) error {
	if cmd.Flags().Changed("tail") {
		if tail <= 0 {
			return ui.NewValidationError(fmt.Errorf("--tail must be positive, got %d", tail))
		}
		store.SetTail(tail)
	}
	if cmd.Flags().Changed("url") {
		store.SetRemoteSource(url)
	}
	return nil
}

// addSourceFlags registers --url and --tail
func addSourceFlags(cmd *cobra.Command, url *string, tail *int) {
	cmd.Flags().StringVar(url, "url", "", "Log API to fetch from (default: log-server-url from config)")
	cmd.Flags().IntVar(tail, "tail", logstream.DefaultTail, "Number of recent entries to request")
}
