package commands

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openclaw-molt/clawlog/internal/logserver"
	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/pkg/config"
)

type serveOptions struct {
	host       string
	port       int
	file       string
	glob       string
	corsOrigin string
}

func NewServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an MCP log file over HTTP",
		Long: `Serve the tail of a JSON-lines log file at /api/logs for the Logger view
and the web dashboard.

The file is chosen per request: --file if set, else the newest file matching
--glob, else openclaw-molt-mcp.log in the configured log directory.

Examples:
  clawlog serve
  clawlog serve --port 9000 --file ./mcp.log
  clawlog serve --glob '/var/log/openclaw/**/*.log'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "Address to bind (default: server-host from config)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Port to listen on (default: server-port from config)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file to serve")
	cmd.Flags().StringVar(&opts.glob, "glob", "", "Serve the newest file matching this pattern (supports **)")
	cmd.Flags().StringVar(&opts.corsOrigin, "cors-origin", "", "Preferred CORS origin")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cmd.SilenceUsage = true

	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return ui.NewValidationError(fmt.Errorf("failed to get config: %w", err))
	}

	serverCfg := serverConfig(cfg.Server, opts)
	if serverCfg.Port <= 0 || serverCfg.Port > 65535 {
		return ui.NewValidationError(fmt.Errorf("invalid port %d", serverCfg.Port))
	}

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return ui.NewValidationError(fmt.Errorf("failed to get display options: %w", err))
	}

	srv := logserver.New(serverCfg)
	printServeBanner(cmd.OutOrStdout(), srv, serverCfg.LogFile, displayOpts.Styled())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		return ui.NewInternalError(err)
	}
	return nil
}

// serverConfig overlays flags on the configured server settings
func serverConfig(server config.ServerConfig, opts serveOptions) logserver.Config {
	cfg := logserver.Config{
		Host:       server.Host,
		Port:       server.Port,
		CORSOrigin: server.CORSOrigin,
		LogFile: logserver.LogFileLocator{
			Path: server.LogFile,
			Glob: server.LogGlob,
			Dir:  server.LogDir,
		},
	}

	if opts.host != "" {
		cfg.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Port = opts.port
	}
	if opts.corsOrigin != "" {
		cfg.CORSOrigin = opts.corsOrigin
	}
	if opts.file != "" {
		cfg.LogFile.Path = opts.file
		cfg.LogFile.Glob = ""
	} else if opts.glob != "" {
		cfg.LogFile.Path = ""
		cfg.LogFile.Glob = opts.glob
	}
	return cfg
}

func printServeBanner(w io.Writer, srv *logserver.Server, locator logserver.LogFileLocator, styled bool) {
	endpoint := (&url.URL{Scheme: "http", Host: srv.Addr(), Path: logserver.LogsPath}).String()
	path := locator.Resolve()

	size := "not found (serving an empty list until it appears)"
	if info, err := os.Stat(path); err == nil {
		size = ui.FormatSize(info.Size())
	}

	rows := []ui.TableRow{
		{Label: "Endpoint", Value: endpoint},
		{Label: "Log file", Value: path},
		{Label: "Size", Value: size},
	}

	if !styled {
		for _, row := range rows {
			fmt.Fprintf(w, "%s: %s\n", row.Label, row.Value) //nolint:errcheck // Best effort banner
		}
		return
	}
	fmt.Fprintln(w, ui.RenderPanel("clawlog log server", ui.RenderDetailTable(rows))) //nolint:errcheck // Best effort banner
	fmt.Fprintln(w, ui.HelpStyle.Render("Press Ctrl+C to stop"))                      //nolint:errcheck // Best effort banner
}
