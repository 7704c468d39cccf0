package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// DisplayConfigContextKey is the key used to store DisplayConfig in context
type DisplayConfigContextKey struct{}

// GetDisplayConfigContextKey returns the key used to store DisplayConfig in context
func GetDisplayConfigContextKey() DisplayConfigContextKey {
	return DisplayConfigContextKey{}
}

// DisplayConfig contains display-related configuration
type DisplayConfig struct {
	DisableAnimation bool
	IsInteractive    bool
}

// SimpleOutput reports whether output should be plain lines instead of a TUI
func (d DisplayConfig) SimpleOutput() bool {
	return !d.IsInteractive || d.DisableAnimation
}

// Styled reports whether printed lines may carry ANSI colours
func (d DisplayConfig) Styled() bool {
	return !d.DisableAnimation && isatty.IsTerminal(os.Stdout.Fd())
}

// NewDisplayConfig extracts display options from persistent flags, NO_COLOR
// and TTY detection
func NewDisplayConfig(cmd *cobra.Command, verbose bool) (DisplayConfig, error) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	noAnsi, _ := cmd.Flags().GetBool("no-ansi")
	_, noColorEnv := os.LookupEnv("NO_COLOR")

	// The TUI writes to stdout, so only stdout decides interactivity
	stdoutIsTTY := isatty.IsTerminal(os.Stdout.Fd())

	// If stderr and stdout are the same file, verbose logs would tear the TUI
	stderrRedirectedToStdout := false
	if stat1, err1 := os.Stdout.Stat(); err1 == nil {
		if stat2, err2 := os.Stderr.Stat(); err2 == nil {
			stderrRedirectedToStdout = os.SameFile(stat1, stat2)
		}
	}

	opts := resolveDisplayConfig(displayInputs{
		noColor:                  noColor || noAnsi || noColorEnv,
		verbose:                  verbose,
		stdoutIsTTY:              stdoutIsTTY,
		stderrRedirectedToStdout: stderrRedirectedToStdout,
	})

	slog.Debug("Display options determined",
		"command", cmd.Name(),
		"no-color-flag", noColor,
		"no-ansi-flag", noAnsi,
		"no-color-env", noColorEnv,
		"verbose-flag", verbose,
		"stdout-is-tty", stdoutIsTTY,
		"stderr-same-as-stdout", stderrRedirectedToStdout,
		"is-interactive", opts.IsInteractive,
		"simple-output", opts.SimpleOutput(),
	)

	return opts, nil
}

type displayInputs struct {
	noColor                  bool
	verbose                  bool
	stdoutIsTTY              bool
	stderrRedirectedToStdout bool
}

func resolveDisplayConfig(in displayInputs) DisplayConfig {
	// Verbose only forces simple output when its stderr lines would land in the TUI
	verboseForcesSimpleOutput := in.verbose && in.stderrRedirectedToStdout

	return DisplayConfig{
		DisableAnimation: in.noColor,
		IsInteractive:    in.stdoutIsTTY && !in.noColor && !verboseForcesSimpleOutput,
	}
}

// WithDisplayConfig returns a copy of ctx carrying d
func WithDisplayConfig(ctx context.Context, d DisplayConfig) context.Context {
	return context.WithValue(ctx, GetDisplayConfigContextKey(), d)
}

// GetDisplayConfigFromContext retrieves DisplayConfig from the command context
func GetDisplayConfigFromContext(cmd *cobra.Command) (DisplayConfig, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return DisplayConfig{}, fmt.Errorf("command context is nil")
	}

	opts, ok := ctx.Value(GetDisplayConfigContextKey()).(DisplayConfig)
	if !ok {
		return DisplayConfig{}, fmt.Errorf("display options not found in context")
	}

	return opts, nil
}
