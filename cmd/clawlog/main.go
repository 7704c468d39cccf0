package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openclaw-molt/clawlog/internal/commands"
	"github.com/openclaw-molt/clawlog/internal/ui"
	clawlog_bugsnag "github.com/openclaw-molt/clawlog/pkg/bugsnag"
)

func main() {
	// Recover from panics and report them to Bugsnag. Error tracking itself
	// is initialized once the config is loaded.
	defer clawlog_bugsnag.NotifyOnPanic(context.Background())

	rootCmd := commands.NewRootCmd()
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	errMsg := err.Error()
	switch {
	case strings.HasPrefix(errMsg, "unknown command"):
		// Unknown command - we've suppressed usage for commands, so we need to manually do this
		_ = rootCmd.Usage()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	case strings.HasPrefix(errMsg, "unknown flag"):
		// Unknown flag - Cobra already showed usage, don't duplicate
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	uiErr, ok := ui.AsUIError(err)
	if !ok {
		fmt.Fprint(os.Stderr, ui.FormatError(err))
		os.Exit(1)
	}

	if uiErr.Type == ui.ErrorTypeInternal {
		clawlog_bugsnag.NotifyError(context.Background(), uiErr)
	}
	if !uiErr.SilentExit {
		fmt.Fprint(os.Stderr, ui.FormatError(uiErr))
	}
	os.Exit(uiErr.ExitCode())
}
