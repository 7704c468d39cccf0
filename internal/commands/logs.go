package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw-molt/clawlog/internal/logstream"
	"github.com/openclaw-molt/clawlog/internal/timeutil"
	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/internal/ui/logging"
)

type logsOptions struct {
	url   string
	tail  int
	json  bool
	level string
	since string
}

func NewLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the unified log stream",
		Long: `Fetch the most recent entries from the log API once, merge them with
clawlog's own events and print them oldest first.

Examples:
  # Print the last 500 entries
  clawlog logs

  # Only warnings and errors from the last hour
  clawlog logs --level warning --since 1h

  # JSON lines, for jq and friends
  clawlog logs --json --tail 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, opts)
		},
	}

	addSourceFlags(cmd, &opts.url, &opts.tail)
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print entries as JSON lines")
	cmd.Flags().StringVar(&opts.level, "level", "", "Only show entries at or above this level (debug, info, warning, error, critical)")
	cmd.Flags().StringVar(&opts.since, "since", "", "Show entries since timestamp. Supports relative ('w|d|h|m|s') or absolute ('YYYY-MM-DD HH:mm:ss')")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	cmd.SilenceUsage = true

	filter, err := newFilter(opts, time.Now())
	if err != nil {
		return ui.NewValidationError(err)
	}

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return ui.NewValidationError(fmt.Errorf("failed to get display options: %w", err))
	}

	store, err := getStore(cmd)
	if err != nil {
		return err
	}
	if err := applySourceFlags(cmd, store, opts.url, opts.tail); err != nil {
		return err
	}

	spinner := ui.NewSimpleSpinner("Fetching logs...")
	spinner.Start()
	store.FetchRemote(cmd.Context())
	spinner.Stop()

	snap := store.Snapshot()
	entries := filter.Apply(snap.Entries)

	out := cmd.OutOrStdout()
	if opts.json {
		err = printJSONLines(out, entries)
	} else {
		err = printEntries(out, entries, displayOpts.Styled())
	}
	if err != nil {
		return ui.NewInternalError(fmt.Errorf("failed to write logs: %w", err))
	}

	if snap.FetchError != "" {
		return ui.NewFetchError(snap.FetchError)
	}
	return nil
}

func newFilter(opts logsOptions, now time.Time) (logging.Filter, error) {
	var filter logging.Filter

	if opts.level != "" {
		if err := logging.ValidateLevel(opts.level); err != nil {
			return filter, err
		}
		filter.MinLevel = opts.level
	}

	if opts.since != "" {
		since, err := timeutil.ParseSince(opts.since, now)
		if err != nil {
			return filter, err
		}
		filter.Since = since
	}

	return filter, nil
}

func printEntries(w io.Writer, entries []logstream.Entry, styled bool) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, logging.FormatEntry(e, styled)); err != nil {
			return err
		}
	}
	return nil
}

// jsonEntry is the --json line format. It follows the record shape served
// by the log API so output can be fed back into tools that read it.
type jsonEntry struct {
	ID        uint64  `json:"id"`
	Timestamp *string `json:"ts"`
	Level     string  `json:"level"`
	Message   string  `json:"msg"`
	Origin    string  `json:"origin"`
	Tool      string  `json:"tool,omitempty"`
	Operation string  `json:"operation,omitempty"`
	ErrorKind string  `json:"error_type,omitempty"`
}

func toJSONEntry(e logstream.Entry) jsonEntry {
	out := jsonEntry{
		ID:        e.ID,
		Level:     logging.NormalizeLevel(e.Level),
		Message:   e.Message,
		Origin:    string(e.Origin),
		Tool:      e.Tool,
		Operation: e.Operation,
		ErrorKind: e.ErrorKind,
	}

	switch {
	case e.HasTimestamp():
		ts := e.Timestamp.UTC().Format(time.RFC3339Nano)
		out.Timestamp = &ts
	case e.RawTimestamp != "":
		ts := e.RawTimestamp
		out.Timestamp = &ts
	}
	return out
}

func printJSONLines(w io.Writer, entries []logstream.Entry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(toJSONEntry(e)); err != nil {
			return err
		}
	}
	return nil
}
