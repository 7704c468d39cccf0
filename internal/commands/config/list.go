package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/pkg/config"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration",
		Long: `List all configuration keys and values from ~/.clawlog/config.yaml,
including defaults

Example:
  clawlog config list`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	rows := listRows()

	styled := false
	if displayOpts, err := ui.GetDisplayConfigFromContext(cmd); err == nil {
		styled = displayOpts.Styled()
	}

	out := cmd.OutOrStdout()
	if styled {
		fmt.Fprint(out, ui.RenderDetailTable(rows)) //nolint:errcheck // Writing to stdout
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%s: %s\n", row.Label, row.Value) //nolint:errcheck // Writing to stdout
	}
	return nil
}

// listRows returns one row per user-facing key, in the documented order
func listRows() []ui.TableRow {
	keys := config.GetUserFacingKeys()
	rows := make([]ui.TableRow, 0, len(keys))
	for _, key := range keys {
		value := "(not set)"
		if normalized := config.NormalizeKey(key); viper.IsSet(normalized) {
			value = fmt.Sprint(viper.Get(normalized))
		}
		rows = append(rows, ui.TableRow{Label: key, Value: value})
	}
	return rows
}
