package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/pkg/config"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value from ~/.clawlog/config.yaml

Examples:
  clawlog config get log-server-url
  clawlog config get tail
  clawlog config get skip-version-check`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key := args[0]
	normalizedKey := config.NormalizeKey(key)

	if !config.IsValidUserFacingKey(normalizedKey) {
		return ui.NewValidationError(fmt.Errorf("'%s' is not a recognized configuration key. Run 'clawlog config set --help' for valid keys", key))
	}

	if !viper.IsSet(normalizedKey) {
		return ui.NewValidationError(fmt.Errorf("configuration key '%s' not set", key))
	}

	fmt.Fprintln(cmd.OutOrStdout(), viper.Get(normalizedKey)) //nolint:errcheck // Writing to stdout
	return nil
}
