package config

import (
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command group
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Manage CLI configuration settings.

Configuration is stored in ~/.clawlog/config.yaml (override with
CLAWLOG_CONFIG_PATH). A clawlog.toml in the working directory overrides the
log API URL, tail and server settings for that project.

Available subcommands:
  set   - Set a configuration value
  get   - Get a configuration value
  list  - List all configuration`,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
