package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openclaw-molt/clawlog/internal/version"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion()) //nolint:errcheck // Writing to stdout
		},
	}
}
