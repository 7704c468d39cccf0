package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/pkg/config"
)

func newSetCmd() *cobra.Command {
	var keyHelp strings.Builder
	for _, key := range config.GetUserFacingKeys() {
		fmt.Fprintf(&keyHelp, "  %-20s %s\n", key, config.GetConfigKeyDescription(config.NormalizeKey(key)))
	}

	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.clawlog/config.yaml

Valid keys:
` + keyHelp.String() + `
Examples:
  clawlog config set log-server-url http://10.0.0.5:8765/api/logs
  clawlog config set tail 200
  clawlog config set skip-version-check true`,
		Args: cobra.ExactArgs(2),
		RunE: runSet,
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key := args[0]
	value := args[1]

	normalizedKey := config.NormalizeKey(key)

	if !config.IsValidUserFacingKey(normalizedKey) {
		errOut := cmd.ErrOrStderr()
		//nolint:errcheck // Writing to stderr, error not actionable
		fmt.Fprintf(errOut, "Error: '%s' is not a recognized configuration key\n\nValid configuration keys:\n", key)
		for _, validKey := range config.GetUserFacingKeys() {
			//nolint:errcheck // Writing to stderr, error not actionable
			fmt.Fprintf(errOut, "  %s - %s\n", validKey, config.GetConfigKeyDescription(config.NormalizeKey(validKey)))
		}
		return ui.NewValidationError(fmt.Errorf("invalid configuration key"))
	}

	typedValue, err := parseValue(normalizedKey, value)
	if err != nil {
		return ui.NewValidationError(fmt.Errorf("invalid value for %s: %w", key, err))
	}

	viper.Set(normalizedKey, typedValue)

	if err := viper.WriteConfig(); err != nil {
		return ui.NewFileSystemError(fmt.Errorf("failed to save config: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %v\n", key, typedValue) //nolint:errcheck // Writing to stdout
	return nil
}

// parseValue converts a command line value to the type stored for key
func parseValue(key, value string) (any, error) {
	switch key {
	case "tail":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("expected a positive integer, got %q", value)
		}
		return n, nil

	case "serverport":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("expected a port between 1 and 65535, got %q", value)
		}
		return n, nil

	case "fetchtimeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("expected a positive duration such as 10s, got %q", value)
		}
		return d.String(), nil

	case "skipversioncheck", "telemetry":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", value)
		}
		return b, nil

	case "loglevel":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("expected debug, info, warn or error, got %q", value)

	case "logserverurl":
		// Empty disables fetching
		if value == "" {
			return value, nil
		}
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("expected an absolute URL, got %q", value)
		}
		return value, nil

	default:
		return value, nil
	}
}
