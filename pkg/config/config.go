package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".clawlog"
	DefaultConfigFile = "config.yaml"
)

// Config holds the CLI configuration
type Config struct {
	LogServerURL     string        // Remote log API the Logger view fetches from
	Tail             int           // Entries requested per fetch
	FetchTimeout     time.Duration // Per-request transport timeout
	LogFile          string        // When set, clawlog appends its own JSON-lines log here
	SkipVersionCheck bool
	LogLevel         string
	TelemetryEnabled *bool // Pointer to distinguish between unset (nil) and explicitly set (true/false)

	Server ServerConfig
}

// ServerConfig holds the settings of `clawlog serve`
type ServerConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	LogDir     string `toml:"log_dir"`
	LogFile    string `toml:"log_file"`
	LogGlob    string `toml:"log_glob"`
	CORSOrigin string `toml:"cors_origin"`
}

// ValidUserFacingConfigKeys lists config keys that users should interact with
var ValidUserFacingConfigKeys = map[string]bool{
	"logserverurl":     true,
	"tail":             true,
	"fetchtimeout":     true,
	"logfile":          true,
	"skipversioncheck": true,
	"loglevel":         true,
	"telemetry":        true,
	"serverhost":       true,
	"serverport":       true,
	"logdir":           true,
	"corsorigin":       true,
}

// IsValidUserFacingKey checks if a config key is a recognized user-facing key
func IsValidUserFacingKey(key string) bool {
	return ValidUserFacingConfigKeys[key]
}

// GetConfigKeyDescription returns a description for a config key
func GetConfigKeyDescription(key string) string {
	descriptions := map[string]string{
		"logserverurl":     "Log API the Logger view fetches from (default: " + DefaultLogServerURL + ")",
		"tail":             "Number of recent entries requested per fetch (default: 500)",
		"fetchtimeout":     "Timeout for one log fetch, e.g. 10s (default: 30s)",
		"logfile":          "Append clawlog's own structured log to this file (JSON lines)",
		"skipversioncheck": "Disable automatic version update checks (true/false)",
		"loglevel":         "Logging level (debug/info/warn/error, default: info)",
		"telemetry":        "Enable error telemetry and crash reporting (true/false, default: true)",
		"serverhost":       "Host `clawlog serve` binds to (default: 127.0.0.1)",
		"serverport":       "Port `clawlog serve` listens on (default: 8765)",
		"logdir":           "Directory holding the MCP server log file",
		"corsorigin":       "Preferred CORS origin for `clawlog serve`",
	}
	return descriptions[key]
}

// GetUserFacingKeys returns the list of keys users should interact with
func GetUserFacingKeys() []string {
	return []string{
		"log-server-url",
		"tail",
		"fetch-timeout",
		"log-file",
		"skip-version-check",
		"log-level",
		"telemetry",
		"server-host",
		"server-port",
		"log-dir",
		"cors-origin",
	}
}

// NormalizeKey converts a user-facing key (e.g. "log-server-url") to its
// stored form ("logserverurl")
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "-", ""))
}

// Load reads the configuration from ~/.clawlog/config.yaml, then applies
// environment overrides and the optional clawlog.toml in the working directory
func Load() (*Config, error) {
	configPath := getConfigPath()
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	setDefaults()

	// Create config file if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := ensureConfigDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := viper.WriteConfig(); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{
		LogServerURL:     viper.GetString("logserverurl"),
		Tail:             viper.GetInt("tail"),
		FetchTimeout:     viper.GetDuration("fetchtimeout"),
		LogFile:          viper.GetString("logfile"),
		SkipVersionCheck: viper.GetBool("skipversioncheck"),
		LogLevel:         viper.GetString("loglevel"),
		Server: ServerConfig{
			Host:       viper.GetString("serverhost"),
			Port:       viper.GetInt("serverport"),
			LogDir:     viper.GetString("logdir"),
			CORSOrigin: viper.GetString("corsorigin"),
		},
	}

	// Handle telemetry setting - use pointer to distinguish unset from false
	if viper.IsSet("telemetry") {
		telemetryEnabled := viper.GetBool("telemetry")
		config.TelemetryEnabled = &telemetryEnabled
	}

	applyEnvOverrides(config)

	if err := applyProjectFile(config, ProjectFileName); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("logserverurl", DefaultLogServerURL)
	viper.SetDefault("tail", DefaultTail)
	viper.SetDefault("fetchtimeout", DefaultFetchTimeout)
	viper.SetDefault("serverhost", DefaultServerHost)
	viper.SetDefault("serverport", DefaultServerPort)
	viper.SetDefault("logdir", defaultLogDir())
}

// IsTelemetryEnabled returns whether telemetry is enabled.
// Returns true by default if not explicitly set (opt-out model).
func (c *Config) IsTelemetryEnabled() bool {
	// Check environment variable first (highest priority)
	if envVal := os.Getenv("CLAWLOG_TELEMETRY_DISABLED"); envVal != "" {
		return envVal != "true" && envVal != "1"
	}

	if c.TelemetryEnabled != nil {
		return *c.TelemetryEnabled
	}

	return true
}

// Save writes the current configuration to disk
func Save(config *Config) error {
	viper.Set("logserverurl", config.LogServerURL)
	viper.Set("tail", config.Tail)
	viper.Set("fetchtimeout", config.FetchTimeout.String())
	viper.Set("logfile", config.LogFile)
	viper.Set("skipversioncheck", config.SkipVersionCheck)
	viper.Set("loglevel", config.LogLevel)
	viper.Set("serverhost", config.Server.Host)
	viper.Set("serverport", config.Server.Port)
	viper.Set("logdir", config.Server.LogDir)
	viper.Set("corsorigin", config.Server.CORSOrigin)

	if config.TelemetryEnabled != nil {
		viper.Set("telemetry", *config.TelemetryEnabled)
	}

	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SetLogServerURL sets and saves the remote log source
func (c *Config) SetLogServerURL(url string) error {
	c.LogServerURL = url
	return Save(c)
}

// getConfigPath returns the full path to the config file
func getConfigPath() string {
	if path := os.Getenv("CLAWLOG_CONFIG_PATH"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DefaultConfigDir, DefaultConfigFile)
	}

	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)
}

// ConfigPath returns the path of the config file in use
func ConfigPath() string {
	return getConfigPath()
}

// Context key for storing config
type contextKey string

const configContextKey contextKey = "config"

// GetConfigFromContext retrieves the config from the command context
func GetConfigFromContext(cmd *cobra.Command) (*Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("no context available")
	}

	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not found in context")
	}

	return cfg, nil
}

// GetContextKey returns the context key used for storing config
func GetContextKey() interface{} {
	return configContextKey
}

// ensureConfigDir ensures the config directory exists
func ensureConfigDir() error {
	configDir := filepath.Dir(getConfigPath())
	return os.MkdirAll(configDir, 0755) //nolint:gosec // Config directory needs standard permissions
}

// GetLogLevel returns the configured log level as slog.Level
// Defaults to Info if not set or invalid
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetTail returns the configured tail, falling back to the default for
// non-positive values
func (c *Config) GetTail() int {
	if c.Tail <= 0 {
		return DefaultTail
	}
	return c.Tail
}
