package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultLogServerURL = "http://127.0.0.1:8765/api/logs"
	DefaultTail         = 500
	DefaultFetchTimeout = 30 * time.Second
	DefaultServerHost   = "127.0.0.1"
	DefaultServerPort   = 8765
)

// Environment variables understood alongside the config file. The CLAWD_*
// names are shared with the MCP server so one shell setup serves both.
const (
	EnvLogsAPIURL = "CLAWLOG_LOGS_API_URL"
	EnvServerHost = "CLAWD_LOG_SERVER_HOST"
	EnvServerPort = "CLAWD_LOG_SERVER_PORT"
	EnvCORSOrigin = "CLAWD_LOG_CORS_ORIGIN"
	EnvLogDir     = "CLAWD_LOG_DIR"
)

// applyEnvOverrides lets environment variables win over the config file
func applyEnvOverrides(c *Config) {
	c.LogServerURL = getEnvOrDefault(EnvLogsAPIURL, c.LogServerURL)
	c.Server.Host = getEnvOrDefault(EnvServerHost, c.Server.Host)
	c.Server.CORSOrigin = getEnvOrDefault(EnvCORSOrigin, c.Server.CORSOrigin)
	c.Server.LogDir = getEnvOrDefault(EnvLogDir, c.Server.LogDir)

	if val := os.Getenv(EnvServerPort); val != "" {
		if port, err := strconv.Atoi(val); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
}

// defaultLogDir is where the MCP server writes openclaw-molt-mcp.log
func defaultLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "logs")
	}
	return filepath.Join(homeDir, ".openclaw-molt-mcp", "logs")
}

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
