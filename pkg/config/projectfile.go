package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ProjectFileName is read from the working directory when present
const ProjectFileName = "clawlog.toml"

// ProjectFile is the layout of clawlog.toml:
//
//	logs_api_url = "http://127.0.0.1:8765/api/logs"
//	tail = 200
//
//	[server]
//	port = 9000
//	log_glob = "/var/log/mcp/**/*.log"
type ProjectFile struct {
	LogsAPIURL string       `toml:"logs_api_url"`
	Tail       int          `toml:"tail"`
	Server     ServerConfig `toml:"server"`
}

// LoadProjectFile decodes path. A missing file returns (nil, nil).
func LoadProjectFile(path string) (*ProjectFile, error) {
	content, err := os.ReadFile(path) //nolint:gosec // Path is a fixed name in the working directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pf ProjectFile
	if err := toml.Unmarshal(content, &pf); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("invalid %s at line %d, column %d: %s", path, row, col, decodeErr.Error())
		}
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &pf, nil
}

// applyProjectFile overlays the non-zero values of the project file on c
func applyProjectFile(c *Config, path string) error {
	pf, err := LoadProjectFile(path)
	if err != nil || pf == nil {
		return err
	}

	if pf.LogsAPIURL != "" {
		c.LogServerURL = pf.LogsAPIURL
	}
	if pf.Tail > 0 {
		c.Tail = pf.Tail
	}

	s := pf.Server
	if s.Host != "" {
		c.Server.Host = s.Host
	}
	if s.Port > 0 {
		c.Server.Port = s.Port
	}
	if s.LogDir != "" {
		c.Server.LogDir = s.LogDir
	}
	if s.LogFile != "" {
		c.Server.LogFile = s.LogFile
	}
	if s.LogGlob != "" {
		c.Server.LogGlob = s.LogGlob
	}
	if s.CORSOrigin != "" {
		c.Server.CORSOrigin = s.CORSOrigin
	}
	return nil
}
