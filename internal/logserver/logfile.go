package logserver

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultLogFileName is the file the MCP server writes inside its log directory
const DefaultLogFileName = "openclaw-molt-mcp.log"

// LogFileLocator decides which file to serve. It is resolved on every request
// so that a rotated or newly created file is picked up.
//
// Precedence: Path, then the most recently modified match of Glob, then
// DefaultLogFileName inside Dir.
type LogFileLocator struct {
	Path string
	Glob string // doublestar pattern, e.g. "/var/log/openclaw/**/*.log"
	Dir  string
}

// Resolve returns the file to serve. The file may not exist.
func (l LogFileLocator) Resolve() string {
	if l.Path != "" {
		return l.Path
	}
	if l.Glob != "" {
		if newest := newestMatch(l.Glob); newest != "" {
			return newest
		}
		return l.Glob
	}
	return filepath.Join(l.Dir, DefaultLogFileName)
}

func newestMatch(pattern string) string {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		slog.Warn("Invalid log file pattern", "pattern", pattern, "error", err)
		return ""
	}

	var newest string
	var newestInfo os.FileInfo
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
			newest, newestInfo = m, info
		}
	}
	return newest
}
