package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw-molt/clawlog/internal/logserver"
	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/pkg/config"
)

func TestServerConfig(t *testing.T) {
	base := config.ServerConfig{
		Host:       "127.0.0.1",
		Port:       8765,
		LogDir:     "/var/log/openclaw",
		LogGlob:    "/var/log/openclaw/**/*.log",
		CORSOrigin: "http://localhost:5180",
	}

	t.Run("config only", func(t *testing.T) {
		cfg := serverConfig(base, serveOptions{})
		assert.Equal(t, "127.0.0.1", cfg.Host)
		assert.Equal(t, 8765, cfg.Port)
		assert.Equal(t, "http://localhost:5180", cfg.CORSOrigin)
		assert.Equal(t, logserver.LogFileLocator{Glob: base.LogGlob, Dir: base.LogDir}, cfg.LogFile)
	})

	t.Run("file flag replaces the configured glob", func(t *testing.T) {
		cfg := serverConfig(base, serveOptions{host: "0.0.0.0", port: 9000, file: "./mcp.log", corsOrigin: "http://localhost:5181"})
		assert.Equal(t, "0.0.0.0", cfg.Host)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, "http://localhost:5181", cfg.CORSOrigin)
		assert.Equal(t, logserver.LogFileLocator{Path: "./mcp.log", Dir: base.LogDir}, cfg.LogFile)
	})

	t.Run("glob flag replaces a configured file", func(t *testing.T) {
		withFile := base
		withFile.LogFile = "/tmp/old.log"
		cfg := serverConfig(withFile, serveOptions{glob: "/tmp/*.log"})
		assert.Equal(t, logserver.LogFileLocator{Glob: "/tmp/*.log", Dir: base.LogDir}, cfg.LogFile)
	})
}

func TestPrintServeBanner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.log")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 2048), 0o600))

	srv := logserver.New(logserver.Config{Host: "127.0.0.1", Port: 8765})

	var out bytes.Buffer
	printServeBanner(&out, srv, logserver.LogFileLocator{Path: path}, false)

	assert.Equal(t,
		"Endpoint: http://127.0.0.1:8765/api/logs\n"+
			"Log file: "+path+"\n"+
			"Size: 2.0 KB\n",
		out.String())

	out.Reset()
	printServeBanner(&out, srv, logserver.LogFileLocator{Dir: dir}, false)
	assert.Contains(t, out.String(), "Size: not found")
}

func TestServeCommand_InvalidPort(t *testing.T) {
	isolateConfig(t)

	_, _, err := executeRoot(t, NewRootCmd(), "serve", "--port", "70000")
	uiErr, ok := ui.AsUIError(err)
	require.True(t, ok)
	assert.Equal(t, ui.ErrorTypeValidation, uiErr.Type)
}
