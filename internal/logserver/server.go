// Package logserver serves the tail of a JSON-lines log file over HTTP so the
// Logger view (or any browser dashboard) can merge it with its own events.
//
//	GET /api/logs?tail=500  ->  {"entries": [...], "source": "/path/to/file.log"}
package logserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/valyala/fastjson"
	"golang.org/x/sync/errgroup"
)

const (
	LogsPath    = "/api/logs"
	DefaultTail = 500
	MaxTail     = 10000

	// FallbackOrigin is used when neither the request origin nor the configured
	// origin is allowed
	FallbackOrigin = "http://localhost:5180"
)

// DefaultCORSOrigins are the dashboard dev servers
var DefaultCORSOrigins = []string{
	"http://localhost:5180",
	"http://127.0.0.1:5180",
	"http://localhost:5181",
	"http://127.0.0.1:5181",
}

// Config configures a Server
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string   // Preferred origin when the request's is not allowed
	AllowedOrigins []string // Default: DefaultCORSOrigins
	LogFile        LogFileLocator
}

// Server is the log API server
type Server struct {
	config Config
}

// New creates a log server
func New(cfg Config) *Server {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = DefaultCORSOrigins
	}
	return &Server{config: cfg}
}

// Addr returns host:port
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Handler returns the HTTP handler, gzip-compressing responses for clients
// that accept it
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(http.HandlerFunc(s.serveHTTP))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Log server listening", "addr", srv.Addr, "path", LogsPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("log server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("Log server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.setCORSHeaders(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.URL.Path != LogsPath {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tail := parseTail(r.URL.Query().Get("tail"))
	path := s.config.LogFile.Resolve()
	entries := TailFile(path, tail)

	slog.Debug("Serving log tail", "file", path, "tail", tail, "entries", len(entries))

	body := renderResponse(entries, path)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if !slices.Contains(s.config.AllowedOrigins, origin) {
		origin = s.config.CORSOrigin
		if !slices.Contains(s.config.AllowedOrigins, origin) {
			origin = FallbackOrigin
		}
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// parseTail clamps the tail parameter to [1, MaxTail]; invalid values fall
// back to DefaultTail
func parseTail(raw string) int {
	if raw == "" {
		return DefaultTail
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultTail
	}
	return max(1, min(MaxTail, n))
}

func renderResponse(entries [][]byte, source string) []byte {
	var a fastjson.Arena

	var buf bytes.Buffer
	buf.WriteString(`{"entries":[`)
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(e)
	}
	buf.WriteString(`],"source":`)
	buf.Write(a.NewString(source).MarshalTo(nil))
	buf.WriteByte('}')
	return buf.Bytes()
}
