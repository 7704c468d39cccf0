// Package bugsnag reports crashes and unexpected errors of the clawlog CLI.
// Reporting is off unless an API key was compiled in and telemetry is enabled.
package bugsnag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/bugsnag/bugsnag-go/v2"

	"github.com/openclaw-molt/clawlog/internal/version"
	"github.com/openclaw-molt/clawlog/pkg/config"
)

// Build-time variables that can be set via ldflags
// Example: go build -ldflags "-X github.com/openclaw-molt/clawlog/pkg/bugsnag.BugsnagAPIKey=your-key"
var (
	// BugsnagAPIKey is injected at compile time. BUGSNAG_API_KEY overrides it;
	// with neither set reporting is off.
	BugsnagAPIKey = ""

	DefaultReleaseStage = "prod"
)

// maxRecentLogs bounds the log lines attached to a report
const maxRecentLogs = 50

var (
	mu          sync.Mutex
	initialized bool
	enabled     bool
	recentLogs  func() []string
)

// Initialize configures the Bugsnag client. cfg may be nil when the config
// could not be loaded; reporting then follows the compiled-in key alone.
// Calling it more than once has no effect.
func Initialize(cfg *config.Config) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return nil
	}
	initialized = true

	if cfg != nil && !cfg.IsTelemetryEnabled() {
		return nil
	}

	apiKey := BugsnagAPIKey
	if envKey := os.Getenv("BUGSNAG_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil
	}

	releaseStage := os.Getenv("CLAWLOG_RELEASE_STAGE")
	if releaseStage == "" {
		releaseStage = DefaultReleaseStage
	}

	bugsnag.Configure(bugsnag.Configuration{
		APIKey:              apiKey,
		ReleaseStage:        releaseStage,
		AppVersion:          version.Version,
		AppType:             "cli",
		ProjectPackages:     []string{"main", "github.com/openclaw-molt/clawlog*"},
		NotifyReleaseStages: []string{"prod", "dev"},
		PanicHandler:        func() {}, // Panics are reported by NotifyOnPanic
		Synchronous:         true,      // The CLI exits right after reporting
		AutoCaptureSessions: false,
	})

	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("system", "os_type", runtime.GOOS)
		event.MetaData.Add("system", "os_arch", runtime.GOARCH)
		event.MetaData.Add("system", "go_version", runtime.Version())
		if cfg != nil {
			event.MetaData.Add("clawlog", "log_source_configured", cfg.LogServerURL != "")
			event.MetaData.Add("clawlog", "tail", cfg.GetTail())
		}
		if lines := snapshotRecentLogs(); len(lines) > 0 {
			event.MetaData.Add("clawlog", "recent_logs", strings.Join(lines, "\n"))
		}
		return nil
	})

	enabled = true
	return nil
}

// IsEnabled reports whether error reporting is active
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// AttachRecentLogs registers a source of formatted log lines. The last
// lines it returns are added to every report.
func AttachRecentLogs(fn func() []string) {
	mu.Lock()
	defer mu.Unlock()
	recentLogs = fn
}

func snapshotRecentLogs() []string {
	mu.Lock()
	fn := recentLogs
	mu.Unlock()

	if fn == nil {
		return nil
	}
	lines := fn()
	if len(lines) > maxRecentLogs {
		lines = lines[len(lines)-maxRecentLogs:]
	}
	return lines
}

// NotifyError reports an unexpected error. User cancellations are skipped.
func NotifyError(ctx context.Context, err error) {
	if err == nil || !IsEnabled() || IsUserCancellation(err) {
		return
	}
	_ = bugsnag.Notify(err, ctx, bugsnag.SeverityError)
}

// SetCommandContext tags reports with the command being run
func SetCommandContext(command string, args []string) {
	if !IsEnabled() {
		return
	}
	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("command", "name", command)
		event.MetaData.Add("command", "arg_count", len(args))
		return nil
	})
}

// NotifyOnPanic reports a panic and re-panics. Use with defer at the top of main.
func NotifyOnPanic(ctx context.Context) {
	if r := recover(); r != nil {
		NotifyError(ctx, PanicError(r))
		panic(r)
	}
}

// PanicError converts a recovered value into an error
func PanicError(r any) error {
	switch x := r.(type) {
	case string:
		return fmt.Errorf("panic: %s", x)
	case error:
		return fmt.Errorf("panic: %w", x)
	default:
		return fmt.Errorf("panic: %v", r)
	}
}

// IsUserCancellation identifies errors caused by the user stopping the CLI
func IsUserCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "context canceled") ||
		strings.Contains(errStr, "cancelled by user")
}
