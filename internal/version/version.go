// Package version holds build information and the release update check.
package version

// Set at build time with -ldflags "-X github.com/openclaw-molt/clawlog/internal/version.Version=v0.3.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return "clawlog " + Version + " (commit: " + Commit + ", built: " + BuildDate + ")"
}
