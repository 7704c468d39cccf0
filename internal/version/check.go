package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
)

const (
	githubReleasesAPI = "https://api.github.com/repos/openclaw-molt/clawlog/releases/latest"

	// Relative to the home directory
	versionCacheFile = ".clawlog/version_cache.json"

	// Only check once per day
	cacheDuration = 24 * time.Hour
)

// VersionCache stores the cached version check result
type VersionCache struct {
	LatestVersion string    `json:"latestVersion"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// GitHubRelease is the part of a GitHub release response we read
type GitHubRelease struct {
	TagName string `json:"tag_name"` // e.g., "v0.3.1"
	HTMLURL string `json:"html_url"`
}

// Checker looks up the latest release, caching the answer on disk
type Checker struct {
	Current   string
	APIURL    string
	CachePath string
	Client    *http.Client
	Now       func() time.Time
}

// NewChecker returns a checker for the running binary
func NewChecker() *Checker {
	cachePath := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		cachePath = filepath.Join(homeDir, versionCacheFile)
	}
	return &Checker{
		Current:   Version,
		APIURL:    githubReleasesAPI,
		CachePath: cachePath,
		Client:    &http.Client{Timeout: 3 * time.Second},
		Now:       time.Now,
	}
}

// CheckForUpdate reports the latest release and whether it is newer than the
// running version. Dev builds never report an update.
func (c *Checker) CheckForUpdate(ctx context.Context) (latestVersion string, updateAvailable bool, err error) {
	if c.Current == "dev" {
		return "", false, nil
	}

	if cached, ok := c.cachedVersion(); ok {
		return compareVersions(c.Current, cached)
	}

	latest, err := c.fetchLatestVersion(ctx)
	if err != nil {
		return "", false, fmt.Errorf("version check failed: %w", err)
	}
	c.cacheVersion(latest)

	return compareVersions(c.Current, latest)
}

// compareVersions compares current with latest, ignoring a leading "v"
func compareVersions(current, latestVersion string) (string, bool, error) {
	currentVer, err := version.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return latestVersion, false, fmt.Errorf("invalid current version: %w", err)
	}

	latestVer, err := version.NewVersion(strings.TrimPrefix(latestVersion, "v"))
	if err != nil {
		return latestVersion, false, fmt.Errorf("invalid latest version: %w", err)
	}

	return latestVersion, latestVer.GreaterThan(currentVer), nil
}

func (c *Checker) fetchLatestVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return "", err
	}
	// GitHub API requires a User-Agent
	req.Header.Set("User-Agent", "clawlog-cli")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck // Deferred close, error not actionable

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var release GitHubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", err
	}
	return release.TagName, nil
}

func (c *Checker) cachedVersion() (string, bool) {
	if c.CachePath == "" {
		return "", false
	}

	data, err := os.ReadFile(c.CachePath)
	if err != nil {
		return "", false
	}

	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return "", false
	}
	if c.Now().Sub(cache.CheckedAt) > cacheDuration {
		return "", false
	}
	return cache.LatestVersion, true
}

// cacheVersion writes the result; failures only cost another lookup tomorrow
func (c *Checker) cacheVersion(latestVersion string) {
	if c.CachePath == "" {
		return
	}

	//nolint:errcheck,gosec // Best effort directory creation, error not actionable
	os.MkdirAll(filepath.Dir(c.CachePath), 0755)

	data, err := json.Marshal(VersionCache{LatestVersion: latestVersion, CheckedAt: c.Now()})
	if err != nil {
		return
	}

	//nolint:errcheck,gosec // Best effort cache write, error not actionable
	os.WriteFile(c.CachePath, data, 0644)
}

// UpdateNotice returns the text printed when a newer release exists
func UpdateNotice(latestVersion, current string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nA new version of clawlog is available: %s (you have %s)\n", latestVersion, current)
	b.WriteString("Update with:\n")
	b.WriteString("  go install github.com/openclaw-molt/clawlog/cmd/clawlog@latest\n")
	b.WriteString("  or download: https://github.com/openclaw-molt/clawlog/releases/latest\n\n")
	b.WriteString("To disable these notifications: clawlog config set skip-version-check true\n")
	return b.String()
}

// PrintUpdateNotification prints an update notice to stderr when one is
// available. A failed lookup is returned so the caller can record it.
func PrintUpdateNotification(ctx context.Context, skipVersionCheck bool) error {
	if skipVersionCheck {
		return nil
	}

	latestVersion, updateAvailable, err := NewChecker().CheckForUpdate(ctx)
	if err != nil {
		return err
	}
	if updateAvailable {
		fmt.Fprint(os.Stderr, UpdateNotice(latestVersion, Version))
	}
	return nil
}
