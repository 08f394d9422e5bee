// Package version provides build information, release checking, and
// self-update support for shears.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/wexinc/shears/internal/errors"
)

// GitHubRepo is the GitHub repository for shears.
const GitHubRepo = "wexinc/shears"

// ReleaseAPIURL is the GitHub API URL for the latest release.
const ReleaseAPIURL = "https://api.github.com/repos/%s/releases/latest"

// Info contains version information about the running binary.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	GoVer   string `json:"go_version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// NewInfo creates an Info from the build variables.
func NewInfo(version, commit, date string) *Info {
	return &Info{
		Version: version,
		Commit:  commit,
		Date:    date,
		GoVer:   runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// String returns a one-line version string.
func (i *Info) String() string {
	return fmt.Sprintf("shears %s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}

// FullString returns the multi-line form with build details.
func (i *Info) FullString() string {
	return fmt.Sprintf(`shears %s
  Commit:   %s
  Built:    %s
  Go:       %s
  OS/Arch:  %s/%s`, i.Version, i.Commit, i.Date, i.GoVer, i.OS, i.Arch)
}

// Release is the slice of the GitHub release payload shears reads.
type Release struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	HTMLURL     string `json:"html_url"`
}

// Checker checks for new releases.
type Checker struct {
	HTTPClient *http.Client
	Repo       string
	// BaseURL overrides the GitHub API endpoint. Tests point it at a
	// local server.
	BaseURL string
}

// NewChecker creates a release checker against the shears repository.
func NewChecker() *Checker {
	return &Checker{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Repo:       GitHubRepo,
	}
}

// releaseURL is the endpoint GetLatestRelease queries.
func (c *Checker) releaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf(ReleaseAPIURL, c.Repo)
}

// GetLatestRelease asks the GitHub API for the newest release.
func (c *Checker) GetLatestRelease(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.releaseURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "shears-version-checker")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Keep a slice of the body for the error; rate limit answers
		// from GitHub explain themselves there.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}
	return &release, nil
}

// CheckForUpdate compares the current version with the latest release.
// Returns the release if an update is available, nil when current.
func (c *Checker) CheckForUpdate(ctx context.Context, currentVersion string) (*Release, error) {
	release, err := c.GetLatestRelease(ctx)
	if err != nil {
		return nil, errors.UpdateCheckFailed(err)
	}

	if CompareVersions(release.TagName, currentVersion) > 0 {
		return release, nil
	}
	return nil, nil
}

// CompareVersions orders two semantic version strings, tolerating a
// leading v and ignoring pre-release suffixes. It returns 1 when a is
// newer, -1 when b is, and 0 when they match.
func CompareVersions(a, b string) int {
	as, bs := segments(a), segments(b)
	for i := range as {
		switch {
		case as[i] > bs[i]:
			return 1
		case as[i] < bs[i]:
			return -1
		}
	}
	return 0
}

// segments splits a version into major, minor, patch numbers. Anything
// unparseable counts as zero.
func segments(v string) [3]int {
	v = strings.TrimPrefix(v, "v")
	if bare, _, found := strings.Cut(v, "-"); found {
		v = bare
	}

	var out [3]int
	for i, part := range strings.SplitN(v, ".", 3) {
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		out[i] = n
	}
	return out
}

// ProjectVersion records which shears version touched a project.
type ProjectVersion struct {
	ShearsVersion string    `json:"shears_version"`
	InitializedAt time.Time `json:"initialized_at"`
	LastRunAt     time.Time `json:"last_run_at,omitempty"`
}

// VersionFilePath is the path to the version file within .shears.
const VersionFilePath = ".shears/version.json"

// LoadProjectVersion loads the project version from .shears/version.json.
func LoadProjectVersion(projectDir string) (*ProjectVersion, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, VersionFilePath))
	if err != nil {
		return nil, err
	}

	var pv ProjectVersion
	if err := json.Unmarshal(data, &pv); err != nil {
		return nil, fmt.Errorf("failed to parse version.json: %w", err)
	}
	return &pv, nil
}

// SaveProjectVersion saves the project version to .shears/version.json.
func SaveProjectVersion(projectDir string, pv *ProjectVersion) error {
	data, err := json.MarshalIndent(pv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal version.json: %w", err)
	}
	return os.WriteFile(filepath.Join(projectDir, VersionFilePath), data, 0644)
}

// UpdateLastRun stamps the version file after a run, creating it on
// first use.
func UpdateLastRun(projectDir, version string) error {
	pv, err := LoadProjectVersion(projectDir)
	if err != nil {
		pv = &ProjectVersion{
			ShearsVersion: version,
			InitializedAt: time.Now(),
		}
	}
	pv.LastRunAt = time.Now()
	pv.ShearsVersion = version
	return SaveProjectVersion(projectDir, pv)
}
