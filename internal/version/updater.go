package version

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// BinaryDownloadURL is where release archives download from.
const BinaryDownloadURL = "https://github.com/%s/releases/download/%s/%s"

// Release archives follow goreleaser's default naming.
var (
	releaseOS   = map[string]string{"darwin": "Darwin", "linux": "Linux", "windows": "Windows"}
	releaseArch = map[string]string{"amd64": "x86_64", "386": "i386"}
)

// Updater downloads and installs release binaries.
type Updater struct {
	HTTPClient *http.Client
	Repo       string
	// BaseURL overrides the download endpoint. Tests point it at a
	// local server.
	BaseURL string
}

// NewUpdater creates an updater against the shears repository.
func NewUpdater() *Updater {
	return &Updater{
		HTTPClient: http.DefaultClient,
		Repo:       GitHubRepo,
	}
}

// GetArchiveName returns the release archive name for the current
// platform, matching goreleaser output.
func GetArchiveName(version string) string {
	osName := runtime.GOOS
	if mapped, ok := releaseOS[osName]; ok {
		osName = mapped
	}
	archName := runtime.GOARCH
	if mapped, ok := releaseArch[archName]; ok {
		archName = mapped
	}

	ext := "tar.gz"
	if runtime.GOOS == "windows" {
		ext = "zip"
	}

	return fmt.Sprintf("shears_%s_%s_%s.%s",
		strings.TrimPrefix(version, "v"), osName, archName, ext)
}

// downloadURL is the endpoint Download fetches the archive from.
func (u *Updater) downloadURL(version, archiveName string) string {
	if u.BaseURL != "" {
		return u.BaseURL + "/" + archiveName
	}
	return fmt.Sprintf(BinaryDownloadURL, u.Repo, version, archiveName)
}

// Download downloads the release archive for the given version into
// destDir and returns the archive path.
func (u *Updater) Download(ctx context.Context, version, destDir string) (string, error) {
	archiveName := GetArchiveName(version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.downloadURL(version, archiveName), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := u.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	destPath := filepath.Join(destDir, archiveName)
	if err := writeStream(destPath, resp.Body, 0644); err != nil {
		return "", err
	}
	return destPath, nil
}

// writeStream copies r into a new file at path.
func writeStream(path string, r io.Reader, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	return f.Close()
}

// isReleaseBinary reports whether an archive member is the shears binary.
func isReleaseBinary(name string) bool {
	base := filepath.Base(name)
	return base == "shears" || base == "shears.exe"
}

// Extract pulls the shears binary out of the archive into destDir and
// returns its path.
func Extract(archivePath, destDir string) (string, error) {
	if strings.HasSuffix(archivePath, ".zip") {
		return extractZip(archivePath, destDir)
	}
	return extractTarGz(archivePath, destDir)
}

// extractTarGz extracts the binary from a .tar.gz archive.
func extractTarGz(archivePath, destDir string) (string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return "", err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if header.Typeflag != tar.TypeReg || !isReleaseBinary(header.Name) {
			continue
		}

		dest := filepath.Join(destDir, filepath.Base(header.Name))
		if err := writeStream(dest, tr, 0755); err != nil {
			return "", err
		}
		return dest, nil
	}

	return "", fmt.Errorf("shears binary not found in archive")
}

// extractZip extracts the binary from a .zip archive.
func extractZip(archivePath, destDir string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, f := range r.File {
		if !isReleaseBinary(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		dest := filepath.Join(destDir, filepath.Base(f.Name))
		err = writeStream(dest, rc, 0755)
		rc.Close()
		if err != nil {
			return "", err
		}
		return dest, nil
	}

	return "", fmt.Errorf("shears binary not found in archive")
}

// InstallBinary installs the binary over installPath. The new binary
// lands next to the old one first, then replaces it with a rename, so
// a failed copy never leaves a half-written executable.
func InstallBinary(binaryPath, installPath string) error {
	src, err := os.Open(binaryPath)
	if err != nil {
		return fmt.Errorf("failed to read binary: %w", err)
	}
	defer src.Close()

	staging, err := os.CreateTemp(filepath.Dir(installPath), ".shears-install-*")
	if err != nil {
		return fmt.Errorf("failed to stage binary (may need sudo): %w", err)
	}
	stagingPath := staging.Name()

	_, copyErr := io.Copy(staging, src)
	closeErr := staging.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(stagingPath)
		if copyErr != nil {
			return fmt.Errorf("failed to stage binary: %w", copyErr)
		}
		return fmt.Errorf("failed to stage binary: %w", closeErr)
	}

	if err := os.Chmod(stagingPath, 0755); err != nil {
		os.Remove(stagingPath)
		return fmt.Errorf("failed to stage binary: %w", err)
	}
	if err := os.Rename(stagingPath, installPath); err != nil {
		os.Remove(stagingPath)
		return fmt.Errorf("failed to install binary (may need sudo): %w", err)
	}
	return nil
}

// GetCurrentExecutable returns the path to the running shears binary,
// with symlinks resolved.
func GetCurrentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}
