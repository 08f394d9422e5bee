package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wexinc/shears/internal/errors"
	"github.com/wexinc/shears/internal/version"
)

// updateCmd represents the update command.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update shears to the latest release",
	Long: `Update shears to the latest release.

Looks up the newest release on GitHub and, when the running binary is
older, downloads the release archive and swaps the binary in place.
Binaries under system directories (/usr/local/bin and the like) need
sudo to replace.

Examples:
  shears update          # Download and install the latest release
  shears update --check  # Only report whether a newer one exists`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolP("check", "c", false, "Only check for updates, don't install")
	updateCmd.Flags().BoolP("yes", "y", false, "Don't prompt for confirmation")
}

// runUpdate handles the update command.
func runUpdate(cmd *cobra.Command, args []string) error {
	cmd.Println("🔍 Looking up the latest release...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	release, err := version.NewChecker().CheckForUpdate(ctx, Version)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if release == nil {
		cmd.Printf("✓ Already up to date (%s).\n", Version)
		return nil
	}

	cmd.Printf("\n📦 %s is available (you have %s)\n", release.TagName, Version)

	if checkOnly, _ := cmd.Flags().GetBool("check"); checkOnly {
		cmd.Printf("\nRelease notes: %s\nRun 'shears update' to install.\n", release.HTMLURL)
		return nil
	}

	if skipPrompt, _ := cmd.Flags().GetBool("yes"); !skipPrompt && !confirmUpdate(cmd) {
		cmd.Println("Leaving the current version in place.")
		return nil
	}

	return installRelease(cmd, release.TagName)
}

// confirmUpdate asks on the terminal before the binary gets replaced.
func confirmUpdate(cmd *cobra.Command) bool {
	cmd.Print("\nInstall it now? [y/N]: ")
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// installRelease downloads the release archive for tag and swaps the
// running binary for the one inside it.
func installRelease(cmd *cobra.Command, tag string) error {
	// Resolve the install target before downloading anything. When the
	// running binary cannot be located there is nothing to update.
	target, err := version.GetCurrentExecutable()
	if err != nil {
		return fmt.Errorf("failed to locate the running binary: %w", err)
	}

	workDir, err := os.MkdirTemp("", "shears-update-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cmd.Printf("\n📥 Downloading %s...\n", tag)
	archivePath, err := version.NewUpdater().Download(ctx, tag, workDir)
	if err != nil {
		return fmt.Errorf("failed to download release archive: %w", err)
	}

	cmd.Println("📦 Unpacking the release archive...")
	binaryPath, err := version.Extract(archivePath, workDir)
	if err != nil {
		return fmt.Errorf("failed to unpack release archive: %w", err)
	}

	cmd.Printf("🔧 Installing to %s...\n", target)
	if err := version.InstallBinary(binaryPath, target); err != nil {
		return errors.InstallFailed(err, target)
	}

	cmd.Printf("\n✓ Updated to %s.\n", tag)
	return nil
}
