package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wexinc/shears/internal/version"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show detailed version information for shears.

Prints the binary's version, commit, build date, and platform. Inside
an initialized project it also shows when the project was set up and
when shears last ran against it.

Examples:
  shears version           # Show detailed version info
  shears version --check   # Check for a newer release`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("check", "c", false, "Check for available updates")
}

// runVersion handles the version command.
func runVersion(cmd *cobra.Command, args []string) error {
	cmd.Println(version.NewInfo(Version, Commit, Date).FullString())
	printProjectStamp(cmd)

	if check, _ := cmd.Flags().GetBool("check"); check {
		return checkForUpdate(cmd)
	}
	return nil
}

// printProjectStamp shows the version file of the current project, if
// there is one. Outside a project it prints nothing.
func printProjectStamp(cmd *cobra.Command) {
	pv, err := version.LoadProjectVersion(".")
	if err != nil {
		return
	}

	cmd.Println("")
	cmd.Printf("Project initialized %s with shears %s\n",
		pv.InitializedAt.Format("2006-01-02"), pv.ShearsVersion)
	if !pv.LastRunAt.IsZero() {
		cmd.Printf("Last run %s\n", pv.LastRunAt.Format("2006-01-02 15:04"))
	}
}

// checkForUpdate asks GitHub for the latest release and reports how
// the running binary compares.
func checkForUpdate(cmd *cobra.Command) error {
	cmd.Println("\nChecking for updates...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	release, err := version.NewChecker().CheckForUpdate(ctx, Version)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if release == nil {
		cmd.Println("✓ shears is up to date.")
		return nil
	}

	cmd.Printf("\n📦 A new version is available: %s (current: %s)\n", release.TagName, Version)
	cmd.Printf("\nRun 'shears update' to install it.\nRelease notes: %s\n", release.HTMLURL)
	return nil
}
