// Package cmd provides the CLI commands for shears.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register all dependency tool plugins.
	_ "github.com/wexinc/shears/internal/deps"
	"github.com/wexinc/shears/internal/errors"
)

// Build identity, overwritten by main.go from its ldflags values
// before Execute runs.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shears [project-dir]",
	Short: "Prune retired components and unused dependencies",
	Long: `Shears removes retired component directories and files from a project,
as declared in a component manifest, then finds and removes the
dependencies nothing references anymore.

The manifest (component_config.yml) lists components to retire. Bare
names remove whole directories; the files form removes individual files
and keeps the directory. After the filesystem pass, an unused-dependency
scanner (deptry) reports what is no longer imported and a dependency
manager (uv) drops it from pyproject.toml.

Running shears with no subcommand is the same as "shears run".`,
	Args: cobra.MaximumNArgs(1),
	// When shears is called with no subcommand, run the removal flow
	// (same as "shears run").
	RunE: runRun,

	// Errors carry their own suggestions; usage spam would bury them.
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	// The variables are final by now, main.go has stamped them.
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
	rootCmd.SetVersionTemplate("shears {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		var shearsErr *errors.ShearsError
		if stderrors.As(err, &shearsErr) {
			fmt.Fprint(os.Stderr, shearsErr.Format())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// Root exposes the root command to tests.
func Root() *cobra.Command {
	return rootCmd
}
