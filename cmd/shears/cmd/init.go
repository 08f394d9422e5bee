package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wexinc/shears/internal/app"
	"github.com/wexinc/shears/internal/config"
	"github.com/wexinc/shears/internal/project"
	"github.com/wexinc/shears/internal/version"
)

// starterManifest is the component manifest scaffold.
const starterManifest = `# Components to retire. Bare names remove the whole component
# directory; the files form removes individual files and keeps the
# directory.
components_to_remove: []
#  - chains
#  - memory:
#      files:
#        - legacy.py
`

// starterConfig is the configuration scaffold, showing the defaults.
const starterConfig = `# shears configuration. Every key is optional.

manifest:
  # path: component_config.yml

components:
  # Directory manifest entries resolve against, relative to the
  # project directory.
  # dir: src/backend/base/langflow/components

deps:
  scanner: deptry
  manager: uv
  skip: false

hooks:
  timeout: 1m
  pre_run: []
  post_run: []
  # pre_run:
  #   - name: clean-tree
  #     command: git diff --quiet

output:
  format: text
  save_runs: true
  max_runs: 20

logging:
  level: info
`

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init [project-dir]",
	Short: "Initialize shears in a project",
	Long: `Initialize shears in a project.

This command creates the .shears directory and starter files:
  - component_config.yml   Empty component manifest
  - .shears/config.yaml    Default configuration

Use --force to overwrite existing files.

Examples:
  shears init          # Initialize the current directory
  shears init ./proj   # Initialize a specific project
  shears init --force  # Overwrite existing scaffolds`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing files")
}

// runInit scaffolds a project for shears.
func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	projectDir, err := project.Resolve(arg)
	if err != nil {
		return err
	}

	if err := app.EnsureLayout(projectDir); err != nil {
		return fmt.Errorf("failed to create %s layout: %w", app.ShearsDir, err)
	}

	created, err := writeScaffold(filepath.Join(projectDir, config.DefaultManifestLocations[0]), starterManifest, force)
	if err != nil {
		return err
	}
	reportScaffold(cmd, config.DefaultManifestLocations[0], created)

	created, err = writeScaffold(filepath.Join(projectDir, config.DefaultConfigPath), starterConfig, force)
	if err != nil {
		return err
	}
	reportScaffold(cmd, config.DefaultConfigPath, created)

	pv := &version.ProjectVersion{
		ShearsVersion: Version,
		InitializedAt: time.Now(),
	}
	if err := version.SaveProjectVersion(projectDir, pv); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}

	cmd.Println("")
	cmd.Println("shears initialized successfully!")
	cmd.Println("List the components to retire in component_config.yml,")
	cmd.Println("then run 'shears run --dry-run' to preview the removal.")

	return nil
}

// writeScaffold writes a starter file, leaving existing files alone
// unless force is set. Returns whether the file was written.
func writeScaffold(path, content string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// reportScaffold prints what happened to one starter file.
func reportScaffold(cmd *cobra.Command, name string, created bool) {
	if created {
		cmd.Printf("Created %s\n", name)
		return
	}
	cmd.Printf("Kept existing %s\n", name)
}
