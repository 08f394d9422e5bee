package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wexinc/shears/internal/deptool"
)

// toolsCmd represents the tools command.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List dependency tools and their availability",
	Long: `List the registered unused-dependency scanners and dependency
managers, and whether each one is installed on this system.

The run command needs one available scanner and, unless --skip-deps or
a dry run, one available manager.`,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

// runTools is the main entry point for the tools command.
func runTools(cmd *cobra.Command, args []string) error {
	cmd.Println("Scanners:")
	for _, s := range deptool.DefaultRegistry.Scanners() {
		cmd.Printf("  %s %-8s %s\n", availabilityMark(s.IsAvailable()), s.Name(), s.Description())
	}

	cmd.Println("")
	cmd.Println("Managers:")
	for _, m := range deptool.DefaultRegistry.Managers() {
		cmd.Printf("  %s %-8s %s\n", availabilityMark(m.IsAvailable()), m.Name(), m.Description())
	}

	return nil
}

// availabilityMark renders whether a tool can run on this system.
func availabilityMark(available bool) string {
	if available {
		return "✓"
	}
	return "✗"
}
