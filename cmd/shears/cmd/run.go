package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/wexinc/shears/internal/app"
	"github.com/wexinc/shears/internal/config"
	"github.com/wexinc/shears/internal/errors"
	"github.com/wexinc/shears/internal/logging"
	"github.com/wexinc/shears/internal/manifest"
	"github.com/wexinc/shears/internal/project"
	"github.com/wexinc/shears/internal/report"
	"github.com/wexinc/shears/internal/tui"
	"github.com/wexinc/shears/internal/version"
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run [project-dir]",
	Short: "Remove retired components and prune unused dependencies",
	Long: `Remove the components listed in the component manifest, then scan for
dependencies nothing references anymore and drop them from
pyproject.toml.

The project directory defaults to the current directory. Unless --yes
or --dry-run is given, shears shows what it is about to remove and asks
for confirmation first.

Examples:
  shears run                      # Prune the current directory
  shears run ./backend            # Prune a specific project
  shears run --dry-run            # Report only, delete nothing
  shears run --skip-deps          # Filesystem pass only
  shears run --yes --output json  # Non-interactive, machine-readable`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// The root command delegates to run, so both carry the run flags.
	registerRunFlags(rootCmd)
	registerRunFlags(runCmd)
}

// registerRunFlags defines the run flags on a command.
func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("manifest", "m", "", "Path to the component manifest (default: component_config.yml, then scripts/component_config.yml)")
	cmd.Flags().String("components-dir", "", "Directory manifest entries resolve against (default: the project directory)")
	cmd.Flags().BoolP("dry-run", "n", false, "Report what would be removed without deleting anything")
	cmd.Flags().Bool("skip-deps", false, "Skip the dependency scan and removal phase")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringP("output", "o", "", "Summary format: text or json")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
}

// runRun drives a removal run end to end.
func runRun(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	skipDeps, _ := cmd.Flags().GetBool("skip-deps")
	yes, _ := cmd.Flags().GetBool("yes")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	projectDir, err := project.Resolve(arg)
	if err != nil {
		return err
	}
	if project.IsRiskyTarget(projectDir) {
		e := errors.New(errors.ErrConfig, fmt.Sprintf("refusing to prune %s", projectDir))
		e.Suggestion = "Point shears at a project checkout, not your home or root directory."
		return e
	}

	// Check for updates in the background (non-blocking).
	go checkUpdateBackground(cmd)

	cfg, err := loadConfig(projectDir)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg, skipDeps)
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLogging := initLogging(cmd, cfg, projectDir, verbose)
	defer closeLogging()

	manifestPath, found := cfg.ResolveManifestPath(projectDir)
	if !found {
		searched := config.DefaultManifestLocations
		if cfg.Manifest.Path != "" {
			searched = []string{cfg.Manifest.Path}
		}
		return errors.ManifestNotFound(searched)
	}
	man, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	describeProject(cmd, cfg, projectDir)

	if !yes && !dryRun {
		approved, err := confirmRun(cmd, cfg, projectDir, man)
		if err != nil {
			return err
		}
		if !approved {
			cmd.Println("Cancelled. Nothing was removed.")
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := app.NewRunner(cfg, man, projectDir)
	opts := &app.Options{
		DryRun:  dryRun,
		OnEvent: eventPrinter(cmd, verbose),
	}
	if verbose {
		opts.LogWriter = logging.Global().Writer(logging.LevelDebug)
	}
	runner.SetOptions(opts)

	rep, err := runner.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted. Deletions already performed are not rolled back.")
			renderReport(cmd, cfg, rep)
			logging.CloseGlobal()
			os.Exit(130)
		}
		return err
	}

	renderReport(cmd, cfg, rep)

	if !dryRun {
		if err := version.UpdateLastRun(projectDir, Version); err != nil {
			logging.Debug("failed to stamp version file", "error", err)
		}
	}

	return nil
}

// applyFlagOverrides copies set flags over the loaded configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, skipDeps bool) {
	if cmd.Flags().Changed("manifest") {
		path, _ := cmd.Flags().GetString("manifest")
		cfg.Manifest.Path = path
	}
	if cmd.Flags().Changed("components-dir") {
		dir, _ := cmd.Flags().GetString("components-dir")
		cfg.Components.Dir = dir
	}
	if cmd.Flags().Changed("output") {
		format, _ := cmd.Flags().GetString("output")
		cfg.Output.Format = config.OutputFormat(format)
	}
	if skipDeps {
		cfg.Deps.Skip = true
	}
}

// initLogging sets up the global file logger under .shears/logs and
// returns the close func for the caller to defer.
func initLogging(cmd *cobra.Command, cfg *config.Config, projectDir string, verbose bool) func() {
	level := levelFromString(cfg.Logging.Level)
	if verbose {
		level = logging.LevelDebug
	}

	logDir := cfg.Logging.Dir
	if logDir == "" {
		logDir = filepath.Join(projectDir, app.ShearsDir, "logs")
	} else if !filepath.IsAbs(logDir) {
		logDir = filepath.Join(projectDir, logDir)
	}

	logConfig := &logging.Config{
		Level:       level,
		LogDir:      logDir,
		MaxLogFiles: cfg.Logging.MaxFiles,
		MaxLogAge:   cfg.Logging.MaxAge,
		Console:     false, // progress output owns the terminal
		JSONFormat:  cfg.Logging.JSON,
	}
	if err := logging.InitGlobal(logConfig); err != nil {
		// Non-fatal: warn but continue without file logging.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to initialize logging: %v\n", err)
		return func() {}
	}
	logging.Info("shears starting", "version", Version, "verbose", verbose)
	return func() { _ = logging.CloseGlobal() }
}

// levelFromString maps a config level name onto a logging level.
func levelFromString(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// describeProject logs what the target looks like and flags projects
// where the dependency phase cannot do anything.
func describeProject(cmd *cobra.Command, cfg *config.Config, projectDir string) {
	info, err := project.NewDetector().Detect(projectDir)
	if err != nil {
		return
	}

	logging.Info("project detected",
		"name", info.Name,
		"python", info.IsPython,
		"git", info.IsGitRepo,
		"markers", len(info.Markers))

	if !info.IsPython && !cfg.Deps.Skip {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: %s does not look like a Python project; the dependency phase may find nothing.\n", projectDir)
	}
}

// confirmRun asks the operator to approve the removal. Without a
// terminal there is nobody to ask, so it refuses and points at --yes.
func confirmRun(cmd *cobra.Command, cfg *config.Config, projectDir string, man *manifest.Manifest) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		e := errors.New(errors.ErrConfig, "confirmation required")
		e.Suggestion = "Re-run with --yes to approve the removal non-interactively, or --dry-run to preview it."
		return false, e
	}

	return tui.Confirm(tui.Summary{
		ProjectDir:   projectDir,
		ManifestPath: man.Path,
		Entries:      man.Entries,
		SkipDeps:     cfg.Deps.Skip,
		Scanner:      cfg.Deps.Scanner,
		Manager:      cfg.Deps.Manager,
	})
}

// eventPrinter streams run progress to stderr, keeping stdout for the
// summary report.
func eventPrinter(cmd *cobra.Command, verbose bool) app.EventHandler {
	out := cmd.ErrOrStderr()
	return func(e app.Event) {
		switch e.Type {
		case app.EventRemovalStarted, app.EventScanStarted, app.EventScanCompleted:
			fmt.Fprintf(out, "%s\n", e.Message)
		case app.EventPathProcessed, app.EventDepProcessed:
			fmt.Fprintf(out, "  %s\n", e.Message)
		case app.EventWarning:
			fmt.Fprintf(out, "  ! %s\n", e.Message)
		case app.EventHooksStarted, app.EventHooksCompleted:
			if verbose {
				fmt.Fprintf(out, "%s\n", e.Message)
			}
		}
	}
}

// renderReport writes the summary in the configured format.
func renderReport(cmd *cobra.Command, cfg *config.Config, rep *report.Report) {
	if rep == nil {
		return
	}
	if cfg.Output.Format == config.OutputFormatJSON {
		if err := rep.RenderJSON(cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to render JSON report: %v\n", err)
		}
		return
	}
	rep.RenderText(cmd.OutOrStdout())
}

// loadConfig loads the shears configuration from the project directory.
func loadConfig(projectDir string) (*config.Config, error) {
	configPath := filepath.Join(projectDir, config.DefaultConfigPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Use default config if no config file exists.
		return config.NewConfig(), nil
	}

	loader := config.NewLoader()
	return loader.LoadConfig(configPath)
}

// checkUpdateBackground checks for a newer release without blocking
// the run. Failures are silent.
func checkUpdateBackground(cmd *cobra.Command) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Skip if we're in dev mode.
	if Version == "dev" {
		return
	}

	checker := version.NewChecker()
	release, err := checker.CheckForUpdate(ctx, Version)
	if err != nil {
		return
	}

	if release != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n💡 Update available: %s → %s (run 'shears update')\n\n",
			Version, release.TagName)
	}
}
