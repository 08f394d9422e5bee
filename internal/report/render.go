package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wexinc/shears/internal/deptool"
	"github.com/wexinc/shears/internal/remover"
	"github.com/wexinc/shears/internal/tui/styles"
)

// divider is the horizontal rule framing the text summary.
var divider = strings.Repeat("─", 60)

// RenderText writes the human-readable summary.
func (r *Report) RenderText(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	fmt.Fprintf(w, "Project: %s\n", r.ProjectDir)
	if r.ManifestPath != "" {
		fmt.Fprintf(w, "Manifest: %s\n", r.ManifestPath)
	}
	fmt.Fprintf(w, "Duration: %s\n", r.Duration().Round(time.Millisecond))

	if len(r.Removals) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, styles.SectionStyle.Render("Components"))
		for _, rem := range r.Removals {
			fmt.Fprintf(w, "  %s\n", renderRemoval(rem))
		}
	}

	if r.Scanner != "" {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, styles.SectionStyle.Render("Dependencies"))
		if r.Scan != nil && len(r.Scan.Unused) == 0 {
			fmt.Fprintf(w, "  %s no unused dependencies reported by %s\n", styles.StatusRemoved, r.Scanner)
		}
		for _, res := range r.DepRemovals {
			fmt.Fprintf(w, "  %s\n", renderDepRemoval(res))
		}
		if r.Scan != nil && len(r.DepRemovals) == 0 && len(r.Scan.Unused) > 0 {
			for _, name := range r.Scan.Unused {
				fmt.Fprintf(w, "  %s %s (not removed)\n", styles.StatusPending, name)
			}
		}
	}

	if r.HasWarnings() {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, styles.SectionStyle.Render(fmt.Sprintf("Warnings (%d)", len(r.Warnings))))
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", styles.StatusWarning, styles.WarningTextStyle.Render(warning))
		}
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, r.renderStatus())
	fmt.Fprintln(w, divider)
}

// renderStatus builds the final status line.
func (r *Report) renderStatus() string {
	switch r.Status() {
	case StatusDryRun:
		return fmt.Sprintf("Status: %s dry run, would remove %d directories, %d files",
			styles.StatusPending, r.DirsPending(), r.FilesPending())
	case StatusCompletedWithWarnings:
		return fmt.Sprintf("Status: %s removed %d directories, %d files, %d dependencies (%d warnings)",
			styles.StatusWarning, r.DirsRemoved(), r.FilesRemoved(), r.DepsRemoved(), len(r.Warnings))
	default:
		return fmt.Sprintf("Status: %s removed %d directories, %d files, %d dependencies",
			styles.StatusRemoved, r.DirsRemoved(), r.FilesRemoved(), r.DepsRemoved())
	}
}

// renderRemoval builds one filesystem action line.
func renderRemoval(rem remover.Removal) string {
	switch rem.Outcome {
	case remover.OutcomeRemoved:
		return fmt.Sprintf("%s %s", styles.StatusRemoved, rem.Path)
	case remover.OutcomeWouldRemove:
		return fmt.Sprintf("%s %s (would remove)", styles.StatusPending, rem.Path)
	case remover.OutcomeNotFound:
		return fmt.Sprintf("%s %s", styles.StatusWarning, styles.MutedTextStyle.Render(rem.Reason))
	default:
		return fmt.Sprintf("%s %s", styles.StatusFailed, styles.ErrorTextStyle.Render(rem.Reason))
	}
}

// renderDepRemoval builds one dependency action line.
func renderDepRemoval(res deptool.RemoveResult) string {
	if res.Removed {
		if res.Fallback != "" {
			return fmt.Sprintf("%s %s (%s)", styles.StatusRemoved, res.Name, res.Fallback)
		}
		return fmt.Sprintf("%s %s", styles.StatusRemoved, res.Name)
	}
	return fmt.Sprintf("%s %s: %s", styles.StatusFailed, res.Name, styles.ErrorTextStyle.Render(res.Error))
}

// RenderJSON writes the machine-readable summary.
func (r *Report) RenderJSON(w io.Writer) error {
	out := struct {
		*Report
		Status   Status `json:"status"`
		Duration string `json:"duration"`
	}{
		Report:   r,
		Status:   r.Status(),
		Duration: r.Duration().Round(time.Millisecond).String(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
