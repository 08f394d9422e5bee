// Package tui provides the interactive confirmation prompt shown
// before a run deletes anything.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wexinc/shears/internal/manifest"
	"github.com/wexinc/shears/internal/tui/styles"
)

// Summary describes the run the user is being asked to approve.
type Summary struct {
	// ProjectDir is the directory the run will operate on.
	ProjectDir string
	// ManifestPath is the component manifest driving the run.
	ManifestPath string
	// Entries are the removal instructions, in manifest order.
	Entries []manifest.Entry
	// SkipDeps reports whether the dependency phase is disabled.
	SkipDeps bool
	// Scanner is the unused-dependency scanner that will run.
	Scanner string
	// Manager is the dependency manager that will edit the manifest.
	Manager string
}

// ConfirmModel is the full-screen prompt listing what a run will
// remove, with the safe choice focused by default.
type ConfirmModel struct {
	summary Summary
	preview viewport.Model

	// focusRemove tracks which button has focus. Cancel starts
	// focused so a stray enter does not delete anything.
	focusRemove bool
	decided     bool
	accepted    bool

	width  int
	height int
}

// NewConfirmModel creates the confirmation prompt for a run.
func NewConfirmModel(summary Summary) *ConfirmModel {
	vp := viewport.New(74, previewHeight(len(summary.Entries)))
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderColor).
		Padding(0, 1)
	vp.SetContent(strings.Join(previewLines(summary.Entries), "\n"))

	return &ConfirmModel{
		summary: summary,
		preview: vp,
	}
}

// previewHeight sizes the preview to its content, within bounds.
func previewHeight(entries int) int {
	if entries < 1 {
		entries = 1
	}
	if entries > 10 {
		entries = 10
	}
	return entries
}

// previewLines renders one line per manifest entry.
func previewLines(entries []manifest.Entry) []string {
	if len(entries) == 0 {
		return []string{styles.MutedTextStyle.Render("the manifest lists nothing to remove")}
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Kind == manifest.EntryFiles {
			lines = append(lines, fmt.Sprintf("%s %s: %s",
				styles.StatusPending, entry.Name, strings.Join(entry.Files, ", ")))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s (entire directory)",
			styles.StatusPending, entry.Name))
	}
	return lines
}

// Decided reports whether the user has answered.
func (m *ConfirmModel) Decided() bool {
	return m.decided
}

// Accepted reports whether the user approved the removal.
func (m *ConfirmModel) Accepted() bool {
	return m.accepted
}

// Init implements tea.Model.
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.preview.Width = msg.Width - 6
		return m, nil

	case tea.KeyMsg:
		switch strings.ToLower(msg.String()) {
		case "y":
			return m.decide(true)
		case "n", "q", "esc", "ctrl+c":
			return m.decide(false)
		case "enter":
			return m.decide(m.focusRemove)
		case "tab", "left", "right":
			m.focusRemove = !m.focusRemove
			return m, nil
		}
	}

	// Everything else scrolls the preview.
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

// decide records the answer and quits the program.
func (m *ConfirmModel) decide(accepted bool) (tea.Model, tea.Cmd) {
	m.decided = true
	m.accepted = accepted
	return m, tea.Quit
}

// View implements tea.Model.
func (m *ConfirmModel) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Foreground(styles.Foreground).
		Background(styles.Error).
		Bold(true).
		Padding(0, 1)
	b.WriteString(title.Render("Remove components?"))
	b.WriteString("\n\n")

	label := styles.MutedTextStyle
	b.WriteString(fmt.Sprintf("%s %s\n", label.Render("Project: "), m.summary.ProjectDir))
	b.WriteString(fmt.Sprintf("%s %s\n\n", label.Render("Manifest:"), m.summary.ManifestPath))

	b.WriteString(m.preview.View())
	b.WriteString("\n\n")

	b.WriteString(m.depsLine())
	b.WriteString("\n\n")

	removeStyle := styles.ButtonDangerUnfocusedStyle
	cancelStyle := styles.ButtonSecondaryStyle
	if m.focusRemove {
		removeStyle = styles.ButtonDangerStyle
		cancelStyle = styles.ButtonSecondaryUnfocusedStyle
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		removeStyle.Render("[Y] Remove"),
		"  ",
		cancelStyle.Render("[N] Cancel"))
	b.WriteString(buttons)
	b.WriteString("\n\n")

	b.WriteString(styles.HelpStyle.Render("y/n decide • tab switch • enter confirm • esc cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(styles.Error).
		Padding(1, 2)
	return box.Render(b.String())
}

// depsLine summarizes what happens after the filesystem phase.
func (m *ConfirmModel) depsLine() string {
	if m.summary.SkipDeps {
		return styles.MutedTextStyle.Render("Dependency pruning: skipped")
	}
	return fmt.Sprintf("Dependency pruning: scan with %s, remove with %s",
		m.summary.Scanner, m.summary.Manager)
}

// Confirm shows the prompt and blocks until the user decides. It
// returns true only when the user approved the removal; quitting the
// program any other way counts as a refusal.
func Confirm(summary Summary) (bool, error) {
	program := tea.NewProgram(NewConfirmModel(summary), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return false, err
	}

	model, ok := final.(*ConfirmModel)
	if !ok {
		return false, nil
	}
	return model.Decided() && model.Accepted(), nil
}
