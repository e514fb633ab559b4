package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/domain"
	"github.com/yourusername/mlearn/internal/ui/components"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

func prefix(style lipgloss.Style, label string) string {
	return style.Bold(true).Render("[" + label + "]")
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", prefix(theme.Current().StatusOk, "SUCCESS"), message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("%s %s\n", prefix(theme.Current().StatusError, "ERROR"), message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("%s %s\n", prefix(theme.Current().StatusInfo, "INFO"), message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("%s %s\n", prefix(theme.Current().StatusWarning, "WARNING"), message)
}

// PrintSubtle prints a muted/subtle message
func PrintSubtle(message string) {
	fmt.Println(theme.Current().Metadata.Render(message))
}

// FormatValue highlights a value in output
func FormatValue(value string) string {
	return lipgloss.NewStyle().
		Foreground(theme.Current().ColorPrimary).
		Bold(true).
		Render(value)
}

// FormatLabel formats a label
func FormatLabel(label string) string {
	return theme.Current().Metadata.Render(label)
}

// WriteBranches lists branches one per line, marking the current one.
func WriteBranches(w io.Writer, branches []domain.Branch, current string) {
	styles := theme.Current()
	for _, b := range branches {
		marker := "  "
		name := b.Name()
		if name == current {
			marker = styles.StatusOk.Render("* ")
			name = FormatValue(name)
		}
		line := marker + name
		if b.IsRemote() {
			line += FormatLabel(" (remote)")
		}
		fmt.Fprintln(w, line)
	}
}

// WriteHistory prints recorded learn requests, newest first.
func WriteHistory(w io.Writer, entries []domain.HistoryEntry) {
	styles := theme.Current()
	if len(entries) == 0 {
		fmt.Fprintln(w, FormatLabel("No microagents learned yet."))
		return
	}

	for _, e := range entries {
		status := components.PadRight(string(e.Status), 7)
		switch e.Status {
		case domain.LearnDone:
			status = styles.StatusOk.Render(status)
		case domain.LearnFailed:
			status = styles.StatusError.Render(status)
		default:
			status = styles.StatusWarning.Render(status)
		}

		branch := e.Branch
		if branch == "" {
			branch = "-"
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			FormatLabel(e.StartedAt.Format("2006-01-02 15:04")),
			status,
			FormatValue(e.RepoName)+FormatLabel("@"+branch),
			components.TruncateText(e.Query, 60),
		)

		var detail []string
		if e.OutputPath != "" {
			detail = append(detail, e.OutputPath)
		}
		if e.Error != "" {
			detail = append(detail, styles.StatusError.Render(e.Error))
		}
		if len(detail) > 0 {
			fmt.Fprintln(w, "    "+strings.Join(detail, "  "))
		}
	}
}
