package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/ui/layout"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

// Severity defines the severity level of a banner
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// Banner is an inline notice with optional suggested actions.
type Banner struct {
	Title    string
	Message  string
	Actions  []string
	Severity Severity
	Width    int
}

// NewErrorBanner creates a new error banner
func NewErrorBanner(message string) *Banner {
	return &Banner{Title: "Error", Message: message, Severity: SeverityError}
}

// NewWarningBanner creates a warning banner
func NewWarningBanner(message string) *Banner {
	return &Banner{Title: "Warning", Message: message, Severity: SeverityWarning}
}

// WithActions adds suggested actions
func (b *Banner) WithActions(actions ...string) *Banner {
	b.Actions = actions
	return b
}

// WithWidth sets the width
func (b *Banner) WithWidth(width int) *Banner {
	b.Width = width
	return b
}

// Render renders the banner
func (b *Banner) Render() string {
	styles := theme.Current()

	border := styles.ColorSecondary
	titleStyle := styles.StatusInfo
	icon := "ℹ"
	switch b.Severity {
	case SeverityError:
		border, titleStyle, icon = styles.ColorError, styles.StatusError, "✗"
	case SeverityWarning:
		border, titleStyle, icon = styles.ColorWarning, styles.StatusWarning, "⚠"
	}

	bannerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, layout.SpacingSM)
	if b.Width > 0 {
		bannerStyle = bannerStyle.Width(b.Width - layout.SpacingSM*2 - 2)
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(icon+" "+b.Title) + "\n")
	content.WriteString(styles.RepoValue.Render(b.Message))

	if len(b.Actions) > 0 {
		content.WriteString("\n")
		for _, action := range b.Actions {
			content.WriteString("\n" + styles.ShortcutDesc.Render("  • "+action))
		}
	}

	return bannerStyle.Render(content.String())
}
