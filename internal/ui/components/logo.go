package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

const logoASCII = `
  ┌┬┐┬  ┌─┐┌─┐┬─┐┌┐┌
  │││├─ ├┤ ├─┤├┬┘│││
  ┴ ┴┴─┘└─┘┴ ┴┴└─┘└┘`

// RenderLogo renders the logo with optional repository info below it
func RenderLogo(repoInfo string) string {
	styles := theme.Current()

	logo := lipgloss.NewStyle().Foreground(styles.ColorPrimary).Render(logoASCII)
	if repoInfo != "" {
		return logo + "\n" + styles.Metadata.Render(repoInfo)
	}
	return logo
}

// RenderBranding renders consistent branding text
func RenderBranding() string {
	styles := theme.Current()
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorPrimary).Render("mlearn")
	return title + " - " + styles.ShortcutDesc.Render("Learn repository microagents")
}

// RenderHeader renders a consistent header with title and optional subtitle
func RenderHeader(title, subtitle string) string {
	styles := theme.Current()

	header := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorPrimary).Render(title)
	if subtitle != "" {
		header += "\n" + styles.ShortcutDesc.Render(subtitle)
	}
	return header
}

// RenderDivider renders a horizontal divider
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(theme.Current().ColorBorder).
		Render(strings.Repeat("─", width))
}
