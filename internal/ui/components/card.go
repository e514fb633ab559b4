package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/ui/layout"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

// InfoItem represents a key-value pair in an info card
type InfoItem struct {
	Label string
	Value string
}

// InfoCard renders labelled values inside a bordered card.
type InfoCard struct {
	Title string
	Items []InfoItem
	Width int
}

// NewInfoCard creates a new info card
func NewInfoCard(title string, items []InfoItem) *InfoCard {
	return &InfoCard{Title: title, Items: items}
}

// Render renders the info card
func (c *InfoCard) Render() string {
	styles := theme.Current()

	lines := make([]string, 0, len(c.Items)+2)
	if c.Title != "" {
		lines = append(lines, styles.SectionTitle.UnsetMarginTop().Render(c.Title), "")
	}
	for _, item := range c.Items {
		value := item.Value
		if value == "" {
			value = styles.Placeholder.Render("none")
		} else {
			value = styles.RepoValue.Render(value)
		}
		lines = append(lines, styles.RepoLabel.Render(item.Label)+value)
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.ColorBorder).
		Padding(0, layout.SpacingSM)
	if c.Width > 0 {
		cardStyle = cardStyle.Width(c.Width - layout.SpacingSM*2 - 2)
	}

	return cardStyle.Render(strings.Join(lines, "\n"))
}
