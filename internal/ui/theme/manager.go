// Package theme holds the color themes and the lipgloss styles derived
// from them. Components read styles through Styles() so a theme change
// applies everywhere on the next render.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/domain"
)

// Manager holds the current theme and the styles built from it.
type Manager struct {
	current domain.Theme
	styles  *Styles
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorError     lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorBorder    lipgloss.Color
	ColorText      lipgloss.Color

	// Header styles
	Header       lipgloss.Style
	SectionTitle lipgloss.Style
	RepoLabel    lipgloss.Style
	RepoValue    lipgloss.Style

	// Footer styles
	Footer       lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Metadata     lipgloss.Style

	StatusOk      lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style

	Separator lipgloss.Style
	Loading   lipgloss.Style

	// Form component styles
	FormLabel          lipgloss.Style
	FormInput          lipgloss.Style
	FormInputFocused   lipgloss.Style
	FormHelp           lipgloss.Style
	FormButton         lipgloss.Style
	FormButtonInactive lipgloss.Style
	FormButtonDisabled lipgloss.Style

	// Branch dropdown styles
	Dropdown         lipgloss.Style
	OptionSelected   lipgloss.Style
	OptionNormal     lipgloss.Style
	OptionCursor     lipgloss.Style
	Placeholder      lipgloss.Style
	PlaceholderError lipgloss.Style

	// Modal shells
	Modal      lipgloss.Style
	ErrorModal lipgloss.Style
	ModalTitle lipgloss.Style
}

// NewManager creates a manager for the given theme.
func NewManager(t domain.Theme) *Manager {
	m := &Manager{current: t, styles: &Styles{}}
	m.regenerate()
	return m
}

// Current returns the current theme.
func (m *Manager) Current() domain.Theme {
	return m.current
}

// SetTheme changes the current theme and rebuilds all styles.
func (m *Manager) SetTheme(t domain.Theme) {
	m.current = t
	m.regenerate()
}

// Styles returns the current theme styles.
func (m *Manager) Styles() *Styles {
	return m.styles
}

// regenerate rebuilds every style in place so that held *Styles pointers
// observe the new theme.
func (m *Manager) regenerate() {
	c := m.current.Colors
	bg := m.current.Backgrounds
	s := m.styles

	s.ColorPrimary = lipgloss.Color(c.Primary)
	s.ColorSecondary = lipgloss.Color(c.Secondary)
	s.ColorSuccess = lipgloss.Color(c.Success)
	s.ColorWarning = lipgloss.Color(c.Warning)
	s.ColorError = lipgloss.Color(c.Error)
	s.ColorMuted = lipgloss.Color(c.Muted)
	s.ColorBorder = lipgloss.Color(c.Border)
	s.ColorText = lipgloss.Color(c.Text)

	s.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorBorder)

	s.SectionTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorSecondary).
		MarginTop(1)

	s.RepoLabel = lipgloss.NewStyle().
		Foreground(s.ColorMuted).
		Width(12)

	s.RepoValue = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.Footer = lipgloss.NewStyle().
		Foreground(s.ColorMuted).
		MarginTop(1).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.ColorBorder).
		PaddingTop(1)

	s.ShortcutKey = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.ShortcutDesc = lipgloss.NewStyle().
		Foreground(s.ColorMuted)

	s.Metadata = lipgloss.NewStyle().
		Foreground(s.ColorMuted).
		Italic(true)

	s.StatusOk = lipgloss.NewStyle().Foreground(s.ColorSuccess).Bold(true)
	s.StatusWarning = lipgloss.NewStyle().Foreground(s.ColorWarning).Bold(true)
	s.StatusError = lipgloss.NewStyle().Foreground(s.ColorError).Bold(true)
	s.StatusInfo = lipgloss.NewStyle().Foreground(s.ColorPrimary).Bold(true)

	s.Separator = lipgloss.NewStyle().
		Foreground(s.ColorBorder).
		MarginTop(1).
		MarginBottom(1)

	s.Loading = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.FormLabel = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)

	s.FormInput = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Background(lipgloss.Color(bg.FormInput)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorBorder).
		Padding(0, 1)

	s.FormInputFocused = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Background(lipgloss.Color(bg.FormFocused)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1)

	s.FormHelp = lipgloss.NewStyle().
		Foreground(s.ColorMuted).
		Italic(true)

	s.FormButton = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Background(s.ColorPrimary).
		Padding(0, 2).
		Bold(true)

	s.FormButtonInactive = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Background(lipgloss.Color(bg.FormInput)).
		Padding(0, 2)

	s.FormButtonDisabled = lipgloss.NewStyle().
		Foreground(s.ColorMuted).
		Background(lipgloss.Color(bg.FormInput)).
		Faint(true).
		Padding(0, 2)

	s.Dropdown = lipgloss.NewStyle().
		Background(lipgloss.Color(bg.Dropdown)).
		Padding(0, 1)

	s.OptionSelected = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.OptionNormal = lipgloss.NewStyle().
		Foreground(s.ColorMuted)

	s.OptionCursor = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.Placeholder = lipgloss.NewStyle().
		Foreground(s.ColorMuted).
		Italic(true)

	s.PlaceholderError = lipgloss.NewStyle().
		Foreground(s.ColorError)

	s.Modal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Background(lipgloss.Color(bg.Modal)).
		Padding(1, 2)

	s.ErrorModal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorError).
		Background(lipgloss.Color(bg.ErrorModal)).
		Padding(1, 2)

	s.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary).
		MarginBottom(1)
}

// RenderSeparator returns a styled horizontal separator.
func (m *Manager) RenderSeparator(width int) string {
	if width <= 0 {
		width = 60
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}
