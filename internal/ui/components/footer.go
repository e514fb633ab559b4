package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

// Shortcut represents a keyboard shortcut
type Shortcut struct {
	Key         string
	Description string
}

// Footer represents a footer component
type Footer struct {
	Shortcuts []Shortcut
	Metadata  string // Optional metadata to display on the right
	Width     int
}

// NewFooter creates a new footer
func NewFooter(shortcuts []Shortcut) *Footer {
	return &Footer{Shortcuts: shortcuts}
}

// WithMetadata adds metadata to the footer
func (f *Footer) WithMetadata(metadata string) *Footer {
	f.Metadata = metadata
	return f
}

// WithWidth sets the footer width
func (f *Footer) WithWidth(width int) *Footer {
	f.Width = width
	return f
}

// Render renders the footer
func (f *Footer) Render() string {
	styles := theme.Current()

	parts := make([]string, 0, len(f.Shortcuts))
	for _, shortcut := range f.Shortcuts {
		parts = append(parts, styles.ShortcutKey.Render(shortcut.Key)+" "+styles.ShortcutDesc.Render(shortcut.Description))
	}
	shortcuts := strings.Join(parts, " • ")

	if f.Metadata == "" {
		return shortcuts
	}

	meta := styles.Metadata.Render(f.Metadata)
	if f.Width > 0 {
		spacing := f.Width - lipgloss.Width(shortcuts) - lipgloss.Width(meta)
		if spacing > 0 {
			return shortcuts + strings.Repeat(" ", spacing) + meta
		}
	}
	return shortcuts + " " + meta
}

// Common footer shortcuts for reuse
var (
	ShortcutQuit    = Shortcut{Key: "q", Description: "quit"}
	ShortcutBack    = Shortcut{Key: "esc", Description: "back"}
	ShortcutCancel  = Shortcut{Key: "esc", Description: "cancel"}
	ShortcutTab     = Shortcut{Key: "tab", Description: "next field"}
	ShortcutConfirm = Shortcut{Key: "ctrl+s", Description: "confirm"}
	ShortcutLearn   = Shortcut{Key: "l", Description: "learn microagent"}
	ShortcutScroll  = Shortcut{Key: "↑↓", Description: "scroll"}
	ShortcutCopy    = Shortcut{Key: "c", Description: "copy"}
)

// HomeFooter creates the footer for the home screen
func HomeFooter(metadata string, width int) string {
	return NewFooter([]Shortcut{ShortcutLearn, ShortcutQuit}).
		WithMetadata(metadata).WithWidth(width).Render()
}

// ModalFooter creates the footer shown under the learn modal
func ModalFooter(loading bool, width int) string {
	shortcuts := []Shortcut{ShortcutTab, ShortcutConfirm, ShortcutCancel}
	metadata := ""
	if loading {
		metadata = "learning..."
	}
	return NewFooter(shortcuts).WithMetadata(metadata).WithWidth(width).Render()
}

// ResultFooter creates the footer for the result view
func ResultFooter(metadata string, width int) string {
	return NewFooter([]Shortcut{ShortcutScroll, ShortcutCopy, ShortcutBack, ShortcutQuit}).
		WithMetadata(metadata).WithWidth(width).Render()
}

// HelpText renders help text in a consistent format
func HelpText(parts ...string) string {
	return theme.Current().FormHelp.Render(strings.Join(parts, " • "))
}

// StatusLine renders a status line with icon
func StatusLine(icon, message string, statusType string) string {
	styles := theme.Current()

	var style lipgloss.Style
	switch statusType {
	case "success":
		style = styles.StatusOk
	case "error":
		style = styles.StatusError
	case "warning":
		style = styles.StatusWarning
	case "info":
		style = styles.StatusInfo
	default:
		style = lipgloss.NewStyle().Foreground(styles.ColorText)
	}

	return style.Render(icon + " " + message)
}
