package domain

import (
	"fmt"
	"regexp"
)

// Theme represents a visual theme for the TUI.
type Theme struct {
	Name        string
	Description string
	Colors      ThemeColors
	Backgrounds ThemeBackgrounds
}

// ThemeColors defines the foreground palette for a theme.
type ThemeColors struct {
	// Accent for focused fields, primary buttons and the selected branch
	Primary   string
	Secondary string

	Success string
	Warning string
	Error   string

	// Placeholders, help text and disabled controls
	Muted  string
	Border string
	Text   string
}

// ThemeBackgrounds defines background colors for modal surfaces.
type ThemeBackgrounds struct {
	FormInput   string
	FormFocused string
	Modal       string
	ErrorModal  string
	Dropdown    string
}

// hexColorRegex matches valid hex color codes (#RGB or #RRGGBB).
var hexColorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// Validate checks if the theme has valid color values.
func (t Theme) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("theme name cannot be empty")
	}

	colors := []struct{ name, value string }{
		{"Primary", t.Colors.Primary},
		{"Secondary", t.Colors.Secondary},
		{"Success", t.Colors.Success},
		{"Warning", t.Colors.Warning},
		{"Error", t.Colors.Error},
		{"Muted", t.Colors.Muted},
		{"Border", t.Colors.Border},
		{"Text", t.Colors.Text},
		{"FormInput", t.Backgrounds.FormInput},
		{"FormFocused", t.Backgrounds.FormFocused},
		{"Modal", t.Backgrounds.Modal},
		{"ErrorModal", t.Backgrounds.ErrorModal},
		{"Dropdown", t.Backgrounds.Dropdown},
	}

	for _, c := range colors {
		if !hexColorRegex.MatchString(c.value) {
			return fmt.Errorf("invalid hex color for %s: %s", c.name, c.value)
		}
	}

	return nil
}
