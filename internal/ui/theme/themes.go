package theme

import "github.com/yourusername/mlearn/internal/domain"

// Available theme presets for the TUI.
var (
	// ClaudeWarm is the default theme with warm orange-rust tones.
	ClaudeWarm = domain.Theme{
		Name:        "claude-warm",
		Description: "Professional warm theme with orange-rust accents (default)",
		Colors: domain.ThemeColors{
			Primary:   "#C15F3C",
			Secondary: "#A14A2F",
			Success:   "#7A9A6E",
			Warning:   "#D4945A",
			Error:     "#C16B6B",
			Muted:     "#B1ADA1",
			Border:    "#3A3631",
			Text:      "#E8E6E3",
		},
		Backgrounds: domain.ThemeBackgrounds{
			FormInput:   "#2F2A1F",
			FormFocused: "#3A2F1F",
			Modal:       "#1F2937",
			ErrorModal:  "#1A1A1A",
			Dropdown:    "#1A1A1A",
		},
	}

	// OceanBlue is a calm blue theme.
	OceanBlue = domain.Theme{
		Name:        "ocean-blue",
		Description: "Cool blue theme for focus and reduced eye strain",
		Colors: domain.ThemeColors{
			Primary:   "#4A90E2",
			Secondary: "#357ABD",
			Success:   "#6EA06E",
			Warning:   "#E2A04A",
			Error:     "#E24A4A",
			Muted:     "#A1B1C1",
			Border:    "#2A3641",
			Text:      "#E3E8ED",
		},
		Backgrounds: domain.ThemeBackgrounds{
			FormInput:   "#1F2A37",
			FormFocused: "#2A3641",
			Modal:       "#1A2532",
			ErrorModal:  "#1A2532",
			Dropdown:    "#151F2A",
		},
	}

	// ForestGreen is a natural green theme.
	ForestGreen = domain.Theme{
		Name:        "forest-green",
		Description: "Natural green theme for balanced, calming coding",
		Colors: domain.ThemeColors{
			Primary:   "#6B9A6B",
			Secondary: "#557A55",
			Success:   "#7AAA7A",
			Warning:   "#D4A45A",
			Error:     "#C17B6B",
			Muted:     "#A1B1A1",
			Border:    "#2F3A2F",
			Text:      "#E6EBE6",
		},
		Backgrounds: domain.ThemeBackgrounds{
			FormInput:   "#1F2A1F",
			FormFocused: "#2A352A",
			Modal:       "#1A241A",
			ErrorModal:  "#1A241A",
			Dropdown:    "#151E15",
		},
	}

	// Monochrome is a minimalist grayscale theme.
	Monochrome = domain.Theme{
		Name:        "monochrome",
		Description: "Minimalist grayscale theme for distraction-free coding",
		Colors: domain.ThemeColors{
			Primary:   "#888888",
			Secondary: "#666666",
			Success:   "#999999",
			Warning:   "#AAAAAA",
			Error:     "#777777",
			Muted:     "#666666",
			Border:    "#333333",
			Text:      "#EEEEEE",
		},
		Backgrounds: domain.ThemeBackgrounds{
			FormInput:   "#252525",
			FormFocused: "#2A2A2A",
			Modal:       "#1F1F1F",
			ErrorModal:  "#1F1F1F",
			Dropdown:    "#1A1A1A",
		},
	}
)

// Default is used when no theme or an unknown theme is configured.
var Default = ClaudeWarm

// All returns every available theme.
func All() []domain.Theme {
	return []domain.Theme{
		ClaudeWarm,
		OceanBlue,
		ForestGreen,
		Monochrome,
	}
}

// ByName returns a theme by its name, or the default theme if not found.
func ByName(name string) domain.Theme {
	for _, t := range All() {
		if t.Name == name {
			return t
		}
	}
	return Default
}

// Names returns the names of all themes.
func Names() []string {
	themes := All()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
