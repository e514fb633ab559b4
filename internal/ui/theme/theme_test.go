package theme

import (
	"strings"
	"testing"
)

func TestAllThemesValidate(t *testing.T) {
	seen := map[string]bool{}
	for _, th := range All() {
		if err := th.Validate(); err != nil {
			t.Errorf("theme %s: %v", th.Name, err)
		}
		if seen[th.Name] {
			t.Errorf("duplicate theme name %s", th.Name)
		}
		seen[th.Name] = true
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"ocean-blue", "ocean-blue"},
		{"monochrome", "monochrome"},
		{"does-not-exist", Default.Name},
		{"", Default.Name},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByName(tt.name).Name; got != tt.want {
				t.Errorf("ByName(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(All()) {
		t.Fatalf("Names() returned %d names, want %d", len(names), len(All()))
	}
	if names[0] != Default.Name {
		t.Errorf("first theme = %s, want default %s", names[0], Default.Name)
	}
}

func TestManager_SetThemeUpdatesSharedStyles(t *testing.T) {
	m := NewManager(ClaudeWarm)
	styles := m.Styles()
	m.SetTheme(OceanBlue)

	if styles.ColorPrimary != "#4A90E2" {
		t.Errorf("held styles not updated: primary = %s", styles.ColorPrimary)
	}
	if m.Current().Name != "ocean-blue" {
		t.Errorf("Current() = %s, want ocean-blue", m.Current().Name)
	}
}

func TestSetGlobal(t *testing.T) {
	t.Cleanup(func() { SetGlobal(Default.Name) })

	SetGlobal("forest-green")
	if Global().Current().Name != "forest-green" {
		t.Errorf("global theme = %s, want forest-green", Global().Current().Name)
	}
	SetGlobal("unknown")
	if Global().Current().Name != Default.Name {
		t.Errorf("unknown theme should fall back to %s", Default.Name)
	}
}

func TestRenderSeparator(t *testing.T) {
	m := NewManager(Monochrome)
	if got := m.RenderSeparator(5); !strings.Contains(got, "─────") {
		t.Errorf("RenderSeparator(5) = %q", got)
	}
	if got := m.RenderSeparator(0); strings.Count(got, "─") != 60 {
		t.Errorf("RenderSeparator(0) should default to 60 columns")
	}
}
