package components

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yourusername/mlearn/internal/domain"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func readyDropdown(t *testing.T, names ...string) BranchDropdown {
	t.Helper()
	d := NewBranchDropdown()
	d.SetBranches(domain.MustBranches(names...))
	d.Focus()
	return d
}

func TestBranchDropdown_States(t *testing.T) {
	d := NewBranchDropdown()
	if d.State() != BranchNoRepository {
		t.Fatalf("initial state = %s, want no-repository", d.State())
	}
	if !strings.Contains(d.View(), "Select a repository first") {
		t.Errorf("no-repository view = %q", d.View())
	}

	if cmd := d.SetLoading(); cmd == nil {
		t.Error("SetLoading() should return a spinner tick")
	}
	if d.State() != BranchLoading || !strings.Contains(d.View(), "Loading branches") {
		t.Errorf("loading state = %s, view = %q", d.State(), d.View())
	}

	d.SetError(errors.New("gh: not found"))
	if d.State() != BranchError || !strings.Contains(d.View(), "gh: not found") {
		t.Errorf("error state = %s, view = %q", d.State(), d.View())
	}

	d.SetBranches(domain.MustBranches("main", "dev"))
	if d.State() != BranchReady || d.Err() != nil {
		t.Errorf("ready state = %s, err = %v", d.State(), d.Err())
	}
	if len(d.Filtered()) != 2 {
		t.Errorf("Filtered() = %d options, want 2", len(d.Filtered()))
	}
}

func TestBranchDropdown_IgnoresKeysUnlessReadyAndFocused(t *testing.T) {
	d := NewBranchDropdown()
	d.Focus()
	d.SetLoading()
	d, _, ev := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if ev.Kind != DropdownNoEvent {
		t.Errorf("loading dropdown emitted %v", ev.Kind)
	}

	d.SetBranches(domain.MustBranches("main"))
	d.Blur()
	_, _, ev = d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if ev.Kind != DropdownNoEvent {
		t.Errorf("blurred dropdown emitted %v", ev.Kind)
	}
}

func TestBranchDropdown_SelectWithEnter(t *testing.T) {
	d := readyDropdown(t, "dev", "main", "qa")

	d, _, _ = d.Update(tea.KeyMsg{Type: tea.KeyDown})
	d, _, ev := d.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if ev.Kind != DropdownSelected || ev.Branch != "main" {
		t.Fatalf("event = %+v, want selected main", ev)
	}
	if d.Value() != "main" {
		t.Errorf("input = %q, want main", d.Value())
	}
	if len(d.Filtered()) != 3 {
		t.Error("selection should not narrow the option list")
	}
}

func TestBranchDropdown_FuzzyFilter(t *testing.T) {
	d := readyDropdown(t, "main", "develop", "feature/login", "release")

	for _, r := range "flog" {
		d, _, _ = d.Update(runes(string(r)))
	}

	got := domain.BranchNames(d.Filtered())
	if len(got) != 1 || got[0] != "feature/login" {
		t.Fatalf("filtered = %v, want [feature/login]", got)
	}

	_, _, ev := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if ev.Kind != DropdownSelected || ev.Branch != "feature/login" {
		t.Errorf("event = %+v, want selected feature/login", ev)
	}
}

func TestBranchDropdown_EnterWithNoMatches(t *testing.T) {
	d := readyDropdown(t, "main")
	d, _, _ = d.Update(runes("zzz"))
	if len(d.Filtered()) != 0 {
		t.Fatalf("filtered = %v, want none", domain.BranchNames(d.Filtered()))
	}
	if _, _, ev := d.Update(tea.KeyMsg{Type: tea.KeyEnter}); ev.Kind != DropdownNoEvent {
		t.Errorf("enter with no matches emitted %v", ev.Kind)
	}
}

func TestBranchDropdown_Clear(t *testing.T) {
	tests := []struct {
		name  string
		clear func(d BranchDropdown) (BranchDropdown, DropdownEvent)
	}{
		{
			name: "ctrl+u",
			clear: func(d BranchDropdown) (BranchDropdown, DropdownEvent) {
				d, _, ev := d.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
				return d, ev
			},
		},
		{
			name: "backspace until empty",
			clear: func(d BranchDropdown) (BranchDropdown, DropdownEvent) {
				var ev DropdownEvent
				for i := 0; i < len("main"); i++ {
					d, _, ev = d.Update(tea.KeyMsg{Type: tea.KeyBackspace})
				}
				return d, ev
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := readyDropdown(t, "main", "dev")
			d.SetSelected("main")

			d, ev := tt.clear(d)
			if ev.Kind != DropdownCleared {
				t.Fatalf("event = %v, want cleared", ev.Kind)
			}
			if d.Value() != "" {
				t.Errorf("input = %q, want empty", d.Value())
			}
			if len(d.Filtered()) != 2 {
				t.Error("clearing should show every branch again")
			}
		})
	}
}

func TestBranchDropdown_PartialBackspaceDoesNotClear(t *testing.T) {
	d := readyDropdown(t, "main")
	d.SetSelected("main")
	_, _, ev := d.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if ev.Kind != DropdownNoEvent {
		t.Errorf("event = %v, want none while text remains", ev.Kind)
	}
}

func TestBranchDropdown_BlurRestoresSelection(t *testing.T) {
	d := readyDropdown(t, "main", "dev")
	d.SetSelected("dev")
	d, _, _ = d.Update(runes("x"))
	d.Blur()
	if d.Value() != "dev" {
		t.Errorf("input after blur = %q, want dev", d.Value())
	}
}

func TestBranchDropdown_RefreshWhileFiltering(t *testing.T) {
	d := readyDropdown(t, "main", "feature/login")
	for _, r := range "fe" {
		d, _, _ = d.Update(runes(string(r)))
	}

	d.SetBranches(domain.MustBranches("main", "feature/login", "feature/signup"))
	d.SetSelected("main")

	if d.Value() != "fe" {
		t.Errorf("input after refresh = %q, want fe", d.Value())
	}
	got := domain.BranchNames(d.Filtered())
	if len(got) != 2 || !strings.HasPrefix(got[0], "feature/") || !strings.HasPrefix(got[1], "feature/") {
		t.Errorf("filtered after refresh = %v, want the two feature branches", got)
	}

	_, _, ev := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if ev.Kind != DropdownSelected || !strings.HasPrefix(ev.Branch, "feature/") {
		t.Errorf("event = %+v, want a feature branch selected", ev)
	}
}

func TestBranchDropdown_RefreshWhileBlurredShowsSelection(t *testing.T) {
	d := readyDropdown(t, "main", "dev")
	d.Blur()
	d.SetBranches(domain.MustBranches("main", "dev", "qa"))
	d.SetSelected("dev")
	if d.Value() != "dev" || len(d.Filtered()) != 3 {
		t.Errorf("value = %q, filtered = %v", d.Value(), domain.BranchNames(d.Filtered()))
	}
}

func TestBranchDropdown_ViewMarksSelection(t *testing.T) {
	d := readyDropdown(t, "main", "dev")
	d.SetSelected("dev")
	view := d.View()
	if !strings.Contains(view, "dev ✓") {
		t.Errorf("view should mark the selected branch: %q", view)
	}
	if !strings.Contains(view, "main") {
		t.Errorf("view should list other branches: %q", view)
	}
}
