package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"github.com/yourusername/mlearn/internal/domain"
	"github.com/yourusername/mlearn/internal/ui/layout"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

// BranchSelectorState is the render state of the branch dropdown.
type BranchSelectorState int

const (
	BranchNoRepository BranchSelectorState = iota
	BranchLoading
	BranchError
	BranchReady
)

func (s BranchSelectorState) String() string {
	switch s {
	case BranchNoRepository:
		return "no-repository"
	case BranchLoading:
		return "loading"
	case BranchError:
		return "error"
	case BranchReady:
		return "ready"
	default:
		return "unknown"
	}
}

// DropdownEventKind tells the owner what a key press did to the selection.
type DropdownEventKind int

const (
	DropdownNoEvent DropdownEventKind = iota
	DropdownSelected
	DropdownCleared
)

// DropdownEvent is returned by BranchDropdown.Update.
type DropdownEvent struct {
	Kind   DropdownEventKind
	Branch string // set for DropdownSelected
}

// DropdownKeyMap defines the keys the dropdown reacts to while focused.
type DropdownKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Clear  key.Binding
}

// DefaultDropdownKeyMap returns the default dropdown bindings.
func DefaultDropdownKeyMap() DropdownKeyMap {
	return DropdownKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous branch"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next branch"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select branch"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear branch"),
		),
	}
}

// BranchDropdown is a filterable branch picker. It does not own the
// selection: the owner reacts to DropdownEvents and reports the current
// selection back through SetSelected.
type BranchDropdown struct {
	KeyMap DropdownKeyMap

	state    BranchSelectorState
	err      error
	branches []domain.Branch
	filtered []domain.Branch

	input     textinput.Model
	spinner   spinner.Model
	cursor    int
	selected  string
	filtering bool // input holds user typed filter text
	focused   bool
	width     int
}

// NewBranchDropdown creates a dropdown in the NoRepository state.
func NewBranchDropdown() BranchDropdown {
	ti := textinput.New()
	ti.Placeholder = "Select a branch"
	ti.Prompt = ""
	ti.CharLimit = 255

	s := spinner.New()
	s.Spinner = spinner.Dot

	d := BranchDropdown{
		KeyMap:  DefaultDropdownKeyMap(),
		input:   ti,
		spinner: s,
	}
	d.SetWidth(layout.ModalWidthMD - 10)
	return d
}

// State returns the current render state.
func (d BranchDropdown) State() BranchSelectorState { return d.state }

// Err returns the fetch error shown in the Error state.
func (d BranchDropdown) Err() error { return d.err }

// Branches returns the full branch list.
func (d BranchDropdown) Branches() []domain.Branch { return d.branches }

// Filtered returns the options matching the current filter.
func (d BranchDropdown) Filtered() []domain.Branch { return d.filtered }

// Value returns the text currently in the input.
func (d BranchDropdown) Value() string { return d.input.Value() }

// Focused reports whether the dropdown has keyboard focus.
func (d BranchDropdown) Focused() bool { return d.focused }

// SetWidth sets the rendered width.
func (d *BranchDropdown) SetWidth(w int) {
	d.width = w
	d.input.Width = w - 4
}

// SetNoRepository disables the dropdown because nothing is selected.
func (d *BranchDropdown) SetNoRepository() {
	d.state = BranchNoRepository
	d.err = nil
	d.resetOptions(nil)
}

// SetLoading shows the loading placeholder and returns the spinner tick.
func (d *BranchDropdown) SetLoading() tea.Cmd {
	d.state = BranchLoading
	d.err = nil
	return d.spinner.Tick
}

// SpinnerTick returns the command that drives the loading spinner.
func (d BranchDropdown) SpinnerTick() tea.Cmd {
	return d.spinner.Tick
}

// SetError shows the error placeholder.
func (d *BranchDropdown) SetError(err error) {
	d.state = BranchError
	d.err = err
	d.resetOptions(nil)
}

// SetBranches populates the dropdown and makes it interactive.
func (d *BranchDropdown) SetBranches(branches []domain.Branch) {
	d.state = BranchReady
	d.err = nil
	d.resetOptions(branches)
}

// SetSelected reflects the owner's selection. An empty name shows no selection.
// Filter text the user is typing is kept until Blur.
func (d *BranchDropdown) SetSelected(name string) {
	d.selected = name
	if d.focused && d.filtering {
		d.applyFilter()
		return
	}
	d.filtering = false
	d.input.SetValue(name)
	d.input.CursorEnd()
	d.applyFilter()
	d.cursorToSelected()
}

// Focus gives the dropdown keyboard focus.
func (d *BranchDropdown) Focus() tea.Cmd {
	d.focused = true
	return d.input.Focus()
}

// Blur removes keyboard focus. Unfinished filter text is replaced by the
// current selection.
func (d *BranchDropdown) Blur() {
	d.focused = false
	d.input.Blur()
	if d.filtering {
		d.SetSelected(d.selected)
	}
}

func (d *BranchDropdown) resetOptions(branches []domain.Branch) {
	d.branches = branches
	d.filtering = d.filtering && d.focused && d.state == BranchReady
	d.applyFilter()
	if !d.filtering {
		d.cursorToSelected()
	}
}

// branchSource implements fuzzy.Source over branch names.
type branchSource []domain.Branch

func (b branchSource) String(i int) string { return b[i].Name() }
func (b branchSource) Len() int            { return len(b) }

func (d *BranchDropdown) applyFilter() {
	query := ""
	if d.filtering {
		query = strings.TrimSpace(d.input.Value())
	}

	if query == "" {
		d.filtered = d.branches
	} else {
		matches := fuzzy.FindFrom(query, branchSource(d.branches))
		d.filtered = make([]domain.Branch, 0, len(matches))
		for _, match := range matches {
			d.filtered = append(d.filtered, d.branches[match.Index])
		}
	}

	if d.cursor >= len(d.filtered) {
		d.cursor = len(d.filtered) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

func (d *BranchDropdown) cursorToSelected() {
	for i, b := range d.filtered {
		if b.Name() == d.selected {
			d.cursor = i
			return
		}
	}
}

// Update handles spinner ticks and, while focused and ready, key presses.
func (d BranchDropdown) Update(msg tea.Msg) (BranchDropdown, tea.Cmd, DropdownEvent) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if d.state != BranchLoading {
			return d, nil, DropdownEvent{}
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd, DropdownEvent{}

	case tea.KeyMsg:
		if !d.focused || d.state != BranchReady {
			return d, nil, DropdownEvent{}
		}
		return d.handleKey(msg)
	}

	return d, nil, DropdownEvent{}
}

func (d BranchDropdown) handleKey(msg tea.KeyMsg) (BranchDropdown, tea.Cmd, DropdownEvent) {
	switch {
	case key.Matches(msg, d.KeyMap.Up):
		if d.cursor > 0 {
			d.cursor--
		}
		return d, nil, DropdownEvent{}

	case key.Matches(msg, d.KeyMap.Down):
		if d.cursor < len(d.filtered)-1 {
			d.cursor++
		}
		return d, nil, DropdownEvent{}

	case key.Matches(msg, d.KeyMap.Select):
		if len(d.filtered) == 0 {
			return d, nil, DropdownEvent{}
		}
		name := d.filtered[d.cursor].Name()
		d.filtering = false
		d.SetSelected(name)
		return d, nil, DropdownEvent{Kind: DropdownSelected, Branch: name}

	case key.Matches(msg, d.KeyMap.Clear):
		return d.clear()
	}

	before := d.input.Value()
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	after := d.input.Value()
	if after == before {
		return d, cmd, DropdownEvent{}
	}

	if after == "" {
		var event DropdownEvent
		d, _, event = d.clear()
		return d, cmd, event
	}

	d.filtering = true
	d.cursor = 0
	d.applyFilter()
	return d, cmd, DropdownEvent{}
}

// clear empties the input and drops the selection.
func (d BranchDropdown) clear() (BranchDropdown, tea.Cmd, DropdownEvent) {
	d.input.SetValue("")
	d.selected = ""
	d.filtering = false
	d.cursor = 0
	d.applyFilter()
	return d, nil, DropdownEvent{Kind: DropdownCleared}
}

// View renders the dropdown for its current state.
func (d BranchDropdown) View() string {
	styles := theme.Current()

	field := styles.FormInput
	if d.focused {
		field = styles.FormInputFocused
	}
	field = field.Width(d.width)

	switch d.state {
	case BranchNoRepository:
		return field.Faint(true).Render(styles.Placeholder.Render("Select a repository first"))
	case BranchLoading:
		return field.Render(d.spinner.View() + " " + styles.Placeholder.Render("Loading branches..."))
	case BranchError:
		msg := "Failed to load branches"
		if d.err != nil {
			msg += ": " + d.err.Error()
		}
		return field.BorderForeground(styles.ColorError).
			Render(styles.PlaceholderError.Render(TruncateText(msg, d.width-4)))
	}

	input := field.Render(d.input.View())
	if !d.focused {
		return input
	}
	return lipgloss.JoinVertical(lipgloss.Left, input, d.renderOptions())
}

func (d BranchDropdown) renderOptions() string {
	styles := theme.Current()

	if len(d.filtered) == 0 {
		msg := "No branches"
		if d.filtering {
			msg = "No matching branches"
		}
		return styles.Dropdown.Render(styles.Placeholder.Render(msg))
	}

	// Scroll so the cursor stays visible.
	start := 0
	if d.cursor >= layout.DropdownMaxOptions {
		start = d.cursor - layout.DropdownMaxOptions + 1
	}
	end := min(start+layout.DropdownMaxOptions, len(d.filtered))

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		b := d.filtered[i]

		cursor := "  "
		if i == d.cursor {
			cursor = styles.OptionCursor.Render("▸ ")
		}
		name := TruncateText(b.Name(), d.width-8)
		style := styles.OptionNormal
		if b.Name() == d.selected {
			name += " ✓"
			style = styles.OptionSelected
		}
		line := cursor + style.Render(name)
		if b.IsRemote() {
			line += styles.Metadata.Render(" remote")
		}
		lines = append(lines, line)
	}
	if end < len(d.filtered) {
		lines = append(lines, styles.Metadata.Render("  ...and more"))
	}

	return styles.Dropdown.Width(d.width).Render(strings.Join(lines, "\n"))
}
