package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/domain"
	"github.com/yourusername/mlearn/internal/ui/components"
	"github.com/yourusername/mlearn/internal/ui/layout"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

// LearnModalProps are the inputs the owner passes to the learn modal.
type LearnModalProps struct {
	OnConfirm func(domain.MicroagentFormData) tea.Cmd
	OnCancel  func() tea.Cmd
	IsLoading bool
}

// BranchesLoadedMsg carries the result of a branch fetch for one repository.
type BranchesLoadedMsg struct {
	RepoID   string
	Branches []domain.Branch
	Current  string
	Err      error
}

type modalFocus int

const (
	focusQuery modalFocus = iota
	focusBranch
	focusConfirm
	focusCancel
	focusCount
)

// LearnMicroagentModal collects a question about the selected repository
// and a target branch, then hands them to OnConfirm.
type LearnMicroagentModal struct {
	props LearnModalProps
	repo  *domain.Repository
	keys  modalKeyMap

	query    textinput.Model
	dropdown components.BranchDropdown

	// nil until a branch is chosen, automatically or by the user
	selectedBranch *string
	// set when the user empties the branch input; suppresses auto-selection
	// until the next explicit pick
	branchCleared bool
	current       string

	focus modalFocus
	width int
}

// NewLearnMicroagentModal creates the modal for repo. A nil repo renders the
// branch selector disabled. The branch fetch itself is dispatched by the
// owner, which delivers the result as a BranchesLoadedMsg.
func NewLearnMicroagentModal(repo *domain.Repository, props LearnModalProps) LearnMicroagentModal {
	ti := textinput.New()
	ti.Placeholder = "e.g. How do I run the integration tests?"
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.Focus()

	m := LearnMicroagentModal{
		props:    props,
		repo:     repo,
		keys:     newModalKeyMap(),
		query:    ti,
		dropdown: components.NewBranchDropdown(),
		focus:    focusQuery,
		width:    layout.ModalWidthLG,
	}
	m.setWidth(layout.ModalWidthLG)
	if repo != nil {
		m.dropdown.SetLoading()
	}
	return m
}

// Init starts the cursor blink and, while branches load, the spinner.
func (m LearnMicroagentModal) Init() tea.Cmd {
	if m.dropdown.State() != components.BranchLoading {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.dropdown.SpinnerTick())
}

// SetLoading updates the IsLoading prop.
func (m *LearnMicroagentModal) SetLoading(loading bool) {
	m.props.IsLoading = loading
}

// SetWindowWidth fits the modal into the terminal width.
func (m *LearnMicroagentModal) SetWindowWidth(w int) {
	width := layout.ModalWidthLG
	if w > 0 && w-4 < width {
		width = max(w-4, layout.ModalWidthSM)
	}
	m.setWidth(width)
}

func (m *LearnMicroagentModal) setWidth(w int) {
	m.width = w
	m.query.Width = w - 12
	m.dropdown.SetWidth(w - 8)
}

// Repository returns the repository the modal was opened for.
func (m LearnMicroagentModal) Repository() *domain.Repository { return m.repo }

// Query returns the raw query text.
func (m LearnMicroagentModal) Query() string { return m.query.Value() }

// SelectedBranch returns the selected branch name, if any.
func (m LearnMicroagentModal) SelectedBranch() (string, bool) {
	if m.selectedBranch == nil {
		return "", false
	}
	return *m.selectedBranch, true
}

// BranchCleared reports whether the user explicitly cleared the branch.
func (m LearnMicroagentModal) BranchCleared() bool { return m.branchCleared }

// BranchState returns the branch selector state.
func (m LearnMicroagentModal) BranchState() components.BranchSelectorState {
	return m.dropdown.State()
}

// ConfirmDisabled reports whether confirming is currently blocked.
func (m LearnMicroagentModal) ConfirmDisabled() bool {
	if strings.TrimSpace(m.query.Value()) == "" {
		return true
	}
	if m.props.IsLoading {
		return true
	}
	switch m.dropdown.State() {
	case components.BranchLoading, components.BranchError, components.BranchNoRepository:
		return true
	}
	return m.selectedBranch == nil
}

// FormData builds the payload both submit triggers emit.
func (m LearnMicroagentModal) FormData() (domain.MicroagentFormData, error) {
	branch, _ := m.SelectedBranch()
	return domain.NewMicroagentFormData(m.query.Value(), branch)
}

// Update handles branch fetch results, spinner ticks and keys.
func (m LearnMicroagentModal) Update(msg tea.Msg) (LearnMicroagentModal, tea.Cmd) {
	switch msg := msg.(type) {
	case BranchesLoadedMsg:
		m.handleBranches(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.dropdown, cmd, _ = m.dropdown.Update(msg)
	cmds = append(cmds, cmd)
	m.query, cmd = m.query.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *LearnMicroagentModal) handleBranches(msg BranchesLoadedMsg) {
	// Results for another repository are stale.
	if m.repo == nil || msg.RepoID != m.repo.ID() {
		return
	}

	if msg.Err != nil {
		m.dropdown.SetError(msg.Err)
		return
	}

	m.current = msg.Current
	m.dropdown.SetBranches(msg.Branches)

	// A selection that vanished from the new list no longer counts.
	if m.selectedBranch != nil && !domain.HasBranch(msg.Branches, *m.selectedBranch) {
		m.selectedBranch = nil
	}
	m.autoSelectBranch(msg.Branches)
	m.dropdown.SetSelected(m.selectedName())
}

// autoSelectBranch picks main, then master, when nothing is selected and the
// user has not cleared the branch.
func (m *LearnMicroagentModal) autoSelectBranch(branches []domain.Branch) {
	if m.selectedBranch != nil || m.branchCleared {
		return
	}
	if m.dropdown.State() != components.BranchReady {
		return
	}
	if name, ok := domain.PickDefaultBranch(branches); ok {
		m.selectedBranch = &name
	}
}

func (m LearnMicroagentModal) selectedName() string {
	name, _ := m.SelectedBranch()
	return name
}

func (m LearnMicroagentModal) handleKey(msg tea.KeyMsg) (LearnMicroagentModal, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, m.cancel()

	case key.Matches(msg, m.keys.Confirm):
		return m, m.submit()

	case key.Matches(msg, m.keys.NextField):
		return m, m.moveFocus(1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.moveFocus(-1)
	}

	switch m.focus {
	case focusQuery:
		if key.Matches(msg, m.keys.Submit) {
			return m, m.submit()
		}
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd

	case focusBranch:
		var cmd tea.Cmd
		var event components.DropdownEvent
		m.dropdown, cmd, event = m.dropdown.Update(msg)
		switch event.Kind {
		case components.DropdownSelected:
			name := event.Branch
			m.selectedBranch = &name
			m.branchCleared = false
		case components.DropdownCleared:
			m.selectedBranch = nil
			m.branchCleared = true
		}
		return m, cmd

	case focusConfirm:
		if key.Matches(msg, m.keys.Submit, m.keys.Press) {
			return m, m.submit()
		}

	case focusCancel:
		if key.Matches(msg, m.keys.Submit, m.keys.Press) {
			return m, m.cancel()
		}
	}

	return m, nil
}

// submit is shared by the query field and the Confirm button.
func (m LearnMicroagentModal) submit() tea.Cmd {
	if m.ConfirmDisabled() || m.props.OnConfirm == nil {
		return nil
	}
	data, err := m.FormData()
	if err != nil {
		return nil
	}
	return m.props.OnConfirm(data)
}

func (m LearnMicroagentModal) cancel() tea.Cmd {
	if m.props.OnCancel == nil {
		return nil
	}
	return m.props.OnCancel()
}

// moveFocus cycles focus, skipping the Confirm button while it is disabled.
func (m *LearnMicroagentModal) moveFocus(delta int) tea.Cmd {
	next := m.focus
	for range focusCount {
		next = (next + modalFocus(delta) + focusCount) % focusCount
		if next != focusConfirm || !m.ConfirmDisabled() {
			break
		}
	}
	return m.setFocus(next)
}

func (m *LearnMicroagentModal) setFocus(f modalFocus) tea.Cmd {
	m.query.Blur()
	m.dropdown.Blur()
	m.focus = f

	switch f {
	case focusQuery:
		return m.query.Focus()
	case focusBranch:
		return m.dropdown.Focus()
	}
	return nil
}

// View renders the modal body inside the shared modal shell.
func (m LearnMicroagentModal) View() string {
	styles := theme.Current()

	repoName := "none selected"
	if m.repo != nil {
		repoName = components.TruncateMiddle(m.repo.FullName(), m.width-20)
	}

	queryField := styles.FormInput
	if m.focus == focusQuery {
		queryField = styles.FormInputFocused
	}

	branchLabel := "Branch"
	if m.current != "" {
		branchLabel += styles.Metadata.Render("  (checked out: " + m.current + ")")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.RepoLabel.Render("Repository")+styles.RepoValue.Render(repoName),
		"",
		styles.FormLabel.Render("What would you like to learn?"),
		queryField.Width(m.width-8).Render(m.query.View()),
		"",
		styles.FormLabel.Render(branchLabel),
		m.dropdown.View(),
	)

	modal := components.NewModal(components.ModalForm, "Learn Microagent", "")
	modal.Width = m.width
	modal.Content = body
	modal.Buttons = []components.ModalButton{
		{Label: "Confirm", Primary: true, Disabled: m.ConfirmDisabled()},
		{Label: "Cancel"},
	}
	switch m.focus {
	case focusConfirm:
		modal.FocusButton(0)
	case focusCancel:
		modal.FocusButton(1)
	}
	if m.props.IsLoading {
		modal.Help = []string{"Learning microagent..."}
	} else {
		modal.Help = []string{"tab next field", "enter select/submit", "ctrl+s confirm", "esc cancel"}
	}

	return modal.Render()
}
