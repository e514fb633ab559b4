package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/domain"
	"github.com/yourusername/mlearn/internal/ui/components"
	"github.com/yourusername/mlearn/internal/ui/layout"
	"github.com/yourusername/mlearn/internal/ui/theme"
	"github.com/yourusername/mlearn/internal/usecase"
)

// BranchFetcher loads the branches of a repository.
type BranchFetcher interface {
	Execute(ctx context.Context, repo *domain.Repository) (*usecase.FetchBranchesResponse, error)
}

// MicroagentLearner turns a confirmed form into a written microagent.
type MicroagentLearner interface {
	Execute(ctx context.Context, req usecase.LearnRequest) (*usecase.LearnResponse, error)
}

// RefEvents delivers a value whenever the local branch refs change.
type RefEvents interface {
	Events() <-chan struct{}
}

// AppState represents the current state of the application
type AppState int

const (
	StateHome AppState = iota
	StateModal
	StateLearning
	StateResult
)

// AppDeps are the collaborators the application model drives.
type AppDeps struct {
	Fetcher BranchFetcher
	Learner MicroagentLearner // nil when no API key is configured
	Refs    RefEvents         // nil disables refetching on ref changes
	Config  *domain.Config
	Repo    *domain.Repository
	Version string
	// GlamourStyle overrides the markdown style of the result view.
	GlamourStyle string
}

// AppModel is the root model that manages the entire application lifecycle
type AppModel struct {
	state AppState
	deps  AppDeps
	keys  appKeyMap

	modal  *LearnMicroagentModal
	result *ResultViewModel

	// Cancels the in-flight learn request; learnSeq discards stale results.
	cancelLearn context.CancelFunc
	learnSeq    int

	windowWidth  int
	windowHeight int

	showingError bool
	errorMessage string
}

type modalConfirmedMsg struct{ data domain.MicroagentFormData }

type modalCancelledMsg struct{}

type learnDoneMsg struct {
	seq    int
	result *usecase.LearnResponse
	err    error
}

type refsChangedMsg struct{}

// NewAppModel creates a new root application model
func NewAppModel(deps AppDeps) AppModel {
	return AppModel{
		state:        StateHome,
		deps:         deps,
		keys:         newAppKeyMap(),
		windowWidth:  100,
		windowHeight: 30,
	}
}

// State returns the current application state.
func (m AppModel) State() AppState { return m.state }

// Modal returns the open learn modal, or nil.
func (m AppModel) Modal() *LearnMicroagentModal { return m.modal }

// Init starts listening for ref changes.
func (m AppModel) Init() tea.Cmd {
	return m.waitForRefs()
}

func (m AppModel) waitForRefs() tea.Cmd {
	if m.deps.Refs == nil {
		return nil
	}
	events := m.deps.Refs.Events()
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return refsChangedMsg{}
	}
}

// Update handles messages and updates the application state
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		if m.modal != nil {
			m.modal.SetWindowWidth(msg.Width)
		}
		if m.result != nil {
			m.result.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case refsChangedMsg:
		cmds := []tea.Cmd{m.waitForRefs()}
		if m.modal != nil && m.deps.Repo != nil {
			slog.Debug("refs changed, refetching branches", "repo", m.deps.Repo.ID())
			cmds = append(cmds, m.fetchBranches())
		}
		return m, tea.Batch(cmds...)

	case BranchesLoadedMsg:
		if m.modal == nil {
			return m, nil
		}
		modal, cmd := m.modal.Update(msg)
		m.modal = &modal
		return m, cmd

	case modalConfirmedMsg:
		return m.startLearning(msg.data)

	case modalCancelledMsg:
		m.closeModal()
		return m, nil

	case learnDoneMsg:
		return m.finishLearning(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Spinner ticks, cursor blinks and clipboard results.
	switch {
	case m.modal != nil:
		modal, cmd := m.modal.Update(msg)
		m.modal = &modal
		return m, cmd
	case m.result != nil:
		result, cmd := m.result.Update(msg)
		m.result = &result
		return m, cmd
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Force) {
		m.stopLearning()
		return m, tea.Quit
	}

	// Any key dismisses the error modal
	if m.showingError {
		m.showingError = false
		m.errorMessage = ""
		return m, nil
	}

	switch m.state {
	case StateHome:
		switch {
		case key.Matches(msg, m.keys.Learn):
			return m.openModal()
		case key.Matches(msg, m.keys.Quit, m.keys.Back):
			return m, tea.Quit
		}
		return m, nil

	case StateModal, StateLearning:
		modal, cmd := m.modal.Update(msg)
		m.modal = &modal
		return m, cmd

	case StateResult:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.result = nil
			m.state = StateHome
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		result, cmd := m.result.Update(msg)
		m.result = &result
		return m, cmd
	}

	return m, nil
}

// openModal creates a fresh modal and dispatches the branch fetch.
func (m AppModel) openModal() (tea.Model, tea.Cmd) {
	modal := NewLearnMicroagentModal(m.deps.Repo, LearnModalProps{
		OnConfirm: func(data domain.MicroagentFormData) tea.Cmd {
			return func() tea.Msg { return modalConfirmedMsg{data: data} }
		},
		OnCancel: func() tea.Cmd {
			return func() tea.Msg { return modalCancelledMsg{} }
		},
	})
	modal.SetWindowWidth(m.windowWidth)

	m.modal = &modal
	m.result = nil
	m.state = StateModal
	return m, tea.Batch(modal.Init(), m.fetchBranches())
}

// closeModal discards the modal and any request it started.
func (m *AppModel) closeModal() {
	m.stopLearning()
	m.modal = nil
	m.state = StateHome
}

func (m *AppModel) stopLearning() {
	if m.cancelLearn != nil {
		m.cancelLearn()
		m.cancelLearn = nil
	}
}

func (m AppModel) fetchBranches() tea.Cmd {
	repo := m.deps.Repo
	fetcher := m.deps.Fetcher
	if repo == nil || fetcher == nil {
		return nil
	}
	return func() tea.Msg {
		resp, err := fetcher.Execute(context.Background(), repo)
		if err != nil {
			return BranchesLoadedMsg{RepoID: repo.ID(), Err: err}
		}
		return BranchesLoadedMsg{RepoID: resp.RepoID, Branches: resp.Branches, Current: resp.Current}
	}
}

func (m AppModel) startLearning(data domain.MicroagentFormData) (tea.Model, tea.Cmd) {
	if m.modal == nil || m.state != StateModal {
		return m, nil
	}
	if m.deps.Learner == nil {
		m.showError("No API key configured. Run `mlearn config` or set " + domain.APIKeyEnvVar + ".")
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelLearn = cancel
	m.learnSeq++
	m.state = StateLearning
	m.modal.SetLoading(true)

	seq := m.learnSeq
	learner := m.deps.Learner
	req := usecase.LearnRequest{Repo: m.deps.Repo, Form: data}
	slog.Info("learning microagent", "repo", req.Repo.ID(), "branch", data.SelectedBranch)

	return m, func() tea.Msg {
		result, err := learner.Execute(ctx, req)
		return learnDoneMsg{seq: seq, result: result, err: err}
	}
}

func (m AppModel) finishLearning(msg learnDoneMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.learnSeq || m.state != StateLearning {
		return m, nil
	}
	m.cancelLearn = nil

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		slog.Error("learn failed", "error", msg.err)
		m.state = StateModal
		m.modal.SetLoading(false)
		m.showError(fmt.Sprintf("Failed to learn microagent: %v", msg.err))
		return m, nil
	}

	result := NewResultViewModel(msg.result, m.deps.GlamourStyle, m.windowWidth, m.windowHeight)
	m.result = &result
	m.modal = nil
	m.state = StateResult
	return m, nil
}

func (m *AppModel) showError(message string) {
	m.showingError = true
	m.errorMessage = message
}

// View renders the current state
func (m AppModel) View() string {
	if m.showingError {
		return m.renderErrorModal()
	}

	switch m.state {
	case StateModal, StateLearning:
		return m.renderModal()
	case StateResult:
		return m.renderResult()
	}
	return m.renderHome()
}

func (m AppModel) repoInfo() string {
	if m.deps.Repo == nil {
		return "No repository selected"
	}
	return m.deps.Repo.String()
}

func (m AppModel) renderHome() string {
	styles := theme.Current()
	width := min(m.windowWidth, layout.ModalWidthLG+10)

	sections := []string{components.RenderLogo(m.repoInfo()), ""}

	if m.deps.Repo != nil {
		card := components.NewInfoCard("Repository", []components.InfoItem{
			{Label: "Name", Value: m.deps.Repo.FullName()},
			{Label: "Provider", Value: m.deps.Repo.Provider().String()},
			{Label: "Location", Value: components.TruncateMiddle(m.deps.Repo.Path(), width-20)},
		})
		card.Width = width
		sections = append(sections, card.Render())
	} else {
		sections = append(sections, components.NewWarningBanner("No repository selected.").
			WithActions("Run mlearn inside a git repository", "Or pass --path <dir> or --repo owner/name").
			WithWidth(width).Render())
	}

	if m.deps.Learner == nil {
		sections = append(sections, "", components.NewWarningBanner("No API key configured.").
			WithActions("Run mlearn config", "Or export "+domain.APIKeyEnvVar).
			WithWidth(width).Render())
	}

	sections = append(sections, "",
		styles.SectionTitle.Render("Press l to learn a microagent for this repository"),
		"",
		components.HomeFooter(m.deps.Version, width),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AppModel) renderModal() string {
	view := lipgloss.JoinVertical(lipgloss.Center,
		m.modal.View(),
		components.ModalFooter(m.state == StateLearning, 0),
	)
	return lipgloss.Place(m.windowWidth, m.windowHeight, lipgloss.Center, lipgloss.Center, view)
}

func (m AppModel) renderResult() string {
	header := components.RenderHeader("Microagent learned", m.repoInfo())
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.result.View(),
		components.ResultFooter(m.deps.Version, m.windowWidth),
	)
}

// renderErrorModal renders an error modal
func (m AppModel) renderErrorModal() string {
	return components.NewErrorModal(m.errorMessage).RenderCentered(m.windowWidth, m.windowHeight)
}
