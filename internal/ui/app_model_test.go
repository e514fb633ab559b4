package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yourusername/mlearn/internal/domain"
	"github.com/yourusername/mlearn/internal/usecase"
)

type fakeFetcher struct {
	branches []string
	err      error
	calls    int
}

func (f *fakeFetcher) Execute(ctx context.Context, repo *domain.Repository) (*usecase.FetchBranchesResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.FetchBranchesResponse{RepoID: repo.ID(), Branches: domain.MustBranches(f.branches...)}, nil
}

type fakeLearner struct {
	err error
	got usecase.LearnRequest
}

func (f *fakeLearner) Execute(ctx context.Context, req usecase.LearnRequest) (*usecase.LearnResponse, error) {
	f.got = req
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	agent, err := domain.NewMicroagent("Deploy Guide", domain.MicroagentRepo, nil, "# Deploy\n\nRun `make deploy`.")
	if err != nil {
		return nil, err
	}
	return &usecase.LearnResponse{Microagent: agent, Path: "/tmp/deploy-guide.md", Model: "fake", TokensUsed: 7}, nil
}

type fakeRefs struct{ ch chan struct{} }

func (f fakeRefs) Events() <-chan struct{} { return f.ch }

func newTestApp(t *testing.T, fetcher *fakeFetcher, learner MicroagentLearner) AppModel {
	t.Helper()
	repo, err := domain.NewLocalRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalRepository() error = %v", err)
	}
	return NewAppModel(AppDeps{
		Fetcher:      fetcher,
		Learner:      learner,
		Config:       domain.NewDefaultConfig(),
		Repo:         repo,
		Version:      "test",
		GlamourStyle: "notty",
	})
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T, want AppModel", next)
	}
	return app, cmd
}

func typeInto(t *testing.T, m AppModel, s string) AppModel {
	t.Helper()
	for _, r := range s {
		if r == ' ' {
			m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// openReadyModal opens the modal and delivers the branch fetch result.
func openReadyModal(t *testing.T, m AppModel) AppModel {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if m.State() != StateModal || m.Modal() == nil {
		t.Fatalf("state = %d, want modal open", m.State())
	}
	m, _ = update(t, m, m.fetchBranches()())
	return m
}

func TestApp_OpenModalFetchesBranches(t *testing.T) {
	fetcher := &fakeFetcher{branches: []string{"dev", "main"}}
	m := openReadyModal(t, newTestApp(t, fetcher, &fakeLearner{}))

	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.calls)
	}
	if got, _ := m.Modal().SelectedBranch(); got != "main" {
		t.Errorf("SelectedBranch() = %q, want main", got)
	}
}

func TestApp_LearnFlow(t *testing.T) {
	learner := &fakeLearner{}
	m := openReadyModal(t, newTestApp(t, &fakeFetcher{branches: []string{"main"}}, learner))
	m = typeInto(t, m, "how to deploy")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("ctrl+s should confirm")
	}
	m, cmd = update(t, m, cmd())
	if m.State() != StateLearning {
		t.Fatalf("state = %d, want learning", m.State())
	}
	if !m.Modal().ConfirmDisabled() {
		t.Error("confirm must be disabled while learning")
	}

	m, _ = update(t, m, cmd())
	if m.State() != StateResult {
		t.Fatalf("state = %d, want result", m.State())
	}
	if m.Modal() != nil {
		t.Error("modal should be discarded after a successful learn")
	}
	if learner.got.Form.Query != "how to deploy" || learner.got.Form.SelectedBranch != "main" {
		t.Errorf("learner got %+v", learner.got.Form)
	}
	if view := m.View(); !strings.Contains(view, "Deploy Guide") || !strings.Contains(view, "make deploy") {
		t.Errorf("result view missing microagent:\n%s", view)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.State() != StateHome {
		t.Errorf("esc from result: state = %d, want home", m.State())
	}
}

func TestApp_LearnFailureShowsError(t *testing.T) {
	learner := &fakeLearner{err: errors.New("rate limit")}
	m := openReadyModal(t, newTestApp(t, &fakeFetcher{branches: []string{"main"}}, learner))
	m = typeInto(t, m, "q")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = update(t, m, cmd())
	m, _ = update(t, m, cmd())

	if m.State() != StateModal {
		t.Fatalf("state = %d, want modal", m.State())
	}
	if !m.showingError || !strings.Contains(m.View(), "rate limit") {
		t.Errorf("error modal not shown: %q", m.errorMessage)
	}
	if m.Modal().ConfirmDisabled() {
		t.Error("confirm should be available again after a failure")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.showingError {
		t.Error("any key should dismiss the error modal")
	}
	if m.Modal().Query() != "q" {
		t.Errorf("dismiss key leaked into the modal: query = %q", m.Modal().Query())
	}
}

func TestApp_CancelDuringLearning(t *testing.T) {
	learner := &fakeLearner{}
	m := openReadyModal(t, newTestApp(t, &fakeFetcher{branches: []string{"main"}}, learner))
	m = typeInto(t, m, "q")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, learnCmd := update(t, m, cmd())

	_, cancelCmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, cancelCmd())
	if m.State() != StateHome || m.Modal() != nil {
		t.Fatalf("state = %d, want home with modal closed", m.State())
	}

	// the request observes the cancellation and its result is dropped
	m, _ = update(t, m, learnCmd())
	if m.State() != StateHome {
		t.Errorf("state after cancelled learn = %d, want home", m.State())
	}
}

func TestApp_NoLearnerConfigured(t *testing.T) {
	m := openReadyModal(t, newTestApp(t, &fakeFetcher{branches: []string{"main"}}, nil))
	m = typeInto(t, m, "q")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = update(t, m, cmd())
	if m.State() != StateModal || !strings.Contains(m.errorMessage, "No API key") {
		t.Errorf("state = %d, error = %q", m.State(), m.errorMessage)
	}
}

func TestApp_FetchErrorReachesModal(t *testing.T) {
	m := openReadyModal(t, newTestApp(t, &fakeFetcher{err: errors.New("not a git repository")}, &fakeLearner{}))
	if !strings.Contains(m.View(), "not a git repository") {
		t.Error("modal should show the fetch error")
	}
}

func TestApp_RefChangesRefetchWhileModalOpen(t *testing.T) {
	refs := fakeRefs{ch: make(chan struct{}, 1)}
	fetcher := &fakeFetcher{branches: []string{"main"}}
	m := newTestApp(t, fetcher, &fakeLearner{})
	m.deps.Refs = refs

	refs.ch <- struct{}{}
	if msg := m.Init()(); msg != (refsChangedMsg{}) {
		t.Fatalf("Init() cmd produced %T, want refsChangedMsg", msg)
	}

	// on the home screen only the listener is re-armed
	m, cmd := update(t, m, refsChangedMsg{})
	if cmd == nil {
		t.Fatal("listener should be re-armed")
	}

	m = openReadyModal(t, m)
	calls := fetcher.calls
	fetcher.branches = []string{"main", "feature"}
	m, _ = update(t, m, refsChangedMsg{})
	m, _ = update(t, m, m.fetchBranches()())
	if fetcher.calls != calls+1 {
		t.Errorf("fetch calls = %d, want %d", fetcher.calls, calls+1)
	}
	if n := len(m.Modal().dropdown.Branches()); n != 2 {
		t.Errorf("modal has %d branches after refetch, want 2", n)
	}
}

func TestApp_HomeKeys(t *testing.T) {
	m := newTestApp(t, &fakeFetcher{}, &fakeLearner{})
	if !strings.Contains(m.View(), "Press l to learn") {
		t.Error("home view should explain how to start")
	}
	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit from home")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.State() != StateModal {
		t.Errorf("enter should open the modal, state = %d", m.State())
	}
}
