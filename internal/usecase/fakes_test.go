package usecase

import (
	"context"
	"errors"

	"github.com/yourusername/mlearn/internal/adapter/ai"
	"github.com/yourusername/mlearn/internal/adapter/git"
	"github.com/yourusername/mlearn/internal/domain"
)

type fakeGitOps struct {
	isRepo      bool
	branches    []domain.Branch
	current     string
	listErr     error
	log         []git.CommitInfo
	logErr      error
	gotLogRef   string
	gotLogCount int
}

func (f *fakeGitOps) IsGitRepo(ctx context.Context, path string) (bool, error) {
	return f.isRepo, nil
}

func (f *fakeGitOps) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	if f.current == "" {
		return "", errors.New("no HEAD")
	}
	return f.current, nil
}

func (f *fakeGitOps) ListBranches(ctx context.Context, repoPath string, includeRemote bool) ([]domain.Branch, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Branch, 0, len(f.branches))
	for _, b := range f.branches {
		if b.IsRemote() && !includeRemote {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeGitOps) GetRemoteURL(ctx context.Context, repoPath, remoteName string) (string, error) {
	return "", errors.New("no remote")
}

func (f *fakeGitOps) GetRemoteName(ctx context.Context, repoPath string) (string, error) {
	return "", errors.New("no remote")
}

func (f *fakeGitOps) GetLog(ctx context.Context, repoPath, ref string, count int) ([]git.CommitInfo, error) {
	f.gotLogRef = ref
	f.gotLogCount = count
	return f.log, f.logErr
}

type fakeRemote struct {
	branches      []domain.Branch
	defaultBranch string
	err           error
	authErr       error
	gotFullName   string
}

func (f *fakeRemote) CheckAuthenticated(ctx context.Context) error {
	return f.authErr
}

func (f *fakeRemote) ListBranches(ctx context.Context, fullName string) ([]domain.Branch, error) {
	f.gotFullName = fullName
	return f.branches, f.err
}

func (f *fakeRemote) GetDefaultBranch(ctx context.Context, fullName string) (string, error) {
	if f.defaultBranch == "" {
		return "", errors.New("unknown")
	}
	return f.defaultBranch, nil
}

type fakeProvider struct {
	microagent *domain.Microagent
	err        error
	got        ai.MicroagentRequest
	calls      int
}

func (f *fakeProvider) GenerateMicroagent(ctx context.Context, request ai.MicroagentRequest) (*ai.MicroagentResponse, error) {
	f.calls++
	f.got = request
	if f.err != nil {
		return nil, f.err
	}
	return &ai.MicroagentResponse{Microagent: f.microagent, TokensUsed: 42, Model: "fake"}, nil
}

func (f *fakeProvider) GetName() string { return "fake" }

func (f *fakeProvider) ValidateKey(ctx context.Context) error { return nil }

type fakeHistory struct {
	entries   []domain.HistoryEntry
	completed map[string]string
	failed    map[string]error
	listErr   error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{completed: map[string]string{}, failed: map[string]error{}}
}

func (f *fakeHistory) Record(ctx context.Context, entry domain.HistoryEntry) (string, error) {
	entry.ID = "h" + string(rune('0'+len(f.entries)+1))
	f.entries = append(f.entries, entry)
	return entry.ID, nil
}

func (f *fakeHistory) Complete(ctx context.Context, id, outputPath string) error {
	f.completed[id] = outputPath
	return nil
}

func (f *fakeHistory) Fail(ctx context.Context, id string, cause error) error {
	f.failed[id] = cause
	return nil
}

func (f *fakeHistory) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > 0 && limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}
