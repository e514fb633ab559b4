package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/yourusername/mlearn/internal/adapter/git"
	"github.com/yourusername/mlearn/internal/domain"
)

// DefaultFetchTimeout bounds a single branch fetch.
const DefaultFetchTimeout = 30 * time.Second

// RemoteBranchSource lists branches of a hosted repository (the gh client).
type RemoteBranchSource interface {
	CheckAuthenticated(ctx context.Context) error
	ListBranches(ctx context.Context, fullName string) ([]domain.Branch, error)
	GetDefaultBranch(ctx context.Context, fullName string) (string, error)
}

// FetchBranchesUseCase loads the branch list of the selected repository.
type FetchBranchesUseCase struct {
	gitOps        git.Operations
	remote        RemoteBranchSource
	includeRemote bool
	timeout       time.Duration
}

// NewFetchBranchesUseCase creates a new FetchBranchesUseCase.
// remote may be nil when only local repositories are supported.
func NewFetchBranchesUseCase(gitOps git.Operations, remote RemoteBranchSource, includeRemote bool, timeout time.Duration) *FetchBranchesUseCase {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &FetchBranchesUseCase{
		gitOps:        gitOps,
		remote:        remote,
		includeRemote: includeRemote,
		timeout:       timeout,
	}
}

// FetchBranchesResponse is the branch list for one repository.
type FetchBranchesResponse struct {
	RepoID   string
	Branches []domain.Branch
	Current  string // checked-out branch for local repos, default branch for GitHub
}

// Execute fetches branches for repo. The returned list starts with the
// current branch, then local branches by name, then remote-only ones.
func (uc *FetchBranchesUseCase) Execute(ctx context.Context, repo *domain.Repository) (*FetchBranchesResponse, error) {
	if repo == nil {
		return nil, domain.ErrNoRepository
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()
	var (
		branches []domain.Branch
		current  string
		err      error
	)

	switch repo.Provider() {
	case domain.ProviderLocal:
		branches, current, err = uc.fetchLocal(ctx, repo)
	case domain.ProviderGitHub:
		branches, current, err = uc.fetchGitHub(ctx, repo)
	default:
		err = fmt.Errorf("unsupported provider: %s", repo.Provider())
	}
	if err != nil {
		slog.Warn("branch fetch failed", "repo", repo.ID(), "err", err)
		return nil, err
	}

	sortBranches(branches, current)
	slog.Debug("branches fetched", "repo", repo.ID(), "count", len(branches), "current", current, "elapsed", time.Since(start))

	return &FetchBranchesResponse{
		RepoID:   repo.ID(),
		Branches: branches,
		Current:  current,
	}, nil
}

func (uc *FetchBranchesUseCase) fetchLocal(ctx context.Context, repo *domain.Repository) ([]domain.Branch, string, error) {
	isRepo, err := uc.gitOps.IsGitRepo(ctx, repo.Path())
	if err != nil {
		return nil, "", fmt.Errorf("failed to check repository: %w", err)
	}
	if !isRepo {
		return nil, "", fmt.Errorf("%s is not a git repository", repo.Path())
	}

	branches, err := uc.gitOps.ListBranches(ctx, repo.Path(), uc.includeRemote)
	if err != nil {
		return nil, "", err
	}

	current, err := uc.gitOps.GetCurrentBranch(ctx, repo.Path())
	if err != nil || current == "HEAD" {
		// Detached or unreadable HEAD only affects ordering
		current = ""
	}

	return branches, current, nil
}

func (uc *FetchBranchesUseCase) fetchGitHub(ctx context.Context, repo *domain.Repository) ([]domain.Branch, string, error) {
	if uc.remote == nil {
		return nil, "", fmt.Errorf("GitHub repositories are not supported in this configuration")
	}
	if err := uc.remote.CheckAuthenticated(ctx); err != nil {
		return nil, "", err
	}

	branches, err := uc.remote.ListBranches(ctx, repo.FullName())
	if err != nil {
		return nil, "", err
	}

	current, err := uc.remote.GetDefaultBranch(ctx, repo.FullName())
	if err != nil {
		slog.Debug("default branch lookup failed", "repo", repo.ID(), "err", err)
		current = ""
	}

	return branches, current, nil
}

func sortBranches(branches []domain.Branch, current string) {
	rank := func(b domain.Branch) int {
		switch {
		case current != "" && b.Name() == current:
			return 0
		case !b.IsRemote():
			return 1
		default:
			return 2
		}
	}

	sort.SliceStable(branches, func(i, j int) bool {
		ri, rj := rank(branches[i]), rank(branches[j])
		if ri != rj {
			return ri < rj
		}
		return branches[i].Name() < branches[j].Name()
	})
}
