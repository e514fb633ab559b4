package git

import (
	"context"
	"fmt"

	"github.com/yourusername/mlearn/internal/domain"
)

// Operations defines the read-only Git queries mlearn needs.
// It is implemented by ExecOperations (git binary) and GoGitOperations (go-git),
// and mocked in tests.
type Operations interface {
	// IsGitRepo returns true if the path is a valid git repository.
	IsGitRepo(ctx context.Context, path string) (bool, error)

	// GetCurrentBranch returns the name of the current branch, or "HEAD" when detached.
	GetCurrentBranch(ctx context.Context, repoPath string) (string, error)

	// ListBranches returns local and optionally remote branches.
	// Remote branches that also exist locally are reported once, as local.
	ListBranches(ctx context.Context, repoPath string, includeRemote bool) ([]domain.Branch, error)

	// GetRemoteURL returns the URL for the specified remote (usually "origin").
	GetRemoteURL(ctx context.Context, repoPath, remoteName string) (string, error)

	// GetRemoteName returns the primary remote name (defaults to "origin").
	GetRemoteName(ctx context.Context, repoPath string) (string, error)

	// GetLog returns up to count commits reachable from ref (HEAD when empty).
	GetLog(ctx context.Context, repoPath, ref string, count int) ([]CommitInfo, error)
}

// CommitInfo represents information about a commit.
type CommitInfo struct {
	Hash    string
	Author  string
	Date    string
	Message string
}

// GitHubRepo represents parsed GitHub repository information from a git URL.
type GitHubRepo struct {
	Owner string
	Repo  string
}

// FullName returns owner/repo.
func (r GitHubRepo) FullName() string {
	return r.Owner + "/" + r.Repo
}

// NewOperations returns the Operations implementation for a configured backend.
func NewOperations(backend string) (Operations, error) {
	switch backend {
	case "", domain.GitBackendExec:
		return NewExecOperations(), nil
	case domain.GitBackendGoGit:
		return NewGoGitOperations(), nil
	default:
		return nil, fmt.Errorf("unknown git backend: %s", backend)
	}
}
