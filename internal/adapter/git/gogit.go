package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/yourusername/mlearn/internal/domain"
)

// GoGitOperations implements Operations with go-git, without needing a git binary.
type GoGitOperations struct{}

// NewGoGitOperations creates a new GoGitOperations instance.
func NewGoGitOperations() *GoGitOperations {
	return &GoGitOperations{}
}

func openRepo(path string) (*gogit.Repository, error) {
	return gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
}

// IsGitRepo returns true if the path is a valid git repository.
func (g *GoGitOperations) IsGitRepo(ctx context.Context, path string) (bool, error) {
	if _, err := openRepo(path); err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open repository: %w", err)
	}
	return true, nil
}

// GetCurrentBranch returns the name of the current branch.
func (g *GoGitOperations) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	repo, err := openRepo(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Unborn branch: HEAD points at a ref with no commits yet
			if ref, rerr := repo.Storer.Reference(plumbing.HEAD); rerr == nil && ref.Type() == plumbing.SymbolicReference {
				return ref.Target().Short(), nil
			}
		}
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	if !head.Name().IsBranch() {
		return "HEAD", nil
	}
	return head.Name().Short(), nil
}

// ListBranches returns all local and optionally remote branches.
func (g *GoGitOperations) ListBranches(ctx context.Context, repoPath string, includeRemote bool) ([]domain.Branch, error) {
	repo, err := openRepo(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	iter, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer iter.Close()

	local := make(map[string]bool)
	var branches []domain.Branch
	var remotes []domain.Branch

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		if ref.Name().IsRemote() && !includeRemote {
			return nil
		}

		name, remote, ok := shortRefName(ref.Name().String())
		if !ok {
			return nil
		}
		branch, err := domain.NewBranch(name)
		if err != nil {
			return nil
		}
		branch.SetRemote(remote)
		if commit, err := repo.CommitObject(ref.Hash()); err == nil {
			branch.SetLastCommit(ref.Hash().String(), commit.Committer.When)
		}

		if remote {
			remotes = append(remotes, branch)
		} else {
			local[name] = true
			branches = append(branches, branch)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	// for-each-ref lists in refname order; match it so both backends agree
	sort.SliceStable(branches, func(i, j int) bool { return branches[i].Name() < branches[j].Name() })
	return mergeRemoteBranches(branches, remotes, local), nil
}

// GetRemoteURL returns the URL for the specified remote.
func (g *GoGitOperations) GetRemoteURL(ctx context.Context, repoPath, remoteName string) (string, error) {
	if remoteName == "" {
		remoteName = "origin"
	}

	repo, err := openRepo(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	remote, err := repo.Remote(remoteName)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return "", fmt.Errorf("remote '%s' not found", remoteName)
		}
		return "", fmt.Errorf("failed to get remote URL: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote '%s' has no URL", remoteName)
	}
	return urls[0], nil
}

// GetRemoteName returns the primary remote name (defaults to "origin").
func (g *GoGitOperations) GetRemoteName(ctx context.Context, repoPath string) (string, error) {
	repo, err := openRepo(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return "", fmt.Errorf("failed to get remotes: %w", err)
	}

	names := make([]string, 0, len(remotes))
	for _, r := range remotes {
		names = append(names, r.Config().Name)
	}
	sort.Strings(names)
	return pickRemote(names)
}

// GetLog returns recent commit history reachable from ref.
func (g *GoGitOperations) GetLog(ctx context.Context, repoPath, ref string, count int) ([]CommitInfo, error) {
	if count <= 0 {
		count = 10
	}

	repo, err := openRepo(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	var from plumbing.Hash
	if ref == "" {
		head, err := repo.Head()
		if err != nil {
			return nil, fmt.Errorf("failed to get log: %w", err)
		}
		from = head.Hash()
	} else {
		hash, err := repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", ref, err)
		}
		from = *hash
	}

	iter, err := repo.Log(&gogit.LogOptions{From: from, Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}
	defer iter.Close()

	commits := make([]CommitInfo, 0, count)
	err = iter.ForEach(func(c *object.Commit) error {
		if len(commits) >= count {
			return errStopIteration
		}
		commits = append(commits, CommitInfo{
			Hash:    c.Hash.String(),
			Author:  c.Author.Name,
			Date:    c.Author.When.Format("2006-01-02T15:04:05-07:00"),
			Message: firstLine(c.Message),
		})
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}

	return commits, nil
}

var errStopIteration = errors.New("stop iteration")

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
