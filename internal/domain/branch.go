package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyBranchName is returned when a branch is created without a name.
var ErrEmptyBranchName = errors.New("branch name cannot be empty")

// Default branch names tried, in order, when auto-selecting a target branch.
const (
	DefaultBranchMain   = "main"
	DefaultBranchMaster = "master"
)

// Branch is a named pointer to a line of commits in a repository.
// Branches are produced by the git/GitHub adapters and are read-only
// everywhere else.
type Branch struct {
	name         string
	remote       bool
	lastCommit   string
	lastCommitAt time.Time
}

// NewBranch creates a new Branch with the given name.
func NewBranch(name string) (Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Branch{}, ErrEmptyBranchName
	}
	return Branch{name: name}, nil
}

// MustBranches builds branches from names, skipping blank ones.
// It is mostly useful for tests and static fixtures.
func MustBranches(names ...string) []Branch {
	branches := make([]Branch, 0, len(names))
	for _, n := range names {
		b, err := NewBranch(n)
		if err != nil {
			continue
		}
		branches = append(branches, b)
	}
	return branches
}

// Name returns the branch name.
func (b Branch) Name() string {
	return b.name
}

// IsRemote reports whether the branch only exists on a remote.
func (b Branch) IsRemote() bool {
	return b.remote
}

// SetRemote marks the branch as remote-only.
func (b *Branch) SetRemote(remote bool) {
	b.remote = remote
}

// LastCommit returns the short hash of the branch tip, if known.
func (b Branch) LastCommit() string {
	return b.lastCommit
}

// LastCommitAt returns the commit time of the branch tip, if known.
func (b Branch) LastCommitAt() time.Time {
	return b.lastCommitAt
}

// SetLastCommit records the branch tip.
func (b *Branch) SetLastCommit(hash string, at time.Time) {
	if len(hash) > 7 {
		hash = hash[:7]
	}
	b.lastCommit = hash
	b.lastCommitAt = at
}

// BranchNames returns the names of the given branches in order.
func BranchNames(branches []Branch) []string {
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.name
	}
	return names
}

// HasBranch reports whether a branch with the given name is present.
func HasBranch(branches []Branch, name string) bool {
	for _, b := range branches {
		if b.name == name {
			return true
		}
	}
	return false
}

// PickDefaultBranch chooses the branch a form should start with:
// "main" if present, otherwise "master", otherwise nothing.
func PickDefaultBranch(branches []Branch) (string, bool) {
	for _, candidate := range []string{DefaultBranchMain, DefaultBranchMaster} {
		if HasBranch(branches, candidate) {
			return candidate, true
		}
	}
	return "", false
}
