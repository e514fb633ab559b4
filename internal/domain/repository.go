package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoRepository is returned when an operation needs a selected repository.
var ErrNoRepository = errors.New("no repository selected")

// GitProvider identifies where a repository lives.
type GitProvider string

const (
	// ProviderLocal is a repository checked out on this machine.
	ProviderLocal GitProvider = "local"
	// ProviderGitHub is a repository addressed by owner/name on GitHub.
	ProviderGitHub GitProvider = "github"
)

// String returns the string representation of the provider.
func (p GitProvider) String() string {
	return string(p)
}

// Repository is the repository the user has selected to learn about.
type Repository struct {
	fullName string
	path     string
	provider GitProvider
}

var fullNameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// NewLocalRepository creates a Repository for a local checkout.
func NewLocalRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("repository path cannot be empty")
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid repository path: %w", err)
	}

	return &Repository{
		fullName: filepath.Base(absPath),
		path:     absPath,
		provider: ProviderLocal,
	}, nil
}

// NewGitHubRepository creates a Repository addressed as owner/name.
func NewGitHubRepository(fullName string) (*Repository, error) {
	fullName = strings.TrimSuffix(strings.TrimSpace(fullName), ".git")
	if !fullNameRegex.MatchString(fullName) {
		return nil, fmt.Errorf("invalid repository name %q: expected owner/name", fullName)
	}
	return &Repository{
		fullName: fullName,
		provider: ProviderGitHub,
	}, nil
}

// ID returns the key branch lists are fetched and cached under.
func (r *Repository) ID() string {
	if r.provider == ProviderLocal {
		return r.path
	}
	return r.provider.String() + ":" + r.fullName
}

// FullName returns owner/name for remote repositories, or the directory name for local ones.
func (r *Repository) FullName() string {
	return r.fullName
}

// SetFullName overrides the display name, e.g. with the owner/name parsed from a remote.
func (r *Repository) SetFullName(name string) {
	if name != "" {
		r.fullName = name
	}
}

// Path returns the absolute path of a local repository.
func (r *Repository) Path() string {
	return r.path
}

// Provider returns where the repository lives.
func (r *Repository) Provider() GitProvider {
	return r.provider
}

// IsLocal reports whether the repository is checked out locally.
func (r *Repository) IsLocal() bool {
	return r.provider == ProviderLocal
}

// String returns a human readable label.
func (r *Repository) String() string {
	if r.IsLocal() {
		return fmt.Sprintf("%s (%s)", r.fullName, r.path)
	}
	return r.fullName
}
