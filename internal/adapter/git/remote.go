package git

import (
	"fmt"
	"regexp"
)

var (
	githubHost = regexp.MustCompile(`(?i)github\.com[:/]`)

	// https://github.com/o/r(.git), ssh://git@github.com/o/r, git@github.com:o/r(.git)
	githubRemote = regexp.MustCompile(`(?i)^(?:(?:https?|ssh)://(?:[^@/]+@)?github\.com(?::\d+)?/|[^@/]+@github\.com:)([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?/?$`)
)

// IsGitHubRemote reports whether a remote URL points at github.com.
func IsGitHubRemote(remoteURL string) bool {
	return githubHost.MatchString(remoteURL)
}

// ParseGitHubRepo extracts owner and name from an HTTPS or SSH GitHub remote.
func ParseGitHubRepo(remoteURL string) (*GitHubRepo, error) {
	m := githubRemote.FindStringSubmatch(remoteURL)
	if m == nil {
		return nil, fmt.Errorf("not a GitHub remote: %q", remoteURL)
	}
	return &GitHubRepo{Owner: m[1], Repo: m[2]}, nil
}
