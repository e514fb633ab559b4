package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/yourusername/mlearn/internal/domain"
)

var (
	// ErrGHUnavailable is returned when the gh CLI is not installed.
	ErrGHUnavailable = errors.New("gh CLI not found: install it from https://cli.github.com")
	// ErrGHNotAuthenticated is returned when gh has no logged-in account.
	ErrGHNotAuthenticated = errors.New("gh not authenticated: run `gh auth login`")
)

// Runner executes a gh subcommand and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// Client queries GitHub through the gh CLI, reusing its authentication.
type Client struct {
	run Runner
}

// NewClient creates a Client that shells out to gh.
func NewClient() *Client {
	return &Client{run: execGH}
}

// NewClientWithRunner creates a Client with a custom runner (used in tests).
func NewClientWithRunner(run Runner) *Client {
	return &Client{run: run}
}

func execGH(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrGHUnavailable
		}
		return nil, fmt.Errorf("gh %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(stderr.String()), err)
	}
	return output, nil
}

// CheckGHAvailable checks if gh CLI is installed
func CheckGHAvailable() bool {
	cmd := exec.Command("gh", "--version")
	err := cmd.Run()
	return err == nil
}

// CheckAuthenticated returns ErrGHNotAuthenticated unless gh has a logged-in account.
func (c *Client) CheckAuthenticated(ctx context.Context) error {
	if _, err := c.run(ctx, "auth", "status"); err != nil {
		if errors.Is(err, ErrGHUnavailable) || ctx.Err() != nil {
			return err
		}
		return ErrGHNotAuthenticated
	}
	return nil
}

// ListBranches returns every branch of owner/repo, following pagination.
func (c *Client) ListBranches(ctx context.Context, fullName string) ([]domain.Branch, error) {
	if _, err := domain.NewGitHubRepository(fullName); err != nil {
		return nil, err
	}

	output, err := c.run(ctx, "api", "repos/"+fullName+"/branches?per_page=100", "--paginate")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches for %s: %w", fullName, err)
	}

	return parseBranchesJSON(output)
}

// GetDefaultBranch returns the default branch configured on GitHub.
func (c *Client) GetDefaultBranch(ctx context.Context, fullName string) (string, error) {
	output, err := c.run(ctx, "api", "repos/"+fullName, "--jq", ".default_branch")
	if err != nil {
		return "", fmt.Errorf("failed to get default branch for %s: %w", fullName, err)
	}
	return strings.TrimSpace(string(output)), nil
}

type branchJSON struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// parseBranchesJSON decodes the output of `gh api --paginate`, which
// concatenates one JSON array per page.
func parseBranchesJSON(data []byte) ([]domain.Branch, error) {
	branches := []domain.Branch{}
	dec := json.NewDecoder(bytes.NewReader(data))

	for {
		var page []branchJSON
		if err := dec.Decode(&page); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse branches: %w", err)
		}

		for _, b := range page {
			branch, err := domain.NewBranch(b.Name)
			if err != nil {
				continue
			}
			branch.SetLastCommit(b.Commit.SHA, time.Time{})
			branches = append(branches, branch)
		}
	}

	return branches, nil
}
