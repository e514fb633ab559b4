package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/mlearn/internal/domain"
)

// ExecOperations answers Operations by running the git binary.
type ExecOperations struct {
	gitPath string
}

// NewExecOperations uses the git found on PATH.
func NewExecOperations() *ExecOperations {
	return &ExecOperations{gitPath: "git"}
}

// SetGitPath points at a specific git executable.
func (e *ExecOperations) SetGitPath(path string) {
	e.gitPath = path
}

// CommandError is a failed git invocation with its stderr.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := "git " + strings.Join(e.Args, " ")
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	return msg + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// run executes git in dir and returns trimmed stdout.
func (e *ExecOperations) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.gitPath, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsGitRepo reports whether path is inside a work tree. A failing git
// command means "no", not an error.
func (e *ExecOperations) IsGitRepo(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("invalid path: %w", err)
	}
	out, err := e.run(ctx, abs, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, nil
	}
	return out == "true", nil
}

// GetCurrentBranch returns the checked-out branch, or "HEAD" when detached.
func (e *ExecOperations) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	out, err := e.run(ctx, repoPath, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err == nil {
		return out, nil
	}

	// symbolic-ref exits 1 without output on a detached HEAD
	var cmdErr *CommandError
	var exitErr *exec.ExitError
	if errors.As(err, &cmdErr) && cmdErr.Stderr == "" && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return "HEAD", nil
	}
	return "", fmt.Errorf("failed to get current branch: %w", err)
}

// refFormat emits one ref per line as NUL-separated name, tip hash and commit time.
const refFormat = "--format=%(refname)%00%(objectname)%00%(committerdate:unix)"

// ListBranches lists refs/heads, plus refs/remotes when includeRemote is set.
func (e *ExecOperations) ListBranches(ctx context.Context, repoPath string, includeRemote bool) ([]domain.Branch, error) {
	args := []string{"for-each-ref", refFormat, "refs/heads"}
	if includeRemote {
		args = append(args, "refs/remotes")
	}

	out, err := e.run(ctx, repoPath, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return parseRefs(out), nil
}

// parseRefs parses for-each-ref output produced with refFormat.
func parseRefs(output string) []domain.Branch {
	if strings.TrimSpace(output) == "" {
		return []domain.Branch{}
	}

	local := make(map[string]bool)
	var branches []domain.Branch
	var remotes []domain.Branch

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(strings.TrimSpace(line), "\x00")
		if len(fields) != 3 {
			continue
		}

		name, remote, ok := shortRefName(fields[0])
		if !ok {
			continue
		}

		branch, err := domain.NewBranch(name)
		if err != nil {
			continue
		}
		branch.SetRemote(remote)
		if unix, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			branch.SetLastCommit(fields[1], time.Unix(unix, 0))
		}

		if remote {
			remotes = append(remotes, branch)
			continue
		}
		local[name] = true
		branches = append(branches, branch)
	}

	return mergeRemoteBranches(branches, remotes, local)
}

// shortRefName strips refs/heads/ or refs/remotes/<remote>/ from a full ref name.
func shortRefName(ref string) (name string, remote bool, ok bool) {
	switch {
	case strings.HasPrefix(ref, "refs/heads/"):
		return strings.TrimPrefix(ref, "refs/heads/"), false, true
	case strings.HasPrefix(ref, "refs/remotes/"):
		rest := strings.TrimPrefix(ref, "refs/remotes/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[1] == "HEAD" {
			return "", false, false
		}
		return parts[1], true, true
	default:
		return "", false, false
	}
}

// mergeRemoteBranches appends remote-only branches, skipping ones present locally or seen twice.
func mergeRemoteBranches(branches, remotes []domain.Branch, local map[string]bool) []domain.Branch {
	sort.SliceStable(remotes, func(i, j int) bool { return remotes[i].Name() < remotes[j].Name() })
	for _, r := range remotes {
		if local[r.Name()] {
			continue
		}
		local[r.Name()] = true
		branches = append(branches, r)
	}
	if branches == nil {
		return []domain.Branch{}
	}
	return branches
}

// GetRemoteURL returns the fetch URL of remoteName ("origin" when empty).
func (e *ExecOperations) GetRemoteURL(ctx context.Context, repoPath, remoteName string) (string, error) {
	if remoteName == "" {
		remoteName = "origin"
	}
	out, err := e.run(ctx, repoPath, "remote", "get-url", remoteName)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "No such remote") {
			return "", fmt.Errorf("remote %q not found", remoteName)
		}
		return "", fmt.Errorf("failed to get remote URL: %w", err)
	}
	return out, nil
}

// GetRemoteName returns "origin" if configured, else the first remote.
func (e *ExecOperations) GetRemoteName(ctx context.Context, repoPath string) (string, error) {
	out, err := e.run(ctx, repoPath, "remote")
	if err != nil {
		return "", fmt.Errorf("failed to list remotes: %w", err)
	}
	return pickRemote(strings.Fields(out))
}

func pickRemote(remotes []string) (string, error) {
	if len(remotes) == 0 {
		return "", errors.New("no remotes configured")
	}
	for _, remote := range remotes {
		if remote == "origin" {
			return remote, nil
		}
	}
	return remotes[0], nil
}

// logFormat emits one commit per line with unit-separated fields.
const logFormat = "--format=%H%x1f%an%x1f%aI%x1f%s"

// GetLog returns up to count commits reachable from ref, newest first.
func (e *ExecOperations) GetLog(ctx context.Context, repoPath, ref string, count int) ([]CommitInfo, error) {
	if count <= 0 {
		count = 10
	}
	args := []string{"log", "--max-count=" + strconv.Itoa(count), logFormat}
	if ref != "" {
		args = append(args, ref, "--")
	}

	out, err := e.run(ctx, repoPath, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return parseLog(out), nil
}

func parseLog(output string) []CommitInfo {
	commits := []CommitInfo{}
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(line, "\x1f")
		if len(fields) != 4 || fields[0] == "" {
			continue
		}
		commits = append(commits, CommitInfo{
			Hash:    fields[0],
			Author:  fields[1],
			Date:    fields[2],
			Message: fields[3],
		})
	}
	return commits
}
