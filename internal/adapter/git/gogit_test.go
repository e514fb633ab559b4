package git

import (
	"context"
	"reflect"
	"testing"

	"github.com/yourusername/mlearn/internal/domain"
)

func TestGoGitOperations(t *testing.T) {
	ops := NewGoGitOperations()
	ctx := context.Background()
	dir := newTestRepo(t, []string{"develop", "feature/login"}, []string{"main", "feature/login"})

	t.Run("IsGitRepo", func(t *testing.T) {
		isRepo, err := ops.IsGitRepo(ctx, dir)
		if err != nil {
			t.Fatalf("IsGitRepo() error = %v", err)
		}
		if !isRepo {
			t.Error("IsGitRepo() = false, want true")
		}

		isRepo, err = ops.IsGitRepo(ctx, t.TempDir())
		if err != nil {
			t.Fatalf("IsGitRepo() error = %v", err)
		}
		if isRepo {
			t.Error("IsGitRepo() = true, want false for non-git directory")
		}
	})

	t.Run("GetCurrentBranch", func(t *testing.T) {
		branch, err := ops.GetCurrentBranch(ctx, dir)
		if err != nil {
			t.Fatalf("GetCurrentBranch() error = %v", err)
		}
		if branch != "master" {
			t.Errorf("GetCurrentBranch() = %q, want master", branch)
		}
	})

	t.Run("ListBranches local only", func(t *testing.T) {
		branches, err := ops.ListBranches(ctx, dir, false)
		if err != nil {
			t.Fatalf("ListBranches() error = %v", err)
		}
		want := []string{"develop", "feature/login", "master"}
		if got := domain.BranchNames(branches); !reflect.DeepEqual(got, want) {
			t.Errorf("ListBranches() = %v, want %v", got, want)
		}
		if branches[0].LastCommit() == "" {
			t.Error("LastCommit() should be populated")
		}
	})

	t.Run("ListBranches with remotes", func(t *testing.T) {
		branches, err := ops.ListBranches(ctx, dir, true)
		if err != nil {
			t.Fatalf("ListBranches() error = %v", err)
		}
		want := []string{"develop", "feature/login", "master", "main"}
		if got := domain.BranchNames(branches); !reflect.DeepEqual(got, want) {
			t.Fatalf("ListBranches() = %v, want %v", got, want)
		}
		if !branches[3].IsRemote() {
			t.Error("main should be reported as remote")
		}
	})

	t.Run("GetRemoteName and URL", func(t *testing.T) {
		name, err := ops.GetRemoteName(ctx, dir)
		if err != nil {
			t.Fatalf("GetRemoteName() error = %v", err)
		}
		if name != "origin" {
			t.Errorf("GetRemoteName() = %q, want origin", name)
		}
		url, err := ops.GetRemoteURL(ctx, dir, "")
		if err != nil {
			t.Fatalf("GetRemoteURL() error = %v", err)
		}
		if url != "git@github.com:acme/widgets.git" {
			t.Errorf("GetRemoteURL() = %q", url)
		}
		if _, err := ops.GetRemoteURL(ctx, dir, "missing"); err == nil {
			t.Error("GetRemoteURL() for missing remote should return error")
		}
	})

	t.Run("GetLog", func(t *testing.T) {
		commits, err := ops.GetLog(ctx, dir, "feature/login", 5)
		if err != nil {
			t.Fatalf("GetLog() error = %v", err)
		}
		if len(commits) != 1 {
			t.Fatalf("GetLog() returned %d commits, want 1", len(commits))
		}
		if commits[0].Message != "Initial commit" {
			t.Errorf("Commit message = %q, want first line only", commits[0].Message)
		}
		if commits[0].Author != "Test User" {
			t.Errorf("Author = %q, want Test User", commits[0].Author)
		}

		if _, err := ops.GetLog(ctx, dir, "does-not-exist", 5); err == nil {
			t.Error("GetLog() for unknown ref should return error")
		}
	})
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"subject", "subject"},
		{"subject\n\nbody", "subject"},
		{"\n  padded  \nrest", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
