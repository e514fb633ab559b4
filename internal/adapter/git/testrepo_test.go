package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// newTestRepo creates a repository on master with one commit, extra local
// branches, remote-tracking branches under origin and an origin/HEAD symref.
func newTestRepo(t *testing.T, local []string, remote []string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	hash, err := wt.Commit("Initial commit\n\nbody text", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	for _, name := range local {
		ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
		if err := repo.Storer.SetReference(ref); err != nil {
			t.Fatalf("SetReference(%s) error = %v", name, err)
		}
	}

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:acme/widgets.git"},
	}); err != nil {
		t.Fatalf("CreateRemote() error = %v", err)
	}
	for _, name := range remote {
		ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", name), hash)
		if err := repo.Storer.SetReference(ref); err != nil {
			t.Fatalf("SetReference(origin/%s) error = %v", name, err)
		}
	}
	if len(remote) > 0 {
		head := plumbing.NewSymbolicReference(
			plumbing.NewRemoteHEADReferenceName("origin"),
			plumbing.NewRemoteReferenceName("origin", remote[0]),
		)
		if err := repo.Storer.SetReference(head); err != nil {
			t.Fatalf("SetReference(origin/HEAD) error = %v", err)
		}
	}

	return dir
}
