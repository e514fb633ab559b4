package domain

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLocalRepository(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantErr     bool
		errContains string
	}{
		{
			name: "valid path",
			path: "/home/user/project",
		},
		{
			name: "relative path",
			path: ".",
		},
		{
			name:        "empty path",
			path:        "",
			wantErr:     true,
			errContains: "repository path cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := NewLocalRepository(tt.path)

			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewLocalRepository() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLocalRepository() unexpected error = %v", err)
			}

			// Path should be converted to absolute
			if !filepath.IsAbs(repo.Path()) {
				t.Errorf("Path() = %v, want absolute path", repo.Path())
			}
			if repo.ID() != repo.Path() {
				t.Errorf("ID() = %v, want path %v", repo.ID(), repo.Path())
			}
			if !repo.IsLocal() {
				t.Error("IsLocal() = false, want true")
			}
		})
	}
}

func TestNewGitHubRepository(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantErr  bool
	}{
		{"octo/hello", "octo/hello", false},
		{" octo/hello.git ", "octo/hello", false},
		{"All-Hands-AI/OpenHands", "All-Hands-AI/OpenHands", false},
		{"octo", "", true},
		{"octo/hello/extra", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			repo, err := NewGitHubRepository(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGitHubRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if repo.FullName() != tt.wantName {
				t.Errorf("FullName() = %q, want %q", repo.FullName(), tt.wantName)
			}
			if repo.ID() != "github:"+tt.wantName {
				t.Errorf("ID() = %q, want %q", repo.ID(), "github:"+tt.wantName)
			}
			if repo.IsLocal() {
				t.Error("IsLocal() = true, want false")
			}
		})
	}
}

func TestRepository_SetFullName(t *testing.T) {
	repo, _ := NewLocalRepository("/tmp/checkout")

	repo.SetFullName("")
	if repo.FullName() != "checkout" {
		t.Errorf("FullName() = %q, want checkout", repo.FullName())
	}

	repo.SetFullName("octo/checkout")
	if repo.FullName() != "octo/checkout" {
		t.Errorf("FullName() = %q, want octo/checkout", repo.FullName())
	}
	if repo.ID() != repo.Path() {
		t.Error("renaming must not change the fetch key of a local repository")
	}
}
