// Package testutil builds throwaway git repositories for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a temporary git repository with a worktree
type Repo struct {
	Dir  string
	repo *git.Repository
	t    *testing.T
	n    int
}

// NewRepo initialises an empty repository in a temp directory
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repository: %v", err)
	}
	return &Repo{Dir: dir, repo: repo, t: t}
}

// Commit writes files (path -> content) and commits them, returning the SHA
func (r *Repo) Commit(files map[string]string) string {
	r.t.Helper()

	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("failed to get worktree: %v", err)
	}
	for path, content := range files {
		full := filepath.Join(r.Dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			r.t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			r.t.Fatalf("failed to write %s: %v", path, err)
		}
		if _, err := wt.Add(path); err != nil {
			r.t.Fatalf("failed to stage %s: %v", path, err)
		}
	}

	r.n++
	hash, err := wt.Commit("commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Date(2025, 1, 1, 0, r.n, 0, 0, time.UTC),
		},
	})
	if err != nil {
		r.t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}
