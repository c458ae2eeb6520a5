// Package gitrepo opens local repositories with go-git and resolves revisions
// to commits, without requiring the git CLI.
package gitrepo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "gitrepo")

// Open opens the repository containing path, walking up to find .git.
// An empty path means the current working directory.
func Open(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	logger.WithField("path", path).Debug("Opening repository")
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return repo, nil
}

// ResolveCommit resolves a revision (SHA, branch, tag, HEAD~1, ...) to its commit
func ResolveCommit(repo *git.Repository, revision string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}
	return commit, nil
}

// ResolveTree resolves a revision to the root tree of its commit
func ResolveTree(repo *git.Repository, revision string) (*object.Tree, error) {
	commit, err := ResolveCommit(repo, revision)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", commit.Hash, err)
	}
	return tree, nil
}

// RelativePath maps name, given relative to dir or as an absolute path, to
// the slash-separated path go-git uses inside the repository's trees
func RelativePath(repo *git.Repository, dir, name string) (string, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository root: %w", err)
	}

	target := name
	if !filepath.IsAbs(target) {
		base, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		target = filepath.Join(base, name)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s against %s: %w", name, root, err)
	}
	rel = path.Clean(filepath.ToSlash(rel))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %s is outside the repository at %s", name, root)
	}
	return rel, nil
}
