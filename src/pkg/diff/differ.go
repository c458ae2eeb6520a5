package diff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Provider defines the interface for retrieving the diff of one file
type Provider interface {
	// Diff returns the unified diff of path between two revisions
	Diff(ctx context.Context, path, fromRevision, toRevision string) (string, error)
}

const (
	BackendGit   = "git"
	BackendGoGit = "go-git"
)

// NewProvider returns the provider for the named backend rooted at repoDir
func NewProvider(backend, repoDir string) (Provider, error) {
	switch backend {
	case "", BackendGit:
		return NewCommandProvider(repoDir), nil
	case BackendGoGit:
		return NewRepositoryProvider(repoDir), nil
	default:
		return nil, fmt.Errorf("unsupported diff backend: %s (use %q or %q)", backend, BackendGit, BackendGoGit)
	}
}

// CommandProvider diffs through the git CLI
type CommandProvider struct {
	dir string
}

// Ensure CommandProvider implements Provider
var _ Provider = (*CommandProvider)(nil)

// NewCommandProvider creates a provider running git in dir
func NewCommandProvider(dir string) *CommandProvider {
	return &CommandProvider{dir: dir}
}

// Diff runs `git diff <from> <to> -- <path>`
func (p *CommandProvider) Diff(ctx context.Context, path, fromRevision, toRevision string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", fromRevision, toRevision, "--", path)
	cmd.Dir = p.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git diff failed: %w\nOutput: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("git diff failed: %w", err)
	}

	return stdout.String(), nil
}
