package diff

import (
	"context"
	"fmt"

	"github.com/gh-nvat/changelog-gate/src/pkg/gitrepo"
	"github.com/go-git/go-git/v5/plumbing/object"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "diff")

// RepositoryProvider diffs in-process with go-git, no git binary needed
type RepositoryProvider struct {
	dir string
}

// Ensure RepositoryProvider implements Provider
var _ Provider = (*RepositoryProvider)(nil)

// NewRepositoryProvider creates a provider for the repository containing dir
func NewRepositoryProvider(dir string) *RepositoryProvider {
	return &RepositoryProvider{dir: dir}
}

// Diff computes the tree diff between both commits restricted to path and
// encodes it as a unified diff
func (p *RepositoryProvider) Diff(ctx context.Context, path, fromRevision, toRevision string) (string, error) {
	repo, err := gitrepo.Open(p.dir)
	if err != nil {
		return "", err
	}

	name, err := gitrepo.RelativePath(repo, p.dir, path)
	if err != nil {
		return "", err
	}

	fromTree, err := gitrepo.ResolveTree(repo, fromRevision)
	if err != nil {
		return "", err
	}
	toTree, err := gitrepo.ResolveTree(repo, toRevision)
	if err != nil {
		return "", err
	}

	changes, err := fromTree.DiffContext(ctx, toTree)
	if err != nil {
		return "", fmt.Errorf("failed to diff trees: %w", err)
	}

	var selected object.Changes
	for _, change := range changes {
		if change.From.Name == name || change.To.Name == name {
			selected = append(selected, change)
		}
	}
	logger.WithField("path", name).WithField("changes", len(changes)).WithField("selected", len(selected)).Debug("Diffed trees")
	if len(selected) == 0 {
		return "", nil
	}

	patch, err := selected.PatchContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build patch: %w", err)
	}
	return patch.String(), nil
}
