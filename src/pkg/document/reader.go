package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gh-nvat/changelog-gate/src/pkg/gitrepo"
)

// Provider defines the interface for reading the changelog document
type Provider interface {
	// ReadText returns the full text of the document at path
	ReadText(ctx context.Context, path string) (string, error)
}

const (
	SourceWorktree = "worktree"
	SourceRevision = "revision"
)

// NewProvider returns the provider for the named source. revision is only
// used by the revision source.
func NewProvider(source, repoDir, revision string) (Provider, error) {
	switch source {
	case "", SourceWorktree:
		return NewFileProvider(repoDir), nil
	case SourceRevision:
		if revision == "" {
			return nil, fmt.Errorf("document source %q requires a head revision", SourceRevision)
		}
		return NewRevisionProvider(repoDir, revision), nil
	default:
		return nil, fmt.Errorf("unsupported document source: %s (use %q or %q)", source, SourceWorktree, SourceRevision)
	}
}

// FileProvider reads the document from the working tree
type FileProvider struct {
	root string
}

// Ensure FileProvider implements Provider
var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a provider resolving relative paths against root
func NewFileProvider(root string) *FileProvider {
	return &FileProvider{root: root}
}

// ReadText reads the file from disk
func (p *FileProvider) ReadText(_ context.Context, path string) (string, error) {
	if !filepath.IsAbs(path) && p.root != "" {
		path = filepath.Join(p.root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// RevisionProvider reads the document as committed at a revision
type RevisionProvider struct {
	dir      string
	revision string
}

// Ensure RevisionProvider implements Provider
var _ Provider = (*RevisionProvider)(nil)

// NewRevisionProvider creates a provider reading blobs at revision
func NewRevisionProvider(dir, revision string) *RevisionProvider {
	return &RevisionProvider{dir: dir, revision: revision}
}

// ReadText reads the blob at path from the configured revision
func (p *RevisionProvider) ReadText(_ context.Context, path string) (string, error) {
	repo, err := gitrepo.Open(p.dir)
	if err != nil {
		return "", err
	}
	name, err := gitrepo.RelativePath(repo, p.dir, path)
	if err != nil {
		return "", err
	}
	commit, err := gitrepo.ResolveCommit(repo, p.revision)
	if err != nil {
		return "", err
	}
	file, err := commit.File(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s at %s: %w", path, p.revision, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("failed to read %s at %s: %w", path, p.revision, err)
	}
	return contents, nil
}
