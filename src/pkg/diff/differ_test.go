package diff

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gh-nvat/changelog-gate/src/internal/testutil"
	"github.com/gh-nvat/changelog-gate/src/pkg/changelog"
	"github.com/google/go-cmp/cmp"
)

const (
	baseChangelog = `# Changelog

## [v1.0.0]
- Initial release
`
	headChangelog = `# Changelog

## [v1.1.0]

## [v1.0.0]
- Initial release
`
)

func newChangelogRepo(t *testing.T) (*testutil.Repo, string, string) {
	t.Helper()
	repo := testutil.NewRepo(t)
	base := repo.Commit(map[string]string{"CHANGELOG.md": baseChangelog, "README.md": "hello\n"})
	head := repo.Commit(map[string]string{"CHANGELOG.md": headChangelog, "README.md": "hello world\n"})
	return repo, base, head
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{backend: "", want: "*diff.CommandProvider"},
		{backend: "git", want: "*diff.CommandProvider"},
		{backend: "go-git", want: "*diff.RepositoryProvider"},
		{backend: "svn", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			p, err := NewProvider(tt.backend, ".")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got := fmt.Sprintf("%T", p)
			if got != tt.want {
				t.Errorf("NewProvider() type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRepositoryProvider_Diff(t *testing.T) {
	repo, base, head := newChangelogRepo(t)
	p := NewRepositoryProvider(repo.Dir)

	out, err := p.Diff(context.Background(), "CHANGELOG.md", base, head)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}

	if strings.Contains(out, "README.md") {
		t.Errorf("diff should be limited to CHANGELOG.md, got:\n%s", out)
	}
	if diff := cmp.Diff([]string{"## [v1.1.0]"}, changelog.ExtractAddedHeaders(out)); diff != "" {
		t.Errorf("added headers mismatch (-want +got):\n%s", diff)
	}
}

func TestRepositoryProvider_Diff_PathForms(t *testing.T) {
	repo, base, head := newChangelogRepo(t)
	sub := filepath.Join(repo.Dir, "docs")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		path string
	}{
		{name: "dot prefix", dir: repo.Dir, path: "./CHANGELOG.md"},
		{name: "redundant segments", dir: repo.Dir, path: "docs/../CHANGELOG.md"},
		{name: "subdirectory", dir: sub, path: "../CHANGELOG.md"},
		{name: "absolute", dir: sub, path: filepath.Join(repo.Dir, "CHANGELOG.md")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewRepositoryProvider(tt.dir).Diff(context.Background(), tt.path, base, head)
			if err != nil {
				t.Fatalf("Diff() error = %v", err)
			}
			if diff := cmp.Diff([]string{"## [v1.1.0]"}, changelog.ExtractAddedHeaders(out)); diff != "" {
				t.Errorf("added headers mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := NewRepositoryProvider(repo.Dir).Diff(context.Background(), "../outside.md", base, head); err == nil {
		t.Error("expected error for path outside the repository")
	}
}

func TestRepositoryProvider_Diff_Unchanged(t *testing.T) {
	repo, base, _ := newChangelogRepo(t)
	p := NewRepositoryProvider(repo.Dir)

	out, err := p.Diff(context.Background(), "CHANGELOG.md", base, base)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if out != "" {
		t.Errorf("Diff() = %q, want empty", out)
	}
}

func TestRepositoryProvider_Diff_UnknownRevision(t *testing.T) {
	repo, base, _ := newChangelogRepo(t)
	p := NewRepositoryProvider(repo.Dir)

	if _, err := p.Diff(context.Background(), "CHANGELOG.md", base, "does-not-exist"); err == nil {
		t.Error("expected error for unknown revision")
	}
}

func TestCommandProvider_Diff(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	repo, base, head := newChangelogRepo(t)
	p := NewCommandProvider(repo.Dir)

	out, err := p.Diff(context.Background(), "CHANGELOG.md", base, head)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if diff := cmp.Diff([]string{"## [v1.1.0]"}, changelog.ExtractAddedHeaders(out)); diff != "" {
		t.Errorf("added headers mismatch (-want +got):\n%s", diff)
	}

	if _, err := p.Diff(context.Background(), "CHANGELOG.md", base, "does-not-exist"); err == nil {
		t.Error("expected error for unknown revision")
	} else if !strings.Contains(err.Error(), "git diff failed") {
		t.Errorf("error = %v, want it to mention git diff", err)
	}
}
