package runner

import (
	"github.com/gh-nvat/changelog-gate/src/pkg/diff"
	"github.com/gh-nvat/changelog-gate/src/pkg/document"
	"github.com/gh-nvat/changelog-gate/src/pkg/models"
	"github.com/gh-nvat/changelog-gate/src/pkg/output"
	"github.com/gh-nvat/changelog-gate/src/pkg/template"
)

// Components are the collaborators of a runner. Differ and Documents are
// built from the options during Initialize when left nil.
type Components struct {
	Differ    diff.Provider
	Documents document.Provider
	Publisher output.Publisher
	Renderer  *template.Renderer
}

// ChangelogDiff is the changelog diff with the headers it adds
type ChangelogDiff struct {
	Content string
	Stats   models.DiffStats
	Headers []string
}
