package runner

import (
	"context"

	"github.com/gh-nvat/changelog-gate/src/pkg/changelog"
	"github.com/gh-nvat/changelog-gate/src/pkg/models"
	"github.com/gh-nvat/changelog-gate/src/pkg/reconcile"
)

type RunnerInterface interface {
	// Initialize the runner with necessary context and data
	Initialize() error

	// Diff the changelog between the base and head revisions
	DiffChangelog(ctx context.Context) (*ChangelogDiff, error)

	// Classify the added headers against the current changelog
	Classify(ctx context.Context, d *ChangelogDiff) (*changelog.Result, error)

	// Reflect the verdict onto the pull request, nil outcome when nothing is annotated
	Annotate(ctx context.Context, result *changelog.Result) (*reconcile.Outcome, error)

	// Main routine to process the runner
	Process() error

	// Handling the summary and export
	Output(data *models.ReportData) error
}
