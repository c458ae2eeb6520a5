package runner

import (
	"context"
	"fmt"

	"github.com/gh-nvat/changelog-gate/src/pkg/changelog"
	"github.com/gh-nvat/changelog-gate/src/pkg/config"
	"github.com/gh-nvat/changelog-gate/src/pkg/github"
	"github.com/gh-nvat/changelog-gate/src/pkg/reconcile"
	"github.com/gh-nvat/changelog-gate/src/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
)

// RunnerGitHub checks a pull request and reconciles its label and comment
type RunnerGitHub struct {
	RunnerBase

	ghclient   github.GitHubClient
	reconciler *reconcile.Reconciler
}

// make RunnerGitHub implement RunnerInterface
var _ RunnerInterface = (*RunnerGitHub)(nil)

func NewRunnerGitHub(
	ctx context.Context,
	options *config.Options,
	components Components,
	ghclient github.GitHubClient,
) (*RunnerGitHub, error) {
	if ghclient == nil {
		return nil, fmt.Errorf("GitHub client is not initialized")
	}
	baseRunner, err := NewRunnerBase(ctx, options, components)
	if err != nil {
		return nil, err
	}
	runner := &RunnerGitHub{
		RunnerBase: *baseRunner,
		ghclient:   ghclient,
	}
	runner.Instance = runner
	return runner, nil
}

func (r *RunnerGitHub) Initialize() error {
	if err := r.resolveRefs(); err != nil {
		return err
	}

	reconciler, err := reconcile.New(r.ghclient, r.Options.ReconcileConfig())
	if err != nil {
		return err
	}
	r.reconciler = reconciler

	return r.RunnerBase.Initialize()
}

// resolveRefs fills missing base and head revisions from the pull request
func (r *RunnerGitHub) resolveRefs() error {
	if r.Options.BaseRef != "" && r.Options.HeadRef != "" {
		return nil
	}

	logger.WithField("pr", r.Options.PullRequestNumber).Info("Resolving revisions from pull request")
	pr, err := r.ghclient.GetPR(r.Context, r.Options.PullRequestNumber)
	if err != nil {
		return err
	}
	if r.Options.BaseRef == "" {
		r.Options.BaseRef = pr.BaseRef
	}
	if r.Options.HeadRef == "" {
		r.Options.HeadRef = pr.HeadRef
	}
	logger.WithField("base", github.ShortSHA(r.Options.BaseRef)).WithField("head", github.ShortSHA(r.Options.HeadRef)).Debug("Resolved revisions")
	return nil
}

func (r *RunnerGitHub) Annotate(ctx context.Context, result *changelog.Result) (outcome *reconcile.Outcome, err error) {
	logger.Info("Annotate: starting...")
	ctx, span := trace.StartSpan(ctx, "Annotate", attribute.Int("pr", r.Options.PullRequestNumber))
	defer func() { trace.EndSpan(span, err) }()

	outcome, err = r.reconciler.Reconcile(ctx, *result)
	if err != nil {
		return nil, err
	}

	logger.WithField("label", outcome.Label).WithField("comment", outcome.Comment).Info("Annotate: done.")
	return outcome, nil
}
