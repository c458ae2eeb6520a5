package runner

import (
	"context"

	"github.com/gh-nvat/changelog-gate/src/pkg/config"
)

// RunnerLocal checks two revisions without touching any pull request
type RunnerLocal struct {
	RunnerBase
}

// make RunnerLocal implement RunnerInterface
var _ RunnerInterface = (*RunnerLocal)(nil)

func NewRunnerLocal(ctx context.Context, options *config.Options, components Components) (*RunnerLocal, error) {
	baseRunner, err := NewRunnerBase(ctx, options, components)
	if err != nil {
		return nil, err
	}
	runner := &RunnerLocal{
		RunnerBase: *baseRunner,
	}
	runner.Instance = runner
	return runner, nil
}
