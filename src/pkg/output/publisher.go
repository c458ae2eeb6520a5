// Package output publishes check results to the workflow or the console.
package output

import (
	"fmt"
	"io"

	"github.com/gh-nvat/changelog-gate/src/pkg/models"
	"github.com/sethvargo/go-githubactions"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "output")

// Publisher defines how a run reports its results
type Publisher interface {
	// SetOutputs publishes every output value together
	SetOutputs(outputs models.Outputs)

	// Warning raises a warning annotation
	Warning(msg string)

	// Error raises an error annotation
	Error(msg string)

	// AddStepSummary appends markdown to the job summary
	AddStepSummary(markdown string)
}

// ActionsPublisher writes through the GitHub Actions workflow commands
type ActionsPublisher struct {
	action *githubactions.Action
	getenv githubactions.GetenvFunc
}

// ConsolePublisher prints results for local runs
type ConsolePublisher struct {
	w io.Writer
}

// Ensure implementations satisfy Publisher
var (
	_ Publisher = (*ActionsPublisher)(nil)
	_ Publisher = (*ConsolePublisher)(nil)
)

// NewActionsPublisher creates a publisher issuing workflow commands to w and
// resolving file commands through getenv
func NewActionsPublisher(w io.Writer, getenv githubactions.GetenvFunc) *ActionsPublisher {
	return &ActionsPublisher{
		action: githubactions.New(githubactions.WithWriter(w), githubactions.WithGetenv(getenv)),
		getenv: getenv,
	}
}

// NewConsolePublisher creates a publisher printing to w
func NewConsolePublisher(w io.Writer) *ConsolePublisher {
	return &ConsolePublisher{w: w}
}

// NewPublisher picks the Actions publisher inside a workflow and the console
// publisher elsewhere
func NewPublisher(w io.Writer, getenv githubactions.GetenvFunc) Publisher {
	if getenv("GITHUB_ACTIONS") == "true" {
		return NewActionsPublisher(w, getenv)
	}
	return NewConsolePublisher(w)
}

func (p *ActionsPublisher) SetOutputs(outputs models.Outputs) {
	for _, kv := range outputs.Values() {
		p.action.SetOutput(kv[0], kv[1])
	}
}

func (p *ActionsPublisher) Warning(msg string) {
	p.action.Warningf("%s", msg)
}

func (p *ActionsPublisher) Error(msg string) {
	p.action.Errorf("%s", msg)
}

func (p *ActionsPublisher) AddStepSummary(markdown string) {
	if p.getenv("GITHUB_STEP_SUMMARY") == "" {
		logger.Debug("GITHUB_STEP_SUMMARY not set, skipping job summary")
		return
	}
	p.action.AddStepSummary(markdown)
}

func (p *ConsolePublisher) SetOutputs(outputs models.Outputs) {
	for _, kv := range outputs.Values() {
		fmt.Fprintf(p.w, "%s=%q\n", kv[0], kv[1])
	}
}

func (p *ConsolePublisher) Warning(msg string) {
	fmt.Fprintf(p.w, "warning: %s\n", msg)
}

func (p *ConsolePublisher) Error(msg string) {
	fmt.Fprintf(p.w, "error: %s\n", msg)
}

func (p *ConsolePublisher) AddStepSummary(markdown string) {
	fmt.Fprintf(p.w, "\n%s\n", markdown)
}
