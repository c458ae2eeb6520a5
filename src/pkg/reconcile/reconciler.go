package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gh-nvat/changelog-gate/src/pkg/changelog"
	"github.com/gh-nvat/changelog-gate/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "reconcile")

const DefaultLabelName = "empty-changelog"

// LabelNotFoundMessage is the GitHub API message for removing a label the
// pull request does not carry
const LabelNotFoundMessage = "Label does not exist"

// ErrLabelNotFound is returned by annotators when removing a label the pull
// request does not carry
var ErrLabelNotFound = errors.New("label does not exist")

// Annotator defines the pull request operations the reconciler needs
type Annotator interface {
	// AddLabel adds a label; adding a label the PR already has is a no-op
	AddLabel(ctx context.Context, number int, label string) error
	// RemoveLabel removes a label from the pull request
	RemoveLabel(ctx context.Context, number int, label string) error
	// ListLabels returns the label names currently on the pull request
	ListLabels(ctx context.Context, number int) ([]string, error)
	// ListComments returns the comments on the pull request
	ListComments(ctx context.Context, number int) ([]*models.Comment, error)
	// CreateComment creates a new comment on the pull request
	CreateComment(ctx context.Context, number int, body string) (*models.Comment, error)
	// UpdateComment replaces the body of an existing comment
	UpdateComment(ctx context.Context, commentID int64, body string) error
}

// Config holds the reconciler settings. Empty messages disable commenting.
type Config struct {
	LabelName      string
	WarningMessage string
	SuccessMessage string
	PRNumber       int
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.LabelName == "" {
		c.LabelName = DefaultLabelName
	}
	if c.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be a positive integer, got: %d", c.PRNumber)
	}
	return nil
}

type LabelAction string

const (
	LabelNone    LabelAction = "none"
	LabelAdded   LabelAction = "added"
	LabelRemoved LabelAction = "removed"
	// LabelAbsent means removal was requested but the label was already gone
	LabelAbsent LabelAction = "absent"
)

// Outcome describes the effects of one reconciliation pass
type Outcome struct {
	Outputs   models.Outputs
	Label     LabelAction
	Comment   CommentAction
	CommentID int64
}

// Reconciler applies a classification result onto a pull request
type Reconciler struct {
	annotator Annotator
	config    Config
}

// New creates a new reconciler
func New(annotator Annotator, config Config) (*Reconciler, error) {
	if annotator == nil {
		return nil, fmt.Errorf("annotator is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Reconciler{
		annotator: annotator,
		config:    config,
	}, nil
}

// OutputsFor derives the published outputs from a classification result
func OutputsFor(result changelog.Result) models.Outputs {
	if !result.IsEmpty() {
		return models.Outputs{HasEmptyChangelog: false, EmptyHeaders: []string{}}
	}
	return models.Outputs{
		HasEmptyChangelog: true,
		EmptyHeaders:      slices.Clone(result.EmptyHeaders),
	}
}

// Reconcile brings the label and status comment of the pull request in line
// with the result. Label changes always happen before comment changes.
func (r *Reconciler) Reconcile(ctx context.Context, result changelog.Result) (*Outcome, error) {
	outcome := &Outcome{
		Outputs: OutputsFor(result),
		Label:   LabelNone,
		Comment: CommentNone,
	}

	if result.IsEmpty() {
		if err := r.reconcileEmpty(ctx, outcome); err != nil {
			return nil, err
		}
	} else {
		if err := r.reconcilePopulated(ctx, outcome); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

func (r *Reconciler) reconcileEmpty(ctx context.Context, outcome *Outcome) error {
	number, label := r.config.PRNumber, r.config.LabelName

	logger.WithField("pr", number).WithField("label", label).Info("Adding label")
	if err := r.annotator.AddLabel(ctx, number, label); err != nil {
		return err
	}
	outcome.Label = LabelAdded

	if r.config.WarningMessage == "" {
		return nil
	}
	return r.reconcileComment(ctx, outcome, r.config.WarningMessage, r.config.SuccessMessage)
}

func (r *Reconciler) reconcilePopulated(ctx context.Context, outcome *Outcome) error {
	number, label := r.config.PRNumber, r.config.LabelName

	labels, err := r.annotator.ListLabels(ctx, number)
	if err != nil {
		return err
	}
	if !slices.Contains(labels, label) {
		logger.WithField("pr", number).WithField("label", label).Debug("Label not present, nothing to do")
		return nil
	}

	logger.WithField("pr", number).WithField("label", label).Info("Removing label")
	if err := r.annotator.RemoveLabel(ctx, number, label); err != nil {
		if !IsLabelNotFound(err) {
			return err
		}
		logger.WithField("label", label).WithError(err).Debug("Label already removed")
		outcome.Label = LabelAbsent
	} else {
		outcome.Label = LabelRemoved
	}

	if r.config.SuccessMessage == "" {
		return nil
	}
	return r.reconcileComment(ctx, outcome, r.config.SuccessMessage, r.config.WarningMessage)
}

// reconcileComment posts body as the status comment. counterpart is the
// message of the opposite state, whose comment gets replaced in place.
func (r *Reconciler) reconcileComment(ctx context.Context, outcome *Outcome, body, counterpart string) error {
	number := r.config.PRNumber

	comments, err := r.annotator.ListComments(ctx, number)
	if err != nil {
		logger.WithField("pr", number).WithError(err).Warn("Failed to list comments, will create a new comment")
		comments = nil
	}

	plan := PlanComment(comments, body, counterpart)
	switch plan.Action {
	case CommentSkip:
		logger.WithField("commentID", plan.CommentID).Info("Comment already up to date")
	case CommentUpdate:
		logger.WithField("commentID", plan.CommentID).Info("Updating existing comment")
		if err := r.annotator.UpdateComment(ctx, plan.CommentID, body); err != nil {
			return err
		}
	case CommentCreate:
		logger.WithField("pr", number).Info("Creating comment")
		created, err := r.annotator.CreateComment(ctx, number, body)
		if err != nil {
			return err
		}
		if created != nil {
			plan.CommentID = created.ID
		}
	}

	outcome.Comment = plan.Action
	outcome.CommentID = plan.CommentID
	return nil
}

// IsLabelNotFound reports whether err means the label was not on the PR
func IsLabelNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrLabelNotFound) || strings.Contains(err.Error(), LabelNotFoundMessage)
}
