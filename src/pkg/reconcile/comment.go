package reconcile

import "github.com/gh-nvat/changelog-gate/src/pkg/models"

type CommentAction string

const (
	CommentNone   CommentAction = "none"
	CommentCreate CommentAction = "created"
	CommentUpdate CommentAction = "updated"
	CommentSkip   CommentAction = "skipped"
)

// CommentPlan is the decision taken for the status comment
type CommentPlan struct {
	Action    CommentAction
	CommentID int64
}

// PlanComment decides how to publish body given the existing comments.
//
// The warning and success messages form a single status comment: a comment
// that already carries body is left alone, a comment carrying counterpart is
// rewritten in place, and a new comment is created only when neither exists.
// The first matching comment wins.
func PlanComment(comments []*models.Comment, body, counterpart string) CommentPlan {
	for _, c := range comments {
		if c != nil && c.Body == body {
			return CommentPlan{Action: CommentSkip, CommentID: c.ID}
		}
	}
	if counterpart != "" && counterpart != body {
		for _, c := range comments {
			if c != nil && c.Body == counterpart {
				return CommentPlan{Action: CommentUpdate, CommentID: c.ID}
			}
		}
	}
	return CommentPlan{Action: CommentCreate}
}
