package models

import "time"

// PullRequest represents GitHub pull request information
type PullRequest struct {
	Number  int
	BaseRef string
	HeadRef string
}

// Comment represents a GitHub issue comment on a pull request
type Comment struct {
	ID        int64
	Body      string
	User      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
