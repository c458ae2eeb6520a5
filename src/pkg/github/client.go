package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gh-nvat/changelog-gate/src/pkg/models"
	"github.com/gh-nvat/changelog-gate/src/pkg/reconcile"
	"github.com/google/go-github/v75/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var logger = log.WithField("package", "github")

const perPage = 100

// GitHubClient defines the interface for GitHub API operations
type GitHubClient interface {
	reconcile.Annotator

	// GetPR retrieves pull request information
	GetPR(ctx context.Context, number int) (*models.PullRequest, error)
}

// Client handles GitHub API interactions for one repository using go-github
type Client struct {
	client *github.Client
	owner  string
	repo   string
}

// Ensure Client implements GitHubClient
var _ GitHubClient = (*Client)(nil)

// Option configures a Client
type Option func(*Client) error

// WithBaseURL points the client at another API endpoint (GHES, tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return fmt.Errorf("invalid API URL %q: %w", baseURL, err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// NewClient creates a new GitHub client for the "owner/repo" repository
func NewClient(ctx context.Context, token, repository string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not found. Set github-token, GH_TOKEN or GITHUB_TOKEN")
	}
	owner, repo, err := ParseOwnerRepo(repository)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	c := &Client{
		client: github.NewClient(oauth2.NewClient(ctx, ts)),
		owner:  owner,
		repo:   repo,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// GetPR retrieves pull request information
func (c *Client) GetPR(ctx context.Context, number int) (*models.PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get PR: %w", err)
	}

	return &models.PullRequest{
		Number:  pr.GetNumber(),
		BaseRef: pr.GetBase().GetSHA(),
		HeadRef: pr.GetHead().GetSHA(),
	}, nil
}

// AddLabel adds a label to the pull request; GitHub ignores labels already present
func (c *Client) AddLabel(ctx context.Context, number int, label string) error {
	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, c.owner, c.repo, number, []string{label})
	if err != nil {
		return fmt.Errorf("failed to add label %q: %w", label, err)
	}
	logger.WithField("pr", number).WithField("label", label).Debug("Added label")
	return nil
}

// RemoveLabel removes a label from the pull request. A 404 is reported as
// reconcile.ErrLabelNotFound.
func (c *Client) RemoveLabel(ctx context.Context, number int, label string) error {
	_, err := c.client.Issues.RemoveLabelForIssue(ctx, c.owner, c.repo, number, label)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("failed to remove label %q: %w: %w", label, reconcile.ErrLabelNotFound, err)
		}
		return fmt.Errorf("failed to remove label %q: %w", label, err)
	}
	logger.WithField("pr", number).WithField("label", label).Debug("Removed label")
	return nil
}

// ListLabels retrieves the names of all labels on the pull request
func (c *Client) ListLabels(ctx context.Context, number int) ([]string, error) {
	opts := &github.ListOptions{PerPage: perPage}

	var names []string
	for {
		labels, resp, err := c.client.Issues.ListLabelsByIssue(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		for _, l := range labels {
			names = append(names, l.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}

// ListComments retrieves all comments for a pull request
func (c *Client) ListComments(ctx context.Context, number int) ([]*models.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var allComments []*models.Comment
	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to get comments: %w", err)
		}

		for _, ic := range comments {
			allComments = append(allComments, toComment(ic))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// CreateComment creates a new comment on a pull request
func (c *Client) CreateComment(ctx context.Context, number int, body string) (*models.Comment, error) {
	created, _, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return toComment(created), nil
}

// UpdateComment updates an existing comment
func (c *Client) UpdateComment(ctx context.Context, commentID int64, body string) error {
	_, res, err := c.client.Issues.EditComment(ctx, c.owner, c.repo, commentID, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	logger.WithField("commentID", commentID).WithField("status", res.Status).Debug("Updated comment")
	return nil
}

func toComment(ic *github.IssueComment) *models.Comment {
	return &models.Comment{
		ID:        ic.GetID(),
		Body:      ic.GetBody(),
		User:      ic.GetUser().GetLogin(),
		CreatedAt: ic.GetCreatedAt().Time,
		UpdatedAt: ic.GetUpdatedAt().Time,
	}
}
