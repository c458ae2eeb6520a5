package models

import "time"

// ReportData represents the complete report of one changelog check
type ReportData struct {
	Repository    string    `json:"repository,omitempty" yaml:"repository,omitempty"`
	PullRequest   int       `json:"pullRequest,omitempty" yaml:"pullRequest,omitempty"`
	ChangelogPath string    `json:"changelogPath" yaml:"changelogPath"`
	BaseRef       string    `json:"baseRef" yaml:"baseRef"`
	HeadRef       string    `json:"headRef" yaml:"headRef"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`

	// Changelog diff statistics
	Diff DiffStats `json:"diff" yaml:"diff"`
	// Raw unified diff of the changelog
	DiffContent string `json:"diffContent,omitempty" yaml:"diffContent,omitempty"`

	// Sections added by the change, in diff order
	Sections []SectionReport `json:"sections" yaml:"sections"`
	// Headers added by the diff that are not in the current document
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`

	HasEmptyChangelog bool     `json:"hasEmptyChangelog" yaml:"hasEmptyChangelog"`
	EmptyHeaders      []string `json:"emptyHeaders" yaml:"emptyHeaders"`

	// What was done on the pull request, empty in local mode
	LabelAction   string `json:"labelAction,omitempty" yaml:"labelAction,omitempty"`
	CommentAction string `json:"commentAction,omitempty" yaml:"commentAction,omitempty"`
}

// DiffStats represents line counts of the changelog diff
type DiffStats struct {
	AddedLineCount   int `json:"addedLineCount" yaml:"addedLineCount"`
	DeletedLineCount int `json:"deletedLineCount" yaml:"deletedLineCount"`
	LineCount        int `json:"lineCount" yaml:"lineCount"`
}

// SectionReport represents one added version section
type SectionReport struct {
	Header       string `json:"header" yaml:"header"`
	LineNumber   int    `json:"lineNumber" yaml:"lineNumber"`
	ContentLines int    `json:"contentLines" yaml:"contentLines"`
	Empty        bool   `json:"empty" yaml:"empty"`
}
