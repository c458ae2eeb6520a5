package config

import (
	"fmt"

	"github.com/gh-nvat/changelog-gate/src/pkg/reconcile"
)

const (
	RunModeGitHub = "github"
	RunModeLocal  = "local"

	DefaultConfigPath    = ".github/changelog-gate.yml"
	DefaultChangelogPath = "CHANGELOG.md"
)

// Options is the resolved configuration of one run
type Options struct {
	// Run mode: "github" reconciles the pull request, "local" only reports
	RunMode string `koanf:"run_mode" yaml:"run_mode"`

	// Reconciler settings
	LabelName      string `koanf:"label_name" yaml:"label_name"`
	WarningMessage string `koanf:"warning_message" yaml:"warning_message"`
	SuccessMessage string `koanf:"success_message" yaml:"success_message"`

	// GitHub settings
	PullRequestNumber int    `koanf:"pull_request_number" yaml:"pull_request_number"`
	GitHubToken       string `koanf:"github_token" yaml:"github_token"`
	Repository        string `koanf:"repository" yaml:"repository"`
	APIURL            string `koanf:"api_url" yaml:"api_url"`

	// Changelog inputs
	ChangelogPath  string `koanf:"changelog_path" yaml:"changelog_path"`
	BaseRef        string `koanf:"base_ref" yaml:"base_ref"`
	HeadRef        string `koanf:"head_ref" yaml:"head_ref"`
	RepoDir        string `koanf:"repo_dir" yaml:"repo_dir"`
	DiffBackend    string `koanf:"diff_backend" yaml:"diff_backend"`
	DocumentSource string `koanf:"document_source" yaml:"document_source"`

	// Reporting
	TemplatesPath string `koanf:"templates_path" yaml:"templates_path"`
	OutputDir     string `koanf:"output_dir" yaml:"output_dir"`
	ExportReport  bool   `koanf:"export_report" yaml:"export_report"`
	ReportFormat  string `koanf:"report_format" yaml:"report_format"`
	StepSummary   bool   `koanf:"step_summary" yaml:"step_summary"`
	Trace         bool   `koanf:"trace" yaml:"trace"`

	// Logging
	LogLevel  string `koanf:"log_level" yaml:"log_level"`
	LogFormat string `koanf:"log_format" yaml:"log_format"`
}

// GetDefaults returns the default value of every option key
func GetDefaults() map[string]any {
	return map[string]any{
		"run_mode":        RunModeGitHub,
		"label_name":      reconcile.DefaultLabelName,
		"changelog_path":  DefaultChangelogPath,
		"repo_dir":        ".",
		"diff_backend":    "git",
		"document_source": "worktree",
		"output_dir":      "./output",
		"report_format":   "json",
		"step_summary":    true,
		"api_url":         "https://api.github.com",
		"log_level":       "info",
		"log_format":      "text",
	}
}

var knownKeys = map[string]bool{
	"run_mode": true, "label_name": true, "warning_message": true, "success_message": true,
	"pull_request_number": true, "github_token": true, "repository": true, "api_url": true,
	"changelog_path": true, "base_ref": true, "head_ref": true, "repo_dir": true,
	"diff_backend": true, "document_source": true, "templates_path": true, "output_dir": true,
	"export_report": true, "report_format": true, "step_summary": true, "trace": true,
	"log_level": true, "log_format": true,
}

// IsKnownKey reports whether key names an option
func IsKnownKey(key string) bool {
	return knownKeys[key]
}

// ReconcileConfig returns the reconciler configuration
func (o *Options) ReconcileConfig() reconcile.Config {
	return reconcile.Config{
		LabelName:      o.LabelName,
		WarningMessage: o.WarningMessage,
		SuccessMessage: o.SuccessMessage,
		PRNumber:       o.PullRequestNumber,
	}
}

// Redacted returns a copy safe to print
func (o Options) Redacted() Options {
	if o.GitHubToken != "" {
		o.GitHubToken = "***"
	}
	return o
}

var reportFormats = map[string]bool{"json": true, "yaml": true, "md": true, "html": true}

// Validate checks mode-specific requirements
func (o *Options) Validate() error {
	if o.RunMode != RunModeGitHub && o.RunMode != RunModeLocal {
		return fmt.Errorf("run-mode must be '%s' or '%s', got: %s", RunModeGitHub, RunModeLocal, o.RunMode)
	}
	if o.ChangelogPath == "" {
		return fmt.Errorf("changelog-path is required")
	}
	if !reportFormats[o.ReportFormat] {
		return fmt.Errorf("report-format must be one of json, yaml, md, html, got: %s", o.ReportFormat)
	}

	// In github mode missing refs are taken from the pull request
	if o.RunMode == RunModeLocal {
		if o.BaseRef == "" || o.HeadRef == "" {
			return fmt.Errorf("local mode requires --base-ref and --head-ref")
		}
	} else {
		if o.PullRequestNumber <= 0 {
			return fmt.Errorf("github mode requires a positive pull-request-number, got: %d", o.PullRequestNumber)
		}
		if o.GitHubToken == "" {
			return fmt.Errorf("github mode requires github-token")
		}
		if o.Repository == "" {
			return fmt.Errorf("github mode requires repository (owner/repo)")
		}
	}
	return nil
}
