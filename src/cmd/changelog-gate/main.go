package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gh-nvat/changelog-gate/src/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// failures of a check were already reported through the publisher
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog-gate",
		Short: "Flag pull requests that add empty changelog entries",
		Long: `changelog-gate inspects the changelog diff of a pull request, detects newly added
version sections without content, and reflects the verdict with a label, a status comment
and workflow outputs.`,
		Version:       fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd)
		},
	}

	addFlags(cmd.PersistentFlags())
	cmd.AddCommand(newCheckCmd(), newConfigCmd())
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the changelog and annotate the pull request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd)
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd)
		},
	}
}

func addFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to YAML config file (default "+config.DefaultConfigPath+" when present)")

	// Run mode
	flags.String("run-mode", config.RunModeGitHub, "Run mode: github or local")

	// Reconciler flags
	flags.String("label-name", "empty-changelog", "Label applied while the changelog has empty entries")
	flags.String("warning-message", "", "Comment posted when empty entries are detected")
	flags.String("success-message", "", "Comment posted once the label is removed")

	// GitHub mode flags
	flags.Int("pull-request-number", 0, "Pull request number [github mode]")
	flags.String("github-token", "", "GitHub token [github mode]")
	flags.String("repository", "", "GitHub repository (e.g., org/repo) [github mode]")
	flags.String("api-url", "https://api.github.com", "GitHub API URL [github mode]")

	// Changelog flags
	flags.String("changelog-path", config.DefaultChangelogPath, "Path of the changelog within the repository")
	flags.String("base-ref", "", "Base revision (default GITHUB_BASE_REF or the pull request base)")
	flags.String("head-ref", "", "Head revision (default GITHUB_HEAD_REF or the pull request head)")
	flags.String("repo-dir", ".", "Repository directory")
	flags.String("diff-backend", "git", "Diff backend: git or go-git")
	flags.String("document-source", "worktree", "Changelog source: worktree or revision")

	// Reporting flags
	flags.String("templates-path", "", "Directory holding a custom summary.md.tmpl")
	flags.String("output-dir", "./output", "Output directory for reports")
	flags.Bool("export-report", false, "Write report.<format> to the output directory")
	flags.String("report-format", "json", "Report format: json, yaml, md or html")
	flags.Bool("step-summary", true, "Append a markdown summary to the job summary")
	flags.Bool("trace", false, "Write performance-report.json to the output directory")

	// Logging flags
	flags.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
}

// flagOverrides returns the flags set on the command line keyed by option name
func flagOverrides(flags *pflag.FlagSet) map[string]any {
	overrides := make(map[string]any)
	flags.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		overrides[f.Name] = f.Value.String()
	})
	return overrides
}
