package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gh-nvat/changelog-gate/src/internal/runner"
	"github.com/gh-nvat/changelog-gate/src/pkg/config"
	"github.com/gh-nvat/changelog-gate/src/pkg/github"
	"github.com/gh-nvat/changelog-gate/src/pkg/output"
	"github.com/gh-nvat/changelog-gate/src/pkg/template"
	"github.com/gh-nvat/changelog-gate/src/pkg/trace"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var logger = log.WithField("package", "main")

// errReported marks a failure already surfaced as an error annotation
var errReported = errors.New("check failed")

// failureMessage formats the failure reported for a run
func failureMessage(v any) string {
	if err, ok := v.(error); ok {
		return "Action failed: " + err.Error()
	}
	return "Action failed with unknown error"
}

func loadOptions(cmd *cobra.Command) (*config.Options, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.NewLoader().Load(config.LoadOptions{
		ConfigPath: configPath,
		Overrides:  flagOverrides(cmd.Flags()),
	})
}

func configureLogging(opts *config.Options) error {
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log-level: %w", err)
	}
	log.SetLevel(level)

	switch opts.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("log-format must be 'text' or 'json', got: %s", opts.LogFormat)
	}
	return nil
}

// runCheck runs one check and reports any failure, including panics,
// through the publisher before returning errReported
func runCheck(cmd *cobra.Command) (err error) {
	publisher := output.NewPublisher(cmd.OutOrStdout(), os.Getenv)

	defer func() {
		if v := recover(); v != nil {
			logger.WithField("panic", v).Error("Recovered from panic")
			publisher.Error(failureMessage(v))
			err = errReported
		}
	}()

	if err := check(cmd.Context(), cmd, publisher); err != nil {
		publisher.Error(failureMessage(err))
		return errReported
	}
	return nil
}

func check(ctx context.Context, cmd *cobra.Command, publisher output.Publisher) error {
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := configureLogging(opts); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	shutdown, err := trace.InitTracer(opts.Trace, opts.OutputDir)
	if err != nil {
		return err
	}
	defer shutdown()

	components := runner.Components{
		Publisher: publisher,
		Renderer:  template.NewRenderer(),
	}

	var r runner.RunnerInterface
	switch opts.RunMode {
	case config.RunModeGitHub:
		var clientOpts []github.Option
		if opts.APIURL != "" {
			clientOpts = append(clientOpts, github.WithBaseURL(opts.APIURL))
		}
		client, err := github.NewClient(ctx, opts.GitHubToken, opts.Repository, clientOpts...)
		if err != nil {
			return fmt.Errorf("GitHub authentication failed: %w", err)
		}
		r, err = runner.NewRunnerGitHub(ctx, opts, components, client)
		if err != nil {
			return err
		}
	case config.RunModeLocal:
		r, err = runner.NewRunnerLocal(ctx, opts, components)
		if err != nil {
			return err
		}
	}

	logger.WithField("runMode", opts.RunMode).WithField("changelog", opts.ChangelogPath).Info("Running changelog check")
	if err := r.Initialize(); err != nil {
		return err
	}
	return r.Process()
}

func runConfig(cmd *cobra.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(opts.Redacted())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
