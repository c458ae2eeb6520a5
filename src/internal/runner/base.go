package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gh-nvat/changelog-gate/src/pkg/changelog"
	"github.com/gh-nvat/changelog-gate/src/pkg/config"
	"github.com/gh-nvat/changelog-gate/src/pkg/diff"
	"github.com/gh-nvat/changelog-gate/src/pkg/document"
	"github.com/gh-nvat/changelog-gate/src/pkg/models"
	"github.com/gh-nvat/changelog-gate/src/pkg/reconcile"
	"github.com/gh-nvat/changelog-gate/src/pkg/template"
	"github.com/gh-nvat/changelog-gate/src/pkg/trace"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

var logger = log.WithField("package", "runner")

const reportTitle = "Changelog check"

type RunnerBase struct {
	Context context.Context
	Options *config.Options

	RunMode string

	Components

	// Instance receives the mode-specific calls made by Process
	Instance RunnerInterface
}

// make RunnerBase implement RunnerInterface
var _ RunnerInterface = (*RunnerBase)(nil)

func NewRunnerBase(ctx context.Context, options *config.Options, components Components) (*RunnerBase, error) {
	if options == nil {
		return nil, fmt.Errorf("options are required")
	}
	runner := &RunnerBase{
		Context:    ctx,
		Options:    options,
		RunMode:    options.RunMode,
		Components: components,
	}
	runner.Instance = runner
	return runner, nil
}

func (r *RunnerBase) Initialize() error {
	logger.Info("Initialize runner: starting...")

	if r.Publisher == nil || r.Renderer == nil {
		return fmt.Errorf("publisher and renderer are required")
	}

	if r.Differ == nil {
		differ, err := diff.NewProvider(r.Options.DiffBackend, r.Options.RepoDir)
		if err != nil {
			return err
		}
		r.Differ = differ
	}
	if r.Documents == nil {
		documents, err := document.NewProvider(r.Options.DocumentSource, r.Options.RepoDir, r.Options.HeadRef)
		if err != nil {
			return err
		}
		r.Documents = documents
	}

	logger.Info("Initialize runner: done.")
	return nil
}

func (r *RunnerBase) DiffChangelog(ctx context.Context) (result *ChangelogDiff, err error) {
	logger.Info("DiffChangelog: starting...")
	ctx, span := trace.StartSpan(ctx, "DiffChangelog", attribute.String("path", r.Options.ChangelogPath))
	defer func() { trace.EndSpan(span, err) }()

	content, err := r.Differ.Diff(ctx, r.Options.ChangelogPath, r.Options.BaseRef, r.Options.HeadRef)
	if err != nil {
		logger.WithError(err).Error("Failed to diff changelog")
		return nil, err
	}
	logger.WithField("diffContent", content).Debug("Diffed changelog")

	added, deleted, total := diff.CalcLineChangesFromDiffContent(content)
	headers := changelog.ExtractAddedHeaders(content)
	logger.WithFields(log.Fields{
		"added":   added,
		"deleted": deleted,
		"headers": len(headers),
	}).Info("DiffChangelog: done.")

	return &ChangelogDiff{
		Content: content,
		Stats: models.DiffStats{
			AddedLineCount:   added,
			DeletedLineCount: deleted,
			LineCount:        total,
		},
		Headers: headers,
	}, nil
}

func (r *RunnerBase) Classify(ctx context.Context, d *ChangelogDiff) (result *changelog.Result, err error) {
	logger.Info("Classify: starting...")
	ctx, span := trace.StartSpan(ctx, "Classify", attribute.Int("headers", len(d.Headers)))
	defer func() { trace.EndSpan(span, err) }()

	text, err := r.Documents.ReadText(ctx, r.Options.ChangelogPath)
	if err != nil {
		logger.WithError(err).Error("Failed to read changelog")
		return nil, err
	}

	res := changelog.Classify(d.Headers, changelog.SplitLines(text))
	for _, h := range res.Missing {
		logger.WithField("header", h).Debug("Header not found in changelog, skipping")
	}

	logger.WithField("emptyHeaders", res.EmptyHeaders).Info("Classify: done.")
	return &res, nil
}

// Annotate does nothing without a pull request
func (r *RunnerBase) Annotate(context.Context, *changelog.Result) (*reconcile.Outcome, error) {
	logger.Info("Annotate: no pull request to annotate")
	return nil, nil
}

func (r *RunnerBase) Process() error {
	logger.Info("Process: starting...")
	ctx, span := trace.StartSpan(r.Context, "Process", attribute.String("runMode", r.RunMode))
	defer span.End()

	d, err := r.Instance.DiffChangelog(ctx)
	if err != nil {
		return err
	}

	result, err := r.Instance.Classify(ctx, d)
	if err != nil {
		return err
	}

	r.publish(reconcile.OutputsFor(*result))

	outcome, err := r.Instance.Annotate(ctx, result)
	if err != nil {
		return err
	}

	if err := r.Instance.Output(r.reportData(d, result, outcome)); err != nil {
		return err
	}

	logger.Info("Process: done.")
	return nil
}

// publish sets both outputs and warns about empty entries
func (r *RunnerBase) publish(outputs models.Outputs) {
	r.Publisher.SetOutputs(outputs)
	if outputs.HasEmptyChangelog {
		r.Publisher.Warning(template.WarningAnnotation(outputs.EmptyHeaders))
	}
}

func (r *RunnerBase) reportData(d *ChangelogDiff, result *changelog.Result, outcome *reconcile.Outcome) *models.ReportData {
	data := &models.ReportData{
		Repository:        r.Options.Repository,
		PullRequest:       r.Options.PullRequestNumber,
		ChangelogPath:     r.Options.ChangelogPath,
		BaseRef:           r.Options.BaseRef,
		HeadRef:           r.Options.HeadRef,
		Timestamp:         time.Now().UTC(),
		Diff:              d.Stats,
		DiffContent:       d.Content,
		Missing:           result.Missing,
		HasEmptyChangelog: result.IsEmpty(),
		EmptyHeaders:      result.EmptyHeaders,
	}
	if r.RunMode == config.RunModeLocal {
		data.PullRequest = 0
	}
	for _, e := range result.Entries {
		data.Sections = append(data.Sections, models.SectionReport{
			Header:       e.Header,
			LineNumber:   e.LineNumber,
			ContentLines: len(e.Content),
			Empty:        e.IsEmpty(),
		})
	}
	if outcome != nil {
		data.LabelAction = string(outcome.Label)
		data.CommentAction = string(outcome.Comment)
	}
	return data
}

func (r *RunnerBase) Output(data *models.ReportData) error {
	logger.Info("Output: starting...")
	if err := r.outputStepSummary(data); err != nil {
		return err
	}
	if err := r.outputReport(data); err != nil {
		return err
	}
	logger.Info("Output: done.")
	return nil
}

func (r *RunnerBase) outputStepSummary(data *models.ReportData) error {
	if !r.Options.StepSummary {
		logger.Info("OutputStepSummary: option was disabled")
		return nil
	}

	summary, err := r.Renderer.RenderSummary(r.Options.TemplatesPath, data)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	r.Publisher.AddStepSummary(summary)
	return nil
}

// Exporting report file to output directory if enabled
func (r *RunnerBase) outputReport(data *models.ReportData) error {
	if !r.Options.ExportReport {
		logger.Info("OutputReport: option was disabled")
		return nil
	}
	logger.WithField("format", r.Options.ReportFormat).Info("OutputReport: starting...")

	content, err := r.renderReport(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.Options.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filePath := filepath.Join(r.Options.OutputDir, "report."+r.Options.ReportFormat)
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		logger.WithField("filePath", filePath).WithError(err).Error("Failed to write report data to file")
		return err
	}
	logger.WithField("filePath", filePath).Info("Written report data to file")
	return nil
}

func (r *RunnerBase) renderReport(data *models.ReportData) ([]byte, error) {
	switch r.Options.ReportFormat {
	case "json":
		return json.MarshalIndent(data, "", "  ")
	case "yaml":
		return yaml.Marshal(data)
	case "md", "html":
		summary, err := r.Renderer.RenderSummary(r.Options.TemplatesPath, data)
		if err != nil {
			return nil, fmt.Errorf("failed to render report: %w", err)
		}
		if r.Options.ReportFormat == "md" {
			return []byte(summary), nil
		}
		page, err := r.Renderer.RenderHTML(reportTitle, summary)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", r.Options.ReportFormat)
	}
}
