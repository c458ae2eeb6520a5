package template

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/gh-nvat/changelog-gate/src/pkg/diff"
	log "github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var logger = log.WithField("package", "template")

const (
	SummaryTemplateFile = "summary.md.tmpl"

	// Diffs longer than this are collapsed in the summary
	maxInlineDiffLines = 40
)

// Renderer handles template rendering
type Renderer struct {
	funcMap  template.FuncMap
	markdown goldmark.Markdown
}

// NewRenderer creates a new template renderer
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: template.FuncMap{
			"gt":   func(a, b int) bool { return a > b },
			"diff": func(content string) string { return diff.FormatForMarkdown(content, maxInlineDiffLines) },
			"code": func(s string) string { return "`" + s + "`" },
		},
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			// summaries embed <details> blocks
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render renders a template file with the provided data
func (r *Renderer) Render(templatePath string, data any) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}

	return r.RenderString(string(content), data)
}

// RenderString renders a template string with the provided data
func (r *Renderer) RenderString(templateStr string, data any) (string, error) {
	tmpl, err := template.New("template").Funcs(r.funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// RenderSummary renders the markdown summary of a check. A summary.md.tmpl
// in templatesDir replaces the built-in template.
func (r *Renderer) RenderSummary(templatesDir string, data any) (string, error) {
	if templatesDir != "" {
		path := filepath.Join(templatesDir, SummaryTemplateFile)
		if _, err := os.Stat(path); err == nil {
			logger.WithField("path", path).Debug("Using custom summary template")
			return r.Render(path, data)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat summary template: %w", err)
		}
	}
	return r.RenderString(GetDefaultSummaryTemplate(), data)
}

// RenderHTML converts markdown into a standalone HTML page
func (r *Renderer) RenderHTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := r.markdown.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + template.HTMLEscapeString(title) + "</title>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

// WarningAnnotation returns the workflow warning listing the empty entries
func WarningAnnotation(headers []string) string {
	lines := make([]string, 0, len(headers)+1)
	lines = append(lines, "🚨 Empty changelog entries detected:")
	for _, h := range headers {
		lines = append(lines, fmt.Sprintf("- %s (No content provided)", h))
	}
	return strings.Join(lines, "\n")
}

// GetDefaultSummaryTemplate returns the default summary template.
// This template expects a models.ReportData.
func GetDefaultSummaryTemplate() string {
	return `## 📝 Changelog check

{{if .PullRequest}}**Pull request:** #{{.PullRequest}}
{{end}}**Changelog:** {{code .ChangelogPath}}
**Base:** {{code .BaseRef}} → **Head:** {{code .HeadRef}}
**Lines changed:** {{.Diff.LineCount}} (+{{.Diff.AddedLineCount}} / -{{.Diff.DeletedLineCount}})

{{if .Sections}}| Version | Line | Content lines | Status |
|---------|------|---------------|--------|
{{range .Sections}}| {{.Header}} | {{.LineNumber}} | {{.ContentLines}} | {{if .Empty}}🚨 empty{{else}}✅ ok{{end}} |
{{end}}{{else}}No new version sections were added.
{{end}}
{{if .HasEmptyChangelog}}### 🚨 Empty entries

{{range .EmptyHeaders}}- {{.}} (No content provided)
{{end}}{{else}}✅ All new changelog entries have content.
{{end}}{{if .Missing}}
### Not found in the current changelog

{{range .Missing}}- {{.}}
{{end}}{{end}}{{if .LabelAction}}
**Label:** {{.LabelAction}}{{if .CommentAction}} | **Comment:** {{.CommentAction}}{{end}}
{{end}}{{if gt .Diff.LineCount 0}}
### Diff

{{diff .DiffContent}}
{{end}}`
}
