package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gh-nvat/changelog-gate/src/pkg/models"
)

func sampleReport() models.ReportData {
	return models.ReportData{
		PullRequest:   42,
		ChangelogPath: "CHANGELOG.md",
		BaseRef:       "main",
		HeadRef:       "feature",
		Diff:          models.DiffStats{AddedLineCount: 3, LineCount: 3},
		DiffContent:   "+## [v1.1.0]\n+## [v1.2.0]\n+- Fixed bug",
		Sections: []models.SectionReport{
			{Header: "## [v1.1.0]", LineNumber: 1, Empty: true},
			{Header: "## [v1.2.0]", LineNumber: 2, ContentLines: 1},
		},
		HasEmptyChangelog: true,
		EmptyHeaders:      []string{"## [v1.1.0]"},
		Missing:           []string{"## [v0.9.0]"},
		LabelAction:       "added",
		CommentAction:     "created",
	}
}

func TestRenderer_RenderString(t *testing.T) {
	r := NewRenderer()

	got, err := r.RenderString(`{{if gt .N 1}}many{{else}}few{{end}} {{code .S}}`, map[string]any{"N": 2, "S": "x"})
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if got != "many `x`" {
		t.Errorf("RenderString() = %q", got)
	}

	if _, err := r.RenderString(`{{.Broken`, nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestRenderer_RenderSummary_Default(t *testing.T) {
	got, err := NewRenderer().RenderSummary("", sampleReport())
	if err != nil {
		t.Fatalf("RenderSummary() error = %v", err)
	}

	for _, want := range []string{
		"**Pull request:** #42",
		"| ## [v1.1.0] | 1 | 0 | 🚨 empty |",
		"| ## [v1.2.0] | 2 | 1 | ✅ ok |",
		"- ## [v1.1.0] (No content provided)",
		"- ## [v0.9.0]",
		"**Label:** added | **Comment:** created",
		"```diff\n+## [v1.1.0]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\n%s", want, got)
		}
	}
}

func TestRenderer_RenderSummary_NoEmpty(t *testing.T) {
	data := models.ReportData{ChangelogPath: "CHANGELOG.md", EmptyHeaders: []string{}}
	got, err := NewRenderer().RenderSummary(t.TempDir(), data)
	if err != nil {
		t.Fatalf("RenderSummary() error = %v", err)
	}
	if !strings.Contains(got, "All new changelog entries have content") {
		t.Errorf("summary = %s", got)
	}
	if strings.Contains(got, "Pull request") || strings.Contains(got, "### Diff") {
		t.Errorf("summary should omit pull request and diff sections: %s", got)
	}
}

func TestRenderer_RenderSummary_Custom(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SummaryTemplateFile), []byte("empty={{.HasEmptyChangelog}}"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := NewRenderer().RenderSummary(dir, sampleReport())
	if err != nil {
		t.Fatalf("RenderSummary() error = %v", err)
	}
	if got != "empty=true" {
		t.Errorf("RenderSummary() = %q", got)
	}
}

func TestRenderer_RenderHTML(t *testing.T) {
	got, err := NewRenderer().RenderHTML("a <b>", "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<details>x</details>\n")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	for _, want := range []string{"<title>a &lt;b&gt;</title>", "<h1>Title</h1>", "<table>", "<details>x</details>"} {
		if !strings.Contains(got, want) {
			t.Errorf("html missing %q\n%s", want, got)
		}
	}
}

func TestWarningAnnotation(t *testing.T) {
	got := WarningAnnotation([]string{"## [v1.1.0]", "## [v1.2.0]"})
	want := "🚨 Empty changelog entries detected:\n- ## [v1.1.0] (No content provided)\n- ## [v1.2.0] (No content provided)"
	if got != want {
		t.Errorf("WarningAnnotation() = %q, want %q", got, want)
	}
}
