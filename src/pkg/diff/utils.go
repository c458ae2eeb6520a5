package diff

import (
	"fmt"
	"strings"
)

// CalcLineChangesFromDiffContent calculates the number of added and deleted lines from a diff content
// returns: addedLines, deletedLines, totalLines
// operates on unified diff output; file header lines ("+++", "---") are not counted
func CalcLineChangesFromDiffContent(diffContent string) (int, int, int) {
	addedLines := 0
	deletedLines := 0
	for _, line := range strings.Split(diffContent, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ "), strings.HasPrefix(line, "--- "):
			continue
		case strings.HasPrefix(line, "+"):
			addedLines++
		case strings.HasPrefix(line, "-"):
			deletedLines++
		}
	}
	return addedLines, deletedLines, addedLines + deletedLines
}

// FormatForMarkdown formats the diff for display in markdown
func FormatForMarkdown(diff string, maxLines int) string {
	if diff == "" {
		return "_No changes detected_"
	}

	diff = strings.TrimRight(diff, "\n")
	lineCount := strings.Count(diff, "\n") + 1

	var result strings.Builder
	if lineCount > maxLines {
		result.WriteString(fmt.Sprintf("<details>\n<summary>Changelog diff (%d lines, click to expand)</summary>\n\n", lineCount))
		result.WriteString("```diff\n")
		result.WriteString(diff)
		result.WriteString("\n```\n")
		result.WriteString("</details>")
		return result.String()
	}

	result.WriteString("```diff\n")
	result.WriteString(diff)
	result.WriteString("\n```")
	return result.String()
}
