package changelog

import "strings"

const (
	// HeaderPrefix marks a top-level version section, e.g. "## [v1.4.2](...)"
	HeaderPrefix = "## ["

	// AdditionMarker is the first character of an added line in a unified diff
	AdditionMarker = "+"
)

// Entry represents one version section resolved from the changelog document
type Entry struct {
	Header     string
	Content    []string
	LineNumber int // 1-based line of the header in the document
}

// IsEmpty reports whether the section has no content lines
func (e Entry) IsEmpty() bool {
	return len(e.Content) == 0
}

// Result is the aggregate classification of the headers added by a change
type Result struct {
	// EmptyHeaders lists trimmed headers without content, in diff order
	EmptyHeaders []string
	// Entries holds every header that could be resolved in the document
	Entries []Entry
	// Missing holds headers present in the diff but not in the document
	Missing []string
}

// IsEmpty reports whether at least one added section is empty
func (r Result) IsEmpty() bool {
	return len(r.EmptyHeaders) > 0
}

// IsHeader reports whether the line opens a top-level version section
func IsHeader(line string) bool {
	return strings.HasPrefix(line, HeaderPrefix)
}

// SplitLines splits document text into lines, dropping the CR of CRLF endings
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
