package changelog

import "strings"

// FindSection resolves a header against the document lines and returns its
// section. The first line equal to the trimmed header wins when the header
// occurs more than once. The second return value is false when the header is
// not in the document.
func FindSection(lines []string, header string) (Entry, bool) {
	header = strings.TrimSpace(header)

	start := -1
	for i, line := range lines {
		if line == header {
			start = i
			break
		}
	}
	if start == -1 {
		return Entry{}, false
	}

	// Section runs until the next top-level header or the end of the document
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if IsHeader(lines[i]) {
			end = i
			break
		}
	}

	content := []string{}
	for _, line := range lines[start+1 : end] {
		if strings.TrimSpace(line) == "" || IsHeader(line) {
			continue
		}
		content = append(content, line)
	}

	return Entry{
		Header:     header,
		Content:    content,
		LineNumber: start + 1,
	}, true
}

// Classify resolves every added header against the document and collects the
// ones whose sections are empty. Output order follows the order of headers.
func Classify(headers []string, lines []string) Result {
	result := Result{EmptyHeaders: []string{}}
	for _, header := range headers {
		entry, found := FindSection(lines, header)
		if !found {
			result.Missing = append(result.Missing, strings.TrimSpace(header))
			continue
		}
		result.Entries = append(result.Entries, entry)
		if entry.IsEmpty() {
			result.EmptyHeaders = append(result.EmptyHeaders, entry.Header)
		}
	}
	return result
}
