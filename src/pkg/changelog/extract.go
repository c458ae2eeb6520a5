package changelog

import "strings"

// ExtractAddedHeaders returns the version headers added by a unified diff,
// in the order they appear. Only the leading "+" is removed; callers trim.
func ExtractAddedHeaders(diffText string) []string {
	var headers []string
	for _, line := range strings.Split(diffText, "\n") {
		if !strings.HasPrefix(line, AdditionMarker) {
			continue
		}
		added := line[len(AdditionMarker):]
		if IsHeader(added) {
			headers = append(headers, added)
		}
	}
	return headers
}
