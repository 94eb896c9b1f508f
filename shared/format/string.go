package format

import "strings"

// Preview returns a truncated, whitespace-trimmed string for logging and
// error messages.
func Preview(s string, length int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length]) + "..."
}

// SplitList splits a comma separated OMDb list ("Action, Crime, Drama") into
// trimmed, non-empty entries.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
