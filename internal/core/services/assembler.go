package services

import "strings"

// AssembleText joins recognised lines into the text handed to the PII detector.
// Every line contributes a single space followed by its text, so the result
// starts with a space unless there are no lines, in which case it is empty.
func AssembleText(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	size := 0
	for _, line := range lines {
		size += len(line) + 1
	}

	var b strings.Builder
	b.Grow(size)
	for _, line := range lines {
		b.WriteByte(' ')
		b.WriteString(line)
	}
	return b.String()
}
