package api

import (
	"strings"
	"unicode"
)

// suggestable rejects queries too short to rank usefully: under two
// characters with no digit, nothing matches well enough to bother.
func suggestable(q string) bool {
	q = strings.TrimSpace(q)
	if len(q) >= 2 {
		return true
	}
	for _, r := range q {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}
