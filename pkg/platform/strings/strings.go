// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// FirstNonBlank returns the first value that is not empty after trimming,
// trimmed, and whether one was found.
//
// Example:
//
//	FirstNonBlank("", "  ", " ACME ", "other")
//	// Returns: "ACME", true
func FirstNonBlank(values ...string) (string, bool) {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// JoinPresent joins the non-blank parts with single spaces. Blank parts
// contribute nothing, not even a separator.
//
// Example:
//
//	JoinPresent("12", "", "RUE", "DE LA PAIX")
//	// Returns: "12 RUE DE LA PAIX"
func JoinPresent(parts ...string) string {
	present := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			present = append(present, trimmed)
		}
	}
	return strings.Join(present, " ")
}
