package common

import "strings"

// HasAny returns true if values contains any of the wanted strings.
func HasAny(values []string, wanted ...string) bool {
	for _, w := range wanted {
		for _, v := range values {
			if v == w {
				return true
			}
		}
	}
	return false
}

// NormalizeHeader strips a UTF-8 byte order mark and surrounding whitespace
// from a CSV header cell.
func NormalizeHeader(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

// IsHTTPURL reports whether s looks like an http or https URL.
func IsHTTPURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
