// Package strings holds small string-slice helpers shared across handlers.
package strings

import "strings"

// DedupeAndTrim trims each element and drops empties and repeats, keeping
// first-seen order. Used to sanitize repeated query parameters such as
// notification type filters.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
