package athenactl

import "strings"

// matchesPattern reports whether value matches a user-supplied name
// filter. A pattern with * wildcards matches by prefix (`pp_*`), suffix
// (`*_log`), or containment (`*event*`); without wildcards it is a
// case-insensitive substring match. An empty pattern matches everything.
func matchesPattern(value, pattern string) bool {
	if pattern == "" {
		return true
	}
	if strings.Contains(pattern, "*") {
		parts := strings.Split(pattern, "*")
		switch {
		case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && len(parts) == 3:
			return strings.Contains(value, parts[1])
		case strings.HasSuffix(pattern, "*") && len(parts) == 2:
			return strings.HasPrefix(value, parts[0])
		case strings.HasPrefix(pattern, "*") && len(parts) == 2:
			return strings.HasSuffix(value, parts[1])
		}
		return value == pattern
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}
