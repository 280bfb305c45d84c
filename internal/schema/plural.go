// ABOUTME: Suffix-rule pluralization for entity display names.
// ABOUTME: Deterministic and cosmetic; used for titles, slugs and notifications.

package schema

import "strings"

// Plural returns the English plural of name using simple suffix rules.
func Plural(name string) string {
	if name == "" {
		return name
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !isVowel(lower[len(lower)-2]):
		return name[:len(name)-1] + "ies"
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"), strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"), strings.HasSuffix(lower, "sh"):
		return name + "es"
	default:
		return name + "s"
	}
}

func isVowel(c byte) bool {
	return strings.IndexByte("aeiou", c) >= 0
}
