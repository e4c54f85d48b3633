package utils

import "strings"

// NormalizeTypeLabel canonicalizes a free-text classifier (cultural item
// type, fitness level) for table lookups: trimmed and lower-cased.
func NormalizeTypeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
