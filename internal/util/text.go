package util

import (
	"strings"
	"unicode/utf8"
)

const byteOrderMark = "\ufeff"

// NormalizeField trims surrounding whitespace and a leading byte order mark
// from a form or file field.
func NormalizeField(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, byteOrderMark))
}

// IsBlank reports whether s is empty once normalised.
func IsBlank(s string) bool {
	return NormalizeField(s) == ""
}

// ValidText reports whether every field is well-formed UTF-8.
func ValidText(fields ...string) bool {
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return false
		}
	}
	return true
}
