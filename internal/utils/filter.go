package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsBlank reports whether s is empty or only whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RuneLen returns the number of characters in s
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// HasControlChars checks if a string contains control characters other than tab
func HasControlChars(s string) bool {
	for _, r := range s {
		if r != '\t' && unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// Truncate cuts s to at most n characters, adding an ellipsis when it cut
// Used to keep user input short in log lines.
func Truncate(s string, n int) string {
	if n <= 0 || RuneLen(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
