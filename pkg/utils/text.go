// Package utils provides shared utilities for text and logging.
package utils

// Preview returns the first maxLen runes of s followed by "...".
// The suffix is always appended so previews are visually uniform.
// If maxLen is 0 or negative, returns s unchanged.
func Preview(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return string(runes) + "..."
}
