// Package sanitize provides text sanitization for user-supplied input.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	// controlRegex matches control characters, including newlines and tabs
	controlRegex = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only use.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text strips markup and control characters and collapses runs of
// whitespace to a single space. Use for free-text fields that end up
// inside outbound search queries.
func Text(s string) string {
	result := StripHTML(s)
	result = controlRegex.ReplaceAllString(result, " ")
	return strings.Join(strings.Fields(result), " ")
}
