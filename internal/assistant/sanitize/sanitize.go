// Package sanitize neutralizes user text before it is placed into an LLM prompt.
package sanitize

import (
	"regexp"
	"strings"
)

// DefaultMaxLength is the rune budget applied by Message.
const DefaultMaxLength = 800

// Redacted replaces any matched injection phrase.
const Redacted = "[redacted]"

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	whitespace   = regexp.MustCompile(`\s+`)

	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ignore (all|any|previous|above) instructions`),
		regexp.MustCompile(`(?i)disregard (all|any|previous|above) instructions`),
		regexp.MustCompile(`(?i)system prompt`),
		regexp.MustCompile(`(?i)you are now`),
		regexp.MustCompile(`(?i)developer message`),
		regexp.MustCompile(`(?i)role: ?system`),
		regexp.MustCompile(`(?i)role: ?assistant`),
		regexp.MustCompile(`(?i)role: ?user`),
	}
)

// Message sanitizes text with DefaultMaxLength.
func Message(text string) string {
	return Sanitize(text, DefaultMaxLength)
}

// Sanitize strips control characters, lower-cases, redacts injection phrases,
// collapses whitespace and truncates to maxLen runes. maxLen <= 0 disables truncation.
func Sanitize(text string, maxLen int) string {
	if text == "" {
		return ""
	}

	cleaned := controlChars.ReplaceAllString(text, " ")
	cleaned = strings.ToLower(cleaned)
	for _, p := range injectionPatterns {
		cleaned = p.ReplaceAllString(cleaned, Redacted)
	}
	cleaned = strings.TrimSpace(whitespace.ReplaceAllString(cleaned, " "))

	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return cleaned
}
