// Package smalltalk recognizes greetings and thanks that need no LLM round-trip.
package smalltalk

import (
	"strings"
)

// Reply is returned to the user when a message is pure small talk.
const Reply = "Merhaba! Nasıl yardımcı olabilirim?"

// vocabulary entries are stored in their folded (ASCII) form.
var vocabulary = map[string]struct{}{
	"slm":          {},
	"selam":        {},
	"merhaba":      {},
	"mrb":          {},
	"hi":           {},
	"hello":        {},
	"hey":          {},
	"nasilsin":     {},
	"naber":        {},
	"gunaydin":     {},
	"iyi aksamlar": {},
	"iyi geceler":  {},
	"tesekkur":     {},
	"tesekkurler":  {},
	"sagol":        {},
}

var diacritics = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ş", "s", "ğ", "g",
	"ü", "u", "ö", "o", "ç", "c",
)

// Normalize lower-cases text, folds Turkish diacritics to ASCII and collapses whitespace.
func Normalize(text string) string {
	folded := diacritics.Replace(strings.ToLower(strings.TrimSpace(text)))
	return strings.Join(strings.Fields(folded), " ")
}

// IsSmallTalk reports whether text is a single vocabulary entry or
// two to four words that are all vocabulary entries.
func IsSmallTalk(text string) bool {
	normalized := Normalize(text)
	if normalized == "" {
		return false
	}
	if _, ok := vocabulary[normalized]; ok {
		return true
	}

	words := strings.Fields(normalized)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if _, ok := vocabulary[w]; !ok {
			return false
		}
	}
	return true
}
