// Package relevance scores product titles against a search query.
package relevance

import (
	"regexp"
	"strings"

	"finda-workers/internal/models"
)

// MinMatchRatio is the share of significant query tokens a title must contain.
const MinMatchRatio = 0.6

var (
	disallowed = regexp.MustCompile(`[^a-z0-9çğıöşü ]`)
	spaces     = regexp.MustCompile(`\s+`)

	stopWords = map[string]bool{
		"ve": true, "ile": true, "için": true, "icin": true,
		"the": true, "and": true, "or": true, "a": true, "an": true, "of": true, "for": true,
	}
)

// NormalizeTitle lower-cases, keeps [a-z0-9çğıöşü ] and collapses whitespace.
func NormalizeTitle(title string) string {
	text := disallowed.ReplaceAllString(strings.ToLower(title), " ")
	return strings.TrimSpace(spaces.ReplaceAllString(text, " "))
}

// QueryTokens returns the significant tokens of a query: longer than one
// character and not a stop word.
func QueryTokens(query string) []string {
	var tokens []string
	for _, t := range strings.Fields(NormalizeTitle(query)) {
		if len([]rune(t)) > 1 && !stopWords[t] {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Score is the fraction of significant query tokens found in the normalized
// title. A query without significant tokens scores 0.
func Score(title, query string) float64 {
	return scoreTokens(NormalizeTitle(title), QueryTokens(query))
}

// IsRelevant applies the minRatio threshold. A query without significant
// tokens accepts every title.
func IsRelevant(title, query string, minRatio float64) bool {
	tokens := QueryTokens(query)
	if len(tokens) == 0 {
		return true
	}
	return scoreTokens(NormalizeTitle(title), tokens) >= minRatio
}

// Filter keeps products whose titles pass IsRelevant with MinMatchRatio.
func Filter(products []models.Product, query string) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if IsRelevant(p.Title, query, MinMatchRatio) {
			out = append(out, p)
		}
	}
	return out
}

func scoreTokens(normalizedTitle string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	matches := 0
	for _, t := range tokens {
		if strings.Contains(normalizedTitle, t) {
			matches++
		}
	}
	return float64(matches) / float64(len(tokens))
}
