// Package dedupe removes repeated listings of the same product.
package dedupe

import (
	"strings"

	"finda-workers/internal/models"
	"finda-workers/internal/shopping/relevance"
)

const (
	StrategySimilarity = "similarity"
	StrategyPrefix     = "prefix"

	DefaultThreshold   = 0.84
	DefaultJaccardGate = 0.55
	DefaultPrefixLen   = 85
)

// Deduplicator keeps the first occurrence of each product, preserving order.
// Products whose normalized title is empty are dropped.
type Deduplicator interface {
	Dedupe(products []models.Product) []models.Product
}

// New returns the strategy registered under name; unknown names get Similarity.
func New(strategy string, threshold float64) Deduplicator {
	if strings.EqualFold(strategy, StrategyPrefix) {
		return PrefixKey{Length: DefaultPrefixLen}
	}
	return Similarity{Threshold: threshold}
}

// PrefixKey treats products as equal when the first Length runes of their
// normalized titles match.
type PrefixKey struct {
	Length int
}

func (p PrefixKey) Dedupe(products []models.Product) []models.Product {
	length := p.Length
	if length <= 0 {
		length = DefaultPrefixLen
	}

	seen := make(map[string]bool, len(products))
	unique := make([]models.Product, 0, len(products))
	for _, product := range products {
		key := relevance.NormalizeTitle(product.Title)
		if r := []rune(key); len(r) > length {
			key = string(r[:length])
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, product)
	}
	return unique
}

// Similarity treats two products as equal when their normalized titles share
// at least JaccardGate of their tokens and their SequenceRatio reaches Threshold.
type Similarity struct {
	Threshold   float64
	JaccardGate float64
}

func (s Similarity) Dedupe(products []models.Product) []models.Product {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	gate := s.JaccardGate
	if gate <= 0 {
		gate = DefaultJaccardGate
	}

	type accepted struct {
		title  string
		tokens map[string]bool
	}

	var kept []accepted
	unique := make([]models.Product, 0, len(products))
	for _, product := range products {
		title := relevance.NormalizeTitle(product.Title)
		if title == "" {
			continue
		}
		tokens := tokenSet(title)

		duplicate := false
		for _, u := range kept {
			if Jaccard(tokens, u.tokens) < gate {
				continue
			}
			if SequenceRatio(title, u.title) >= threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, accepted{title: title, tokens: tokens})
		unique = append(unique, product)
	}
	return unique
}

// Jaccard is |a∩b| / |a∪b|; two empty sets give 0.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func tokenSet(title string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(title) {
		set[t] = true
	}
	return set
}
