// Package sources fetches raw product listings from external providers and
// maps them onto models.Product. Sources do not filter for relevance.
package sources

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"finda-workers/internal/models"
)

// ErrSourceUnavailable is returned by sources that lack credentials or are disabled.
var ErrSourceUnavailable = errors.New("SOURCE_UNAVAILABLE")

// Source returns product listings for a free-text query.
type Source interface {
	Name() string
	Search(ctx context.Context, query string) ([]models.Product, error)
}

// toInt coerces loosely typed counts such as 120, 120.0 or "1,204".
func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(n), ",", ""))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// positiveRatio maps a 0-5 rating to a 0-100 share.
func positiveRatio(rating float64) int {
	if rating <= 0 {
		return 0
	}
	return int(rating * 20)
}
