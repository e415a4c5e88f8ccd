// Package cache stores aggregated product lists for a limited time.
package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"finda-workers/internal/models"
)

// ErrCacheMiss indicates a missing or expired entry.
var ErrCacheMiss = errors.New("cache miss")

// DefaultTTL is how long a product list stays fresh.
const DefaultTTL = 600 * time.Second

// Cache is the product list store used by the aggregator.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.Product, error)
	Set(ctx context.Context, key string, products []models.Product) error
}

// Key builds the cache key for a query and mode. Queries differing only in
// case or surrounding/duplicate whitespace share an entry.
func Key(query string, compareMode bool) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return normalized + "_" + strconv.FormatBool(compareMode)
}
