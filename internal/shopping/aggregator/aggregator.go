// Package aggregator merges product listings from the configured sources into
// one ranked, de-duplicated and cached result set.
package aggregator

import (
	"context"
	"errors"
	"sort"
	"strings"

	"finda-workers/internal/common/logger"
	"finda-workers/internal/common/metrics"
	"finda-workers/internal/models"
	"finda-workers/internal/shopping/cache"
	"finda-workers/internal/shopping/dedupe"
	"finda-workers/internal/shopping/relevance"
	"finda-workers/internal/shopping/sources"
)

const (
	DefaultMinResults   = 5
	DefaultCompareLimit = 5
)

// Options tunes the aggregation steps. Zero values fall back to defaults.
type Options struct {
	MinResults   int
	CompareLimit int
	Deduplicator dedupe.Deduplicator
}

// Request is one aggregation call. SiteFilter only applies in compare mode and
// hides sellers whose site name contains it, unless that would hide them all.
type Request struct {
	Query       string
	CompareMode bool
	SiteFilter  string
}

type Result struct {
	Products []models.Product
	Cached   bool
}

type Aggregator struct {
	primary  sources.Source
	backfill []sources.Source
	cache    cache.Cache
	opts     Options
	logger   logger.Logger
}

// New wires the primary source, the ordered backfill sources and the cache.
// primary and cache may be nil.
func New(primary sources.Source, backfill []sources.Source, c cache.Cache, opts Options, log logger.Logger) *Aggregator {
	if opts.MinResults <= 0 {
		opts.MinResults = DefaultMinResults
	}
	if opts.CompareLimit <= 0 {
		opts.CompareLimit = DefaultCompareLimit
	}
	if opts.Deduplicator == nil {
		opts.Deduplicator = dedupe.Similarity{Threshold: dedupe.DefaultThreshold}
	}
	return &Aggregator{
		primary:  primary,
		backfill: backfill,
		cache:    c,
		opts:     opts,
		logger:   log,
	}
}

// GetProducts returns the ranked product list for query. It never fails: a
// source or cache error only shrinks the result.
func (a *Aggregator) GetProducts(ctx context.Context, query string, compareMode bool) []models.Product {
	return a.Search(ctx, Request{Query: query, CompareMode: compareMode}).Products
}

func (a *Aggregator) Search(ctx context.Context, req Request) Result {
	products, cached := a.products(ctx, req.Query, req.CompareMode)
	if req.CompareMode && req.SiteFilter != "" {
		products = excludeSite(products, req.SiteFilter)
	}
	return Result{Products: products, Cached: cached}
}

func (a *Aggregator) products(ctx context.Context, query string, compareMode bool) ([]models.Product, bool) {
	key := cache.Key(query, compareMode)

	if a.cache != nil {
		cached, err := a.cache.Get(ctx, key)
		switch {
		case err == nil:
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			a.logger.Debug("Products served from cache", map[string]interface{}{"query": query, "compareMode": compareMode})
			return cached, true
		case errors.Is(err, cache.ErrCacheMiss):
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		default:
			metrics.CacheRequests.WithLabelValues("error").Inc()
			a.logger.Warn("Product cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	results := a.fetch(ctx, query)

	if compareMode {
		results = perSite(results, a.opts.CompareLimit)
	} else {
		results = a.opts.Deduplicator.Dedupe(results)
	}
	rank(results, query)

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, results); err != nil {
			a.logger.Warn("Product cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	metrics.ProductsReturned.Observe(float64(len(results)))
	a.logger.Info("Products aggregated", map[string]interface{}{
		"query":       query,
		"compareMode": compareMode,
		"count":       len(results),
	})
	return results, false
}

// fetch runs the primary source with the strict relevance filter, relaxes it
// when too few items pass, then tops up from the backfill sources.
func (a *Aggregator) fetch(ctx context.Context, query string) []models.Product {
	var results []models.Product

	if a.primary != nil {
		raw := a.fromSource(ctx, a.primary, query)
		strict := relevance.Filter(raw, query)
		if len(strict) < a.opts.MinResults {
			results = append(results, raw...)
		} else {
			results = append(results, strict...)
		}
	}

	for _, src := range a.backfill {
		if len(results) >= a.opts.MinResults {
			break
		}
		results = append(results, relevance.Filter(a.fromSource(ctx, src, query), query)...)
	}
	return results
}

func (a *Aggregator) fromSource(ctx context.Context, src sources.Source, query string) []models.Product {
	products, err := src.Search(ctx, query)
	if err != nil {
		fields := map[string]interface{}{"source": src.Name(), "error": err.Error()}
		if errors.Is(err, sources.ErrSourceUnavailable) {
			a.logger.Info("Product source unavailable", fields)
		} else {
			a.logger.Warn("Product source failed", fields)
		}
		return nil
	}
	metrics.SourceProducts.WithLabelValues(src.Name()).Add(float64(len(products)))
	return products
}

// perSite keeps the first listing of each named site, up to limit.
func perSite(products []models.Product, limit int) []models.Product {
	seen := make(map[string]bool)
	out := make([]models.Product, 0, limit)
	for _, p := range products {
		if len(out) == limit {
			break
		}
		if p.Site == "" || seen[p.Site] {
			continue
		}
		seen[p.Site] = true
		out = append(out, p)
	}
	return out
}

// rank orders by relevance score, then rating, then review count, all
// descending. The sort is stable so equal keys keep their fetch order.
func rank(products []models.Product, query string) {
	type scored struct {
		product models.Product
		score   float64
	}
	items := make([]scored, len(products))
	for i, p := range products {
		items[i] = scored{product: p, score: relevance.Score(p.Title, query)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.product.Rating != b.product.Rating {
			return a.product.Rating > b.product.Rating
		}
		return a.product.ReviewCount > b.product.ReviewCount
	})
	for i := range items {
		products[i] = items[i].product
	}
}

func excludeSite(products []models.Product, site string) []models.Product {
	site = strings.ToLower(strings.TrimSpace(site))
	if site == "" {
		return products
	}
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !strings.Contains(strings.ToLower(p.Site), site) {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return products
	}
	return filtered
}
