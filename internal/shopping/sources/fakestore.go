package sources

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"finda-workers/internal/common/config"
	commonhttp "finda-workers/internal/common/http"
	"finda-workers/internal/models"
	"finda-workers/internal/shopping/linkresolver"
)

const SourceFakeStore = "FakeStore"

// FakeStore is a small public demo catalog used to fill thin result sets.
// It has no search endpoint, so the whole catalog is returned.
type FakeStore struct {
	cfg    config.FakeStoreConfig
	client *commonhttp.Client
}

func NewFakeStore(cfg config.FakeStoreConfig) *FakeStore {
	return &FakeStore{
		cfg:    cfg,
		client: commonhttp.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
	}
}

func (f *FakeStore) Name() string { return SourceFakeStore }

type fakeStoreItem struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Rating struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (f *FakeStore) Search(ctx context.Context, _ string) ([]models.Product, error) {
	if !f.cfg.Enabled {
		return nil, ErrSourceUnavailable
	}

	var items []fakeStoreItem
	if err := f.client.GetJSON(ctx, f.cfg.BaseURL, nil, &items); err != nil {
		return nil, fmt.Errorf("fakestore catalog: %w", err)
	}

	products := make([]models.Product, 0, len(items))
	for _, it := range items {
		products = append(products, models.Product{
			ID:            fmt.Sprintf("fs_%d", it.ID),
			Title:         it.Title,
			Price:         strconv.FormatFloat(it.Price, 'f', -1, 64) + " $",
			Image:         it.Image,
			Images:        []string{it.Image},
			Rating:        it.Rating.Rate,
			ReviewCount:   it.Rating.Count,
			Site:          SourceFakeStore,
			SiteColor:     "primary",
			DeliveryInfo:  "2-3 gün",
			PositiveRatio: positiveRatio(it.Rating.Rate),
			Link:          linkresolver.Placeholder,
		})
	}
	return products, nil
}
