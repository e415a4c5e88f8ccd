package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"finda-workers/internal/models"
	"finda-workers/internal/shopping/linkresolver"
)

const (
	SourceCatalog       = "catalog"
	DefaultCatalogIndex = "products"
	catalogSize         = 20
)

// Catalog searches the internal product index in Elasticsearch.
type Catalog struct {
	es    *elasticsearch.Client
	index string
}

func NewCatalog(es *elasticsearch.Client, index string) *Catalog {
	if index == "" {
		index = DefaultCatalogIndex
	}
	return &Catalog{es: es, index: index}
}

func (c *Catalog) Name() string { return SourceCatalog }

type catalogDoc struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	Image        string   `json:"image"`
	Images       []string `json:"images"`
	Brand        string   `json:"brand"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"reviewCount"`
	Site         string   `json:"site"`
	DeliveryInfo string   `json:"deliveryInfo"`
	Description  string   `json:"description"`
	Link         string   `json:"link"`
}

func (c *Catalog) Search(ctx context.Context, query string) ([]models.Product, error) {
	if c.es == nil {
		return nil, ErrSourceUnavailable
	}

	esQuery := map[string]interface{}{
		"size": catalogSize,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "brand^2", "description"},
			},
		},
	}
	body, err := json.Marshal(esQuery)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("catalog search error: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID     string     `json:"_id"`
				Source catalogDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	products := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		products = append(products, hit.Source.toProduct(hit.ID))
	}
	return products, nil
}

func (d catalogDoc) toProduct(hitID string) models.Product {
	id := d.ID
	if id == "" {
		id = hitID
	}
	if id == "" {
		id = uuid.NewString()
	}
	site := d.Site
	if site == "" {
		site = SourceCatalog
	}
	images := d.Images
	if len(images) == 0 && d.Image != "" {
		images = []string{d.Image}
	}
	price := d.Price
	if price == "" {
		price = defaultPrice
	}
	delivery := d.DeliveryInfo
	if delivery == "" {
		delivery = defaultDelivery
	}
	link := d.Link
	if link == "" {
		link = linkresolver.Placeholder
	}

	return models.Product{
		ID:            id,
		Title:         d.Title,
		Price:         price,
		Image:         d.Image,
		Images:        images,
		Brand:         d.Brand,
		Rating:        d.Rating,
		ReviewCount:   d.ReviewCount,
		Site:          site,
		SiteColor:     linkresolver.SiteColor(site),
		DeliveryInfo:  delivery,
		PositiveRatio: positiveRatio(d.Rating),
		Description:   d.Description,
		Link:          linkresolver.Resolve(link, d.Title, site),
	}
}
