package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"finda-workers/internal/common/config"
	commonhttp "finda-workers/internal/common/http"
	"finda-workers/internal/models"
	"finda-workers/internal/shopping/linkresolver"
)

const (
	SourceSerpAPI = "serpapi"

	defaultPrice    = "Fiyat yok"
	defaultDelivery = "Mağaza Detayı"
)

// SerpAPI queries Google Shopping through serpapi.com.
type SerpAPI struct {
	cfg    config.SerpAPIConfig
	client *commonhttp.Client
}

func NewSerpAPI(cfg config.SerpAPIConfig) *SerpAPI {
	return &SerpAPI{
		cfg:    cfg,
		client: commonhttp.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
	}
}

func (s *SerpAPI) Name() string { return SourceSerpAPI }

type serpResponse struct {
	Error           string       `json:"error"`
	ShoppingResults []serpResult `json:"shopping_results"`
}

type serpResult struct {
	Title       string          `json:"title"`
	Price       string          `json:"price"`
	Thumbnail   string          `json:"thumbnail"`
	Image       string          `json:"image"`
	Images      []string        `json:"images"`
	Source      string          `json:"source"`
	Rating      float64         `json:"rating"`
	Reviews     interface{}     `json:"reviews"`
	ProductLink string          `json:"product_link"`
	DirectLink  string          `json:"direct_link"`
	Link        string          `json:"link"`
	Offers      json.RawMessage `json:"offers"`
	Delivery    string          `json:"delivery"`
	Snippet     string          `json:"snippet"`
}

// Search returns at most MaxResults listings, in provider order.
func (s *SerpAPI) Search(ctx context.Context, query string) ([]models.Product, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return nil, ErrSourceUnavailable
	}

	var resp serpResponse
	if err := s.client.GetJSON(ctx, s.buildSearchURL(query), nil, &resp); err != nil {
		return nil, fmt.Errorf("serpapi search: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("serpapi search: %s", resp.Error)
	}

	results := resp.ShoppingResults
	if s.cfg.MaxResults > 0 && len(results) > s.cfg.MaxResults {
		results = results[:s.cfg.MaxResults]
	}

	products := make([]models.Product, 0, len(results))
	for i, r := range results {
		products = append(products, r.toProduct(i))
	}
	return products, nil
}

func (s *SerpAPI) buildSearchURL(query string) string {
	baseURL, _ := url.Parse(s.cfg.BaseURL)
	params := url.Values{}
	params.Add("engine", s.cfg.Engine)
	params.Add("q", query)
	params.Add("api_key", s.cfg.APIKey)
	params.Add("gl", s.cfg.Country)
	params.Add("hl", s.cfg.Language)
	params.Add("direct_link", strconv.FormatBool(true))
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

func (r serpResult) toProduct(index int) models.Product {
	image := r.Thumbnail
	if image == "" {
		image = r.Image
	}
	images := r.Images
	if len(images) == 0 && r.Thumbnail != "" {
		images = []string{r.Thumbnail}
	}
	price := r.Price
	if price == "" {
		price = defaultPrice
	}
	delivery := r.Delivery
	if delivery == "" {
		delivery = defaultDelivery
	}

	return models.Product{
		ID:            fmt.Sprintf("serp_%d_%s", index, uuid.NewString()[:8]),
		Title:         r.Title,
		Price:         price,
		Image:         image,
		Images:        images,
		Brand:         r.Source,
		Rating:        r.Rating,
		ReviewCount:   toInt(r.Reviews),
		Site:          r.Source,
		SiteColor:     linkresolver.SiteColor(r.Source),
		DeliveryInfo:  delivery,
		PositiveRatio: positiveRatio(r.Rating),
		Description:   r.Snippet,
		Link:          linkresolver.Resolve(r.rawLink(), r.Title, r.Source),
	}
}

// rawLink picks product_link, direct_link, the first offer, then link.
func (r serpResult) rawLink() string {
	if r.ProductLink != "" {
		return r.ProductLink
	}
	if r.DirectLink != "" {
		return r.DirectLink
	}
	var offers []struct {
		Link string `json:"link"`
	}
	if len(r.Offers) > 0 && json.Unmarshal(r.Offers, &offers) == nil && len(offers) > 0 && offers[0].Link != "" {
		return offers[0].Link
	}
	if r.Link != "" {
		return r.Link
	}
	return linkresolver.Placeholder
}
