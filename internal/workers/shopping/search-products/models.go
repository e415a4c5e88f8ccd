package searchproducts

import "finda-workers/internal/models"

type Input struct {
	Query       string `json:"query"`
	CompareMode bool   `json:"compareMode"`
	SiteFilter  string `json:"siteFilter,omitempty"`
	// Response is the assistant reply from message analysis, reused when products are found.
	Response string `json:"response,omitempty"`
}

type Output struct {
	Products    []models.Product `json:"products"`
	Count       int              `json:"count"`
	Found       bool             `json:"found"`
	Cached      bool             `json:"cached"`
	CompareMode bool             `json:"compareMode"`
	Message     string           `json:"message"`
}
