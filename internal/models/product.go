package models

// Product is a normalized listing from any product source.
type Product struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Price         string   `json:"price"`
	Image         string   `json:"image"`
	Images        []string `json:"images"`
	Brand         string   `json:"brand"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Site          string   `json:"site"`
	SiteColor     string   `json:"siteColor"`
	DeliveryInfo  string   `json:"deliveryInfo"`
	PositiveRatio int      `json:"positiveRatio"`
	Description   string   `json:"description"`
	Link          string   `json:"link"`
}
