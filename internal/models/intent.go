package models

import "fmt"

const (
	IntentChat     = "chat"
	IntentShopping = "shopping"
)

// IntentResult is the canonical output of message analysis, whichever stage produced it.
type IntentResult struct {
	Intent   string `json:"intent"`
	Query    string `json:"query"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// ErrEmptyQuery marks a shopping result that carries no search query.
const ErrEmptyQuery = "EMPTY_QUERY"

// NotFoundReply is the reply sent when a search yields nothing.
func NotFoundReply(query string) string {
	return fmt.Sprintf(`"%s" için ürün bulunamadı. Başka bir şey aramak ister misiniz?`, query)
}

// IsShopping reports a shopping classification.
func (r IntentResult) IsShopping() bool {
	return r.Intent == IntentShopping
}

// FlightIntentVerdict is the flight detector's classification of a single message.
type FlightIntentVerdict struct {
	IsFlight   bool    `json:"isFlight"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}
