// Package fallback classifies a message offline when no LLM provider answered.
package fallback

import (
	"fmt"
	"strings"

	"finda-workers/internal/assistant/smalltalk"
	"finda-workers/internal/models"
)

const (
	SmallTalkReply = "Merhaba! Su an kisitli moddayim, urun aramasi icin ne bakmak istediginizi yazabilirsiniz."
	GreetingReply  = "Merhaba! Şu an yoğunluk nedeniyle kısıtlı moddayım ama ürün aramanıza yardımcı olabilirim. Ne aramıştınız?"
	PromptReply    = "Şu an kısıtlı moddayım. Lütfen aramak istediğiniz ürünü yazın."
)

type category struct {
	query    string
	keywords []string
}

var chatPhrases = map[string]bool{
	"merhaba":  true,
	"selam":    true,
	"nasılsın": true,
	"kimsin":   true,
	"teşekkür": true,
	"sağol":    true,
	"hey":      true,
	"hi":       true,
	"hello":    true,
}

// categories are matched in order; the first hit wins.
var categories = []category{
	{query: "laptop", keywords: []string{"laptop", "dizüstü", "macbook", "bilgisayar", "pc"}},
	{query: "phone", keywords: []string{"phone", "telefon", "iphone", "samsung", "mobile", "cep"}},
	{query: "headphones", keywords: []string{"kulaklık", "headphone", "airpods"}},
	{query: "shoes", keywords: []string{"ayakkabı", "sneaker", "bot"}},
	{query: "woman", keywords: []string{"kadın", "woman", "bayan"}},
}

// Classify never fails and never touches the network. message is expected to
// be sanitized already.
func Classify(message string) models.IntentResult {
	lower := strings.ToLower(strings.TrimSpace(message))
	words := strings.Fields(lower)

	if smalltalk.IsSmallTalk(lower) {
		return chat(SmallTalkReply)
	}
	if chatPhrases[lower] {
		return chat(GreetingReply)
	}

	query := matchCategory(lower)
	if query == "" && len(words) == 1 {
		query = lower
	}
	if query == "" {
		return chat(PromptReply)
	}

	return models.IntentResult{
		Intent:   models.IntentShopping,
		Query:    query,
		Response: fmt.Sprintf(`"%s" için ürünleri buluyorum (Kısıtlı Mod aktif)...`, message),
	}
}

func matchCategory(lower string) string {
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.query
			}
		}
	}
	return ""
}

func chat(reply string) models.IntentResult {
	return models.IntentResult{Intent: models.IntentChat, Response: reply}
}
